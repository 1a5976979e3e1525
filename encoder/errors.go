package encoder

import (
	"fmt"

	"github.com/vm32/vm32/parser"
)

// EncodingError gives a failed instruction or directive its source location
// for the diagnostic printed back to the assembler's caller.
type EncodingError struct {
	Pos     parser.Position
	RawLine string
	Message string
	Wrapped error
}

func (e *EncodingError) Error() string {
	location := ""
	if e.Pos.Filename != "" {
		location = fmt.Sprintf("%s: ", e.Pos)
	}

	var msg string
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s%s: %v", location, e.Message, e.Wrapped)
	} else {
		msg = fmt.Sprintf("%s%s", location, e.Message)
	}

	if e.RawLine != "" {
		msg = fmt.Sprintf("%s\n  source: %s", msg, e.RawLine)
	}
	return msg
}

// Unwrap supports errors.Is/As against the wrapped cause.
func (e *EncodingError) Unwrap() error {
	return e.Wrapped
}

// NewEncodingError builds an EncodingError anchored at pos.
func NewEncodingError(pos parser.Position, rawLine, message string) *EncodingError {
	return &EncodingError{Pos: pos, RawLine: rawLine, Message: message}
}

// WrapEncodingError attaches pos/rawLine context to err, unless it is
// already an EncodingError.
func WrapEncodingError(pos parser.Position, rawLine string, err error) error {
	if err == nil {
		return nil
	}
	if ee, ok := err.(*EncodingError); ok {
		return ee
	}
	return &EncodingError{Pos: pos, RawLine: rawLine, Message: "failed to encode", Wrapped: err}
}
