// Package encoder implements the assembler's emit pass: it walks a laid-out
// parser.Program, evaluates every expression against the symbol table
// parser.Layout built, and produces raw image bytes plus an optional
// debug-info stream mapping emission address to source line.
package encoder

import (
	"encoding/binary"
	"fmt"

	"github.com/vm32/vm32/isa"
	"github.com/vm32/vm32/parser"
	"github.com/vm32/vm32/vm"
)

// Encoder emits machine code for a laid-out program.
type Encoder struct {
	symbols *parser.SymbolTable
}

// NewEncoder creates an encoder resolving expressions against symbols.
func NewEncoder(symbols *parser.SymbolTable) *Encoder {
	return &Encoder{symbols: symbols}
}

// DebugRecord is one (address, source line) pair destined for the debug
// info stream.
type DebugRecord struct {
	Address uint32
	Line    uint32 // 0-based
}

// Emit encodes every statement in prog into a flat image, sized from
// startAddr to the highest address any statement touches. Returns the image
// bytes and the debug records for every instruction emitted.
func (e *Encoder) Emit(prog *parser.Program, startAddr uint32) ([]byte, []DebugRecord, error) {
	endAddr := startAddr
	for _, stmt := range prog.Statements {
		if end, ok := statementEnd(stmt); ok && end > endAddr {
			endAddr = end
		}
	}

	image := make([]byte, endAddr-startAddr)
	var debug []DebugRecord

	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *parser.Instruction:
			if err := e.emitInstruction(s, image, startAddr); err != nil {
				return nil, nil, err
			}
			debug = append(debug, DebugRecord{Address: s.Address, Line: uint32(s.Pos().Line - 1)})

		case *parser.Datum:
			if err := e.emitDatum(s, image, startAddr); err != nil {
				return nil, nil, err
			}

		case *parser.AsciiDatum:
			off := s.Address - startAddr
			copy(image[off:], s.Text)

		case *parser.LabelDecl, *parser.VarDecl, *parser.AddrSet:
			// layout-only; nothing to emit

		default:
			return nil, nil, fmt.Errorf("%s: unhandled statement type %T", stmt.Pos(), stmt)
		}
	}

	return image, debug, nil
}

// statementEnd returns the address just past stmt's emitted bytes, if it
// emits any.
func statementEnd(stmt parser.Statement) (uint32, bool) {
	switch s := stmt.(type) {
	case *parser.Instruction:
		return s.Address + 4 + 4*uint32(s.LiteralCount()), true
	case *parser.Datum:
		return s.Address + parser.DatumWidth(s.Type), true
	case *parser.AsciiDatum:
		return s.Address + uint32(len(s.Text)), true
	default:
		return 0, false
	}
}

func (e *Encoder) emitInstruction(inst *parser.Instruction, image []byte, startAddr uint32) error {
	want := isa.OperandCount[inst.Opcode]
	var specs [3]byte
	var literals []uint32

	for i := 0; i < 3; i++ {
		if i >= want {
			specs[i] = 0
			continue
		}
		arg := inst.Args[i]
		switch arg.Kind {
		case parser.OperandRegister:
			specs[i] = arg.Reg
		case parser.OperandStack:
			specs[i] = vm.SpecStack
		case parser.OperandLiteral:
			specs[i] = vm.SpecLiteral
			w, err := arg.Expr.Eval(e.symbols)
			if err != nil {
				return WrapEncodingError(inst.Pos(), inst.RawLine, err)
			}
			literals = append(literals, w.Bits())
		}
	}

	word := vm.Encode(inst.Opcode, specs[0], specs[1], specs[2])
	off := inst.Address - startAddr
	binary.BigEndian.PutUint32(image[off:], word)

	litOff := off + 4
	for _, lit := range literals {
		binary.BigEndian.PutUint32(image[litOff:], lit)
		litOff += 4
	}
	return nil
}

func (e *Encoder) emitDatum(d *parser.Datum, image []byte, startAddr uint32) error {
	w, err := d.Expr.Eval(e.symbols)
	if err != nil {
		return WrapEncodingError(d.Pos(), "", err)
	}
	off := d.Address - startAddr

	switch d.Type {
	case parser.DatumByte:
		image[off] = byte(w.Bits())
	case parser.DatumHalf:
		binary.BigEndian.PutUint16(image[off:], uint16(w.Bits()))
	default: // word, float: both four bytes of the same bit pattern
		binary.BigEndian.PutUint32(image[off:], w.Bits())
	}
	return nil
}

// EncodeDebugInfo packs debug records into the wire format: two big-endian
// 32-bit words per record (address, source line).
func EncodeDebugInfo(records []DebugRecord) []byte {
	buf := make([]byte, 8*len(records))
	for i, r := range records {
		binary.BigEndian.PutUint32(buf[i*8:], r.Address)
		binary.BigEndian.PutUint32(buf[i*8+4:], r.Line)
	}
	return buf
}
