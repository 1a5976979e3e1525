package parser

import (
	"os"
	"path/filepath"
)

// ParseFileOptions configures file parsing behavior.
type ParseFileOptions struct {
	// EnablePreprocessor expands !include before parsing (default: true).
	EnablePreprocessor bool
}

// DefaultParseFileOptions returns the default parsing options.
func DefaultParseFileOptions() ParseFileOptions {
	return ParseFileOptions{EnablePreprocessor: true}
}

// ParseFile reads and parses an assembly file, expanding !include first
// when enabled. Returns the parsed program or an error; check the returned
// Parser's Errors() for additional diagnostics.
func ParseFile(filePath string, opts ParseFileOptions) (*Program, *Parser, error) {
	content, err := os.ReadFile(filePath) // #nosec G304 -- user-provided assembly file path
	if err != nil {
		return nil, nil, err
	}

	filename := filepath.Base(filePath)
	source := string(content)

	if opts.EnablePreprocessor {
		baseDir := filepath.Dir(filePath)
		pp := NewPreprocessor(baseDir)

		processed, err := pp.ProcessContent(source, filename)
		if err != nil {
			return nil, nil, err
		}
		if pp.Errors().HasErrors() {
			return nil, nil, pp.Errors().Errors[0]
		}

		source = processed
	}

	p := NewParser(source, filename)
	program, err := p.Parse()
	if err != nil {
		return nil, p, err
	}

	return program, p, nil
}

// ParseFileSimple parses filePath with the default options.
func ParseFileSimple(filePath string) (*Program, *Parser, error) {
	return ParseFile(filePath, DefaultParseFileOptions())
}
