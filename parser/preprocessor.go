package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Preprocessor expands `!include "path"` textually before parsing, the
// assembler's only preprocessing directive.
type Preprocessor struct {
	includeStack []string
	baseDir      string
	errors       *ErrorList
}

// NewPreprocessor creates a preprocessor resolving relative includes
// against baseDir.
func NewPreprocessor(baseDir string) *Preprocessor {
	if baseDir == "" {
		baseDir = "."
	}
	return &Preprocessor{baseDir: baseDir, errors: &ErrorList{}}
}

// ProcessFile reads filename and expands its includes.
func (p *Preprocessor) ProcessFile(filename string) (string, error) {
	absPath, err := filepath.Abs(filepath.Join(p.baseDir, filename))
	if err != nil {
		return "", err
	}

	for _, included := range p.includeStack {
		if included == absPath {
			return "", fmt.Errorf("%w: %s", ErrCircularInclude, absPath)
		}
	}

	content, err := os.ReadFile(absPath) // #nosec G304 -- user-provided assembly file path
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	p.includeStack = append(p.includeStack, absPath)
	defer func() { p.includeStack = p.includeStack[:len(p.includeStack)-1] }()

	return p.ProcessContent(string(content), filename)
}

// ProcessContent expands includes within content, which was read from
// filename (used only for diagnostics).
func (p *Preprocessor) ProcessContent(content, filename string) (string, error) {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for lineNum, line := range lines {
		pos := Position{Filename: filename, Line: lineNum + 1, Column: 1}
		trimmed := strings.TrimSpace(line)

		if !strings.HasPrefix(trimmed, "!include") {
			result = append(result, line)
			continue
		}

		includeFile := parseIncludeDirective(trimmed)
		if includeFile == "" {
			p.errors.AddError(NewError(pos, ErrorSyntax, "invalid !include directive"))
			continue
		}

		includedContent, err := p.ProcessFile(includeFile)
		if err != nil {
			kind := ErrorFileIO
			if errors.Is(err, ErrCircularInclude) {
				kind = ErrorCircularReference
			}
			p.errors.AddError(NewError(pos, kind, fmt.Sprintf("failed to include %s: %v", includeFile, err)))
			continue
		}

		result = append(result, includedContent)
	}

	return strings.Join(result, "\n"), nil
}

// parseIncludeDirective extracts the quoted path from `!include "path"`.
func parseIncludeDirective(line string) string {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "!include"))
	if len(line) >= 2 && line[0] == '"' && line[len(line)-1] == '"' {
		return line[1 : len(line)-1]
	}
	return ""
}

// Errors returns the accumulated preprocessor errors.
func (p *Preprocessor) Errors() *ErrorList {
	return p.errors
}
