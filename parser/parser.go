package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vm32/vm32/isa"
)

// Parser turns a token stream into a Program. One Parser handles one
// translation unit; !include is expanded textually before parsing by the
// Preprocessor, so the parser itself never sees it.
type Parser struct {
	lexer    *Lexer
	filename string
	regs     *RegisterTable
	errors   *ErrorList

	tok     Token
	peekTok Token
}

// NewParser creates a parser over source, seeded with the built-in register
// names.
func NewParser(source, filename string) *Parser {
	p := &Parser{
		lexer:    NewLexer(source, filename),
		filename: filename,
		regs:     NewRegisterTable(),
		errors:   &ErrorList{},
	}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.tok = p.peekTok
	p.peekTok = p.lexer.NextToken()
}

func (p *Parser) errorf(pos Position, kind ErrorKind, format string, args ...any) {
	p.errors.AddError(NewError(pos, kind, fmt.Sprintf(format, args...)))
}

// Errors returns the accumulated parse errors, including any lexer errors.
func (p *Parser) Errors() *ErrorList {
	for _, e := range p.lexer.Errors().Errors {
		p.errors.AddError(e)
	}
	return p.errors
}

// Registers exposes the register/alias table so callers (e.g. the
// encoder's debugger collaborator) can resolve a name to an index.
func (p *Parser) Registers() *RegisterTable { return p.regs }

func (p *Parser) skipLineEnds() {
	for p.tok.Type == TokenNewline || p.tok.Type == TokenComment {
		p.next()
	}
}

// Parse consumes the whole token stream and returns the resulting program.
func (p *Parser) Parse() (*Program, error) {
	prog := &Program{}

	for {
		p.skipLineEnds()
		if p.tok.Type == TokenEOF {
			break
		}

		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}

		if p.tok.Type != TokenNewline && p.tok.Type != TokenEOF && p.tok.Type != TokenComment {
			p.errorf(p.tok.Pos, ErrorSyntax, "unexpected token %s at end of line", p.tok)
			p.syncToNewline()
		}
	}

	if p.errors.HasErrors() {
		return prog, p.errors
	}
	return prog, nil
}

func (p *Parser) syncToNewline() {
	for p.tok.Type != TokenNewline && p.tok.Type != TokenEOF {
		p.next()
	}
}

func (p *Parser) parseStatement() Statement {
	switch p.tok.Type {
	case TokenDollar:
		return p.parseVarDecl()
	case TokenAt:
		return p.parseAddrSet()
	case TokenBang:
		return p.parseAliasDecl()
	case TokenDot:
		return p.parseDirective()
	case TokenIdentifier:
		if p.peekTok.Type == TokenColon {
			return p.parseLabelDecl()
		}
		return p.parseInstruction()
	default:
		p.errorf(p.tok.Pos, ErrorSyntax, "unexpected token %s", p.tok)
		p.syncToNewline()
		return nil
	}
}

func (p *Parser) parseVarDecl() Statement {
	pos := p.tok.Pos
	p.next() // consume '$'
	if p.tok.Type != TokenIdentifier {
		p.errorf(p.tok.Pos, ErrorSyntax, "expected variable name after '$'")
		p.syncToNewline()
		return nil
	}
	name := p.tok.Literal
	p.next()
	expr := p.parseExpr()
	return &VarDecl{Name: name, Expr: expr, P: pos}
}

func (p *Parser) parseAddrSet() Statement {
	pos := p.tok.Pos
	p.next() // consume '@'
	expr := p.parseExpr()
	return &AddrSet{Expr: expr, P: pos}
}

func (p *Parser) parseLabelDecl() Statement {
	pos := p.tok.Pos
	name := p.tok.Literal
	p.next() // identifier
	p.next() // ':'
	return &LabelDecl{Name: name, P: pos}
}

// parseAliasDecl parses `!%alias = %reg`. `!include "path"` reaches here
// only if the preprocessor failed to expand it, which is treated as an
// error.
func (p *Parser) parseAliasDecl() Statement {
	pos := p.tok.Pos
	p.next() // consume '!'

	if p.tok.Type == TokenIdentifier && p.tok.Literal == "include" {
		p.errorf(pos, ErrorSyntax, "!include must be resolved by the preprocessor before parsing")
		p.syncToNewline()
		return nil
	}

	if p.tok.Type != TokenRegister {
		p.errorf(p.tok.Pos, ErrorSyntax, "expected '%%name' after '!' in an alias declaration")
		p.syncToNewline()
		return nil
	}
	aliasName := p.tok.Literal
	p.next()

	if p.tok.Type != TokenEqual {
		p.errorf(p.tok.Pos, ErrorSyntax, "expected '=' in alias declaration")
		p.syncToNewline()
		return nil
	}
	p.next()

	if p.tok.Type != TokenRegister {
		p.errorf(p.tok.Pos, ErrorSyntax, "expected '%%reg' after '=' in alias declaration")
		p.syncToNewline()
		return nil
	}
	target := p.tok.Literal
	p.next()

	if err := p.regs.Alias(aliasName, target); err != nil {
		p.errorf(pos, ErrorInvalidOperand, "%v", err)
	}
	return nil
}

var datumTypes = map[string]DatumType{
	"byte":  DatumByte,
	"half":  DatumHalf,
	"word":  DatumWord,
	"float": DatumFloat,
}

func (p *Parser) parseDirective() Statement {
	pos := p.tok.Pos
	name := p.tok.Literal
	p.next()

	if name == "ascii" {
		if p.tok.Type != TokenString {
			p.errorf(p.tok.Pos, ErrorSyntax, "expected string literal after .ascii")
			p.syncToNewline()
			return nil
		}
		text := ProcessEscapeSequences(p.tok.Literal)
		p.next()
		return &AsciiDatum{Text: text, P: pos}
	}

	dt, ok := datumTypes[name]
	if !ok {
		p.errorf(pos, ErrorInvalidDirective, "unknown directive %q", "."+name)
		p.syncToNewline()
		return nil
	}
	expr := p.parseExpr()
	return &Datum{Type: dt, Expr: expr, P: pos}
}

func (p *Parser) parseInstruction() Statement {
	pos := p.tok.Pos
	mnemonic := strings.ToLower(p.tok.Literal)
	rawLine := p.tok.Literal
	p.next()

	opcode, ok := isa.Mnemonics[mnemonic]
	if !ok {
		p.errorf(pos, ErrorInvalidMnemonic, "unknown mnemonic %q", mnemonic)
		p.syncToNewline()
		return nil
	}

	want := isa.OperandCount[opcode]
	var args []Operand
	for len(args) < want {
		args = append(args, p.parseOperand())
		if len(args) < want {
			if p.tok.Type != TokenComma {
				p.errorf(p.tok.Pos, ErrorSyntax, "expected ',' between operands of %q", mnemonic)
				break
			}
			p.next()
		}
	}

	return &Instruction{Mnemonic: mnemonic, Opcode: opcode, Args: args, RawLine: rawLine, P: pos}
}

func (p *Parser) parseOperand() Operand {
	pos := p.tok.Pos
	switch p.tok.Type {
	case TokenRegister:
		name := p.tok.Literal
		p.next()
		idx, ok := p.regs.Resolve(name)
		if !ok {
			p.errorf(pos, ErrorInvalidOperand, "unknown register %%%s", name)
			return Operand{Kind: OperandRegister, P: pos}
		}
		return Operand{Kind: OperandRegister, Reg: idx, P: pos}
	case TokenStar:
		p.next()
		return Operand{Kind: OperandStack, P: pos}
	default:
		expr := p.parseExpr()
		return Operand{Kind: OperandLiteral, Expr: expr, P: pos}
	}
}

// Expression grammar, weakest to strongest: bitwise (& | ^), then add/sub,
// then mul/div/mod, then unary, then primary.
func (p *Parser) parseExpr() Expr {
	return p.parseBitwise()
}

func (p *Parser) parseBitwise() Expr {
	left := p.parseAddSub()
	for p.tok.Type == TokenAmp || p.tok.Type == TokenPipe || p.tok.Type == TokenCaret {
		op := p.tok.Literal
		pos := p.tok.Pos
		p.next()
		right := p.parseAddSub()
		left = &BinaryExpr{Op: op, X: left, Y: right, P: pos}
	}
	return left
}

func (p *Parser) parseAddSub() Expr {
	left := p.parseMulDiv()
	for p.tok.Type == TokenPlus || p.tok.Type == TokenMinus {
		op := p.tok.Literal
		pos := p.tok.Pos
		p.next()
		right := p.parseMulDiv()
		left = &BinaryExpr{Op: op, X: left, Y: right, P: pos}
	}
	return left
}

func (p *Parser) parseMulDiv() Expr {
	left := p.parseUnary()
	for p.tok.Type == TokenStar || p.tok.Type == TokenSlash || p.tok.Type == TokenPercent {
		op := p.tok.Literal
		pos := p.tok.Pos
		p.next()
		right := p.parseUnary()
		left = &BinaryExpr{Op: op, X: left, Y: right, P: pos}
	}
	return left
}

func (p *Parser) parseUnary() Expr {
	if p.tok.Type == TokenMinus || p.tok.Type == TokenTilde {
		op := p.tok.Literal
		pos := p.tok.Pos
		p.next()
		x := p.parseUnary()
		return &UnaryExpr{Op: op, X: x, P: pos}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() Expr {
	pos := p.tok.Pos
	switch p.tok.Type {
	case TokenLParen:
		p.next()
		e := p.parseExpr()
		if p.tok.Type != TokenRParen {
			p.errorf(p.tok.Pos, ErrorSyntax, "expected ')'")
		} else {
			p.next()
		}
		return e

	case TokenNumber:
		lit := p.tok.Literal
		p.next()
		v, err := parseIntLiteral(lit)
		if err != nil {
			p.errorf(pos, ErrorSyntax, "%v", err)
			return &NumberLit{Value: Word{}, P: pos}
		}
		return &NumberLit{Value: v, P: pos}

	case TokenFloat:
		lit := p.tok.Literal
		p.next()
		f, err := strconv.ParseFloat(lit, 32)
		if err != nil {
			p.errorf(pos, ErrorSyntax, "invalid float literal %q: %v", lit, err)
			return &NumberLit{Value: Word{Kind: KindFloat}, P: pos}
		}
		return &NumberLit{Value: Word{Kind: KindFloat, F: float32(f)}, P: pos}

	case TokenIdentifier:
		name := p.tok.Literal
		p.next()
		if p.tok.Type == TokenLParen {
			return p.parseCall(name, pos)
		}
		return &Ident{Name: name, P: pos}

	default:
		p.errorf(pos, ErrorSyntax, "expected an expression, found %s", p.tok)
		p.next()
		return &NumberLit{Value: Word{}, P: pos}
	}
}

func (p *Parser) parseCall(name string, pos Position) Expr {
	p.next() // consume '('
	var args []Expr
	for p.tok.Type != TokenRParen && p.tok.Type != TokenEOF {
		args = append(args, p.parseExpr())
		if p.tok.Type == TokenComma {
			p.next()
		}
	}
	if p.tok.Type == TokenRParen {
		p.next()
	} else {
		p.errorf(p.tok.Pos, ErrorSyntax, "expected ')' to close call to %q", name)
	}
	return &CallExpr{Name: name, Args: args, P: pos}
}

// parseIntLiteral parses a NUMBER token's literal text (radix prefix, digits,
// optional trailing 'i') into a Word of kind Unsigned or Signed.
func parseIntLiteral(lit string) (Word, error) {
	signed := false
	if strings.HasSuffix(lit, "i") {
		signed = true
		lit = lit[:len(lit)-1]
	}

	base := 10
	digits := lit
	if len(lit) > 1 && lit[0] == '0' {
		if b, ok := radixPrefixes[rune(lit[1])]; ok {
			base = b
			digits = lit[2:]
		}
	}
	if digits == "" {
		digits = "0"
	}

	u, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return Word{}, fmt.Errorf("invalid integer literal %q: %w", lit, err)
	}

	if signed {
		return Word{Kind: KindSigned, I: int32(u)}, nil
	}
	return Word{Kind: KindUnsigned, U: uint32(u)}, nil
}
