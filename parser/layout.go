package parser

import "fmt"

// Layout runs the assembler's first pass: it walks prog's statements in
// order, assigns every label and instruction/datum its emission address,
// and registers every variable declaration for lazy evaluation during emit.
// Size is purely syntactic — an instruction's width never depends on an
// operand's evaluated value — so one forward walk is enough to fix every
// address before any expression is evaluated.
func Layout(prog *Program, startAddr uint32) (*SymbolTable, error) {
	st := NewSymbolTable()
	addr := startAddr

	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *LabelDecl:
			if err := st.DefineLabel(s.Name, addr, s.P); err != nil {
				return nil, err
			}

		case *VarDecl:
			if err := st.DefineVariable(s.Name, s.Expr, s.P); err != nil {
				return nil, err
			}

		case *AddrSet:
			w, err := s.Expr.Eval(st)
			if err != nil {
				return nil, fmt.Errorf("%s: @ target: %w", s.P, err)
			}
			addr = w.Bits()

		case *Instruction:
			s.Address = addr
			addr += 4 + 4*uint32(s.LiteralCount())

		case *Datum:
			s.Address = addr
			addr += DatumWidth(s.Type)

		case *AsciiDatum:
			s.Address = addr
			addr += uint32(len(s.Text))

		default:
			return nil, fmt.Errorf("%s: unhandled statement type %T", stmt.Pos(), stmt)
		}
	}

	return st, nil
}
