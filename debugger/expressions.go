package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vm32/vm32/vm"
)

// ExpressionEvaluator evaluates the small expression language accepted by
// print, set, watch, and breakpoint conditions: registers, memory
// dereferences, symbols, numeric literals, and binary operators. There is
// no precedence climbing and no grouping with parentheses: the expression
// is split at the first occurrence of the first operator found in the order
// << >> & | ^ + - * /, and each side is evaluated the same way, so
// "10 - 2 - 3" evaluates as 10 - (2 - 3).
type ExpressionEvaluator struct {
	valueHistory []uint32
	valueNumber  int
}

// NewExpressionEvaluator creates an expression evaluator with empty history.
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{}
}

// EvaluateExpression evaluates expr and records the result in $-history.
func (e *ExpressionEvaluator) EvaluateExpression(expr string, core *vm.ThreadCore, symbols map[string]uint32) (uint32, error) {
	result, err := e.evaluate(expr, core, symbols)
	if err != nil {
		return 0, err
	}
	e.valueHistory = append(e.valueHistory, result)
	e.valueNumber = len(e.valueHistory)
	return result, nil
}

// Evaluate evaluates expr as a boolean condition (nonzero is true).
func (e *ExpressionEvaluator) Evaluate(expr string, core *vm.ThreadCore, symbols map[string]uint32) (bool, error) {
	result, err := e.evaluate(expr, core, symbols)
	if err != nil {
		return false, err
	}
	return result != 0, nil
}

// GetValueNumber returns the index of the most recently recorded value.
func (e *ExpressionEvaluator) GetValueNumber() int {
	return e.valueNumber
}

// GetValue returns a previously recorded value by its 1-based $-number.
func (e *ExpressionEvaluator) GetValue(number int) (uint32, error) {
	if number < 1 || number > len(e.valueHistory) {
		return 0, fmt.Errorf("value $%d not in history", number)
	}
	return e.valueHistory[number-1], nil
}

func (e *ExpressionEvaluator) evaluate(expr string, core *vm.ThreadCore, symbols map[string]uint32) (uint32, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}

	if val, err := e.trySimpleEval(expr, core, symbols); err == nil {
		return val, nil
	}

	operators := []string{"<<", ">>", "&", "|", "^", "+", "-", "*", "/"}
	for _, op := range operators {
		for _, pattern := range []string{" " + op + " ", " " + op, op + " "} {
			idx := strings.Index(expr, pattern)
			if idx < 0 {
				continue
			}
			opPos := idx
			if pattern[0] == ' ' {
				opPos++
			}

			left := strings.TrimSpace(expr[:opPos])
			right := strings.TrimSpace(expr[opPos+len(op):])
			if left == "" || right == "" {
				continue
			}

			leftVal, err := e.evaluate(left, core, symbols)
			if err != nil {
				continue
			}
			rightVal, err := e.evaluate(right, core, symbols)
			if err != nil {
				continue
			}
			return applyOperator(leftVal, rightVal, op)
		}
	}

	return 0, fmt.Errorf("invalid expression: %s", expr)
}

func (e *ExpressionEvaluator) trySimpleEval(expr string, core *vm.ThreadCore, symbols map[string]uint32) (uint32, error) {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		addr, err := e.evaluate(strings.TrimSpace(expr[1:len(expr)-1]), core, symbols)
		if err != nil {
			return 0, err
		}
		return readWordChecked(core, addr)
	}

	if strings.HasPrefix(expr, "*") {
		addr, err := e.evaluate(strings.TrimSpace(expr[1:]), core, symbols)
		if err != nil {
			return 0, err
		}
		return readWordChecked(core, addr)
	}

	if strings.HasPrefix(expr, "$") {
		num, err := strconv.Atoi(expr[1:])
		if err != nil {
			return 0, fmt.Errorf("invalid value reference: %s", expr)
		}
		return e.GetValue(num)
	}

	if reg, ok := resolveRegisterName(expr); ok {
		return core.Regs[reg], nil
	}

	if addr, exists := symbols[expr]; exists {
		return addr, nil
	}

	return parseNumber(expr)
}

func readWordChecked(core *vm.ThreadCore, addr uint32) (uint32, error) {
	v, err := core.Machine.Memory.ReadWord(addr)
	if err != nil {
		return 0, fmt.Errorf("failed to read memory at 0x%08X: %w", addr, err)
	}
	return v, nil
}

// resolveRegisterName maps a case-insensitive register name (r0-r47, s, i,
// l, c, f, q) to its register-file index.
func resolveRegisterName(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "s":
		return vm.RegS, true
	case "i":
		return vm.RegI, true
	case "l":
		return vm.RegL, true
	case "c":
		return vm.RegC, true
	case "f":
		return vm.RegF, true
	case "q":
		return vm.RegQ, true
	}
	if strings.HasPrefix(name, "r") {
		n, err := strconv.Atoi(name[1:])
		if err == nil && n >= 0 && n < vm.RegS {
			return n, true
		}
	}
	return 0, false
}

func parseNumber(expr string) (uint32, error) {
	expr = strings.TrimSpace(expr)
	lower := strings.ToLower(expr)

	switch {
	case strings.HasPrefix(lower, "0x"):
		v, err := strconv.ParseUint(expr[2:], 16, 32)
		return uint32(v), err
	case strings.HasPrefix(lower, "0b"):
		v, err := strconv.ParseUint(expr[2:], 2, 32)
		return uint32(v), err
	case strings.HasPrefix(expr, "0") && len(expr) > 1:
		v, err := strconv.ParseUint(expr, 8, 32)
		return uint32(v), err
	default:
		v, err := strconv.ParseInt(expr, 10, 32)
		return uint32(v), err
	}
}

func applyOperator(left, right uint32, op string) (uint32, error) {
	switch op {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return left / right, nil
	case "&":
		return left & right, nil
	case "|":
		return left | right, nil
	case "^":
		return left ^ right, nil
	case "<<":
		return left << right, nil
	case ">>":
		return left >> right, nil
	default:
		return 0, fmt.Errorf("unknown operator: %s", op)
	}
}

// Reset clears the $-value history.
func (e *ExpressionEvaluator) Reset() {
	e.valueHistory = e.valueHistory[:0]
	e.valueNumber = 0
}
