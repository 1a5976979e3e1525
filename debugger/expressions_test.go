package debugger

import (
	"testing"

	"github.com/vm32/vm32/vm"
)

func newTestCore(t *testing.T) *vm.ThreadCore {
	t.Helper()
	mem := vm.NewMemory(0x10000)
	machine := vm.NewMachineContext(mem)
	return vm.NewDebugThreadCore(0, 0, machine, 0, mem.Size(), vm.PermRead|vm.PermWrite|vm.PermExecute)
}

func TestExpressionEvaluator_Literal(t *testing.T) {
	e := NewExpressionEvaluator()
	core := newTestCore(t)

	val, err := e.EvaluateExpression("0x2A", core, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 42 {
		t.Errorf("expected 42, got %d", val)
	}
}

func TestExpressionEvaluator_Register(t *testing.T) {
	e := NewExpressionEvaluator()
	core := newTestCore(t)
	core.Regs[3] = 0x1000

	val, err := e.EvaluateExpression("r3", core, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 0x1000 {
		t.Errorf("expected 0x1000, got 0x%X", val)
	}
}

func TestExpressionEvaluator_NamedRegister(t *testing.T) {
	e := NewExpressionEvaluator()
	core := newTestCore(t)
	core.Regs.SetS(0x2000)

	val, err := e.EvaluateExpression("s", core, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 0x2000 {
		t.Errorf("expected 0x2000, got 0x%X", val)
	}
}

func TestExpressionEvaluator_Symbol(t *testing.T) {
	e := NewExpressionEvaluator()
	core := newTestCore(t)
	symbols := map[string]uint32{"start": 0x8E000}

	val, err := e.EvaluateExpression("start", core, symbols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 0x8E000 {
		t.Errorf("expected 0x8E000, got 0x%X", val)
	}
}

func TestExpressionEvaluator_MemoryDereference(t *testing.T) {
	e := NewExpressionEvaluator()
	core := newTestCore(t)
	if err := core.Machine.Memory.WriteWord(0x100, 0xDEADBEEF); err != nil {
		t.Fatalf("setup write failed: %v", err)
	}

	val, err := e.EvaluateExpression("[0x100]", core, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 0xDEADBEEF {
		t.Errorf("expected 0xDEADBEEF, got 0x%X", val)
	}
}

func TestExpressionEvaluator_BinaryOp(t *testing.T) {
	e := NewExpressionEvaluator()
	core := newTestCore(t)
	core.Regs[0] = 10
	core.Regs[1] = 5

	val, err := e.EvaluateExpression("r0 + r1", core, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 15 {
		t.Errorf("expected 15, got %d", val)
	}
}

func TestExpressionEvaluator_DivisionByZero(t *testing.T) {
	e := NewExpressionEvaluator()
	core := newTestCore(t)

	if _, err := e.EvaluateExpression("1 / 0", core, nil); err == nil {
		t.Error("expected division by zero error")
	}
}

func TestExpressionEvaluator_ValueHistory(t *testing.T) {
	e := NewExpressionEvaluator()
	core := newTestCore(t)

	if _, err := e.EvaluateExpression("5", core, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.GetValueNumber() != 1 {
		t.Errorf("expected value number 1, got %d", e.GetValueNumber())
	}

	val, err := e.GetValue(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 5 {
		t.Errorf("expected 5, got %d", val)
	}

	if _, err := e.GetValue(99); err == nil {
		t.Error("expected error for out-of-range value")
	}
}

func TestExpressionEvaluator_Evaluate_Condition(t *testing.T) {
	e := NewExpressionEvaluator()
	core := newTestCore(t)
	core.Regs[0] = 1

	ok, err := e.Evaluate("r0", core, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected nonzero register to evaluate true")
	}

	core.Regs[0] = 0
	ok, err = e.Evaluate("r0", core, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected zero register to evaluate false")
	}
}

func TestResolveRegisterName(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
		idx  int
	}{
		{"r0", true, 0},
		{"R47", true, 47},
		{"r48", false, 0},
		{"s", true, vm.RegS},
		{"i", true, vm.RegI},
		{"q", true, vm.RegQ},
		{"bogus", false, 0},
	}
	for _, c := range cases {
		idx, ok := resolveRegisterName(c.name)
		if ok != c.ok {
			t.Errorf("%s: expected ok=%v, got %v", c.name, c.ok, ok)
			continue
		}
		if ok && idx != c.idx {
			t.Errorf("%s: expected index %d, got %d", c.name, c.idx, idx)
		}
	}
}
