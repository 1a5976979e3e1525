package debugger

import (
	"testing"

	"github.com/vm32/vm32/vm"
)

func newTestDebugger(t *testing.T) *Debugger {
	t.Helper()
	return NewDebugger(newTestCore(t))
}

func TestTUI_FindSymbolForAddress(t *testing.T) {
	dbg := newTestDebugger(t)
	dbg.LoadSymbols(map[string]uint32{"start": 0x8E000, "loop": 0x8E010})

	tui := NewTUI(dbg)

	if sym := tui.findSymbolForAddress(0x8E010); sym != "loop" {
		t.Errorf("expected 'loop', got %q", sym)
	}
	if sym := tui.findSymbolForAddress(0xDEAD); sym != "" {
		t.Errorf("expected no symbol, got %q", sym)
	}
}

func TestTUI_UpdateRegisterView(t *testing.T) {
	dbg := newTestDebugger(t)
	dbg.Core.Regs[0] = 0x11111111
	dbg.Core.Regs.SetS(0x2000)
	dbg.Core.Regs.SetFlag(vm.FlagZ, true)

	tui := NewTUI(dbg)
	tui.UpdateRegisterView()

	text := tui.RegisterView.GetText(true)
	if text == "" {
		t.Fatal("expected non-empty register view text")
	}
}

func TestTUI_UpdateDisassemblyView_NoPanic(t *testing.T) {
	dbg := newTestDebugger(t)
	dbg.Core.Regs.SetI(0x8E000)

	tui := NewTUI(dbg)
	tui.UpdateDisassemblyView()

	if tui.DisassemblyView.GetText(true) == "" {
		t.Fatal("expected non-empty disassembly view text")
	}
}

func TestTUI_UpdateBreakpointsView_Empty(t *testing.T) {
	dbg := newTestDebugger(t)
	tui := NewTUI(dbg)
	tui.UpdateBreakpointsView()

	text := tui.BreakpointsView.GetText(true)
	if text == "" {
		t.Fatal("expected placeholder text for no breakpoints")
	}
}

func TestTUI_UpdateBreakpointsView_WithEntries(t *testing.T) {
	dbg := newTestDebugger(t)
	dbg.Breakpoints.AddBreakpoint(0x8E000, false, "")
	dbg.Watchpoints.AddWatchpoint(WatchWrite, "r0", 0, true, 0)

	tui := NewTUI(dbg)
	tui.UpdateBreakpointsView()

	text := tui.BreakpointsView.GetText(true)
	if text == "" {
		t.Fatal("expected non-empty breakpoints view text")
	}
}
