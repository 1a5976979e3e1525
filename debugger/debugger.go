// Package debugger is a line-oriented (and optional tview TUI) front end
// for single-stepping a ThreadCore outside its normal goroutine-driven run
// loop: breakpoints, watchpoints, register/memory inspection, and a flat
// disassembly view.
package debugger

import (
	"fmt"
	"strings"

	"github.com/vm32/vm32/isa"
	"github.com/vm32/vm32/vm"
)

// Debugger holds everything needed to drive one ThreadCore by hand.
type Debugger struct {
	Core *vm.ThreadCore

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory
	Evaluator   *ExpressionEvaluator

	Running           bool
	StepMode          StepMode
	StepOverCallDepth int
	StepOverIP        uint32

	Symbols   map[string]uint32
	SourceMap map[uint32]string

	LastCommand string
	Output      strings.Builder
}

// StepMode is the debugger's current single-step strategy.
type StepMode int

const (
	StepNone StepMode = iota
	StepSingle
	StepOver
	StepOut
)

// NewDebugger wraps core for interactive single-stepping. core should have
// been built with vm.NewDebugThreadCore, not Spawn — Spawn starts a
// goroutine that would race the debugger's own calls to Step.
func NewDebugger(core *vm.ThreadCore) *Debugger {
	return &Debugger{
		Core:        core,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
		Evaluator:   NewExpressionEvaluator(),
		Symbols:     make(map[string]uint32),
		SourceMap:   make(map[uint32]string),
	}
}

// LoadSymbols installs a label table for address resolution and display.
func (d *Debugger) LoadSymbols(symbols map[string]uint32) {
	d.Symbols = symbols
}

// LoadSourceMap installs an address-to-source-line table for list/tui views.
func (d *Debugger) LoadSourceMap(sourceMap map[uint32]string) {
	d.SourceMap = sourceMap
}

// ResolveAddress resolves a label to an address, or parses addrStr as a
// numeric address.
func (d *Debugger) ResolveAddress(addrStr string) (uint32, error) {
	if addr, exists := d.Symbols[addrStr]; exists {
		return addr, nil
	}

	var addr uint32
	if strings.HasPrefix(addrStr, "0x") || strings.HasPrefix(addrStr, "0X") {
		if _, err := fmt.Sscanf(addrStr, "0x%x", &addr); err != nil {
			return 0, fmt.Errorf("invalid address: %s", addrStr)
		}
		return addr, nil
	}
	if _, err := fmt.Sscanf(addrStr, "%d", &addr); err != nil {
		return 0, fmt.Errorf("invalid address: %s", addrStr)
	}
	return addr, nil
}

// ExecuteCommand parses and dispatches one command line.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine, d.Core.Regs.I())
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)

	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	case "watch", "w":
		return d.cmdWatch(args)

	case "print", "p":
		return d.cmdPrint(args)
	case "x":
		return d.cmdExamine(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "disassemble", "disas":
		return d.cmdDisassemble(args)
	case "list", "l":
		return d.cmdList(args)

	case "set":
		return d.cmdSet(args)

	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak reports whether the core should stop before its next Step,
// and why.
func (d *Debugger) ShouldBreak() (bool, string) {
	ip := d.Core.Regs.I()

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"
	case StepOver:
		if ip == d.StepOverIP {
			d.StepMode = StepNone
			return true, "step over complete"
		}
	case StepOut:
		// no call-stack tracking: only a breakpoint or watchpoint below stops it
	case StepNone:
	}

	if bp := d.Breakpoints.GetBreakpoint(ip, d.Core.ID); bp != nil {
		if !bp.Enabled {
			return false, ""
		}
		if bp.Condition != "" {
			ok, err := d.Evaluator.Evaluate(bp.Condition, d.Core, d.Symbols)
			if err != nil {
				return true, fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
			}
			if !ok {
				return false, ""
			}
		}
		d.Breakpoints.ProcessHit(ip, d.Core.ID)
		return true, fmt.Sprintf("breakpoint %d hit by thread %d", bp.ID, d.Core.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.Core); wp != nil && changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return false, ""
}

// GetOutput drains and returns the command output buffer.
func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}

// Printf appends formatted text to the output buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println appends a line to the output buffer.
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}

// SetStepOver arranges to stop after a call instruction returns, or falls
// back to a plain single step if the current instruction isn't a call.
func (d *Debugger) SetStepOver() {
	word, err := d.Core.Machine.Memory.ReadWord(d.Core.Regs.I())
	if err != nil {
		d.StepMode = StepSingle
		d.Running = true
		return
	}

	dec := vm.Decode(word)
	if dec.Opcode == isa.Call {
		d.StepOverIP = d.Core.Regs.I() + 4 + 4*literalCount(dec)
		d.StepMode = StepOver
	} else {
		d.StepMode = StepSingle
	}
	d.Running = true
}

// SetStepOut resumes execution in StepOut mode. No frame is tracked, so the
// return of the current frame does not stop it; only a breakpoint or a
// watchpoint does.
func (d *Debugger) SetStepOut() {
	d.StepMode = StepOut
	d.Running = true
}

func literalCount(dec vm.DecodedWord) uint32 {
	n := uint32(0)
	for _, s := range dec.Specs {
		if s == vm.SpecLiteral {
			n++
		}
	}
	return n
}
