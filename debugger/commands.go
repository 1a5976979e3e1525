package debugger

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vm32/vm32/isa"
	"github.com/vm32/vm32/vm"
)

// namedRegs lists the register-file index to display-name mapping used by
// showRegisters and the TUI register panel.
var namedRegs = map[int]string{
	vm.RegS: "S", vm.RegI: "I", vm.RegL: "L",
	vm.RegC: "C", vm.RegF: "F", vm.RegQ: "Q",
}

func regDisplayName(idx int) string {
	if name, ok := namedRegs[idx]; ok {
		return name
	}
	return fmt.Sprintf("R%d", idx)
}

func (d *Debugger) cmdRun(args []string) error {
	ip := d.Core.Regs.I()
	d.Core.Regs = vm.RegisterFile{}
	d.Core.Regs.SetI(ip)
	d.Running = true
	d.StepMode = StepNone
	d.Println("Restarted from a zeroed register file (I still points where you left it via set).")
	return nil
}

func (d *Debugger) cmdContinue(args []string) error {
	if d.Core.State() == vm.ThreadTerminated {
		return fmt.Errorf("program is not running")
	}
	d.Running = true
	d.StepMode = StepNone
	d.Println("Continuing...")
	return nil
}

func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

func (d *Debugger) cmdNext(args []string) error {
	d.SetStepOver()
	return nil
}

func (d *Debugger) cmdFinish(args []string) error {
	d.SetStepOut()
	return nil
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address|label> [thread <id>] [if <condition>]")
	}
	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}

	rest := args[1:]
	var threadID uint32
	scoped := false
	if len(rest) > 1 && strings.ToLower(rest[0]) == "thread" {
		n, err := strconv.ParseUint(rest[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid thread id %q", rest[1])
		}
		threadID = uint32(n)
		scoped = true
		rest = rest[2:]
	}

	var condition string
	if len(rest) > 0 && strings.ToLower(rest[0]) == "if" {
		condition = strings.Join(rest[1:], " ")
	}

	var bp *Breakpoint
	if scoped {
		bp = d.Breakpoints.AddThreadBreakpoint(address, threadID, false, condition)
	} else {
		bp = d.Breakpoints.AddBreakpoint(address, false, condition)
	}

	switch {
	case scoped && condition != "":
		d.Printf("Breakpoint %d at 0x%08X (thread %d, condition: %s)\n", bp.ID, address, threadID, condition)
	case scoped:
		d.Printf("Breakpoint %d at 0x%08X (thread %d)\n", bp.ID, address, threadID)
	case condition != "":
		d.Printf("Breakpoint %d at 0x%08X (condition: %s)\n", bp.ID, address, condition)
	default:
		d.Printf("Breakpoint %d at 0x%08X\n", bp.ID, address)
	}
	return nil
}

func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <address|label>")
	}
	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.AddBreakpoint(address, true, "")
	d.Printf("Temporary breakpoint %d at 0x%08X\n", bp.ID, address)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <register|[address]>")
	}
	expression := strings.Join(args, " ")
	isRegister, register, address, err := d.parseWatchExpression(expression)
	if err != nil {
		return err
	}

	wp := d.Watchpoints.AddWatchpoint(WatchWrite, expression, address, isRegister, register)
	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.Core); err != nil {
		_ = d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}
	d.Printf("Watchpoint %d: %s\n", wp.ID, expression)
	return nil
}

func (d *Debugger) parseWatchExpression(expr string) (isRegister bool, register int, address uint32, err error) {
	expr = strings.TrimSpace(expr)

	if reg, ok := resolveRegisterName(expr); ok {
		return true, reg, 0, nil
	}

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		addr, err := d.ResolveAddress(strings.TrimSpace(expr[1 : len(expr)-1]))
		if err != nil {
			return false, 0, 0, err
		}
		return false, 0, addr, nil
	}

	addr, err := d.ResolveAddress(expr)
	if err != nil {
		return false, 0, 0, fmt.Errorf("invalid watch expression: %s", expr)
	}
	return false, 0, addr, nil
}

func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <expression>")
	}
	expression := strings.Join(args, " ")
	result, err := d.Evaluator.EvaluateExpression(expression, d.Core, d.Symbols)
	if err != nil {
		return err
	}
	if result > uint32(math.MaxInt32) {
		d.Printf("$%d = 0x%08X (out of int32 range: %d)\n", d.Evaluator.GetValueNumber(), result, result)
	} else {
		d.Printf("$%d = 0x%08X (%d)\n", d.Evaluator.GetValueNumber(), result, int32(result))
	}
	return nil
}

func (d *Debugger) cmdExamine(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: x[/nfu] <address>\n  n: count, f: format (x/d/u/o/t), u: unit (b/w)")
	}

	count := 1
	format := 'x'
	unit := 'w'
	addrArg := args[0]

	if strings.HasPrefix(args[0], "/") {
		formatStr := args[0][1:]
		if len(args) < 2 {
			return fmt.Errorf("missing address")
		}
		addrArg = args[1]

		i := 0
		for i < len(formatStr) && formatStr[i] >= '0' && formatStr[i] <= '9' {
			i++
		}
		if i > 0 {
			if n, err := strconv.Atoi(formatStr[:i]); err == nil {
				count = n
			}
			formatStr = formatStr[i:]
		}
		if len(formatStr) > 0 {
			format = rune(formatStr[0])
			formatStr = formatStr[1:]
		}
		if len(formatStr) > 0 {
			unit = rune(formatStr[0])
		}
	}

	address, err := d.ResolveAddress(addrArg)
	if err != nil {
		return err
	}

	d.Printf("0x%08X:", address)
	for i := 0; i < count; i++ {
		var value uint32
		var readErr error

		switch unit {
		case 'b':
			var b byte
			b, readErr = d.Core.Machine.Memory.ReadByte(address)
			value = uint32(b)
			address++
		default:
			value, readErr = d.Core.Machine.Memory.ReadWord(address)
			address += 4
		}
		if readErr != nil {
			return readErr
		}

		switch format {
		case 'd':
			d.Printf(" %d", int32(value))
		case 'u':
			d.Printf(" %d", value)
		case 'o':
			d.Printf(" %o", value)
		case 't':
			d.Printf(" %b", value)
		default:
			d.Printf(" 0x%08X", value)
		}
	}
	d.Println()
	return nil
}

func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|breakpoints|watchpoints|thread>")
	}
	switch strings.ToLower(args[0]) {
	case "registers", "reg", "r":
		return d.showRegisters()
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "watchpoints", "watch", "w":
		return d.showWatchpoints()
	case "thread", "t":
		return d.showThread()
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

func (d *Debugger) showRegisters() error {
	d.Println("General-purpose registers:")
	for row := 0; row < 8; row++ {
		var cols []string
		for col := 0; col < 6; col++ {
			idx := row*6 + col
			if idx >= vm.RegS {
				break
			}
			cols = append(cols, fmt.Sprintf("R%-2d=0x%08X", idx, d.Core.Regs[idx]))
		}
		if len(cols) > 0 {
			d.Println("  " + strings.Join(cols, "  "))
		}
	}

	d.Printf("S=0x%08X I=0x%08X L=0x%08X C=0x%08X F=0x%08X Q=0x%08X\n",
		d.Core.Regs.S(), d.Core.Regs.I(), d.Core.Regs.L(), d.Core.Regs.C(), d.Core.Regs.F(), d.Core.Regs.Q())
	d.Printf("Flags: %s\n", flagString(d.Core.Regs.F()))
	return nil
}

func flagString(f uint32) string {
	bits := []struct {
		mask uint32
		name byte
	}{
		{vm.FlagZ, 'Z'}, {vm.FlagS, 'S'}, {vm.FlagC, 'C'}, {vm.FlagL, 'L'}, {vm.FlagErr, 'E'},
	}
	out := make([]byte, len(bits))
	for i, b := range bits {
		if f&b.mask != 0 {
			out[i] = b.name
		} else {
			out[i] = '-'
		}
	}
	return string(out)
}

func (d *Debugger) showBreakpoints() error {
	breakpoints := d.Breakpoints.GetAllBreakpoints()
	if len(breakpoints) == 0 {
		d.Println("No breakpoints")
		return nil
	}
	d.Println("Breakpoints:")
	for _, bp := range breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}
		condition := ""
		if bp.Condition != "" {
			condition = fmt.Sprintf(" if %s", bp.Condition)
		}
		scope := "any thread"
		if !bp.AnyThread {
			scope = fmt.Sprintf("thread %d", bp.ThreadID)
		}
		d.Printf("  %d: 0x%08X [%s] %s%s%s (hit %d times, last by thread %d)\n",
			bp.ID, bp.Address, scope, status, temp, condition, bp.HitCount, bp.LastHitBy)
	}
	return nil
}

func (d *Debugger) showWatchpoints() error {
	watchpoints := d.Watchpoints.GetAllWatchpoints()
	if len(watchpoints) == 0 {
		d.Println("No watchpoints")
		return nil
	}
	d.Println("Watchpoints:")
	for _, wp := range watchpoints {
		status := "enabled"
		if !wp.Enabled {
			status = "disabled"
		}
		d.Printf("  %d: %s %s (hit %d times, last value: 0x%08X)\n", wp.ID, wp.Expression, status, wp.HitCount, wp.LastValue)
	}
	return nil
}

func (d *Debugger) showThread() error {
	d.Printf("Thread %d (parent %d): %s, I=0x%08X\n", d.Core.ID, d.Core.ParentID, d.Core.State(), d.Core.Regs.I())
	d.Printf("Access window: 0x%08X-0x%08X perms=%03b\n", d.Core.MinAddr, d.Core.MaxAddr, d.Core.Permissions)
	return nil
}

func (d *Debugger) cmdDisassemble(args []string) error {
	addr := d.Core.Regs.I()
	count := 10
	if len(args) > 0 {
		a, err := d.ResolveAddress(args[0])
		if err == nil {
			addr = a
		}
	}
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			count = n
		}
	}

	for i := 0; i < count; i++ {
		word, err := d.Core.Machine.Memory.ReadWord(addr)
		if err != nil {
			break
		}
		marker := "  "
		if addr == d.Core.Regs.I() {
			marker = "=>"
		}
		if d.Breakpoints.GetBreakpoint(addr, d.Core.ID) != nil {
			marker = "* "
		}
		d.Printf("%s 0x%08X: %s\n", marker, addr, disassemble(word))
		addr += 4 + 4*literalCount(vm.Decode(word))
	}
	return nil
}

// mnemonics inverts isa.Mnemonics for display.
var mnemonics = invertMnemonics()

func invertMnemonics() map[uint32]string {
	m := make(map[uint32]string, len(isa.Mnemonics))
	for name, op := range isa.Mnemonics {
		m[op] = name
	}
	return m
}

func disassemble(word uint32) string {
	dec := vm.Decode(word)
	name, ok := mnemonics[dec.Opcode]
	if !ok {
		return fmt.Sprintf("<unknown opcode %d>", dec.Opcode)
	}
	n := isa.OperandCount[dec.Opcode]
	if n == 0 {
		return name
	}
	specs := make([]string, n)
	for i := 0; i < n; i++ {
		specs[i] = specString(dec.Specs[i])
	}
	return name + " " + strings.Join(specs, ", ")
}

func specString(s byte) string {
	switch {
	case s == vm.SpecLiteral:
		return "<lit>"
	case s == vm.SpecStack:
		return "*"
	default:
		return "%" + regDisplayName(int(s))
	}
}

func (d *Debugger) cmdList(args []string) error {
	ip := d.Core.Regs.I()
	if source, exists := d.SourceMap[ip]; exists {
		d.Printf("=> 0x%08X: %s\n", ip, source)
	} else {
		d.Printf("=> 0x%08X: <no source>\n", ip)
	}
	for offset := uint32(4); offset <= 32; offset += 4 {
		addr := ip + offset
		if source, exists := d.SourceMap[addr]; exists {
			d.Printf("   0x%08X: %s\n", addr, source)
		}
	}
	return nil
}

func (d *Debugger) cmdSet(args []string) error {
	if len(args) < 3 || args[1] != "=" {
		return fmt.Errorf("usage: set <register|*address> = <value>")
	}
	target := strings.TrimSpace(args[0])
	value, err := d.Evaluator.EvaluateExpression(args[2], d.Core, d.Symbols)
	if err != nil {
		return err
	}

	if strings.HasPrefix(target, "*") {
		address, err := d.ResolveAddress(target[1:])
		if err != nil {
			return err
		}
		if err := d.Core.Machine.Memory.WriteWord(address, value); err != nil {
			return err
		}
		d.Printf("Memory 0x%08X set to 0x%08X\n", address, value)
		return nil
	}

	reg, ok := resolveRegisterName(target)
	if !ok {
		return fmt.Errorf("invalid target: %s", target)
	}
	d.Core.Regs[reg] = value
	d.Printf("Register %s set to 0x%08X\n", regDisplayName(reg), value)
	return nil
}

func (d *Debugger) cmdHelp(args []string) error {
	if len(args) > 0 {
		return d.showCommandHelp(args[0])
	}

	d.Println("vm32 debugger commands:")
	d.Println()
	d.Println("Execution control:")
	d.Println("  run (r)             - zero the register file and run from I")
	d.Println("  continue (c)        - continue execution")
	d.Println("  step (s, si)        - execute single instruction")
	d.Println("  next (n)            - step over call instructions")
	d.Println("  finish (fin)        - run until a breakpoint or watchpoint (no frame tracking)")
	d.Println()
	d.Println("Breakpoints:")
	d.Println("  break (b) <addr>    - set breakpoint")
	d.Println("  tbreak (tb) <addr>  - set temporary breakpoint")
	d.Println("  delete (d) [id]     - delete breakpoint(s)")
	d.Println("  enable/disable <id> - toggle a breakpoint")
	d.Println()
	d.Println("Watchpoints:")
	d.Println("  watch (w) <expr>    - watch a register or [address]")
	d.Println()
	d.Println("Inspection:")
	d.Println("  print (p) <expr>    - evaluate an expression")
	d.Println("  x[/nfu] <addr>      - examine memory")
	d.Println("  info (i) <what>     - registers, breakpoints, watchpoints, thread")
	d.Println("  disassemble <addr>  - disassemble from address")
	d.Println("  list (l)            - list source around I")
	d.Println()
	d.Println("Modification:")
	d.Println("  set <reg|*addr> = <val>")
	d.Println()
	d.Println("Type 'help <command>' for detailed help.")
	return nil
}

func (d *Debugger) showCommandHelp(cmd string) error {
	helpText := map[string]string{
		"break":       "break <address|label> [if <condition>]\n  Set a breakpoint, optionally gated on a condition evaluated each hit.",
		"step":        "step\n  Execute a single instruction.",
		"next":        "next\n  Step over a call instruction (single steps anything else).",
		"print":       "print <expression>\n  Evaluate and print an expression: registers, memory, symbols, arithmetic.",
		"x":           "x[/nfu] <address>\n  Examine memory. n: count, f: format (x/d/u/o/t), u: unit (b/w)",
		"info":        "info <registers|breakpoints|watchpoints|thread>\n  Display debugger and machine state.",
		"disassemble": "disassemble [address] [count]\n  Disassemble count instructions starting at address (default: I, 10).",
	}
	if help, exists := helpText[cmd]; exists {
		d.Println(help)
		return nil
	}
	return fmt.Errorf("no help available for command: %s", cmd)
}
