package vm

// execCall implements the call protocol: the caller's frame pointer and the
// return address are pushed below the new frame, L becomes the new frame's
// base, and S grows past both pushed words.
func (t *ThreadCore) execCall(s [3]byte) {
	base := t.Regs.S()
	target := t.ReadOperand(s[0])
	retAddr := t.Regs.I()

	t.writeWordGuarded(base+4, t.Regs.L())
	t.writeWordGuarded(base+8, retAddr)
	t.Regs.SetL(base)
	t.Regs.SetS(base + 8)
	t.Regs.SetI(target)
}

// execRet reverses execCall: restores S and L from the current frame and
// resumes at the saved return address.
func (t *ThreadCore) execRet() {
	frame := t.Regs.L()
	savedL := t.readWordGuarded(frame + 4)
	retAddr := t.readWordGuarded(frame + 8)
	t.Regs.SetS(frame)
	t.Regs.SetL(savedL)
	t.Regs.SetI(retAddr)
}

// execEnter opens an inner frame without a call: only the frame pointer
// moves, for locals that don't need a return address.
func (t *ThreadCore) execEnter() {
	base := t.Regs.S()
	t.writeWordGuarded(base+4, t.Regs.L())
	t.Regs.SetL(base)
	t.Regs.SetS(base + 4)
}

// execLeave reverses execEnter.
func (t *ThreadCore) execLeave() {
	frame := t.Regs.L()
	savedL := t.readWordGuarded(frame + 4)
	t.Regs.SetS(frame)
	t.Regs.SetL(savedL)
}

// execDup duplicates the top stack word.
func (t *ThreadCore) execDup() {
	v := t.readWordGuarded(t.Regs.S())
	t.Regs.SetS(t.Regs.S() + 4)
	t.writeWordGuarded(t.Regs.S(), v)
}

// execOver copies the second-from-top stack word onto the top.
func (t *ThreadCore) execOver() {
	v := t.readWordGuarded(t.Regs.S() - 4)
	t.Regs.SetS(t.Regs.S() + 4)
	t.writeWordGuarded(t.Regs.S(), v)
}

// execSrl rotates the top three stack words left: [a b c] (c on top)
// becomes [b c a].
func (t *ThreadCore) execSrl() {
	s := t.Regs.S()
	a := t.readWordGuarded(s - 8)
	b := t.readWordGuarded(s - 4)
	c := t.readWordGuarded(s)
	t.writeWordGuarded(s-8, b)
	t.writeWordGuarded(s-4, c)
	t.writeWordGuarded(s, a)
}

// execSrr rotates the top three stack words right: [a b c] becomes [c a b].
func (t *ThreadCore) execSrr() {
	s := t.Regs.S()
	a := t.readWordGuarded(s - 8)
	b := t.readWordGuarded(s - 4)
	c := t.readWordGuarded(s)
	t.writeWordGuarded(s-8, c)
	t.writeWordGuarded(s-4, a)
	t.writeWordGuarded(s, b)
}

// execPshar pushes every general-purpose register onto the stack, low index
// first, for a full context save around a call the compiler can't prove is
// leaf.
func (t *ThreadCore) execPshar() {
	s := t.Regs.S()
	for i := uint32(0); i < RegS; i++ {
		s += 4
		t.writeWordGuarded(s, t.Regs[i])
	}
	t.Regs.SetS(s)
}

// execResar reverses execPshar.
func (t *ThreadCore) execResar() {
	s := t.Regs.S()
	for i := int32(RegS) - 1; i >= 0; i-- {
		t.Regs[i] = t.readWordGuarded(s)
		s -= 4
	}
	t.Regs.SetS(s)
}
