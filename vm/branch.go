package vm

// execBranch implements the unconditional and conditional jumps. The target
// operand is always resolved via ReadOperand, so an inline-literal target
// advances I exactly as any other literal operand would whether or not the
// branch is taken; a taken branch then overwrites I with the target address.
func (t *ThreadCore) execBranch(s [3]byte, cond func() bool) {
	target := t.ReadOperand(s[0])
	if cond == nil || cond() {
		t.Regs.SetI(target)
	}
}

func (t *ThreadCore) condZ() bool  { return t.Regs.FlagSet(FlagZ) }
func (t *ThreadCore) condNz() bool { return !t.Regs.FlagSet(FlagZ) }
func (t *ThreadCore) condL() bool  { return t.Regs.FlagSet(FlagS) }
func (t *ThreadCore) condNl() bool { return !t.Regs.FlagSet(FlagS) }
func (t *ThreadCore) condC() bool  { return t.Regs.FlagSet(FlagC) }
func (t *ThreadCore) condNc() bool { return !t.Regs.FlagSet(FlagC) }
