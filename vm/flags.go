package vm

import "math/bits"

// addCarry performs a+b+carryIn over 32 bits, returning the wrapped result
// and the carry out. Used by add (carryIn always 0) and cadd (carryIn gated
// on FlagM, the carry-in enable bit).
func addCarry(a, b, carryIn uint32) (uint32, uint32) {
	sum, carry := bits.Add32(a, b, carryIn)
	return sum, uint32(carry)
}

// subBorrow performs a-b-borrowIn over 32 bits, returning the wrapped
// result and the borrow out.
func subBorrow(a, b, borrowIn uint32) (uint32, uint32) {
	diff, borrow := bits.Sub32(a, b, borrowIn)
	return diff, uint32(borrow)
}

// setCompareFlags writes Z and S from an unsigned or signed comparison,
// preserving every other flag bit.
func (t *ThreadCore) setCompareFlags(equal, less bool) {
	t.Regs.SetFlag(FlagZ, equal)
	t.Regs.SetFlag(FlagS, less)
}

// carryIn returns the carry register's low bit if FlagM (carry-in enable)
// is set, else 0. Used exclusively by cadd/csub/caddi/csubi.
func (t *ThreadCore) carryIn() uint32 {
	if t.Regs.FlagSet(FlagM) {
		return t.Regs.C() & 1
	}
	return 0
}
