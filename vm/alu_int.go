package vm

import "math/bits"

// execAddSub implements add/sub and their carry-aware cadd/csub variants.
// add/sub never read the carry register; cadd/csub gate the carry-in on
// FlagM, treating it as an enable bit rather than a fixed carry source.
func (t *ThreadCore) execAddSub(s [3]byte, sub, withCarry bool) {
	a := t.ReadOperand(s[0])
	b := t.ReadOperand(s[1])

	var carryIn uint32
	if withCarry {
		carryIn = t.carryIn()
	}

	var r, c uint32
	if sub {
		r, c = subBorrow(a, b, carryIn)
	} else {
		r, c = addCarry(a, b, carryIn)
	}

	t.WriteOperand(s[2], r)
	t.Regs.SetC(c)
	t.Regs.SetFlag(FlagC, c != 0)
}

// execMul implements unsigned mul: low 32 bits to the destination, high 32
// to C, FlagC set iff the high word is non-zero.
func (t *ThreadCore) execMul(s [3]byte) {
	a := t.ReadOperand(s[0])
	b := t.ReadOperand(s[1])
	hi, lo := bits.Mul32(a, b)
	t.WriteOperand(s[2], lo)
	t.Regs.SetC(hi)
	t.Regs.SetFlag(FlagC, hi != 0)
}

// execDivMod implements unsigned division/remainder. Division by zero never
// traps: it sets FlagL and leaves the destination unspecified (here: left
// unchanged).
func (t *ThreadCore) execDivMod(s [3]byte, mod bool) {
	a := t.ReadOperand(s[0])
	b := t.ReadOperand(s[1])
	if b == 0 {
		t.Regs.SetFlag(FlagL, true)
		return
	}
	t.Regs.SetFlag(FlagL, false)
	if mod {
		t.WriteOperand(s[2], a%b)
	} else {
		t.WriteOperand(s[2], a/b)
	}
}

func (t *ThreadCore) execCmpu(s [3]byte) {
	a := t.ReadOperand(s[0])
	b := t.ReadOperand(s[1])
	t.setCompareFlags(a == b, a < b)
}

func (t *ThreadCore) execBitwise2(s [3]byte, f func(a uint32) uint32) {
	a := t.ReadOperand(s[0])
	t.WriteOperand(s[1], f(a))
}

func (t *ThreadCore) execBitwise3(s [3]byte, f func(a, b uint32) uint32) {
	a := t.ReadOperand(s[0])
	b := t.ReadOperand(s[1])
	t.WriteOperand(s[2], f(a, b))
}

// execShift implements shl/shr/rol/ror and their wrapping w* counterparts.
// A shift amount >= 32 overflows: sets FlagC and deposits 0 (or the wrapped
// low bits for the w* variants) into the destination.
func (t *ThreadCore) execShift(s [3]byte, kind string, wrapping bool) {
	a := t.ReadOperand(s[0])
	n := t.ReadOperand(s[1])

	overflow := n >= 32
	if overflow && !wrapping {
		t.Regs.SetFlag(FlagC, true)
		t.WriteOperand(s[2], 0)
		return
	}
	n &= 31 // only the w* variants reach here with n >= 32; they wrap modulo 32

	var r uint32
	switch kind {
	case "shl":
		r = a << n
	case "shr":
		r = a >> n
	case "rol":
		r = bits.RotateLeft32(a, int(n))
	case "ror":
		r = bits.RotateLeft32(a, -int(n))
	}
	t.Regs.SetFlag(FlagC, overflow)
	t.WriteOperand(s[2], r)
}

// execAddSubI implements i32 add/sub and their carry-aware variants,
// sharing the same modulo-2^32 bit pattern as the unsigned path; overflow
// reporting is via FlagC exactly as the unsigned forms; imul overflow is
// reported the same way.
func (t *ThreadCore) execAddSubI(s [3]byte, sub, withCarry bool) {
	t.execAddSub(s, sub, withCarry)
}

func (t *ThreadCore) execImul(s [3]byte) {
	a := int32(t.ReadOperand(s[0]))
	b := int32(t.ReadOperand(s[1]))
	wide := int64(a) * int64(b)
	lo := uint32(wide)
	overflow := wide != int64(int32(lo))
	t.WriteOperand(s[2], lo)
	t.Regs.SetFlag(FlagC, overflow)
}

// execIdivImod implements truncating signed division/remainder: the
// quotient truncates toward zero, the remainder takes the sign of the
// dividend, matching Go's own integer division.
func (t *ThreadCore) execIdivImod(s [3]byte, mod bool) {
	a := int32(t.ReadOperand(s[0]))
	b := int32(t.ReadOperand(s[1]))
	if b == 0 {
		t.Regs.SetFlag(FlagL, true)
		return
	}
	t.Regs.SetFlag(FlagL, false)
	if mod {
		t.WriteOperand(s[2], uint32(a%b))
	} else {
		t.WriteOperand(s[2], uint32(a/b))
	}
}

func (t *ThreadCore) execCmpi(s [3]byte) {
	a := int32(t.ReadOperand(s[0]))
	b := int32(t.ReadOperand(s[1]))
	t.setCompareFlags(a == b, a < b)
}

func (t *ThreadCore) execAbsi(s [3]byte) {
	a := int32(t.ReadOperand(s[0]))
	if a < 0 {
		a = -a
	}
	t.WriteOperand(s[1], uint32(a))
}

func (t *ThreadCore) execPowi(s [3]byte) {
	a := int32(t.ReadOperand(s[0]))
	n := int32(t.ReadOperand(s[1]))
	r := int32(1)
	for i := int32(0); i < n; i++ {
		r *= a
	}
	t.WriteOperand(s[2], uint32(r))
}

// execItu/execUti are bitcasts, not value conversions.
func (t *ThreadCore) execItu(s [3]byte) {
	t.WriteOperand(s[1], t.ReadOperand(s[0]))
}

func (t *ThreadCore) execUti(s [3]byte) {
	t.WriteOperand(s[1], t.ReadOperand(s[0]))
}
