package vm

// execMov copies a value between two operand locations without touching
// memory.
func (t *ThreadCore) execMov(s [3]byte) {
	t.WriteOperand(s[1], t.ReadOperand(s[0]))
}

// execLd loads the word at the address named by the first operand into the
// second.
func (t *ThreadCore) execLd(s [3]byte) {
	addr := t.ReadOperand(s[0])
	v := t.readWordGuarded(addr)
	t.WriteOperand(s[1], v)
}

// execSt stores the second operand's value at the address named by the
// first.
func (t *ThreadCore) execSt(s [3]byte) {
	addr := t.ReadOperand(s[0])
	v := t.ReadOperand(s[1])
	t.writeWordGuarded(addr, v)
}

// execLdb loads a single byte, zero-extended into the destination.
func (t *ThreadCore) execLdb(s [3]byte) {
	addr := t.ReadOperand(s[0])
	v := t.readByteGuarded(addr)
	t.WriteOperand(s[1], uint32(v))
}

// execStb stores the low byte of the second operand at the address named by
// the first; the upper 24 bits are discarded.
func (t *ThreadCore) execStb(s [3]byte) {
	addr := t.ReadOperand(s[0])
	v := t.ReadOperand(s[1])
	t.writeByteGuarded(addr, byte(v))
}
