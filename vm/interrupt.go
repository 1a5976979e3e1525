package vm

// TriggerInterrupt records the cause and the originating device, then
// enters the fixed interrupt handler using the same frame-building sequence
// as a call, so iret can reverse it with execRet.
func (t *ThreadCore) TriggerInterrupt(cause uint32, deviceID uint32) {
	t.Regs.SetQ(cause)
	t.deviceID = deviceID

	base := t.Regs.S()
	t.writeWordGuarded(base+4, t.Regs.L())
	t.writeWordGuarded(base+8, t.Regs.I())
	t.Regs.SetL(base)
	t.Regs.SetS(base + 8)
	t.Regs.SetI(InterruptHandler)
}

// execTrap raises a software interrupt: operand 0 is the cause, operand 1
// the originating device id.
func (t *ThreadCore) execTrap(s [3]byte) {
	cause := t.ReadOperand(s[0])
	dev := t.ReadOperand(s[1])
	t.TriggerInterrupt(cause, dev)
}

// execWait arms the timer countdown; Step decrements it once per
// instruction and fires CauseTimer when it reaches zero.
func (t *ThreadCore) execWait(s [3]byte) {
	t.waitCounter = t.ReadOperand(s[0])
}

// execIret reverses the frame TriggerInterrupt built and clears the cause
// register.
func (t *ThreadCore) execIret() {
	t.execRet()
	t.Regs.SetQ(0)
}

// execOutc writes the low byte of the operand to the device named by D.
func (t *ThreadCore) execOutc(s [3]byte) {
	v := t.ReadOperand(s[0])
	if d, ok := t.Machine.Device(t.deviceID); ok {
		d.ReceiveByte(byte(v))
	}
}

// execInc reads one byte from the device named by D into the destination
// operand, zero-extended. No data available reads as 0.
func (t *ThreadCore) execInc(s [3]byte) {
	var b byte
	if d, ok := t.Machine.Device(t.deviceID); ok {
		b, _ = d.ReadByte()
	}
	t.WriteOperand(s[0], uint32(b))
}

// execCas performs a compare-and-swap at the address named by operand 0:
// if the current word equals the expected value in operand 1, it is
// replaced by operand 2's value; operand 2 is then overwritten with the
// word that was actually there beforehand, and Z reports success.
func (t *ThreadCore) execCas(s [3]byte) {
	addr := t.ReadOperand(s[0])
	expected := t.ReadOperand(s[1])
	newVal := t.ReadOperand(s[2])

	var old uint32
	var swapped bool
	err := t.Machine.AtomicOp(addr, func(cur uint32) uint32 {
		old = cur
		if cur == expected {
			swapped = true
			return newVal
		}
		return cur
	})
	if err != nil {
		t.Regs.SetFlag(FlagErr, true)
		return
	}
	t.WriteOperand(s[2], old)
	t.Regs.SetFlag(FlagZ, swapped)
}

// execDinfo is a runtime no-op; the debug-info table it anchors is built by
// the assembler from the instruction's address alone.
func (t *ThreadCore) execDinfo() {}

// execHalt stops the core at the next Step boundary.
func (t *ThreadCore) execHalt() {
	t.requestTerminate()
}
