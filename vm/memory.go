package vm

import "fmt"

// Memory is a single contiguous byte buffer shared by every ThreadCore and
// device scheduler in a MachineContext. Word access is big-endian on the
// wire, so image bytes are byte-exact regardless of host endianness or the
// assembler output that produced them.
type Memory struct {
	buf []byte
}

// NewMemory allocates a zero-filled buffer of the given size.
func NewMemory(size uint32) *Memory {
	return &Memory{buf: make([]byte, size)}
}

// Size returns the total number of addressable bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.buf))
}

// Bytes exposes the raw buffer, e.g. for the image loader and device DMA.
func (m *Memory) Bytes() []byte {
	return m.buf
}

func (m *Memory) inBounds(addr uint32, width uint32) bool {
	return addr <= m.Size()-width && addr+width >= addr
}

// ReadByte returns the byte at addr, or an error if addr is out of bounds.
// Callers within the instruction engine go through ThreadCore's access
// window instead; this is the raw, unguarded primitive devices and the
// loader use directly.
func (m *Memory) ReadByte(addr uint32) (byte, error) {
	if addr >= m.Size() {
		return 0, fmt.Errorf("memory: read out of bounds at 0x%08X", addr)
	}
	return m.buf[addr], nil
}

// WriteByte stores a byte at addr.
func (m *Memory) WriteByte(addr uint32, v byte) error {
	if addr >= m.Size() {
		return fmt.Errorf("memory: write out of bounds at 0x%08X", addr)
	}
	m.buf[addr] = v
	return nil
}

// ReadWord reads a big-endian 32-bit word starting at addr.
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	if !m.inBounds(addr, 4) {
		return 0, fmt.Errorf("memory: word read out of bounds at 0x%08X", addr)
	}
	b := m.buf
	return uint32(b[addr])<<24 | uint32(b[addr+1])<<16 | uint32(b[addr+2])<<8 | uint32(b[addr+3]), nil
}

// WriteWord stores a big-endian 32-bit word starting at addr.
func (m *Memory) WriteWord(addr uint32, v uint32) error {
	if !m.inBounds(addr, 4) {
		return fmt.Errorf("memory: word write out of bounds at 0x%08X", addr)
	}
	b := m.buf
	b[addr] = byte(v >> 24)
	b[addr+1] = byte(v >> 16)
	b[addr+2] = byte(v >> 8)
	b[addr+3] = byte(v)
	return nil
}
