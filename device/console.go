package device

import "sync"

// Console is a byte-stream device: bytes the program writes are appended to
// an internal buffer (typically drained to a terminal by the attacher),
// bytes the host queues with Write are handed to the program in FIFO order.
type Console struct {
	id uint32

	mu  sync.Mutex
	out []byte
	in  []byte
}

// NewConsole constructs a console device with the given attachment id.
func NewConsole(id uint32) *Console {
	return &Console{id: id}
}

func (c *Console) ID() uint32 { return c.id }

func (c *Console) Identifier() string { return "CONSOLE" }

// ReadByte is called by the inbound scheduler to pull the next byte the
// host queued with Write, for the running program to read via inc.
func (c *Console) ReadByte() (byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.out) == 0 {
		return 0, false
	}
	b := c.out[0]
	c.out = c.out[1:]
	return b, true
}

// ReceiveByte is called by the outbound scheduler delivering a byte the
// program wrote via outc.
func (c *Console) ReceiveByte(b byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.in = append(c.in, b)
}

// Write queues bytes the host wants the running program to read next.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, p...)
	return len(p), nil
}

// Drain returns and clears whatever the program has written so far.
func (c *Console) Drain() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.in
	c.in = nil
	return b
}
