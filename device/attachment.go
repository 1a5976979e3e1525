package device

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Identified devices present a fixed textual id before any live state, on
// the first drain of their inbound cursor.
type Identified interface {
	Identifier() string
}

// Attachment pairs a Device with the four DMA cursors naming the memory
// slice it drains to and fills from, protected by a reader/writer lock
// since the cursors are touched by two scheduler goroutines plus whatever
// thread re-arms a transfer.
type Attachment struct {
	Device Device

	mem   Memory
	sink  InterruptSink
	alive atomic.Bool

	mu       sync.RWMutex
	readPtr  uint32
	readLen  uint32
	writePtr uint32
	writeLen uint32
}

// NewAttachment wires a device to memory and an interrupt sink and starts
// its two scheduler goroutines.
func NewAttachment(d Device, mem Memory, sink InterruptSink) *Attachment {
	a := &Attachment{Device: d, mem: mem, sink: sink}
	a.alive.Store(true)
	go a.drainInbound()
	go a.drainOutbound()
	return a
}

// Detach stops both scheduler goroutines at their next poll.
func (a *Attachment) Detach() {
	a.alive.Store(false)
}

// ArmRead points the inbound cursor (device -> memory) at ptr for n bytes.
func (a *Attachment) ArmRead(ptr, n uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.readPtr, a.readLen = ptr, n
}

// ArmWrite points the outbound cursor (memory -> device) at ptr for n bytes.
func (a *Attachment) ArmWrite(ptr, n uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.writePtr, a.writeLen = ptr, n
}

func identifierFrame(id string) [16]byte {
	var frame [16]byte
	copy(frame[:], id)
	return frame
}

// drainInbound moves bytes from the device into memory at read_ptr,
// advancing the cursor and firing the completion interrupt when read_len
// reaches zero. The identifier frame is served first, byte by byte, ahead
// of live device state.
func (a *Attachment) drainInbound() {
	var ident [16]byte
	identPos := 0
	identDone := false

	if named, ok := a.Device.(Identified); ok {
		ident = identifierFrame(named.Identifier())
	} else {
		identDone = true
	}

	for a.alive.Load() {
		a.mu.Lock()
		if a.readLen == 0 {
			a.mu.Unlock()
			runtime.Gosched()
			continue
		}
		ptr := a.readPtr

		var b byte
		if !identDone {
			b = ident[identPos]
			identPos++
			if identPos == len(ident) {
				identDone = true
			}
		} else {
			var ok bool
			b, ok = a.Device.ReadByte()
			if !ok {
				a.mu.Unlock()
				runtime.Gosched()
				continue
			}
		}

		a.readPtr++
		a.readLen--
		done := a.readLen == 0
		a.mu.Unlock()

		if err := a.mem.WriteByte(ptr, b); err != nil {
			continue
		}
		if done && a.sink != nil {
			a.sink.TriggerInterrupt(CauseDeviceIO, a.Device.ID())
		}
	}
}

// drainOutbound moves bytes from memory at write_ptr into the device,
// firing the completion interrupt when write_len reaches zero.
func (a *Attachment) drainOutbound() {
	for a.alive.Load() {
		a.mu.Lock()
		if a.writeLen == 0 {
			a.mu.Unlock()
			runtime.Gosched()
			continue
		}
		ptr := a.writePtr
		a.writePtr++
		a.writeLen--
		done := a.writeLen == 0
		a.mu.Unlock()

		b, err := a.mem.ReadByte(ptr)
		if err != nil {
			continue
		}
		a.Device.ReceiveByte(b)

		if done && a.sink != nil {
			a.sink.TriggerInterrupt(CauseDeviceIO, a.Device.ID())
		}
	}
}
