package vm

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// IODevice is the minimal surface outc/inc need from an attached device.
// The device package's concrete devices satisfy this structurally; vm never
// imports device, keeping the dependency one-directional.
type IODevice interface {
	ReadByte() (byte, bool)
	ReceiveByte(b byte)
}

// MachineContext is shared by every ThreadCore and device scheduler: the
// memory buffer, the thread registry, and the single atomic-op interlock.
// It outlives all ThreadCores; Shutdown waits for the thread count to reach
// zero before returning.
type MachineContext struct {
	Memory *Memory

	running atomic.Bool

	mu         sync.RWMutex
	threads    map[uint32]*ThreadCore
	threadCnt  atomic.Int32
	nextThread atomic.Uint32

	devMu   sync.RWMutex
	devices map[uint32]IODevice

	atomicLock atomic.Bool
}

// NewMachineContext creates a context over the given memory, running.
func NewMachineContext(mem *Memory) *MachineContext {
	m := &MachineContext{
		Memory:  mem,
		threads: make(map[uint32]*ThreadCore),
		devices: make(map[uint32]IODevice),
	}
	m.running.Store(true)
	m.nextThread.Store(1)
	return m
}

// RegisterDevice attaches a device under id for outc/inc lookup.
func (m *MachineContext) RegisterDevice(id uint32, d IODevice) {
	m.devMu.Lock()
	defer m.devMu.Unlock()
	m.devices[id] = d
}

// Device looks up an attached device by id.
func (m *MachineContext) Device(id uint32) (IODevice, bool) {
	m.devMu.RLock()
	defer m.devMu.RUnlock()
	d, ok := m.devices[id]
	return d, ok
}

// Running reports whether the machine's cooperative-cancellation flag is
// still set.
func (m *MachineContext) Running() bool {
	return m.running.Load()
}

// Thread looks up a core by id.
func (m *MachineContext) Thread(id uint32) (*ThreadCore, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.threads[id]
	return t, ok
}

// ThreadCount reports the number of cores that have not yet reached
// Terminated.
func (m *MachineContext) ThreadCount() int32 {
	return m.threadCnt.Load()
}

// Spawn creates a new ThreadCore under parentID, registers it, and starts
// its run loop on a new goroutine. Returns the new thread's id.
func (m *MachineContext) Spawn(parentID uint32, entryIP uint32, minAddr, maxAddr uint32, perms Permission) uint32 {
	id := m.nextThread.Add(1) - 1
	t := newThreadCore(id, parentID, m, minAddr, maxAddr, perms)
	t.Regs.SetI(entryIP)

	m.mu.Lock()
	m.threads[id] = t
	m.mu.Unlock()

	m.threadCnt.Add(1)
	go t.Run()
	return id
}

// threadTerminated removes tid's registry slot and decrements the thread
// count exactly once, called from the terminal transition of Run.
func (m *MachineContext) threadTerminated(tid uint32) {
	m.mu.Lock()
	delete(m.threads, tid)
	m.mu.Unlock()
	m.threadCnt.Add(-1)
}

// Shutdown clears the running flag so every core's run loop observes the
// request at its next iteration, then busy-waits (yielding) until the
// thread count reaches zero. Mirrors the reference Machine destructor.
func (m *MachineContext) Shutdown() {
	m.running.Store(false)
	for m.threadCnt.Load() > 0 {
		runtime.Gosched()
	}
}

// AtomicOp spin-acquires the global interlock, runs f(addr's current word),
// writes the result back, and releases the lock. It is the only
// synchronization primitive exposed across threads; all other memory
// traffic is unsynchronized by design.
func (m *MachineContext) AtomicOp(addr uint32, f func(uint32) uint32) error {
	backoff := 1
	for !m.atomicLock.CompareAndSwap(false, true) {
		for i := 0; i < backoff; i++ {
			runtime.Gosched()
		}
		if backoff < 1024 {
			backoff *= 2
		}
	}
	defer m.atomicLock.Store(false)

	cur, err := m.Memory.ReadWord(addr)
	if err != nil {
		return err
	}
	return m.Memory.WriteWord(addr, f(cur))
}
