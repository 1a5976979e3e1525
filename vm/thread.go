package vm

import (
	"sync"
	"sync/atomic"
)

// ThreadCore owns one register file and runs the fetch-decode-execute loop
// against a shared MachineContext. Scheduling between cores is OS-scheduled
// (one goroutine per core); within a core, execution is strictly serial.
type ThreadCore struct {
	ID       uint32
	ParentID uint32

	Regs RegisterFile

	MinAddr, MaxAddr uint32
	Permissions      Permission

	Machine *MachineContext

	state atomic.Int32

	waitCounter uint32 // backs the `wait` countdown opcode

	mu       sync.Mutex
	children map[uint32]struct{}

	doneCh chan struct{}

	// deviceID names the device an interrupt arrived from, and the device
	// outc/inc address by default. Kept off the register file, which only
	// reserves six named slots (S, I, L, C, F, Q).
	deviceID uint32
}

// newThreadCore constructs a core in the Ready state. It does not register
// the core with the MachineContext or start its goroutine; callers use
// MachineContext.Spawn for that.
func newThreadCore(id, parentID uint32, m *MachineContext, minAddr, maxAddr uint32, perms Permission) *ThreadCore {
	t := &ThreadCore{
		ID:          id,
		ParentID:    parentID,
		Machine:     m,
		MinAddr:     minAddr,
		MaxAddr:     maxAddr,
		Permissions: perms,
		children:    make(map[uint32]struct{}),
		doneCh:      make(chan struct{}),
	}
	t.state.Store(int32(ThreadReady))
	return t
}

// NewDebugThreadCore builds a core the same way Spawn does, but leaves it
// unregistered and does not start its run loop — for a debugger that drives
// Step itself instead of letting Run free-run on a goroutine.
func NewDebugThreadCore(id, parentID uint32, m *MachineContext, minAddr, maxAddr uint32, perms Permission) *ThreadCore {
	return newThreadCore(id, parentID, m, minAddr, maxAddr, perms)
}

// State returns the core's current lifecycle state.
func (t *ThreadCore) State() ThreadState {
	return ThreadState(t.state.Load())
}

// RequestStop asks the core to terminate at the top of its next run-loop
// iteration. Cooperative: it never interrupts an in-flight instruction.
func (t *ThreadCore) RequestStop() {
	t.requestTerminate()
}

func (t *ThreadCore) requestTerminate() {
	t.state.CompareAndSwap(int32(ThreadRunning), int32(ThreadTerminating))
	t.state.CompareAndSwap(int32(ThreadReady), int32(ThreadTerminating))
}

// Wait blocks until the core reaches Terminated.
func (t *ThreadCore) Wait() {
	<-t.doneCh
}

func (t *ThreadCore) inWindow(addr, width uint32) bool {
	return addr >= t.MinAddr && addr <= t.MaxAddr-width && addr+width >= addr
}

// readByteGuarded reads a byte honoring the access window. Out-of-window
// reads set FlagErr and return 0 rather than panicking.
func (t *ThreadCore) readByteGuarded(addr uint32) byte {
	if !t.inWindow(addr, 1) || t.Permissions&PermRead == 0 {
		t.Regs.SetFlag(FlagErr, true)
		return 0
	}
	b, err := t.Machine.Memory.ReadByte(addr)
	if err != nil {
		t.Regs.SetFlag(FlagErr, true)
		return 0
	}
	return b
}

// writeByteGuarded writes a byte honoring the access window, dropping the
// write and setting FlagErr on violation.
func (t *ThreadCore) writeByteGuarded(addr uint32, v byte) {
	if !t.inWindow(addr, 1) || t.Permissions&PermWrite == 0 {
		t.Regs.SetFlag(FlagErr, true)
		return
	}
	if err := t.Machine.Memory.WriteByte(addr, v); err != nil {
		t.Regs.SetFlag(FlagErr, true)
	}
}

func (t *ThreadCore) readWordGuarded(addr uint32) uint32 {
	if !t.inWindow(addr, 4) || t.Permissions&PermRead == 0 {
		t.Regs.SetFlag(FlagErr, true)
		return 0
	}
	w, err := t.Machine.Memory.ReadWord(addr)
	if err != nil {
		t.Regs.SetFlag(FlagErr, true)
		return 0
	}
	return w
}

func (t *ThreadCore) writeWordGuarded(addr uint32, v uint32) {
	if !t.inWindow(addr, 4) || t.Permissions&PermWrite == 0 {
		t.Regs.SetFlag(FlagErr, true)
		return
	}
	if err := t.Machine.Memory.WriteWord(addr, v); err != nil {
		t.Regs.SetFlag(FlagErr, true)
	}
}

// IsChildOf reports whether tid is an ancestor of t, walking the registry by
// id rather than by strong reference, avoiding ownership cycles in the
// thread registry.
func (t *ThreadCore) IsChildOf(tid uint32) bool {
	id := t.ParentID
	for id != 0 {
		parent, ok := t.Machine.Thread(id)
		if !ok {
			return false
		}
		if id == tid {
			return true
		}
		id = parent.ParentID
	}
	return id == tid
}

// IsParentOf reports whether tid names a descendant of t.
func (t *ThreadCore) IsParentOf(tid uint32) bool {
	child, ok := t.Machine.Thread(tid)
	if !ok {
		return false
	}
	return child.IsChildOf(t.ID)
}

// Run executes the fetch-decode-execute loop until the core is asked to
// stop or the MachineContext's running flag is cleared. It is invoked on
// its own goroutine by MachineContext.Spawn.
func (t *ThreadCore) Run() {
	t.state.CompareAndSwap(int32(ThreadReady), int32(ThreadRunning))
	for {
		if t.state.Load() == int32(ThreadTerminating) || !t.Machine.Running() {
			break
		}
		t.Step()
	}
	t.state.Store(int32(ThreadTerminated))
	close(t.doneCh)
	t.Machine.threadTerminated(t.ID)
}

// Step executes exactly one instruction: fetch, decode, resolve operands,
// execute, update flags/IP. There are no suspension points inside a step.
//
// I is advanced past the instruction word before execute runs, landing on
// the first inline literal (if any); each literal operand then consumes
// the word at I and advances I past it in turn. A taken branch or call
// overwrites I with its target afterward.
func (t *ThreadCore) Step() {
	word := t.readWordGuarded(t.Regs.I())
	t.Regs.SetI(t.Regs.I() + 4)
	dec := Decode(word)
	t.execute(dec)

	if t.waitCounter > 0 {
		t.waitCounter--
		if t.waitCounter == 0 {
			t.TriggerInterrupt(CauseTimer, 0)
		}
	}
}
