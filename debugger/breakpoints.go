package debugger

import (
	"fmt"
	"sync"
)

// Breakpoint represents a breakpoint at a specific address. AnyThread
// breakpoints fire for every ThreadCore that reaches Address; a
// thread-scoped breakpoint fires only for the ThreadCore whose ID equals
// ThreadID, since a MachineContext can run several threads concurrently
// against shared memory and a breakpoint meant for one worker shouldn't
// stop its siblings.
type Breakpoint struct {
	ID        int
	Address   uint32
	AnyThread bool
	ThreadID  uint32
	Enabled   bool
	Temporary bool   // Auto-delete after first hit
	Condition string // Optional condition expression
	HitCount  int    // Number of times this breakpoint was hit
	LastHitBy uint32 // ID of the thread that last hit it
}

// MatchesThread reports whether the breakpoint should be considered for a
// core with the given thread ID.
func (bp *Breakpoint) MatchesThread(threadID uint32) bool {
	return bp.AnyThread || bp.ThreadID == threadID
}

// BreakpointManager manages all breakpoints
type BreakpointManager struct {
	mu sync.RWMutex
	// breakpoints is keyed by address; an address can hold several
	// breakpoints when more than one is scoped to a different thread.
	breakpoints map[uint32][]*Breakpoint
	nextID      int
}

// NewBreakpointManager creates a new breakpoint manager
func NewBreakpointManager() *BreakpointManager {
	return &BreakpointManager{
		breakpoints: make(map[uint32][]*Breakpoint),
		nextID:      1,
	}
}

// AddBreakpoint adds a breakpoint at address that fires for any thread. If
// an any-thread breakpoint already exists at address, it is updated in
// place rather than duplicated.
func (bm *BreakpointManager) AddBreakpoint(address uint32, temporary bool, condition string) *Breakpoint {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	for _, bp := range bm.breakpoints[address] {
		if bp.AnyThread {
			bp.Enabled = true
			bp.Temporary = temporary
			bp.Condition = condition
			return bp
		}
	}

	bp := &Breakpoint{
		ID:        bm.nextID,
		Address:   address,
		AnyThread: true,
		Enabled:   true,
		Temporary: temporary,
		Condition: condition,
	}

	bm.breakpoints[address] = append(bm.breakpoints[address], bp)
	bm.nextID++

	return bp
}

// AddThreadBreakpoint adds a breakpoint scoped to a single thread ID,
// leaving any existing any-thread or other-thread breakpoint at the same
// address untouched.
func (bm *BreakpointManager) AddThreadBreakpoint(address, threadID uint32, temporary bool, condition string) *Breakpoint {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	for _, bp := range bm.breakpoints[address] {
		if !bp.AnyThread && bp.ThreadID == threadID {
			bp.Enabled = true
			bp.Temporary = temporary
			bp.Condition = condition
			return bp
		}
	}

	bp := &Breakpoint{
		ID:        bm.nextID,
		Address:   address,
		ThreadID:  threadID,
		Enabled:   true,
		Temporary: temporary,
		Condition: condition,
	}

	bm.breakpoints[address] = append(bm.breakpoints[address], bp)
	bm.nextID++

	return bp
}

// DeleteBreakpoint removes a breakpoint by ID
func (bm *BreakpointManager) DeleteBreakpoint(id int) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	for addr, bps := range bm.breakpoints {
		for i, bp := range bps {
			if bp.ID == id {
				bm.breakpoints[addr] = append(bps[:i], bps[i+1:]...)
				if len(bm.breakpoints[addr]) == 0 {
					delete(bm.breakpoints, addr)
				}
				return nil
			}
		}
	}

	return fmt.Errorf("breakpoint %d not found", id)
}

// DeleteBreakpointAt removes all breakpoints at a specific address
func (bm *BreakpointManager) DeleteBreakpointAt(address uint32) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if _, exists := bm.breakpoints[address]; !exists {
		return fmt.Errorf("no breakpoint at address 0x%08X", address)
	}

	delete(bm.breakpoints, address)
	return nil
}

// EnableBreakpoint enables a breakpoint by ID
func (bm *BreakpointManager) EnableBreakpoint(id int) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	for _, bps := range bm.breakpoints {
		for _, bp := range bps {
			if bp.ID == id {
				bp.Enabled = true
				return nil
			}
		}
	}

	return fmt.Errorf("breakpoint %d not found", id)
}

// DisableBreakpoint disables a breakpoint by ID
func (bm *BreakpointManager) DisableBreakpoint(id int) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	for _, bps := range bm.breakpoints {
		for _, bp := range bps {
			if bp.ID == id {
				bp.Enabled = false
				return nil
			}
		}
	}

	return fmt.Errorf("breakpoint %d not found", id)
}

// GetBreakpoint returns the breakpoint at address that applies to threadID
// (an any-thread breakpoint, or one scoped to threadID specifically), or
// nil if none matches.
func (bm *BreakpointManager) GetBreakpoint(address, threadID uint32) *Breakpoint {
	bm.mu.RLock()
	defer bm.mu.RUnlock()

	for _, bp := range bm.breakpoints[address] {
		if bp.MatchesThread(threadID) {
			return bp
		}
	}
	return nil
}

// GetBreakpointByID gets a breakpoint by ID
func (bm *BreakpointManager) GetBreakpointByID(id int) *Breakpoint {
	bm.mu.RLock()
	defer bm.mu.RUnlock()

	for _, bps := range bm.breakpoints {
		for _, bp := range bps {
			if bp.ID == id {
				return bp
			}
		}
	}

	return nil
}

// GetAllBreakpoints returns all breakpoints
func (bm *BreakpointManager) GetAllBreakpoints() []*Breakpoint {
	bm.mu.RLock()
	defer bm.mu.RUnlock()

	result := make([]*Breakpoint, 0, len(bm.breakpoints))
	for _, bps := range bm.breakpoints {
		result = append(result, bps...)
	}

	return result
}

// Clear removes all breakpoints
func (bm *BreakpointManager) Clear() {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	bm.breakpoints = make(map[uint32][]*Breakpoint)
}

// HasBreakpoint checks if any breakpoint exists at the given address
func (bm *BreakpointManager) HasBreakpoint(address uint32) bool {
	bm.mu.RLock()
	defer bm.mu.RUnlock()

	_, exists := bm.breakpoints[address]
	return exists
}

// Count returns the number of breakpoints
func (bm *BreakpointManager) Count() int {
	bm.mu.RLock()
	defer bm.mu.RUnlock()

	n := 0
	for _, bps := range bm.breakpoints {
		n += len(bps)
	}
	return n
}

// ProcessHit atomically increments the hit count of the breakpoint at
// address matching threadID, records which thread hit it, and handles
// temporary breakpoint deletion. Returns a copy of the breakpoint for safe
// access after the lock is released.
func (bm *BreakpointManager) ProcessHit(address, threadID uint32) *Breakpoint {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	bps := bm.breakpoints[address]
	for i, bp := range bps {
		if !bp.MatchesThread(threadID) {
			continue
		}

		bp.HitCount++
		bp.LastHitBy = threadID

		result := *bp

		if bp.Temporary {
			bm.breakpoints[address] = append(bps[:i], bps[i+1:]...)
			if len(bm.breakpoints[address]) == 0 {
				delete(bm.breakpoints, address)
			}
		}

		return &result
	}

	return nil
}
