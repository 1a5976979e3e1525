package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vm32/vm32/isa"
)

func newTestCore(t *testing.T, code []uint32) (*ThreadCore, *MachineContext) {
	t.Helper()
	mem := NewMemory(1 << 16)
	for i, w := range code {
		require.NoError(t, mem.WriteWord(uint32(i*4), w))
	}
	m := NewMachineContext(mem)
	core := newThreadCore(0, 0, m, 0, mem.Size(), PermRead|PermWrite|PermExecute)
	core.Regs.SetS(0x8000)
	return core, m
}

func TestStepAdvancesIPByFour(t *testing.T) {
	core, _ := newTestCore(t, []uint32{Encode(isa.Nop, 0, 0, 0), Encode(isa.Nop, 0, 0, 0)})
	core.Step()
	assert.EqualValues(t, 4, core.Regs.I())
	core.Step()
	assert.EqualValues(t, 8, core.Regs.I())
}

func TestStepAdvancesIPPastLiterals(t *testing.T) {
	core, _ := newTestCore(t, []uint32{
		Encode(isa.Add, specLiteral, specLiteral, 1),
		7, 9, // inline literals for the two source operands
	})
	core.Step()
	assert.EqualValues(t, 12, core.Regs.I())
	assert.EqualValues(t, 16, core.Regs[1])
}

func TestAddSetsCarryOnOverflow(t *testing.T) {
	core, _ := newTestCore(t, []uint32{Encode(isa.Add, 1, 2, 3)})
	core.Regs[1] = 0xFFFFFFFF
	core.Regs[2] = 2
	core.Step()
	assert.EqualValues(t, 1, core.Regs[3])
	assert.True(t, core.Regs.FlagSet(FlagC))
	assert.EqualValues(t, 1, core.Regs.C())
}

func TestSubIsAddInverse(t *testing.T) {
	core, _ := newTestCore(t, []uint32{
		Encode(isa.Add, 1, 2, 3),
		Encode(isa.Sub, 3, 2, 4),
	})
	core.Regs[1] = 100
	core.Regs[2] = 42
	core.Step()
	core.Step()
	assert.EqualValues(t, 100, core.Regs[4])
}

func TestCmpuAndJl(t *testing.T) {
	core, _ := newTestCore(t, []uint32{
		Encode(isa.Cmpu, 1, 2, 0),
		Encode(isa.Jl, specLiteral, 0, 0),
		0x1000,
	})
	core.Regs[1] = 3
	core.Regs[2] = 5
	core.Step()
	assert.True(t, core.Regs.FlagSet(FlagS))
	core.Step()
	assert.EqualValues(t, 0x1000, core.Regs.I())
}

func TestJlNotTakenStillAdvancesPastLiteral(t *testing.T) {
	core, _ := newTestCore(t, []uint32{
		Encode(isa.Cmpu, 1, 2, 0),
		Encode(isa.Jl, specLiteral, 0, 0),
		0x1000,
	})
	core.Regs[1] = 5
	core.Regs[2] = 3
	core.Step()
	core.Step()
	assert.EqualValues(t, 12, core.Regs.I())
}

func TestCallRetRoundTrip(t *testing.T) {
	core, _ := newTestCore(t, []uint32{
		Encode(isa.Call, specLiteral, 0, 0),
		0x100,
		Encode(isa.Halt, 0, 0, 0),
	})
	core.Regs.SetL(0xDEAD)
	startS := core.Regs.S()
	core.Step() // call
	assert.EqualValues(t, 0x100, core.Regs.I())
	assert.EqualValues(t, startS, core.Regs.L())
	assert.EqualValues(t, startS+8, core.Regs.S())

	core.Regs.SetI(0x100)
	mem := core.Machine.Memory
	require.NoError(t, mem.WriteWord(0x100, Encode(isa.Ret, 0, 0, 0)))
	core.Step()
	assert.EqualValues(t, 8, core.Regs.I())
	assert.EqualValues(t, 0xDEAD, core.Regs.L())
	assert.EqualValues(t, startS, core.Regs.S())
}

func TestStbTruncatesToLowByte(t *testing.T) {
	core, _ := newTestCore(t, []uint32{Encode(isa.Stb, specLiteral, 1, 0), 0x2000})
	core.Regs[1] = 0x1234ABCD
	core.Step()
	b, err := core.Machine.Memory.ReadByte(0x2000)
	require.NoError(t, err)
	assert.EqualValues(t, 0xCD, b)
}

func TestStLdRoundTrip(t *testing.T) {
	core, _ := newTestCore(t, []uint32{
		Encode(isa.St, specLiteral, 1, 0),
		0x3000,
		Encode(isa.Ld, specLiteral, 2, 0),
		0x3000,
	})
	core.Regs[1] = 0xCAFEBABE
	core.Step()
	core.Step()
	assert.EqualValues(t, 0xCAFEBABE, core.Regs[2])
}

func TestAccessWindowViolationSetsFlagErrNotPanic(t *testing.T) {
	mem := NewMemory(1 << 16)
	require.NoError(t, mem.WriteWord(0, Encode(isa.Ld, specLiteral, 1, 0)))
	require.NoError(t, mem.WriteWord(4, 0xFFFF0000))
	m := NewMachineContext(mem)
	core := newThreadCore(0, 0, m, 0, 0x100, PermRead|PermWrite|PermExecute)

	assert.NotPanics(t, func() { core.Step() })
	assert.True(t, core.Regs.FlagSet(FlagErr))
	assert.EqualValues(t, 0, core.Regs[1])
}

func TestDivideByZeroSetsFlagLNotPanic(t *testing.T) {
	core, _ := newTestCore(t, []uint32{Encode(isa.Div, 1, 2, 3)})
	core.Regs[1] = 10
	core.Regs[2] = 0
	assert.NotPanics(t, func() { core.Step() })
	assert.True(t, core.Regs.FlagSet(FlagL))
}

func TestCasSucceedsWhenExpectedMatches(t *testing.T) {
	core, _ := newTestCore(t, []uint32{
		Encode(isa.Cas, specLiteral, specLiteral, 1),
		0x4000, 0,
	})
	require.NoError(t, core.Machine.Memory.WriteWord(0x4000, 0))
	core.Regs[1] = 99
	core.Step()
	assert.True(t, core.Regs.FlagSet(FlagZ))
	v, err := core.Machine.Memory.ReadWord(0x4000)
	require.NoError(t, err)
	assert.EqualValues(t, 99, v)
}

func TestShiftOverflowSetsFlagC(t *testing.T) {
	core, _ := newTestCore(t, []uint32{Encode(isa.Shl, 1, 2, 3)})
	core.Regs[1] = 1
	core.Regs[2] = 32
	core.Step()
	assert.EqualValues(t, 0, core.Regs[3])
	assert.True(t, core.Regs.FlagSet(FlagC))
}

func TestWrappingShiftOverflowAlsoSetsFlagC(t *testing.T) {
	core, _ := newTestCore(t, []uint32{Encode(isa.Wshl, 1, 2, 3)})
	core.Regs[1] = 1
	core.Regs[2] = 33 // wraps to 1 bit of shift, but the raw amount still overflows
	core.Step()
	assert.EqualValues(t, 2, core.Regs[3])
	assert.True(t, core.Regs.FlagSet(FlagC))
}

func TestShiftWithinRangeClearsFlagC(t *testing.T) {
	core, _ := newTestCore(t, []uint32{Encode(isa.Shl, 1, 2, 3)})
	core.Regs[1] = 1
	core.Regs[2] = 4
	core.Regs.SetFlag(FlagC, true)
	core.Step()
	assert.EqualValues(t, 16, core.Regs[3])
	assert.False(t, core.Regs.FlagSet(FlagC))
}

func TestHaltTerminatesRunLoop(t *testing.T) {
	core, _ := newTestCore(t, []uint32{Encode(isa.Halt, 0, 0, 0)})
	core.state.Store(int32(ThreadRunning))
	core.Run()
	assert.Equal(t, ThreadTerminated, core.State())
}
