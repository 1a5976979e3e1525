// Package vm implements the instruction execution engine: the register file,
// decoder, operand resolver, ALU, branch unit, call/frame protocol, memory
// ops, interrupt unit, and the multi-threaded machine context that runs them.
package vm

// Register file layout. Slots 0-47 are general purpose; 48-53 carry fixed
// roles used by the call/frame protocol, the ALU's carry output, and the
// branch unit's flags.
const (
	NumRegisters = 54

	RegS = 48 // stack pointer, grows up
	RegI = 49 // instruction pointer
	RegL = 50 // frame (link) pointer
	RegC = 51 // carry/overflow register
	RegF = 52 // flags register
	RegQ = 53 // last interrupt cause
)

// Flag bits within the F register.
const (
	FlagZ uint32 = 1 << 0  // zero/equal
	FlagS uint32 = 1 << 1  // sign/less
	FlagC uint32 = 1 << 2  // carry
	FlagL uint32 = 1 << 3  // division-by-zero
	FlagM uint32 = 1 << 15 // carry-in enable for cadd/csub
	FlagE uint32 = 1 << 22 // screen mode: text (0) vs pixel (1)
	FlagB uint32 = 1 << 23 // which framebuffer is live
	// FlagErr marks a trap condition (access-window or permission violation,
	// write to an inline-literal specifier, unknown opcode, failed cas
	// memory access). Distinct from FlagL (division-by-zero).
	FlagErr uint32 = 1 << 4
)

// Operand specifier encoding (7 bits). SpecLiteral and SpecStack are
// exported for the encoder, which must build the same specifier bytes the
// resolver interprets at runtime.
const (
	SpecLiteral byte = 0x7F // inline literal, next 4 bytes in the stream
	SpecStack   byte = 0x40 // bit 6 set: stack top

	specLiteral = SpecLiteral
	specStack   = SpecStack
	specMask    byte = 0x7F
)

// Instruction word layout: 11-bit opcode, three 7-bit operand specifiers.
const (
	opcodeShift = 21
	opcodeMask  = 0x7FF
	spec0Shift  = 14
	spec1Shift  = 7
	spec2Shift  = 0
)

// Image layout. The entrypoint word lives just above the image
// base; everything below the base is reserved for the framebuffers, text
// buffers, and glyph ROM consumed by the Screen device.
const (
	ImageBase        uint32 = 0x0008DE00
	EntryPointAddr   uint32 = 0x0008E000
	InterruptHandler uint32 = ImageBase

	ScreenBuffer1 uint32 = 0x00000000
	ScreenBuffer2 uint32 = 0x0003E800
	TextBuffer1   uint32 = 0x0007D000
	TextBuffer2   uint32 = 0x0007D3E8
	GlyphROMBase  uint32 = 0x0007D800

	ScreenWidth  = 320
	ScreenHeight = 200
	TextWidth    = 40
	TextHeight   = 25
	GlyphROMSize = 256 * 64
)

// ThreadState is the lifecycle state of a ThreadCore.
type ThreadState int32

const (
	ThreadReady ThreadState = iota
	ThreadRunning
	ThreadTerminating
	ThreadTerminated
)

func (s ThreadState) String() string {
	switch s {
	case ThreadReady:
		return "ready"
	case ThreadRunning:
		return "running"
	case ThreadTerminating:
		return "terminating"
	case ThreadTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Permission bits for a thread's access window.
type Permission byte

const (
	PermRead Permission = 1 << iota
	PermWrite
	PermExecute
)

// Interrupt causes, recovered from original_source/src/machine (the Rust
// predecessor enumerates a single-cause countdown interrupt; this catalog
// names the causes the Q register alone doesn't spell out.
const (
	CauseTimer uint32 = iota
	CauseDeviceIO
	CauseSoftware
	CauseDivideByZero
)
