// Package isa is the shared instruction catalog between the VM's decoder
// and the assembler's encoder: the one place that names an opcode number
// for a mnemonic, so the two sides can never disagree on an encoding.
package isa

// Opcode numbers. Grouped by the numeric type they operate over, matching
// the ALU's u32/i32/f32 split. Numbering follows the reference machine's
// catalog where it names a mnemonic, extended with the symmetric entries
// it leaves out: cadd/csub, wrapping shift variants, and trig functions
// beyond sin/cos/tan.
const (
	Nop uint32 = iota

	// u32 arithmetic
	Add
	Sub
	Cadd
	Csub
	Mul
	Div
	Mod
	Cmpu

	// bitwise (operate on the raw 32-bit pattern, type-agnostic)
	And
	Or
	Xor
	Not
	Shl
	Shr
	Rol
	Ror
	Wshl
	Wshr

	// i32 arithmetic
	Addi
	Subi
	Caddi
	Csubi
	Imul
	Idiv
	Imod
	Cmpi
	Absi
	Powi

	// conversions (bitcast vs numeric cast)
	Itu
	Uti
	Itf
	Fti

	// f32 arithmetic
	Addf
	Subf
	Mulf
	Divf
	Modf
	Absf
	Powf
	Powfi
	Cmpf
	Sqrt
	Exp
	Log
	Ln
	Sin
	Asin
	Cos
	Tan
	Atan
	Sinh
	Asinh
	Cosh
	Acosh

	// branch unit
	Jmp
	Jz
	Jnz
	Jl
	Jnl
	Jc
	Jnc

	// call/frame protocol
	Call
	Ret
	Enter
	Leave

	// stack manipulation
	Dup
	Over
	Srl
	Srr
	Pshar
	Resar

	// memory ops
	Mov
	Ld
	St
	Ldb
	Stb

	// interrupt unit
	Trap
	Wait
	Iret

	// I/O
	Outc
	Inc

	// concurrency
	Cas

	// debug
	Dinfo
	Halt
)

// Mnemonics maps the textual mnemonic used by the assembler to its opcode
// number. The VM never consults this table directly (it only ever sees
// opcode numbers out of the decoder); it exists for the assembler's parser
// and for disassembly in the debugger.
var Mnemonics = map[string]uint32{
	"nop": Nop,

	"add": Add, "sub": Sub, "cadd": Cadd, "csub": Csub,
	"mul": Mul, "div": Div, "mod": Mod, "cmpu": Cmpu,

	"and": And, "or": Or, "xor": Xor, "not": Not,
	"shl": Shl, "shr": Shr, "rol": Rol, "ror": Ror,
	"wshl": Wshl, "wshr": Wshr,

	"addi": Addi, "subi": Subi, "caddi": Caddi, "csubi": Csubi,
	"imul": Imul, "idiv": Idiv, "imod": Imod, "cmpi": Cmpi,
	"absi": Absi, "powi": Powi,

	"itu": Itu, "uti": Uti, "itf": Itf, "fti": Fti,

	"addf": Addf, "subf": Subf, "mulf": Mulf, "divf": Divf, "modf": Modf,
	"absf": Absf, "powf": Powf, "powfi": Powfi, "cmpf": Cmpf,
	"sqrt": Sqrt, "exp": Exp, "log": Log, "ln": Ln,
	"sin": Sin, "asin": Asin, "cos": Cos, "tan": Tan, "atan": Atan,
	"sinh": Sinh, "asinh": Asinh, "cosh": Cosh, "acosh": Acosh,

	"jmp": Jmp, "jz": Jz, "jnz": Jnz, "jl": Jl, "jnl": Jnl, "jc": Jc, "jnc": Jnc,

	"call": Call, "ret": Ret, "enter": Enter, "leave": Leave,

	"dup": Dup, "over": Over, "srl": Srl, "srr": Srr,
	"pshar": Pshar, "resar": Resar,

	"mov": Mov, "ld": Ld, "st": St, "ldb": Ldb, "stb": Stb,

	"trap": Trap, "wait": Wait, "iret": Iret,

	"outc": Outc, "inc": Inc,

	"cas": Cas,

	"dinfo": Dinfo, "halt": Halt,
}

// OperandCount is the number of operand specifiers a mnemonic consumes
// (0-3); unused specifier slots in the instruction word are encoded as
// register 0 by the encoder.
var OperandCount = map[uint32]int{
	Nop: 0,

	Add: 3, Sub: 3, Cadd: 3, Csub: 3, Mul: 3, Div: 3, Mod: 3, Cmpu: 2,
	And: 3, Or: 3, Xor: 3, Not: 2, Shl: 3, Shr: 3, Rol: 3, Ror: 3, Wshl: 3, Wshr: 3,

	Addi: 3, Subi: 3, Caddi: 3, Csubi: 3, Imul: 3, Idiv: 3, Imod: 3, Cmpi: 2,
	Absi: 2, Powi: 3,

	Itu: 2, Uti: 2, Itf: 2, Fti: 2,

	Addf: 3, Subf: 3, Mulf: 3, Divf: 3, Modf: 3, Absf: 2, Powf: 3, Powfi: 3, Cmpf: 2,
	Sqrt: 2, Exp: 2, Log: 3, Ln: 2,
	Sin: 2, Asin: 2, Cos: 2, Tan: 2, Atan: 2, Sinh: 2, Asinh: 2, Cosh: 2, Acosh: 2,

	Jmp: 1, Jz: 1, Jnz: 1, Jl: 1, Jnl: 1, Jc: 1, Jnc: 1,

	Call: 1, Ret: 0, Enter: 0, Leave: 0,

	Dup: 0, Over: 0, Srl: 0, Srr: 0, Pshar: 0, Resar: 0,

	Mov: 2, Ld: 2, St: 2, Ldb: 2, Stb: 2,

	Trap: 2, Wait: 1, Iret: 0,

	Outc: 1, Inc: 1,

	Cas: 3,

	Dinfo: 0, Halt: 0,
}
