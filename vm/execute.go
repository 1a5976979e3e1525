package vm

import "github.com/vm32/vm32/isa"

// execute dispatches a decoded word to its handler. Every case resolves its
// own operands via ReadOperand/WriteOperand; execute itself never touches
// memory or registers directly, except that an unknown opcode sets FlagErr.
func (t *ThreadCore) execute(dec DecodedWord) {
	s := dec.Specs
	switch dec.Opcode {
	case isa.Nop:

	case isa.Add:
		t.execAddSub(s, false, false)
	case isa.Sub:
		t.execAddSub(s, true, false)
	case isa.Cadd:
		t.execAddSub(s, false, true)
	case isa.Csub:
		t.execAddSub(s, true, true)
	case isa.Mul:
		t.execMul(s)
	case isa.Div:
		t.execDivMod(s, false)
	case isa.Mod:
		t.execDivMod(s, true)
	case isa.Cmpu:
		t.execCmpu(s)

	case isa.And:
		t.execBitwise3(s, func(a, b uint32) uint32 { return a & b })
	case isa.Or:
		t.execBitwise3(s, func(a, b uint32) uint32 { return a | b })
	case isa.Xor:
		t.execBitwise3(s, func(a, b uint32) uint32 { return a ^ b })
	case isa.Not:
		t.execBitwise2(s, func(a uint32) uint32 { return ^a })
	case isa.Shl:
		t.execShift(s, "shl", false)
	case isa.Shr:
		t.execShift(s, "shr", false)
	case isa.Rol:
		t.execShift(s, "rol", false)
	case isa.Ror:
		t.execShift(s, "ror", false)
	case isa.Wshl:
		t.execShift(s, "shl", true)
	case isa.Wshr:
		t.execShift(s, "shr", true)

	case isa.Addi:
		t.execAddSubI(s, false, false)
	case isa.Subi:
		t.execAddSubI(s, true, false)
	case isa.Caddi:
		t.execAddSubI(s, false, true)
	case isa.Csubi:
		t.execAddSubI(s, true, true)
	case isa.Imul:
		t.execImul(s)
	case isa.Idiv:
		t.execIdivImod(s, false)
	case isa.Imod:
		t.execIdivImod(s, true)
	case isa.Cmpi:
		t.execCmpi(s)
	case isa.Absi:
		t.execAbsi(s)
	case isa.Powi:
		t.execPowi(s)

	case isa.Itu:
		t.execItu(s)
	case isa.Uti:
		t.execUti(s)
	case isa.Itf:
		t.execItf(s)
	case isa.Fti:
		t.execFti(s)

	case isa.Addf:
		t.execAddfSubf(s, false)
	case isa.Subf:
		t.execAddfSubf(s, true)
	case isa.Mulf:
		t.execMulf(s)
	case isa.Divf:
		t.execDivfModf(s, false)
	case isa.Modf:
		t.execDivfModf(s, true)
	case isa.Absf:
		t.execAbsf(s)
	case isa.Powf:
		t.execPowf(s)
	case isa.Powfi:
		t.execPowfi(s)
	case isa.Cmpf:
		t.execCmpf(s)
	case isa.Sqrt:
		t.execFloatUnary(s, mathSqrt)
	case isa.Exp:
		t.execFloatUnary(s, mathExp)
	case isa.Log:
		t.execLog(s)
	case isa.Ln:
		t.execFloatUnary(s, mathLn)
	case isa.Sin:
		t.execFloatUnary(s, mathSin)
	case isa.Asin:
		t.execFloatUnary(s, mathAsin)
	case isa.Cos:
		t.execFloatUnary(s, mathCos)
	case isa.Tan:
		t.execFloatUnary(s, mathTan)
	case isa.Atan:
		t.execFloatUnary(s, mathAtan)
	case isa.Sinh:
		t.execFloatUnary(s, mathSinh)
	case isa.Asinh:
		t.execFloatUnary(s, mathAsinh)
	case isa.Cosh:
		t.execFloatUnary(s, mathCosh)
	case isa.Acosh:
		t.execFloatUnary(s, mathAcosh)

	case isa.Jmp:
		t.execBranch(s, nil)
	case isa.Jz:
		t.execBranch(s, t.condZ)
	case isa.Jnz:
		t.execBranch(s, t.condNz)
	case isa.Jl:
		t.execBranch(s, t.condL)
	case isa.Jnl:
		t.execBranch(s, t.condNl)
	case isa.Jc:
		t.execBranch(s, t.condC)
	case isa.Jnc:
		t.execBranch(s, t.condNc)

	case isa.Call:
		t.execCall(s)
	case isa.Ret:
		t.execRet()
	case isa.Enter:
		t.execEnter()
	case isa.Leave:
		t.execLeave()

	case isa.Dup:
		t.execDup()
	case isa.Over:
		t.execOver()
	case isa.Srl:
		t.execSrl()
	case isa.Srr:
		t.execSrr()
	case isa.Pshar:
		t.execPshar()
	case isa.Resar:
		t.execResar()

	case isa.Mov:
		t.execMov(s)
	case isa.Ld:
		t.execLd(s)
	case isa.St:
		t.execSt(s)
	case isa.Ldb:
		t.execLdb(s)
	case isa.Stb:
		t.execStb(s)

	case isa.Trap:
		t.execTrap(s)
	case isa.Wait:
		t.execWait(s)
	case isa.Iret:
		t.execIret()

	case isa.Outc:
		t.execOutc(s)
	case isa.Inc:
		t.execInc(s)

	case isa.Cas:
		t.execCas(s)

	case isa.Dinfo:
		t.execDinfo()
	case isa.Halt:
		t.execHalt()

	default:
		t.Regs.SetFlag(FlagErr, true)
	}
}
