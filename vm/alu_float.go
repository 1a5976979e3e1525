package vm

import "math"

func f32(v uint32) float32   { return math.Float32frombits(v) }
func u32f(v float32) uint32  { return math.Float32bits(v) }

func mathSqrt(x float64) float64  { return math.Sqrt(x) }
func mathExp(x float64) float64   { return math.Exp(x) }
func mathLn(x float64) float64    { return math.Log(x) }
func mathSin(x float64) float64   { return math.Sin(x) }
func mathAsin(x float64) float64  { return math.Asin(x) }
func mathCos(x float64) float64   { return math.Cos(x) }
func mathTan(x float64) float64   { return math.Tan(x) }
func mathAtan(x float64) float64  { return math.Atan(x) }
func mathSinh(x float64) float64  { return math.Sinh(x) }
func mathAsinh(x float64) float64 { return math.Asinh(x) }
func mathCosh(x float64) float64  { return math.Cosh(x) }
func mathAcosh(x float64) float64 { return math.Acosh(x) }

func (t *ThreadCore) execAddfSubf(s [3]byte, sub bool) {
	a := f32(t.ReadOperand(s[0]))
	b := f32(t.ReadOperand(s[1]))
	var r float32
	if sub {
		r = a - b
	} else {
		r = a + b
	}
	t.WriteOperand(s[2], u32f(r))
}

func (t *ThreadCore) execMulf(s [3]byte) {
	a := f32(t.ReadOperand(s[0]))
	b := f32(t.ReadOperand(s[1]))
	t.WriteOperand(s[2], u32f(a*b))
}

// execDivfModf never traps on a zero divisor: float division by zero
// produces the IEEE-754 inf/NaN result and FlagL is left untouched, unlike
// the integer division family.
func (t *ThreadCore) execDivfModf(s [3]byte, mod bool) {
	a := f32(t.ReadOperand(s[0]))
	b := f32(t.ReadOperand(s[1]))
	var r float32
	if mod {
		r = float32(math.Mod(float64(a), float64(b)))
	} else {
		r = a / b
	}
	t.WriteOperand(s[2], u32f(r))
}

func (t *ThreadCore) execAbsf(s [3]byte) {
	a := f32(t.ReadOperand(s[0]))
	t.WriteOperand(s[1], u32f(float32(math.Abs(float64(a)))))
}

func (t *ThreadCore) execPowf(s [3]byte) {
	a := f32(t.ReadOperand(s[0]))
	b := f32(t.ReadOperand(s[1]))
	t.WriteOperand(s[2], u32f(float32(math.Pow(float64(a), float64(b)))))
}

// execPowfi raises a float to an integer power, kept distinct from powf so
// the exponent operand can be read as i32 without an itf round trip.
func (t *ThreadCore) execPowfi(s [3]byte) {
	a := f32(t.ReadOperand(s[0]))
	n := int32(t.ReadOperand(s[1]))
	t.WriteOperand(s[2], u32f(float32(math.Pow(float64(a), float64(n)))))
}

func (t *ThreadCore) execCmpf(s [3]byte) {
	a := f32(t.ReadOperand(s[0]))
	b := f32(t.ReadOperand(s[1]))
	t.setCompareFlags(a == b, a < b)
}

func (t *ThreadCore) execFloatUnary(s [3]byte, f func(float64) float64) {
	a := f32(t.ReadOperand(s[0]))
	t.WriteOperand(s[1], u32f(float32(f(float64(a)))))
}

// execLog is base-N logarithm: two operands, a value and a base.
func (t *ThreadCore) execLog(s [3]byte) {
	a := f32(t.ReadOperand(s[0]))
	base := f32(t.ReadOperand(s[1]))
	t.WriteOperand(s[2], u32f(float32(math.Log(float64(a))/math.Log(float64(base)))))
}

// execItf is a numeric cast, not a bitcast: the integer value is converted
// to the nearest representable float32.
func (t *ThreadCore) execItf(s [3]byte) {
	a := int32(t.ReadOperand(s[0]))
	t.WriteOperand(s[1], u32f(float32(a)))
}

// execFti saturates rather than wrapping: a float outside int32 range clamps
// to MinInt32/MaxInt32, and NaN converts to 0.
func (t *ThreadCore) execFti(s [3]byte) {
	a := f32(t.ReadOperand(s[0]))
	var r int32
	switch {
	case math.IsNaN(float64(a)):
		r = 0
	case a >= math.MaxInt32:
		r = math.MaxInt32
	case a <= math.MinInt32:
		r = math.MinInt32
	default:
		r = int32(a)
	}
	t.WriteOperand(s[1], uint32(r))
}
