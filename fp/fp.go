package fp

// Value is a 17.14 signed fixed-point number: 17 integer bits, 14
// fractional bits, stored natively as an int32.
type Value = int32

// f is 2^14, the fixed-point scaling factor.
const f Value = 1 << 14

// ToFP converts an integer to fixed point.
func ToFP(n int) Value {
	return Value(n) * f
}

// ToIntZero converts x to an integer, truncating toward zero.
func ToIntZero(x Value) int {
	return int(x / f)
}

// ToIntNearest converts x to an integer, rounding to the nearest integer
// (ties away from zero).
func ToIntNearest(x Value) int {
	if x >= 0 {
		return int((x + f/2) / f)
	}
	return int((x - f/2) / f)
}

// Add returns x + y. Both operands and the result are fixed-point.
func Add(x, y Value) Value {
	return x + y
}

// Sub returns x - y. Both operands and the result are fixed-point.
func Sub(x, y Value) Value {
	return x - y
}

// AddInt returns x + n, where x is fixed-point and n is a plain integer.
func AddInt(x Value, n int) Value {
	return x + Value(n)*f
}

// SubInt returns x - n, where x is fixed-point and n is a plain integer.
func SubInt(x Value, n int) Value {
	return x - Value(n)*f
}

// Mul returns x * y, where x and y are both fixed-point. Widens to 64 bits
// internally to avoid overflow.
func Mul(x, y Value) Value {
	return Value((int64(x) * int64(y)) / int64(f))
}

// Div returns x / y, where x and y are both fixed-point. Widens to 64 bits
// internally to avoid overflow. Division by zero is a caller bug, as it is
// throughout the MLFQ formulas this package serves (load_avg is never
// observed at exactly -1/2 by construction).
func Div(x, y Value) Value {
	return Value((int64(x) * int64(f)) / int64(y))
}

// MulInt returns x * n, where x is fixed-point and n is a plain integer.
func MulInt(x Value, n int) Value {
	return x * Value(n)
}

// DivInt returns x / n, where x is fixed-point and n is a plain integer.
func DivInt(x Value, n int) Value {
	return x / Value(n)
}
