package safe

import (
	"math"
	"math/bits"
)

// Checked int64 arithmetic for the fee hotpath. Overflow is a defect, not a
// recoverable condition: fee values feed settlement amounts directly, so any
// out-of-range intermediate halts the engine with a tagged panic.

// Add performs int64 addition and panics on overflow/underflow.
func Add(a, b int64) int64 {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		panic("FEE_SAFE_ADD_OVERFLOW")
	}
	return a + b
}

// Sub performs int64 subtraction and panics on overflow/underflow.
func Sub(a, b int64) int64 {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		panic("FEE_SAFE_SUB_OVERFLOW")
	}
	return a - b
}

// Mul performs int64 multiplication and panics on overflow/underflow.
func Mul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > 0 {
		if b > 0 {
			if a > math.MaxInt64/b {
				panic("FEE_SAFE_MUL_OVERFLOW")
			}
		} else if b < math.MinInt64/a {
			panic("FEE_SAFE_MUL_OVERFLOW")
		}
	} else {
		if b > 0 {
			if a < math.MinInt64/b {
				panic("FEE_SAFE_MUL_OVERFLOW")
			}
		} else if a < math.MaxInt64/b {
			panic("FEE_SAFE_MUL_OVERFLOW")
		}
	}
	return a * b
}

// Div performs int64 division and panics on division by zero.
func Div(a, b int64) int64 {
	if b == 0 {
		panic("FEE_SAFE_DIV_BY_ZERO")
	}
	if a == math.MinInt64 && b == -1 {
		panic("FEE_SAFE_DIV_OVERFLOW")
	}
	return a / b
}

// MulDiv computes a*b/den through a 128-bit intermediate so that the product
// may exceed int64 as long as the quotient does not. All operands must be
// non-negative (fee math never is); den must be positive.
func MulDiv(a, b, den int64) int64 {
	if a < 0 || b < 0 {
		panic("FEE_SAFE_MULDIV_NEGATIVE")
	}
	if den <= 0 {
		panic("FEE_SAFE_MULDIV_BAD_DENOMINATOR")
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi >= uint64(den) {
		panic("FEE_SAFE_MULDIV_OVERFLOW")
	}
	q, _ := bits.Div64(hi, lo, uint64(den))
	if q > math.MaxInt64 {
		panic("FEE_SAFE_MULDIV_OVERFLOW")
	}
	return int64(q)
}

// Min returns the smaller of two int64 values.
func Min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
