// Package arith provides the integer helpers used by the pool math.
//
// Balances are uint64. Every multiply-then-divide chain is evaluated in a
// 256-bit intermediate and narrowed only after the division, so products of
// two balances (and a fee factor) never wrap.
package arith

import (
	"errors"
	"math"

	"github.com/holiman/uint256"
)

var (
	// ErrOverflow is returned when a result does not fit in 64 bits
	ErrOverflow = errors.New("arithmetic overflow")

	// ErrDivideByZero is returned when a divisor is zero
	ErrDivideByZero = errors.New("division by zero")
)

// U256 widens a uint64.
func U256(x uint64) *uint256.Int {
	return uint256.NewInt(x)
}

// Product returns a*b as a 256-bit integer.
func Product(a, b uint64) *uint256.Int {
	return new(uint256.Int).Mul(U256(a), U256(b))
}

// Narrow converts x to uint64, failing with ErrOverflow when it does not fit.
func Narrow(x *uint256.Int) (uint64, error) {
	if !x.IsUint64() {
		return 0, ErrOverflow
	}
	return x.Uint64(), nil
}

// MulDiv returns floor(a*b/d).
func MulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivideByZero
	}
	q := new(uint256.Int).Div(Product(a, b), U256(d))
	return Narrow(q)
}

// MulDivCeil returns ceil(a*b/d).
func MulDivCeil(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivideByZero
	}
	return DivCeil(Product(a, b), U256(d))
}

// DivCeil returns ceil(n/d) narrowed to 64 bits.
func DivCeil(n, d *uint256.Int) (uint64, error) {
	if d.IsZero() {
		return 0, ErrDivideByZero
	}
	q, r := new(uint256.Int).DivMod(n, d, new(uint256.Int))
	if !r.IsZero() {
		if _, overflow := q.AddOverflow(q, U256(1)); overflow {
			return 0, ErrOverflow
		}
	}
	return Narrow(q)
}

// Sqrt returns floor(sqrt(x)).
func Sqrt(x *uint256.Int) *uint256.Int {
	return new(uint256.Int).Sqrt(x)
}

// SqrtProduct returns floor(sqrt(a*b)). The result always fits in 64 bits.
func SqrtProduct(a, b uint64) uint64 {
	return Sqrt(Product(a, b)).Uint64()
}

// Add returns a+b or ErrOverflow.
func Add(a, b uint64) (uint64, error) {
	s := a + b
	if s < a {
		return 0, ErrOverflow
	}
	return s, nil
}

// Sub returns a-b or ErrOverflow when b > a.
func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrOverflow
	}
	return a - b, nil
}

// Mul returns a*b or ErrOverflow.
func Mul(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxUint64/b {
		return 0, ErrOverflow
	}
	return a * b, nil
}

// SaturatingAdd clamps a+b at the maximum uint64.
func SaturatingAdd(a, b uint64) uint64 {
	s := a + b
	if s < a {
		return math.MaxUint64
	}
	return s
}

// SaturatingSub clamps a-b at zero.
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// Min returns the smaller of a and b.
func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
