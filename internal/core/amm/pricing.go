package amm

import (
	"errors"

	"github.com/LeJamon/goAMM/internal/core/arith"
	"github.com/holiman/uint256"
)

// FeeDenominator is the scale of every fee multiplier: 997 means 0.3%.
const FeeDenominator = 1000

// GetAmountOut returns the output for an exact input,
// floor(in*fee*rOut / (rIn*1000 + in*fee)).
func GetAmountOut(amountIn, reserveIn, reserveOut, feeMultiplier uint64) (uint64, error) {
	if amountIn == 0 {
		return 0, ErrInsufficientInputAmount
	}
	if reserveIn == 0 || reserveOut == 0 {
		return 0, ErrInsufficientLiquidity
	}

	inWithFee := arith.Product(amountIn, feeMultiplier)
	numerator := new(uint256.Int).Mul(inWithFee, arith.U256(reserveOut))
	denominator := new(uint256.Int).Add(arith.Product(reserveIn, FeeDenominator), inWithFee)

	return narrow(new(uint256.Int).Div(numerator, denominator))
}

// GetAmountIn returns the input required for an exact output,
// ceil(rIn*out*1000 / ((rOut-out)*fee)).
func GetAmountIn(amountOut, reserveIn, reserveOut, feeMultiplier uint64) (uint64, error) {
	if amountOut == 0 {
		return 0, ErrInsufficientOutputAmount
	}
	if reserveIn == 0 || reserveOut == 0 || amountOut >= reserveOut {
		return 0, ErrInsufficientLiquidity
	}

	numerator := new(uint256.Int).Mul(arith.Product(reserveIn, amountOut), arith.U256(FeeDenominator))
	denominator := arith.Product(reserveOut-amountOut, feeMultiplier)

	v, err := arith.DivCeil(numerator, denominator)
	if err != nil {
		return 0, mapArith(err)
	}
	return v, nil
}

// Quote returns the amount of B equivalent to amountA at the current
// reserve ratio, floor(amountA*reserveB/reserveA).
func Quote(amountA, reserveA, reserveB uint64) (uint64, error) {
	if amountA == 0 {
		return 0, ErrInsufficientAmount
	}
	if reserveA == 0 || reserveB == 0 {
		return 0, ErrInsufficientLiquidity
	}
	v, err := arith.MulDiv(amountA, reserveB, reserveA)
	if err != nil {
		return 0, mapArith(err)
	}
	return v, nil
}

func narrow(x *uint256.Int) (uint64, error) {
	v, err := arith.Narrow(x)
	if err != nil {
		return 0, mapArith(err)
	}
	return v, nil
}

// mapArith translates arithmetic failures into the engine taxonomy.
func mapArith(err error) error {
	switch {
	case errors.Is(err, arith.ErrOverflow):
		return ErrOverflow
	case errors.Is(err, arith.ErrDivideByZero):
		return ErrInsufficientLiquidity
	default:
		return err
	}
}
