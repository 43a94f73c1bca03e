package amm

import "errors"

var (
	// ErrInvalidPoolID is returned when no pool matches an id or asset pair
	ErrInvalidPoolID = errors.New("invalid pool id")

	// ErrPoolAlreadyExists is returned when the pair already has a pool
	ErrPoolAlreadyExists = errors.New("pool already exists")

	// ErrSameAsset is returned when both sides of a pool are the same asset
	ErrSameAsset = errors.New("identical assets")

	// ErrReservedID is returned for ids in the liquidity token range that the
	// engine did not issue, and for host mints into that range
	ErrReservedID = errors.New("id reserved for liquidity tokens")

	// ErrNoIDSpace is returned when an id allocator is exhausted
	ErrNoIDSpace = errors.New("no id space left")

	// ErrOverflow is returned when an amount does not fit the balance width
	ErrOverflow = errors.New("amount overflow")

	ErrInsufficientAAmount         = errors.New("insufficient A amount")
	ErrInsufficientBAmount         = errors.New("insufficient B amount")
	ErrInsufficientAmount          = errors.New("insufficient amount")
	ErrInsufficientLiquidity       = errors.New("insufficient liquidity")
	ErrInsufficientLiquidityMinted = errors.New("insufficient liquidity minted")
	ErrInsufficientLiquidityBurned = errors.New("insufficient liquidity burned")
	ErrInsufficientInputAmount     = errors.New("insufficient input amount")
	ErrInsufficientOutputAmount    = errors.New("insufficient output amount")
	ErrExcessiveInputAmount        = errors.New("excessive input amount")

	// ErrInsufficientOutAmount is returned by the swap primitive when both
	// requested outputs are zero
	ErrInsufficientOutAmount = errors.New("insufficient out amount")

	// ErrInvalidPath is returned for swap paths that cannot be routed
	ErrInvalidPath = errors.New("invalid path")

	// ErrAdjusted is returned when a swap would decrease the fee-adjusted product
	ErrAdjusted = errors.New("fee-adjusted invariant violated")

	// ErrPermissionDenied is returned when a caller may not change protocol settings
	ErrPermissionDenied = errors.New("permission denied")

	ErrUnsortedOrDuplicateTokenIDs = errors.New("token ids must be strictly ascending")
	ErrInsufficientCurrencyAmount  = errors.New("insufficient currency amount")

	// ErrInvalidBatch is returned when batch argument lists are empty or differ in length
	ErrInvalidBatch = errors.New("invalid batch arguments")

	// ErrInvalidConfig is returned by New for unusable engine settings
	ErrInvalidConfig = errors.New("invalid engine config")
)
