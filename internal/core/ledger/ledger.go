// Package ledger defines the balance capabilities the pool engine consumes
// and a reference implementation that keeps balances in a state.View.
package ledger

import "errors"

var (
	// ErrInsufficientBalance is returned when a debit exceeds the balance
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrSupplyOverflow is returned when a mint would overflow the total supply
	ErrSupplyOverflow = errors.New("total supply overflow")

	// ErrLengthMismatch is returned when batch ids and amounts differ in length
	ErrLengthMismatch = errors.New("ids and amounts length mismatch")
)

// Fungible is a single-asset ledger keyed by (asset, owner).
type Fungible interface {
	Transfer(asset AssetID, from, to AccountID, amount uint64) error
	Mint(asset AssetID, to AccountID, amount uint64) error
	Burn(asset AssetID, from AccountID, amount uint64) error
	BalanceOf(asset AssetID, account AccountID) (uint64, error)
	TotalSupply(asset AssetID) (uint64, error)
}

// Batch is a multi-asset ledger keyed by (collection, token id, owner).
type Batch interface {
	BatchTransfer(collection CollectionID, from, to AccountID, ids []TokenID, amounts []uint64) error
	Mint(collection CollectionID, id TokenID, to AccountID, amount uint64) error
	Burn(collection CollectionID, id TokenID, from AccountID, amount uint64) error
	BalanceOf(collection CollectionID, id TokenID, account AccountID) (uint64, error)
	TotalSupply(collection CollectionID, id TokenID) (uint64, error)
}
