// Package events defines the domain events the pool engine produces and
// the sinks that relay them.
package events

import (
	"github.com/LeJamon/goAMM/internal/core/ledger"
)

// Kind names an event type.
type Kind string

const (
	KindPoolCreated           Kind = "PoolCreated"
	KindBatchPoolCreated      Kind = "BatchPoolCreated"
	KindLiquidityAdded        Kind = "LiquidityAdded"
	KindLiquidityRemoved      Kind = "LiquidityRemoved"
	KindSwap                  Kind = "Swap"
	KindSync                  Kind = "Sync"
	KindMint                  Kind = "Mint"
	KindBurn                  Kind = "Burn"
	KindSetFeeTo              Kind = "SetFeeTo"
	KindBatchBuy              Kind = "BatchBuy"
	KindBatchSell             Kind = "BatchSell"
	KindBatchLiquidityAdded   Kind = "BatchLiquidityAdded"
	KindBatchLiquidityRemoved Kind = "BatchLiquidityRemoved"
)

// Event is implemented by every engine event.
type Event interface {
	Kind() Kind
	// Pool returns the pool the event concerns, or 0.
	Pool() uint32
}

type PoolCreated struct {
	PoolID         uint32           `json:"pool_id"`
	Asset0         ledger.AssetID   `json:"asset0"`
	Asset1         ledger.AssetID   `json:"asset1"`
	LiquidityAsset ledger.AssetID   `json:"liquidity_asset"`
	Vault          ledger.AccountID `json:"vault"`
	Creator        ledger.AccountID `json:"creator"`
	FeeMultiplier  uint64           `json:"fee_multiplier"`
}

type BatchPoolCreated struct {
	PoolID              uint32              `json:"pool_id"`
	Currency            ledger.AssetID      `json:"currency"`
	Collection          ledger.CollectionID `json:"collection"`
	LiquidityCollection ledger.CollectionID `json:"liquidity_collection"`
	Vault               ledger.AccountID    `json:"vault"`
	Creator             ledger.AccountID    `json:"creator"`
	FeeMultiplier       uint64              `json:"fee_multiplier"`
}

type LiquidityAdded struct {
	PoolID    uint32           `json:"pool_id"`
	Provider  ledger.AccountID `json:"provider"`
	Amount0   uint64           `json:"amount0"`
	Amount1   uint64           `json:"amount1"`
	Liquidity uint64           `json:"liquidity"`
}

type LiquidityRemoved struct {
	PoolID    uint32           `json:"pool_id"`
	Provider  ledger.AccountID `json:"provider"`
	To        ledger.AccountID `json:"to"`
	Amount0   uint64           `json:"amount0"`
	Amount1   uint64           `json:"amount1"`
	Liquidity uint64           `json:"liquidity"`
}

type Swap struct {
	PoolID     uint32           `json:"pool_id"`
	Sender     ledger.AccountID `json:"sender"`
	To         ledger.AccountID `json:"to"`
	Amount0In  uint64           `json:"amount0_in"`
	Amount1In  uint64           `json:"amount1_in"`
	Amount0Out uint64           `json:"amount0_out"`
	Amount1Out uint64           `json:"amount1_out"`
}

type Sync struct {
	PoolID   uint32 `json:"pool_id"`
	Reserve0 uint64 `json:"reserve0"`
	Reserve1 uint64 `json:"reserve1"`
}

// Mint records liquidity token issuance. Collection and TokenID are set
// for batch pools, Asset for two-asset pools.
type Mint struct {
	PoolID     uint32              `json:"pool_id"`
	Asset      ledger.AssetID      `json:"asset,omitempty"`
	Collection ledger.CollectionID `json:"collection,omitempty"`
	TokenID    ledger.TokenID      `json:"token_id,omitempty"`
	To         ledger.AccountID    `json:"to"`
	Amount     uint64              `json:"amount"`
}

// Burn records liquidity token destruction.
type Burn struct {
	PoolID     uint32              `json:"pool_id"`
	Asset      ledger.AssetID      `json:"asset,omitempty"`
	Collection ledger.CollectionID `json:"collection,omitempty"`
	TokenID    ledger.TokenID      `json:"token_id,omitempty"`
	From       ledger.AccountID    `json:"from"`
	Amount     uint64              `json:"amount"`
}

type SetFeeTo struct {
	Setter  ledger.AccountID `json:"setter"`
	FeeTo   ledger.AccountID `json:"fee_to"`
	Enabled bool             `json:"enabled"`
}

type BatchBuy struct {
	PoolID        uint32           `json:"pool_id"`
	Buyer         ledger.AccountID `json:"buyer"`
	To            ledger.AccountID `json:"to"`
	TokenIDs      []ledger.TokenID `json:"token_ids"`
	Amounts       []uint64         `json:"amounts"`
	CurrencyCosts []uint64         `json:"currency_costs"`
	TotalCost     uint64           `json:"total_cost"`
}

type BatchSell struct {
	PoolID           uint32           `json:"pool_id"`
	Seller           ledger.AccountID `json:"seller"`
	To               ledger.AccountID `json:"to"`
	TokenIDs         []ledger.TokenID `json:"token_ids"`
	Amounts          []uint64         `json:"amounts"`
	CurrencyProceeds []uint64         `json:"currency_proceeds"`
	TotalProceeds    uint64           `json:"total_proceeds"`
}

type BatchLiquidityAdded struct {
	PoolID          uint32           `json:"pool_id"`
	Provider        ledger.AccountID `json:"provider"`
	TokenIDs        []ledger.TokenID `json:"token_ids"`
	TokenAmounts    []uint64         `json:"token_amounts"`
	CurrencyAmounts []uint64         `json:"currency_amounts"`
	Liquidity       []uint64         `json:"liquidity"`
}

type BatchLiquidityRemoved struct {
	PoolID          uint32           `json:"pool_id"`
	Provider        ledger.AccountID `json:"provider"`
	To              ledger.AccountID `json:"to"`
	TokenIDs        []ledger.TokenID `json:"token_ids"`
	TokenAmounts    []uint64         `json:"token_amounts"`
	CurrencyAmounts []uint64         `json:"currency_amounts"`
	Liquidity       []uint64         `json:"liquidity"`
}

func (PoolCreated) Kind() Kind           { return KindPoolCreated }
func (BatchPoolCreated) Kind() Kind      { return KindBatchPoolCreated }
func (LiquidityAdded) Kind() Kind        { return KindLiquidityAdded }
func (LiquidityRemoved) Kind() Kind      { return KindLiquidityRemoved }
func (Swap) Kind() Kind                  { return KindSwap }
func (Sync) Kind() Kind                  { return KindSync }
func (Mint) Kind() Kind                  { return KindMint }
func (Burn) Kind() Kind                  { return KindBurn }
func (SetFeeTo) Kind() Kind              { return KindSetFeeTo }
func (BatchBuy) Kind() Kind              { return KindBatchBuy }
func (BatchSell) Kind() Kind             { return KindBatchSell }
func (BatchLiquidityAdded) Kind() Kind   { return KindBatchLiquidityAdded }
func (BatchLiquidityRemoved) Kind() Kind { return KindBatchLiquidityRemoved }

func (e PoolCreated) Pool() uint32           { return e.PoolID }
func (e BatchPoolCreated) Pool() uint32      { return e.PoolID }
func (e LiquidityAdded) Pool() uint32        { return e.PoolID }
func (e LiquidityRemoved) Pool() uint32      { return e.PoolID }
func (e Swap) Pool() uint32                  { return e.PoolID }
func (e Sync) Pool() uint32                  { return e.PoolID }
func (e Mint) Pool() uint32                  { return e.PoolID }
func (e Burn) Pool() uint32                  { return e.PoolID }
func (SetFeeTo) Pool() uint32                { return 0 }
func (e BatchBuy) Pool() uint32              { return e.PoolID }
func (e BatchSell) Pool() uint32             { return e.PoolID }
func (e BatchLiquidityAdded) Pool() uint32   { return e.PoolID }
func (e BatchLiquidityRemoved) Pool() uint32 { return e.PoolID }
