package amm

import (
	"context"
	"fmt"

	"github.com/LeJamon/goAMM/internal/core/arith"
	"github.com/LeJamon/goAMM/internal/core/events"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/LeJamon/goAMM/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMM/internal/core/state"
)

// BuyParams buys Amounts[i] of each TokenIDs[i] for at most MaxCurrency.
// A zero To on any batch call pays the caller.
type BuyParams struct {
	PoolID      PoolID
	TokenIDs    []ledger.TokenID
	Amounts     []uint64
	MaxCurrency uint64
	To          ledger.AccountID
}

// SellParams sells Amounts[i] of each TokenIDs[i] for at least MinCurrency.
type SellParams struct {
	PoolID      PoolID
	TokenIDs    []ledger.TokenID
	Amounts     []uint64
	MinCurrency uint64
	To          ledger.AccountID
}

// BatchAddParams deposits TokenAmounts[i] of each id with at most
// MaxCurrency[i] of currency. On an id's first deposit MaxCurrency[i] is
// taken as-is and sets the price.
type BatchAddParams struct {
	PoolID       PoolID
	TokenIDs     []ledger.TokenID
	TokenAmounts []uint64
	MaxCurrency  []uint64
}

// BatchRemoveParams burns Liquidity[i] of each id's liquidity token.
type BatchRemoveParams struct {
	PoolID      PoolID
	TokenIDs    []ledger.TokenID
	Liquidity   []uint64
	MinCurrency []uint64
	MinTokens   []uint64
	To          ledger.AccountID
}

// TradeResult reports per-id currency amounts of a buy or sell.
type TradeResult struct {
	Currency []uint64
	Total    uint64
}

// BatchLiquidityResult reports per-id amounts of a batch deposit or withdrawal.
type BatchLiquidityResult struct {
	TokenAmounts    []uint64
	CurrencyAmounts []uint64
	Liquidity       []uint64
}

// CreateBatchPool registers a pool pricing every token id of collection
// against currency.
func (e *Engine) CreateBatchPool(ctx context.Context, creator ledger.AccountID, currency ledger.AssetID, collection ledger.CollectionID) (PoolID, error) {
	var id PoolID
	err := e.apply(ctx, "create_batch_pool", func(t *txn) error {
		if err := t.checkPoolAsset(currency); err != nil {
			return err
		}
		if err := t.checkPoolCollection(collection); err != nil {
			return err
		}

		pairKey := keylet.BatchPairIndex(uint64(currency), uint64(collection))
		exists, err := t.view.Exists(pairKey)
		if err != nil {
			return err
		}
		if exists {
			return ErrPoolAlreadyExists
		}

		id, err = t.ids.NextPoolID()
		if err != nil {
			return err
		}
		lp, err := t.freshLiquidityCollection()
		if err != nil {
			return err
		}

		bp := BatchPool{
			ID:                  id,
			Currency:            currency,
			Collection:          collection,
			LiquidityCollection: lp,
			Vault:               vaultAccount(vaultKindBatch, id),
			Creator:             creator,
			FeeMultiplier:       t.cfg.BatchFeeMultiplier,
		}
		data, err := encodeRecord(&bp)
		if err != nil {
			return err
		}
		if err := t.view.Insert(keylet.BatchPool(uint32(id)), data); err != nil {
			return err
		}
		if err := t.view.Insert(pairKey, encodePoolID(id)); err != nil {
			return err
		}

		t.emit(events.BatchPoolCreated{
			PoolID:              uint32(id),
			Currency:            currency,
			Collection:          collection,
			LiquidityCollection: lp,
			Vault:               bp.Vault,
			Creator:             creator,
			FeeMultiplier:       bp.FeeMultiplier,
		})
		return nil
	})
	return id, err
}

// BatchPool returns a batch pool by id.
func (e *Engine) BatchPool(ctx context.Context, id PoolID) (BatchPool, error) {
	var bp BatchPool
	err := e.read(ctx, func(t *txn) error {
		var err error
		bp, err = t.batchPool(id)
		return err
	})
	return bp, err
}

// BatchPools lists every batch pool in id order.
func (e *Engine) BatchPools(ctx context.Context) ([]BatchPool, error) {
	var out []BatchPool
	err := e.read(ctx, func(t *txn) error {
		r := keylet.BatchPoolRange()
		return t.view.Scan(r.Start, r.End, func(key [32]byte, data []byte) error {
			if _, ok := r.ID(key); !ok {
				return nil
			}
			var bp BatchPool
			if err := decodeRecord(data, &bp); err != nil {
				return err
			}
			out = append(out, bp)
			return nil
		})
	})
	return out, err
}

// BatchReserves returns the pricing state of each id.
func (e *Engine) BatchReserves(ctx context.Context, id PoolID, tokenIDs []ledger.TokenID) ([]BatchReserve, error) {
	var out []BatchReserve
	err := e.read(ctx, func(t *txn) error {
		bp, err := t.batchPool(id)
		if err != nil {
			return err
		}
		if err := checkTokenIDs(tokenIDs); err != nil {
			return err
		}
		for _, tid := range tokenIDs {
			r, err := t.batchReserve(bp, tid)
			if err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

// Buy purchases tokens from the pool. The caller pre-pays MaxCurrency and
// is refunded whatever the exact-out prices did not use.
func (e *Engine) Buy(ctx context.Context, buyer ledger.AccountID, params BuyParams) (TradeResult, error) {
	var res TradeResult
	err := e.apply(ctx, "batch_buy", func(t *txn) error {
		params.To = payee(params.To, buyer)
		bp, err := t.batchPool(params.PoolID)
		if err != nil {
			return err
		}
		if err := checkBatch(params.TokenIDs, params.Amounts); err != nil {
			return err
		}

		if err := t.fungible.Transfer(bp.Currency, buyer, bp.Vault, params.MaxCurrency); err != nil {
			return wrapLedger(err)
		}

		res.Currency = make([]uint64, len(params.TokenIDs))
		for i, tid := range params.TokenIDs {
			r, err := t.batchReserve(bp, tid)
			if err != nil {
				return err
			}
			cost, err := GetAmountIn(params.Amounts[i], r.Currency, r.Tokens, bp.FeeMultiplier)
			if err != nil {
				return fmt.Errorf("token %d: %w", tid, err)
			}
			if res.Total, err = arith.Add(res.Total, cost); err != nil {
				return ErrOverflow
			}
			if res.Total > params.MaxCurrency {
				return ErrInsufficientCurrencyAmount
			}
			if err := t.setCurrencyReserve(bp, tid, r.Currency+cost); err != nil {
				return err
			}
			res.Currency[i] = cost
		}

		if err := t.fungible.Transfer(bp.Currency, bp.Vault, buyer, params.MaxCurrency-res.Total); err != nil {
			return wrapLedger(err)
		}
		if err := t.batch.BatchTransfer(bp.Collection, bp.Vault, params.To, params.TokenIDs, params.Amounts); err != nil {
			return wrapLedger(err)
		}

		t.emit(events.BatchBuy{
			PoolID:        uint32(bp.ID),
			Buyer:         buyer,
			To:            params.To,
			TokenIDs:      params.TokenIDs,
			Amounts:       params.Amounts,
			CurrencyCosts: res.Currency,
			TotalCost:     res.Total,
		})
		return nil
	})
	return res, err
}

// Sell sells tokens to the pool for at least MinCurrency in total.
func (e *Engine) Sell(ctx context.Context, seller ledger.AccountID, params SellParams) (TradeResult, error) {
	var res TradeResult
	err := e.apply(ctx, "batch_sell", func(t *txn) error {
		params.To = payee(params.To, seller)
		bp, err := t.batchPool(params.PoolID)
		if err != nil {
			return err
		}
		if err := checkBatch(params.TokenIDs, params.Amounts); err != nil {
			return err
		}

		res.Currency = make([]uint64, len(params.TokenIDs))
		for i, tid := range params.TokenIDs {
			r, err := t.batchReserve(bp, tid)
			if err != nil {
				return err
			}
			proceeds, err := GetAmountOut(params.Amounts[i], r.Tokens, r.Currency, bp.FeeMultiplier)
			if err != nil {
				return fmt.Errorf("token %d: %w", tid, err)
			}
			if err := t.setCurrencyReserve(bp, tid, r.Currency-proceeds); err != nil {
				return err
			}
			res.Currency[i] = proceeds
			if res.Total, err = arith.Add(res.Total, proceeds); err != nil {
				return ErrOverflow
			}
		}
		if res.Total < params.MinCurrency {
			return ErrInsufficientCurrencyAmount
		}

		if err := t.batch.BatchTransfer(bp.Collection, seller, bp.Vault, params.TokenIDs, params.Amounts); err != nil {
			return wrapLedger(err)
		}
		if err := t.fungible.Transfer(bp.Currency, bp.Vault, params.To, res.Total); err != nil {
			return wrapLedger(err)
		}

		t.emit(events.BatchSell{
			PoolID:           uint32(bp.ID),
			Seller:           seller,
			To:               params.To,
			TokenIDs:         params.TokenIDs,
			Amounts:          params.Amounts,
			CurrencyProceeds: res.Currency,
			TotalProceeds:    res.Total,
		})
		return nil
	})
	return res, err
}

// AddLiquidityBatch deposits tokens and currency for several ids at once,
// each id minting its own liquidity token.
func (e *Engine) AddLiquidityBatch(ctx context.Context, provider ledger.AccountID, params BatchAddParams) (BatchLiquidityResult, error) {
	var res BatchLiquidityResult
	err := e.apply(ctx, "batch_add_liquidity", func(t *txn) error {
		bp, err := t.batchPool(params.PoolID)
		if err != nil {
			return err
		}
		if err := checkBatch(params.TokenIDs, params.TokenAmounts); err != nil {
			return err
		}
		if len(params.MaxCurrency) != len(params.TokenIDs) {
			return ErrInvalidBatch
		}

		n := len(params.TokenIDs)
		res = BatchLiquidityResult{
			TokenAmounts:    params.TokenAmounts,
			CurrencyAmounts: make([]uint64, n),
			Liquidity:       make([]uint64, n),
		}

		var totalCurrency uint64
		for i, tid := range params.TokenIDs {
			r, err := t.batchReserve(bp, tid)
			if err != nil {
				return err
			}
			currency, minted, locked, err := t.batchDeposit(r, params.TokenAmounts[i], params.MaxCurrency[i])
			if err != nil {
				return fmt.Errorf("token %d: %w", tid, err)
			}
			if totalCurrency, err = arith.Add(totalCurrency, currency); err != nil {
				return ErrOverflow
			}
			if err := t.setCurrencyReserve(bp, tid, r.Currency+currency); err != nil {
				return err
			}
			if locked > 0 {
				if err := t.mintBatchLiquidity(bp, tid, bp.Vault, locked); err != nil {
					return err
				}
			}
			if err := t.mintBatchLiquidity(bp, tid, provider, minted); err != nil {
				return err
			}
			res.CurrencyAmounts[i] = currency
			res.Liquidity[i] = minted
		}

		if err := t.batch.BatchTransfer(bp.Collection, provider, bp.Vault, params.TokenIDs, params.TokenAmounts); err != nil {
			return wrapLedger(err)
		}
		if err := t.fungible.Transfer(bp.Currency, provider, bp.Vault, totalCurrency); err != nil {
			return wrapLedger(err)
		}

		t.emit(events.BatchLiquidityAdded{
			PoolID:          uint32(bp.ID),
			Provider:        provider,
			TokenIDs:        params.TokenIDs,
			TokenAmounts:    res.TokenAmounts,
			CurrencyAmounts: res.CurrencyAmounts,
			Liquidity:       res.Liquidity,
		})
		return nil
	})
	return res, err
}

// RemoveLiquidityBatch burns liquidity of several ids for their pro-rata
// share of tokens and currency.
func (e *Engine) RemoveLiquidityBatch(ctx context.Context, provider ledger.AccountID, params BatchRemoveParams) (BatchLiquidityResult, error) {
	var res BatchLiquidityResult
	err := e.apply(ctx, "batch_remove_liquidity", func(t *txn) error {
		params.To = payee(params.To, provider)
		bp, err := t.batchPool(params.PoolID)
		if err != nil {
			return err
		}
		if err := checkBatch(params.TokenIDs, params.Liquidity); err != nil {
			return err
		}
		n := len(params.TokenIDs)
		if len(params.MinCurrency) != n || len(params.MinTokens) != n {
			return ErrInvalidBatch
		}

		res = BatchLiquidityResult{
			TokenAmounts:    make([]uint64, n),
			CurrencyAmounts: make([]uint64, n),
			Liquidity:       params.Liquidity,
		}

		var totalCurrency uint64
		for i, tid := range params.TokenIDs {
			r, err := t.batchReserve(bp, tid)
			if err != nil {
				return err
			}
			if r.Supply == 0 {
				return fmt.Errorf("token %d: %w", tid, ErrInsufficientLiquidityBurned)
			}

			currency, err := arith.MulDiv(params.Liquidity[i], r.Currency, r.Supply)
			if err != nil {
				return mapArith(err)
			}
			tokens, err := arith.MulDiv(params.Liquidity[i], r.Tokens, r.Supply)
			if err != nil {
				return mapArith(err)
			}
			if currency == 0 || tokens == 0 {
				return fmt.Errorf("token %d: %w", tid, ErrInsufficientLiquidityBurned)
			}
			if currency < params.MinCurrency[i] {
				return fmt.Errorf("token %d: %w", tid, ErrInsufficientCurrencyAmount)
			}
			if tokens < params.MinTokens[i] {
				return fmt.Errorf("token %d: %w", tid, ErrInsufficientOutputAmount)
			}

			if err := t.batch.BatchTransfer(bp.LiquidityCollection, provider, bp.Vault, []ledger.TokenID{tid}, []uint64{params.Liquidity[i]}); err != nil {
				return wrapLedger(err)
			}
			if err := t.burnBatchLiquidity(bp, tid, bp.Vault, params.Liquidity[i]); err != nil {
				return err
			}
			if err := t.setCurrencyReserve(bp, tid, r.Currency-currency); err != nil {
				return err
			}

			totalCurrency += currency
			res.TokenAmounts[i] = tokens
			res.CurrencyAmounts[i] = currency
		}

		if err := t.batch.BatchTransfer(bp.Collection, bp.Vault, params.To, params.TokenIDs, res.TokenAmounts); err != nil {
			return wrapLedger(err)
		}
		if err := t.fungible.Transfer(bp.Currency, bp.Vault, params.To, totalCurrency); err != nil {
			return wrapLedger(err)
		}

		t.emit(events.BatchLiquidityRemoved{
			PoolID:          uint32(bp.ID),
			Provider:        provider,
			To:              params.To,
			TokenIDs:        params.TokenIDs,
			TokenAmounts:    res.TokenAmounts,
			CurrencyAmounts: res.CurrencyAmounts,
			Liquidity:       res.Liquidity,
		})
		return nil
	})
	return res, err
}

// batchDeposit prices one id's deposit. It returns the currency taken, the
// liquidity minted to the provider and the liquidity locked in the vault.
func (t *txn) batchDeposit(r BatchReserve, tokens, maxCurrency uint64) (uint64, uint64, uint64, error) {
	if tokens == 0 {
		return 0, 0, 0, ErrInsufficientInputAmount
	}

	if r.Supply == 0 {
		root := arith.SqrtProduct(maxCurrency, tokens)
		if root <= t.cfg.MinimumLiquidity {
			return 0, 0, 0, ErrInsufficientLiquidityMinted
		}
		return maxCurrency, root - t.cfg.MinimumLiquidity, t.cfg.MinimumLiquidity, nil
	}

	if r.Tokens == 0 || r.Currency == 0 {
		return 0, 0, 0, ErrInsufficientLiquidity
	}
	currency, err := arith.MulDivCeil(tokens, r.Currency, r.Tokens)
	if err != nil {
		return 0, 0, 0, mapArith(err)
	}
	if currency > maxCurrency {
		return 0, 0, 0, ErrInsufficientCurrencyAmount
	}

	byTokens, err := arith.MulDiv(tokens, r.Supply, r.Tokens)
	if err != nil {
		return 0, 0, 0, mapArith(err)
	}
	byCurrency, err := arith.MulDiv(currency, r.Supply, r.Currency)
	if err != nil {
		return 0, 0, 0, mapArith(err)
	}
	minted := arith.Min(byTokens, byCurrency)
	if minted == 0 {
		return 0, 0, 0, ErrInsufficientLiquidityMinted
	}
	return currency, minted, 0, nil
}

func (t *txn) batchPool(id PoolID) (BatchPool, error) {
	data, err := t.view.Read(keylet.BatchPool(uint32(id)))
	if err != nil {
		return BatchPool{}, err
	}
	if data == nil {
		return BatchPool{}, fmt.Errorf("%w: %d", ErrInvalidPoolID, id)
	}
	var bp BatchPool
	if err := decodeRecord(data, &bp); err != nil {
		return BatchPool{}, err
	}
	return bp, nil
}

func (t *txn) batchReserve(bp BatchPool, id ledger.TokenID) (BatchReserve, error) {
	r := BatchReserve{TokenID: id}

	data, err := t.view.Read(keylet.BatchReserve(uint32(bp.ID), uint64(id)))
	if err != nil {
		return r, err
	}
	if data != nil {
		if r.Currency, err = decodeUint64(data); err != nil {
			return r, err
		}
	}
	if r.Tokens, err = t.batch.BalanceOf(bp.Collection, id, bp.Vault); err != nil {
		return r, err
	}
	if r.Supply, err = t.batch.TotalSupply(bp.LiquidityCollection, id); err != nil {
		return r, err
	}
	return r, nil
}

func (t *txn) setCurrencyReserve(bp BatchPool, id ledger.TokenID, amount uint64) error {
	key := keylet.BatchReserve(uint32(bp.ID), uint64(id))
	if amount == 0 {
		exists, err := t.view.Exists(key)
		if err != nil || !exists {
			return err
		}
		return t.view.Erase(key)
	}
	return state.Put(t.view, key, encodeUint64(amount))
}

func (t *txn) mintBatchLiquidity(bp BatchPool, id ledger.TokenID, to ledger.AccountID, amount uint64) error {
	if err := t.batch.Mint(bp.LiquidityCollection, id, to, amount); err != nil {
		return wrapLedger(err)
	}
	t.emit(events.Mint{PoolID: uint32(bp.ID), Collection: bp.LiquidityCollection, TokenID: id, To: to, Amount: amount})
	return nil
}

func (t *txn) burnBatchLiquidity(bp BatchPool, id ledger.TokenID, from ledger.AccountID, amount uint64) error {
	if err := t.batch.Burn(bp.LiquidityCollection, id, from, amount); err != nil {
		return wrapLedger(err)
	}
	t.emit(events.Burn{PoolID: uint32(bp.ID), Collection: bp.LiquidityCollection, TokenID: id, From: from, Amount: amount})
	return nil
}

// checkTokenIDs requires a non-empty, strictly ascending id list.
func checkTokenIDs(ids []ledger.TokenID) error {
	if len(ids) == 0 {
		return ErrInvalidBatch
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			return ErrUnsortedOrDuplicateTokenIDs
		}
	}
	return nil
}

func checkBatch(ids []ledger.TokenID, amounts []uint64) error {
	if err := checkTokenIDs(ids); err != nil {
		return err
	}
	if len(amounts) != len(ids) {
		return ErrInvalidBatch
	}
	return nil
}
