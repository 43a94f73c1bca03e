package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/LeJamon/goAMM/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMM/internal/core/state"
)

// StateFungible keeps fungible balances in a state.View. Building it over a
// state.Table makes every balance change part of the table's change set.
type StateFungible struct {
	view state.View
}

// NewFungible returns a Fungible ledger over view.
func NewFungible(view state.View) *StateFungible {
	return &StateFungible{view: view}
}

func (l *StateFungible) Transfer(asset AssetID, from, to AccountID, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	if err := debit(l.view, keylet.Balance(uint64(asset), from), amount); err != nil {
		return fmt.Errorf("transfer asset %d from %s: %w", asset, from, err)
	}
	return credit(l.view, keylet.Balance(uint64(asset), to), amount)
}

func (l *StateFungible) Mint(asset AssetID, to AccountID, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := credit(l.view, keylet.Supply(uint64(asset)), amount); err != nil {
		return fmt.Errorf("mint asset %d: %w", asset, err)
	}
	return credit(l.view, keylet.Balance(uint64(asset), to), amount)
}

func (l *StateFungible) Burn(asset AssetID, from AccountID, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := debit(l.view, keylet.Balance(uint64(asset), from), amount); err != nil {
		return fmt.Errorf("burn asset %d from %s: %w", asset, from, err)
	}
	return debit(l.view, keylet.Supply(uint64(asset)), amount)
}

func (l *StateFungible) BalanceOf(asset AssetID, account AccountID) (uint64, error) {
	return readAmount(l.view, keylet.Balance(uint64(asset), account))
}

func (l *StateFungible) TotalSupply(asset AssetID) (uint64, error) {
	return readAmount(l.view, keylet.Supply(uint64(asset)))
}

// StateBatch keeps multi-asset balances in a state.View.
type StateBatch struct {
	view state.View
}

// NewBatch returns a Batch ledger over view.
func NewBatch(view state.View) *StateBatch {
	return &StateBatch{view: view}
}

func (l *StateBatch) BatchTransfer(collection CollectionID, from, to AccountID, ids []TokenID, amounts []uint64) error {
	if len(ids) != len(amounts) {
		return ErrLengthMismatch
	}
	if from == to {
		return nil
	}
	for i, id := range ids {
		if amounts[i] == 0 {
			continue
		}
		if err := debit(l.view, keylet.BatchBalance(uint64(collection), uint64(id), from), amounts[i]); err != nil {
			return fmt.Errorf("transfer token %d/%d from %s: %w", collection, id, from, err)
		}
		if err := credit(l.view, keylet.BatchBalance(uint64(collection), uint64(id), to), amounts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (l *StateBatch) Mint(collection CollectionID, id TokenID, to AccountID, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := credit(l.view, keylet.BatchSupply(uint64(collection), uint64(id)), amount); err != nil {
		return fmt.Errorf("mint token %d/%d: %w", collection, id, err)
	}
	return credit(l.view, keylet.BatchBalance(uint64(collection), uint64(id), to), amount)
}

func (l *StateBatch) Burn(collection CollectionID, id TokenID, from AccountID, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := debit(l.view, keylet.BatchBalance(uint64(collection), uint64(id), from), amount); err != nil {
		return fmt.Errorf("burn token %d/%d from %s: %w", collection, id, from, err)
	}
	return debit(l.view, keylet.BatchSupply(uint64(collection), uint64(id)), amount)
}

func (l *StateBatch) BalanceOf(collection CollectionID, id TokenID, account AccountID) (uint64, error) {
	return readAmount(l.view, keylet.BatchBalance(uint64(collection), uint64(id), account))
}

func (l *StateBatch) TotalSupply(collection CollectionID, id TokenID) (uint64, error) {
	return readAmount(l.view, keylet.BatchSupply(uint64(collection), uint64(id)))
}

func readAmount(v state.View, k keylet.Keylet) (uint64, error) {
	data, err := v.Read(k)
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, nil
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupt %s entry: %d bytes", k.Type, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// writeAmount stores v, erasing the entry when it drops to zero.
func writeAmount(v state.View, k keylet.Keylet, amount uint64) error {
	if amount == 0 {
		exists, err := v.Exists(k)
		if err != nil || !exists {
			return err
		}
		return v.Erase(k)
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, amount)
	return state.Put(v, k, buf)
}

func credit(v state.View, k keylet.Keylet, amount uint64) error {
	cur, err := readAmount(v, k)
	if err != nil {
		return err
	}
	next := cur + amount
	if next < cur {
		return ErrSupplyOverflow
	}
	return writeAmount(v, k, next)
}

func debit(v state.View, k keylet.Keylet, amount uint64) error {
	cur, err := readAmount(v, k)
	if err != nil {
		return err
	}
	if amount > cur {
		return ErrInsufficientBalance
	}
	return writeAmount(v, k, cur-amount)
}
