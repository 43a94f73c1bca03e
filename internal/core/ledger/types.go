package ledger

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/LeJamon/goAMM/internal/crypto"
)

// AccountID identifies a ledger account.
type AccountID [crypto.AccountIDSize]byte

// String returns the lowercase hex form.
func (a AccountID) String() string {
	return hex.EncodeToString(a[:])
}

// IsZero reports whether a is the zero account.
func (a AccountID) IsZero() bool {
	return crypto.IsZeroAccountID(a)
}

// ParseAccountID decodes a 40 character hex account id, with or without 0x.
func ParseAccountID(s string) (AccountID, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return AccountID{}, fmt.Errorf("invalid account id %q: %w", s, err)
	}
	if len(b) != crypto.AccountIDSize {
		return AccountID{}, fmt.Errorf("invalid account id %q: want %d bytes, got %d", s, crypto.AccountIDSize, len(b))
	}
	return AccountID(crypto.AccountIDFromBytes(b)), nil
}

// AccountFromName derives a deterministic account from a human name.
func AccountFromName(name string) AccountID {
	return AccountID(crypto.CalcAccountID([]byte(name)))
}

// AssetID identifies a fungible asset.
type AssetID uint64

// CollectionID identifies a multi-asset collection.
type CollectionID uint64

// TokenID identifies one sub-asset of a collection.
type TokenID uint64

// MarshalText encodes the account as hex.
func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes a hex account.
func (a *AccountID) UnmarshalText(text []byte) error {
	id, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*a = id
	return nil
}
