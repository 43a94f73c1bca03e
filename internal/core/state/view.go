// Package state holds the keyed record views the engine mutates.
//
// A Store is the committed view backed by a keyValueDb. A Table layers a
// private change set over any View; Apply publishes the change set to the
// base in one step and dropping the Table discards it.
package state

import (
	"errors"

	"github.com/LeJamon/goAMM/internal/core/ledger/keylet"
)

var (
	// ErrEntryExists is returned when inserting over a live entry
	ErrEntryExists = errors.New("entry already exists")

	// ErrEntryNotFound is returned when updating or erasing a missing entry
	ErrEntryNotFound = errors.New("entry not found")

	// ErrScanUnsupported is returned when a view cannot walk key ranges
	ErrScanUnsupported = errors.New("view does not support range scans")
)

// View is a keyed record store. Read returns nil, nil for absent entries.
type View interface {
	Read(k keylet.Keylet) ([]byte, error)
	Exists(k keylet.Keylet) (bool, error)
	Insert(k keylet.Keylet, data []byte) error
	Update(k keylet.Keylet, data []byte) error
	Erase(k keylet.Keylet) error
}

// Committer is implemented by views that can take a whole change set at once.
type Committer interface {
	Commit(changes []Change) error
}

// Scanner is implemented by views that can walk a key range in key order.
// fn sees each live entry in [start, end) once.
type Scanner interface {
	Scan(start, end [32]byte, fn func(key [32]byte, data []byte) error) error
}

// Change is one entry of a committed change set. Data is nil for erasures.
type Change struct {
	Key    [32]byte
	Action Action
	Data   []byte
}

// Put inserts or updates k.
func Put(v View, k keylet.Keylet, data []byte) error {
	exists, err := v.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return v.Update(k, data)
	}
	return v.Insert(k, data)
}
