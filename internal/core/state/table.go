package state

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/LeJamon/goAMM/internal/core/ledger/keylet"
)

// Action represents the type of modification to an entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

func (a Action) String() string {
	switch a {
	case ActionCache:
		return "cache"
	case ActionInsert:
		return "insert"
	case ActionModify:
		return "modify"
	case ActionErase:
		return "erase"
	default:
		return "unknown"
	}
}

// TrackedEntry represents an entry being tracked for changes
type TrackedEntry struct {
	Action   Action
	Original []byte // nil for inserts
	Current  []byte
}

// Table wraps a View and records every modification privately until Apply.
type Table struct {
	base  View
	items map[[32]byte]*TrackedEntry
}

// NewTable creates a new Table wrapping the given base view
func NewTable(base View) *Table {
	return &Table{
		base:  base,
		items: make(map[[32]byte]*TrackedEntry),
	}
}

// Read reads an entry, tracking it as cached
func (t *Table) Read(k keylet.Keylet) ([]byte, error) {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return nil, nil
		}
		return entry.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}
	return data, nil
}

// Exists checks if an entry exists
func (t *Table) Exists(k keylet.Keylet) (bool, error) {
	if entry, exists := t.items[k.Key]; exists {
		return entry.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *Table) Insert(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action != ActionErase {
			return fmt.Errorf("insert %s: %w", k.Type, ErrEntryExists)
		}
		// Re-inserting a deleted entry becomes a modify
		entry.Action = ActionModify
		entry.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("insert %s: %w", k.Type, ErrEntryExists)
	}

	t.items[k.Key] = &TrackedEntry{
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry
func (t *Table) Update(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("update %s: %w", k.Type, ErrEntryNotFound)
		}
		if entry.Action == ActionCache {
			entry.Action = ActionModify
		}
		// An insert stays an insert with new data
		entry.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("update %s: %w", k.Type, ErrEntryNotFound)
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes an entry
func (t *Table) Erase(k keylet.Keylet) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("erase %s: %w", k.Type, ErrEntryNotFound)
		}
		if entry.Action == ActionInsert {
			// Inserting then deleting = no change
			delete(t.items, k.Key)
			return nil
		}
		entry.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("erase %s: %w", k.Type, ErrEntryNotFound)
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}
	return nil
}

// Changes returns the effective change set in key order. Cached reads and
// modifications that restore the original bytes are omitted.
func (t *Table) Changes() []Change {
	keys := make([][32]byte, 0, len(t.items))
	for key, entry := range t.items {
		switch entry.Action {
		case ActionCache:
			continue
		case ActionModify:
			if bytes.Equal(entry.Original, entry.Current) {
				continue
			}
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	changes := make([]Change, 0, len(keys))
	for _, key := range keys {
		entry := t.items[key]
		c := Change{Key: key, Action: entry.Action}
		if entry.Action != ActionErase {
			c.Data = entry.Current
		}
		changes = append(changes, c)
	}
	return changes
}

// Apply commits all changes to the base view and returns how many entries
// changed. The table is reset afterwards.
func (t *Table) Apply() (int, error) {
	changes := t.Changes()

	if c, ok := t.base.(Committer); ok {
		if err := c.Commit(changes); err != nil {
			return 0, err
		}
	} else {
		for _, ch := range changes {
			k := keylet.Keylet{Key: ch.Key}
			var err error
			switch ch.Action {
			case ActionInsert:
				err = t.base.Insert(k, ch.Data)
			case ActionModify:
				err = t.base.Update(k, ch.Data)
			case ActionErase:
				err = t.base.Erase(k)
			}
			if err != nil {
				return 0, err
			}
		}
	}

	t.Discard()
	return len(changes), nil
}

// Commit lets a Table act as the base of a nested Table.
func (t *Table) Commit(changes []Change) error {
	for _, ch := range changes {
		k := keylet.Keylet{Key: ch.Key}
		var err error
		switch ch.Action {
		case ActionInsert:
			err = t.Insert(k, ch.Data)
		case ActionModify:
			err = t.Update(k, ch.Data)
		case ActionErase:
			err = t.Erase(k)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Scan walks [start, end) of the base with the table's pending changes
// applied on top.
func (t *Table) Scan(start, end [32]byte, fn func(key [32]byte, data []byte) error) error {
	scanner, ok := t.base.(Scanner)
	if !ok {
		return ErrScanUnsupported
	}

	merged := make(map[[32]byte][]byte)
	err := scanner.Scan(start, end, func(key [32]byte, data []byte) error {
		merged[key] = data
		return nil
	})
	if err != nil {
		return err
	}

	for key, entry := range t.items {
		if bytes.Compare(key[:], start[:]) < 0 || bytes.Compare(key[:], end[:]) >= 0 {
			continue
		}
		if entry.Action == ActionErase {
			delete(merged, key)
			continue
		}
		merged[key] = entry.Current
	}

	keys := make([][32]byte, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})
	for _, key := range keys {
		if err := fn(key, merged[key]); err != nil {
			return err
		}
	}
	return nil
}

// Discard drops every tracked change.
func (t *Table) Discard() {
	t.items = make(map[[32]byte]*TrackedEntry)
}
