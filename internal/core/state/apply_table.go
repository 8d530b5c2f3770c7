package state

import (
	"github.com/hbkwon/voucherd/internal/storage/kv"
)

// action represents the type of modification to a tracked entry.
type action int

const (
	// actionCache means the entry was read but not modified.
	actionCache action = iota
	// actionPut means the entry was inserted or replaced.
	actionPut
	// actionErase means the entry was deleted.
	actionErase
)

// trackedEntry holds the state of one key touched by the operation.
type trackedEntry struct {
	action   action
	original []byte // state in the base view (nil if absent)
	current  []byte // buffered state (nil after erase)
}

// ApplyTable wraps a base reader and buffers all modifications made by a
// single operation. Nothing reaches the base until the engine commits the
// table; discarding it rolls the operation back completely.
type ApplyTable struct {
	base  Reader
	items map[string]*trackedEntry
}

// NewApplyTable creates an apply table over the given base view.
func NewApplyTable(base Reader) *ApplyTable {
	return &ApplyTable{
		base:  base,
		items: make(map[string]*trackedEntry),
	}
}

// Get reads an entry, preferring buffered state over the base.
func (t *ApplyTable) Get(key []byte) ([]byte, error) {
	if entry, ok := t.items[string(key)]; ok {
		if entry.action == actionErase {
			return nil, nil
		}
		return entry.current, nil
	}

	data, err := t.base.Get(key)
	if err != nil {
		return nil, err
	}
	if data != nil {
		t.items[string(key)] = &trackedEntry{
			action:   actionCache,
			original: data,
			current:  data,
		}
	}
	return data, nil
}

// Has reports whether an entry exists in the buffered view.
func (t *ApplyTable) Has(key []byte) (bool, error) {
	if entry, ok := t.items[string(key)]; ok {
		return entry.action != actionErase, nil
	}
	return t.base.Has(key)
}

// Put inserts or replaces an entry in the buffer.
func (t *ApplyTable) Put(key, value []byte) error {
	if entry, ok := t.items[string(key)]; ok {
		entry.action = actionPut
		entry.current = value
		return nil
	}

	original, err := t.base.Get(key)
	if err != nil {
		return err
	}
	t.items[string(key)] = &trackedEntry{
		action:   actionPut,
		original: original,
		current:  value,
	}
	return nil
}

// Delete removes an entry from the buffer.
func (t *ApplyTable) Delete(key []byte) error {
	if entry, ok := t.items[string(key)]; ok {
		entry.action = actionErase
		entry.current = nil
		return nil
	}

	original, err := t.base.Get(key)
	if err != nil {
		return err
	}
	t.items[string(key)] = &trackedEntry{
		action:   actionErase,
		original: original,
	}
	return nil
}

// Dirty reports whether the table holds any buffered modification.
func (t *ApplyTable) Dirty() bool {
	for _, entry := range t.items {
		if entry.action != actionCache {
			return true
		}
	}
	return false
}

// operations flattens the buffered changes into a batch. Cached reads and
// erases of entries that never existed are dropped.
func (t *ApplyTable) operations() []kv.BatchOperation {
	ops := make([]kv.BatchOperation, 0, len(t.items))
	for key, entry := range t.items {
		switch entry.action {
		case actionPut:
			ops = append(ops, kv.BatchOperation{
				Type:  kv.BatchPut,
				Key:   []byte(key),
				Value: entry.current,
			})
		case actionErase:
			if entry.original == nil {
				continue
			}
			ops = append(ops, kv.BatchOperation{
				Type: kv.BatchDelete,
				Key:  []byte(key),
			})
		}
	}
	return ops
}
