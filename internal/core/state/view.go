// Package state provides the persistence primitives every ledger component
// writes through: a key schema, a msgpack record codec, and a buffered
// apply table that commits to the key-value store as one atomic batch.
package state

import (
	"context"
	"errors"

	"github.com/hbkwon/voucherd/internal/storage/kv"
)

// Reader provides read access to ledger state.
type Reader interface {
	// Get returns the value under key, or (nil, nil) if absent.
	Get(key []byte) ([]byte, error)

	// Has reports whether an entry exists.
	Has(key []byte) (bool, error)
}

// View provides read/write access to ledger state during an operation.
// Writes are buffered until the engine commits them.
type View interface {
	Reader

	// Put inserts or replaces an entry.
	Put(key, value []byte) error

	// Delete removes an entry. Deleting an absent entry is a no-op.
	Delete(key []byte) error
}

// Store wraps a kv.DB as the durable base of ledger state.
type Store struct {
	db kv.DB
}

// NewStore creates a store over the given database.
func NewStore(db kv.DB) *Store {
	return &Store{db: db}
}

// Reader returns a read view bound to ctx.
func (s *Store) Reader(ctx context.Context) Reader {
	return &storeReader{ctx: ctx, db: s.db}
}

// Commit atomically applies all changes buffered in the table.
func (s *Store) Commit(ctx context.Context, table *ApplyTable) error {
	ops := table.operations()
	if len(ops) == 0 {
		return nil
	}
	return s.db.Batch(ctx, ops)
}

// ForEachPrefix iterates over committed entries under prefix. If fn returns
// false, iteration stops early.
func (s *Store) ForEachPrefix(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	iter, err := s.db.Iterator(ctx, prefix, kv.PrefixEnd(prefix))
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.Next() {
		if !fn(iter.Key(), iter.Value()) {
			break
		}
	}
	return iter.Error()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

type storeReader struct {
	ctx context.Context
	db  kv.DB
}

func (r *storeReader) Get(key []byte) ([]byte, error) {
	val, err := r.db.Read(r.ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

func (r *storeReader) Has(key []byte) (bool, error) {
	val, err := r.Get(key)
	if err != nil {
		return false, err
	}
	return val != nil, nil
}
