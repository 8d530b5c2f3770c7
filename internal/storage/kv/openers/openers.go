// Package openers wires every concrete backend into the kv backend
// registry. Importing it (for side effects) makes pebble, leveldb and the
// in-memory backend available to kv.Open.
package openers

import (
	"github.com/hbkwon/voucherd/internal/storage/kv"
	"github.com/hbkwon/voucherd/internal/storage/kv/leveldb"
	"github.com/hbkwon/voucherd/internal/storage/kv/memorydb"
	"github.com/hbkwon/voucherd/internal/storage/kv/pebbledb"
)

func init() {
	kv.RegisterBackend(kv.BackendPebble, func(path string) (kv.DB, error) {
		return pebbledb.Open(path)
	})
	kv.RegisterBackend(kv.BackendLevelDB, func(path string) (kv.DB, error) {
		return leveldb.Open(path)
	})
	kv.RegisterBackend(kv.BackendMemory, func(path string) (kv.DB, error) {
		return memorydb.New(), nil
	})
}
