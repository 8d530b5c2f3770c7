package kv

import "fmt"

// Backend names accepted in configuration.
const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// OpenFunc opens a database at a filesystem path. Backends register
// themselves here so the config layer can select one by name without this
// package importing every driver.
type OpenFunc func(path string) (DB, error)

var backends = map[string]OpenFunc{}

// RegisterBackend registers an opener under a backend name. Called from
// backend package init via the openers package.
func RegisterBackend(name string, open OpenFunc) {
	backends[name] = open
}

// Open opens the named backend at path.
func Open(backend, path string) (DB, error) {
	open, ok := backends[backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	return open(path)
}
