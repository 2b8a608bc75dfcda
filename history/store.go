package history

import (
	"errors"
	"fmt"
)

// ErrUnknownBackend is returned by Open for a backend name it does not know
var ErrUnknownBackend = errors.New("history: unknown backend")

// Store persists committed lines between sessions
type Store interface {
	// Load returns up to limit of the newest lines, oldest first. limit <= 0 loads all.
	Load(limit int) ([]string, error)
	Add(line string) error
	Close() error
}

// Backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendTOML   = "toml"
)

// Open builds a history for the named backend, seeded with the stored lines.
// The memory backend ignores path.
func Open(backend, path string, limit int) (*Persistent, error) {
	var (
		store Store
		err   error
	)
	switch backend {
	case "", BackendMemory:
		return NewPersistent(nil, limit)
	case BackendSQLite:
		store, err = OpenSQLite(path)
	case BackendTOML:
		store, err = OpenFile(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	if err != nil {
		return nil, err
	}

	p, err := NewPersistent(store, limit)
	if err != nil {
		store.Close()
		return nil, err
	}
	return p, nil
}
