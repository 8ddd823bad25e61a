// =============================================================================
// ligaconv - Durable Storage
// =============================================================================
//
// Storage is the key/value collaborator the session store persists into. A
// value is an opaque string (the session store writes JSON).
//
// BACKENDS:
//   file   - one file per key under a directory (default)
//   memory - in-process go-cache, lost on exit
//   sqlite - a kv table in a SQLite database
//   redis  - a Redis server, keys under a prefix
//
// =============================================================================

package storage

import (
	"context"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.Base("unknown storage backend")

// Storage is a string key/value store.
type Storage interface {
	// Get returns the value and true, or "" and false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Dir        string
	SQLitePath string
	RedisURL   string
}

// Open creates the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		return NewFile(opts.Dir)
	case BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		return NewSQLite(opts.SQLitePath)
	case BackendRedis:
		return NewRedis(ctx, opts.RedisURL)
	default:
		return nil, errors.WithDetails(ErrUnknownBackend, "backend", opts.Backend)
	}
}
