// Package storage defines the output adapter boundary for persisting data
// dictionaries to a database, plus the backend registry.
package storage

import (
	"context"
	"fmt"
	"sync"

	"datadict/internal/dictionary"
)

// Config is the minimal configuration needed to create a dictionary
// repository.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is
//     backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Repository is a backend-agnostic sink for dictionary records.
//
// IMPORTANT: This interface is intentionally minimal. Each backend implements
// the semantics in its own idiomatic way (Postgres ON CONFLICT, SQLite
// INSERT OR REPLACE, MSSQL MERGE-free delete+insert, etc). Re-running a
// profile against the same table must be idempotent per field name.
type Repository interface {
	// Close releases backend resources. Treat as "call once".
	Close()

	// EnsureTable creates the dictionary table when it does not exist.
	EnsureTable(ctx context.Context, table string) error

	// InsertRecords writes the records in order and returns how many rows the
	// backend affected.
	InsertRecords(ctx context.Context, table string, recs []dictionary.Record) (int64, error)
}

// Columns is the dictionary table layout shared by every backend, aligned
// with the rendered header order.
var Columns = []string{
	"field_name",
	"data_type",
	"description",
	"example_value",
	"missing_count",
	"unique_values_sample",
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "postgres", "sqlite").
// Call it from an init() function in the backend package.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered. Intentional, to fail fast on ambiguous
//     backend selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
//
// Concurrency:
//   - Safe for concurrent use with Register; New takes a read lock while
//     selecting the factory.
//
// Errors:
//   - Returns an error if cfg.Kind is empty or unsupported.
//   - Returns whatever error the registered factory returns.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing Kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
