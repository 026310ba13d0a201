// Package source defines the input adapter boundary: anything that can hand
// the dictionary core a sampled dataset registers itself here.
//
// Adapters own all I/O and representation decisions, including what counts as
// the missing-value marker. The core never reaches out to an ambient source;
// it only sees the dataset.Sampled an adapter constructed.
package source

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"datadict/internal/dataset"
)

// ErrNotFound reports that the configured locator does not resolve to a
// dataset (missing file, unknown table, ...). It is owned by the adapters;
// the core never sees it.
var ErrNotFound = errors.New("source not found")

// Config is the minimal configuration needed to construct a Source.
//
// Kind selects the registered adapter. The remaining fields are interpreted
// per adapter; unused fields are ignored.
type Config struct {
	// Kind is the registered adapter kind ("csv", "html", "sqlite").
	Kind string

	// Locator is the opaque name of the dataset to profile: a path, URL, or
	// DSN depending on the adapter.
	Locator string

	// Table names the table to sample, for adapters backed by a database.
	Table string

	// Selector optionally narrows document-shaped sources (CSS selector for
	// the html adapter).
	Selector string

	// MaxBytes bounds how many bytes byte-oriented adapters read from the
	// start of the source. Adapters apply their own default when <= 0.
	MaxBytes int

	// SampleRows bounds how many data rows the adapter needs to materialize.
	// Adapters may return more; the builder re-applies the bound.
	SampleRows int
}

// Source supplies a sampled dataset from some backing store.
type Source interface {
	// Fetch reads a bounded sample and normalizes it into a dataset.Sampled.
	// Returns ErrNotFound (possibly wrapped) when the locator does not resolve.
	Fetch(ctx context.Context) (dataset.Sampled, error)
}

type factory func(cfg Config) (Source, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers an input adapter under a kind. Call it from an init()
// function in the adapter package.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered. Intentional, to fail fast on ambiguous
//     adapter selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("source: Register called with empty kind")
	}
	if f == nil {
		panic("source: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("source: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Source using the registered adapter factory.
//
// Errors:
//   - If cfg.Kind is empty or not registered.
//   - Whatever error the registered factory returns.
func New(cfg Config) (Source, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("source: missing Kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported source.kind=%s", cfg.Kind)
	}
	return f(cfg)
}
