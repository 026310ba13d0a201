// Package config defines the JSON profile configuration for a dictionary run
// and its validation.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Severity levels for validation issues.
const (
	SeverityError = "error"
	SeverityWarn  = "warn"
)

// Issue is one validation finding, addressed by a JSON-ish path.
type Issue struct {
	Severity string
	Path     string
	Message  string
}

// Profile configures one profiling run: where the sample comes from, how much
// of it is read, and where the dictionary goes.
type Profile struct {
	// Name is the logical dataset name, used for output table naming and
	// metrics tagging. Defaults are derived from it when empty.
	Name string `json:"name"`

	// SampleRows bounds how many data rows are analyzed per column.
	// Zero means the default (10).
	SampleRows int `json:"sample_rows"`

	Source Source `json:"source"`
	Sink   Sink   `json:"sink"`
}

// Source selects and parameterizes the input adapter.
type Source struct {
	Kind     string `json:"kind"`
	Locator  string `json:"locator"`
	Table    string `json:"table,omitempty"`
	Selector string `json:"selector,omitempty"`
	MaxBytes int    `json:"max_bytes,omitempty"`
}

// Sink selects where the dictionary is written. Kind "csv" writes to Out
// (stdout when empty); database kinds need DSN and Table.
type Sink struct {
	Kind  string `json:"kind"`
	DSN   string `json:"dsn,omitempty"`
	Table string `json:"table,omitempty"`
	Out   string `json:"out,omitempty"`
}

// Load reads and decodes a profile from a JSON file.
func Load(path string) (Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return Profile{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes a profile from JSON. Unknown fields are rejected so typos in
// hand-edited configs fail loudly.
func Decode(r io.Reader) (Profile, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var p Profile
	if err := dec.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("decode config: %w", err)
	}
	return p, nil
}

var sourceKinds = map[string]bool{"csv": true, "html": true, "sqlite": true}
var sinkKinds = map[string]bool{"": true, "csv": true, "postgres": true, "sqlite": true, "mssql": true}

// ValidateProfile checks a profile for structural problems. Error-severity
// issues must stop the run; warnings are advisory.
func ValidateProfile(p Profile) []Issue {
	var issues []Issue

	add := func(sev, path, msg string) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: msg})
	}

	if p.SampleRows < 0 {
		add(SeverityError, "sample_rows", "must not be negative")
	}
	if p.Name == "" {
		add(SeverityWarn, "name", "empty; defaults will be derived from the source locator")
	}

	if p.Source.Kind == "" {
		add(SeverityError, "source.kind", "required")
	} else if !sourceKinds[p.Source.Kind] {
		add(SeverityError, "source.kind", fmt.Sprintf("unknown kind %q (want csv, html, or sqlite)", p.Source.Kind))
	}
	if p.Source.Locator == "" {
		add(SeverityError, "source.locator", "required")
	}
	if p.Source.Kind == "sqlite" && p.Source.Table == "" {
		add(SeverityError, "source.table", "required for sqlite sources")
	}
	if p.Source.MaxBytes < 0 {
		add(SeverityError, "source.max_bytes", "must not be negative")
	}

	if !sinkKinds[p.Sink.Kind] {
		add(SeverityError, "sink.kind", fmt.Sprintf("unknown kind %q (want csv, postgres, sqlite, or mssql)", p.Sink.Kind))
	}
	switch p.Sink.Kind {
	case "", "csv":
		if p.Sink.DSN != "" {
			add(SeverityWarn, "sink.dsn", "ignored for csv sinks")
		}
	default:
		if p.Sink.DSN == "" {
			add(SeverityError, "sink.dsn", "required for database sinks")
		}
	}

	return issues
}
