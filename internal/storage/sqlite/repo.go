// Package sqlite implements the dictionary repository for SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"datadict/internal/dictionary"
	"datadict/internal/storage"
)

// Repo implements storage.Repository for SQLite.
//
// Idempotency: the dictionary table is keyed on field_name and rows are
// written with INSERT OR REPLACE, so re-profiling the same dataset updates
// records in place.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureTable(ctx context.Context, table string) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	field_name TEXT PRIMARY KEY,
	data_type TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	example_value TEXT,
	missing_count INTEGER NOT NULL,
	unique_values_sample TEXT
)`, sqlIdent(table))

	if _, err := r.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

func (r *Repo) InsertRecords(ctx context.Context, table string, recs []dictionary.Record) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	var b strings.Builder
	b.WriteString("INSERT OR REPLACE INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	for i, c := range storage.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(recs)*len(storage.Columns))
	for i, rec := range recs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, storage.RecordRow(rec)...)
	}

	res, err := r.db.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("insert dictionary rows into %s: %w", table, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func sqlIdent(id string) string {
	// SQLite supports "quoted identifiers"
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
