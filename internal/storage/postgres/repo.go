// Package postgres implements the dictionary repository for PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"datadict/internal/dictionary"
	"datadict/internal/storage"
)

// Repo implements storage.Repository for PostgreSQL.
//
// Idempotency: rows upsert on field_name via ON CONFLICT DO UPDATE, so a
// re-run refreshes the dictionary instead of duplicating it.
type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

func (r *Repo) EnsureTable(ctx context.Context, table string) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	field_name text PRIMARY KEY,
	data_type text NOT NULL,
	description text NOT NULL DEFAULT '',
	example_value text,
	missing_count integer NOT NULL,
	unique_values_sample text
)`, qualIdent(table))

	if _, err := r.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

func (r *Repo) InsertRecords(ctx context.Context, table string, recs []dictionary.Record) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(qualIdent(table))
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
		b.WriteString("(")
		for j := range storage.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", i*len(storage.Columns)+j+1)
		}
		b.WriteString(")")
		args = append(args, storage.RecordRow(rec)...)
	}

	b.WriteString(` ON CONFLICT (field_name) DO UPDATE SET
	data_type = EXCLUDED.data_type,
	description = EXCLUDED.description,
	example_value = EXCLUDED.example_value,
	missing_count = EXCLUDED.missing_count,
	unique_values_sample = EXCLUDED.unique_values_sample`)

	tag, err := r.pool.Exec(ctx, b.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("insert dictionary rows into %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// qualIdent quotes a possibly schema-qualified table name ("public.x").
func qualIdent(name string) string {
	parts := strings.SplitN(name, ".", 2)
	for i := range parts {
		parts[i] = sqlIdent(parts[i])
	}
	return strings.Join(parts, ".")
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
