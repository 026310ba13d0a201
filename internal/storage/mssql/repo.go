// Package mssql implements the dictionary repository for SQL Server.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"datadict/internal/dictionary"
	"datadict/internal/storage"
)

// Repo implements storage.Repository for SQL Server.
//
// Idempotency: SQL Server has no portable upsert shorthand for this shape, so
// InsertRecords deletes the incoming field names and re-inserts inside one
// transaction.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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
	q := fmt.Sprintf(`IF OBJECT_ID(N'%s', N'U') IS NULL
CREATE TABLE %s (
	field_name nvarchar(256) NOT NULL PRIMARY KEY,
	data_type nvarchar(32) NOT NULL,
	description nvarchar(max) NOT NULL DEFAULT '',
	example_value nvarchar(max) NULL,
	missing_count int NOT NULL,
	unique_values_sample nvarchar(max) NULL
)`, strings.ReplaceAll(table, "'", "''"), qualIdent(table))

	if _, err := r.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

func (r *Repo) InsertRecords(ctx context.Context, table string, recs []dictionary.Record) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	del := fmt.Sprintf("DELETE FROM %s WHERE field_name = @p1", qualIdent(table))
	ins := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (@p1, @p2, @p3, @p4, @p5, @p6)",
		qualIdent(table), identList(storage.Columns),
	)

	var n int64
	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx, del, rec.Field); err != nil {
			return 0, fmt.Errorf("delete stale record %s: %w", rec.Field, err)
		}
		if _, err := tx.ExecContext(ctx, ins, storage.RecordRow(rec)...); err != nil {
			return 0, fmt.Errorf("insert record %s: %w", rec.Field, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

func identList(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = sqlIdent(c)
	}
	return strings.Join(out, ", ")
}

// qualIdent quotes a possibly schema-qualified table name ("dbo.x").
func qualIdent(name string) string {
	parts := strings.SplitN(name, ".", 2)
	for i := range parts {
		parts[i] = sqlIdent(parts[i])
	}
	return strings.Join(parts, ".")
}

func sqlIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
