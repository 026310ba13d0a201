// Package sqlitesource samples a bounded prefix of a SQLite table.
//
// SQLite is where the upstream workbook importer lands EMR sheets, so this is
// the adapter that profiles already-imported datasets. Cells come back from
// the driver concretely typed; they map onto the corresponding dataset
// variants instead of being round-tripped through text, which exercises the
// classifier's already-typed evidence rules.
package sqlitesource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"datadict/internal/dataset"
	"datadict/internal/fieldname"
	"datadict/internal/source"
)

const defaultSampleRows = 64

func init() {
	source.Register("sqlite", New)
}

// DB samples one table of a SQLite database file.
type DB struct {
	dsn   string
	table string
	rows  int
}

// New constructs the sqlite adapter from cfg. Locator is the database path or
// DSN; Table names the table to sample.
func New(cfg source.Config) (source.Source, error) {
	dsn := strings.TrimSpace(cfg.Locator)
	if dsn == "" {
		return nil, fmt.Errorf("sqlite source: empty locator")
	}
	table := fieldname.Normalize(cfg.Table)
	if table == "" {
		return nil, fmt.Errorf("sqlite source: empty table")
	}
	n := cfg.SampleRows
	if n <= 0 {
		n = defaultSampleRows
	}
	return &DB{dsn: dsn, table: table, rows: n}, nil
}

func (d *DB) Fetch(ctx context.Context) (dataset.Sampled, error) {
	db, err := sql.Open("sqlite", d.dsn)
	if err != nil {
		return dataset.Sampled{}, err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return dataset.Sampled{}, fmt.Errorf("open %s: %w", d.dsn, err)
	}

	ok, err := tableExists(ctx, db, d.table)
	if err != nil {
		return dataset.Sampled{}, err
	}
	if !ok {
		return dataset.Sampled{}, fmt.Errorf("table %q: %w", d.table, source.ErrNotFound)
	}

	// Table name is normalized and verified against sqlite_master before
	// interpolation; the limit is bound as a parameter.
	q := fmt.Sprintf(`SELECT * FROM "%s" LIMIT ?`, d.table)
	rows, err := db.QueryContext(ctx, q, d.rows)
	if err != nil {
		return dataset.Sampled{}, fmt.Errorf("sample table %s: %w", d.table, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return dataset.Sampled{}, err
	}

	var out [][]dataset.Value
	scan := make([]any, len(headers))
	ptrs := make([]any, len(headers))
	for i := range scan {
		ptrs[i] = &scan[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return dataset.Sampled{}, fmt.Errorf("scan row: %w", err)
		}
		row := make([]dataset.Value, len(headers))
		for i := range scan {
			row[i] = cellValue(scan[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return dataset.Sampled{}, err
	}

	return dataset.Sampled{Headers: headers, Rows: out}, nil
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// cellValue maps a driver-typed scan result onto the dataset variant.
func cellValue(v any) dataset.Value {
	switch t := v.(type) {
	case nil:
		return dataset.Missing()
	case int64:
		return dataset.Number(float64(t))
	case float64:
		return dataset.Number(t)
	case bool:
		return dataset.Bool(t)
	case time.Time:
		return dataset.Time(t)
	case []byte:
		return dataset.Text(strings.TrimSpace(string(t)))
	case string:
		return dataset.Text(strings.TrimSpace(t))
	default:
		return dataset.Text(strings.TrimSpace(fmt.Sprint(t)))
	}
}
