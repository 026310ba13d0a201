package storage

import (
	"datadict/internal/dictionary"
	"datadict/internal/render"
)

// RecordRow flattens a dictionary record into argument order matching
// Columns. Values are stored in their canonical textual form so the table is
// readable without knowing the variant tags.
func RecordRow(r dictionary.Record) []any {
	return []any{
		r.Field,
		string(r.Type),
		r.Description,
		r.Example.String(),
		r.MissingCount,
		render.JoinUnique(r.UniqueSample),
	}
}
