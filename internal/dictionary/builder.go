package dictionary

import (
	"fmt"

	"datadict/internal/dataset"
)

const (
	// DefaultSampleRows bounds how many rows are analyzed per column when the
	// caller does not say otherwise. Matches the original sheet profiler.
	DefaultSampleRows = 10

	// uniqueSampleCap bounds the distinct-value sample per record. Truncation
	// happens after dedup, so sampling more rows never drops an early
	// distinct value in favor of a repeated one.
	uniqueSampleCap = 10
)

// Record is the descriptive summary of one column of a sampled dataset.
//
// Description is reserved for human annotation and always empty here.
// Records are immutable once built and never outlive the profiling run.
type Record struct {
	Field        string
	Type         Category
	Description  string
	Example      dataset.Value
	MissingCount int
	UniqueSample []dataset.Value
}

// Build profiles every column of ds and returns one Record per header, in
// header order.
//
// Only the first sampleRows data rows are read; a shorter dataset is not an
// error. sampleRows values below 1 fall back to DefaultSampleRows. Rows whose
// length does not match the header count are skipped (best-effort sampling).
//
// A dataset with no data rows returns dataset.ErrEmpty; a dataset with no
// headers is equally unprofileable and reports the same error.
func Build(ds dataset.Sampled, sampleRows int) ([]Record, error) {
	if len(ds.Headers) == 0 {
		return nil, fmt.Errorf("build dictionary: no header row: %w", dataset.ErrEmpty)
	}
	if len(ds.Rows) == 0 {
		return nil, fmt.Errorf("build dictionary: %w", dataset.ErrEmpty)
	}
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}

	rows := ds.Rows
	if len(rows) > sampleRows {
		rows = rows[:sampleRows]
	}

	out := make([]Record, 0, len(ds.Headers))
	for col, field := range ds.Headers {
		out = append(out, profileColumn(field, col, len(ds.Headers), rows))
	}
	return out, nil
}

func profileColumn(field string, col, width int, rows [][]dataset.Value) Record {
	sampled := 0
	nonMissing := make([]dataset.Value, 0, len(rows))

	for _, r := range rows {
		if len(r) != width {
			continue
		}
		sampled++
		if v := r[col]; !v.IsMissing() {
			nonMissing = append(nonMissing, v)
		}
	}

	example := dataset.Missing()
	if len(nonMissing) > 0 {
		example = nonMissing[0]
	}

	uniq := make([]dataset.Value, 0, uniqueSampleCap)
	seen := make(map[string]struct{}, uniqueSampleCap)
	for _, v := range nonMissing {
		if len(uniq) >= uniqueSampleCap {
			break
		}
		k := v.String()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, v)
	}

	return Record{
		Field:        field,
		Type:         Classify(nonMissing),
		Description:  "",
		Example:      example,
		MissingCount: sampled - len(nonMissing),
		UniqueSample: uniq,
	}
}
