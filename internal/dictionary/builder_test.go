package dictionary

import (
	"errors"
	"reflect"
	"testing"

	"datadict/internal/dataset"
)

func textRow(ss ...string) []dataset.Value {
	return texts(ss...)
}

//
// Build
//

// TestBuildRecordPerHeader verifies the basic contract: one record per header,
// in header order, with type, example, missing count, and distinct sample.
func TestBuildRecordPerHeader(t *testing.T) {
	t.Parallel()

	ds := dataset.Sampled{
		Headers: []string{"id", "signup_date", "active"},
		Rows: [][]dataset.Value{
			textRow("1", "2024-01-15", "true"),
			textRow("2", "", "false"),
			textRow("3", "2024-02-01", "true"),
		},
	}

	recs, err := Build(ds, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}

	wantFields := []string{"id", "signup_date", "active"}
	for i, rec := range recs {
		if rec.Field != wantFields[i] {
			t.Fatalf("record %d field = %q, want %q", i, rec.Field, wantFields[i])
		}
		if rec.Description != "" {
			t.Fatalf("record %d description = %q, want empty", i, rec.Description)
		}
	}

	if recs[0].Type != CategoryNumeric {
		t.Errorf("id type = %q, want %q", recs[0].Type, CategoryNumeric)
	}
	if recs[1].Type != CategoryDate {
		t.Errorf("signup_date type = %q, want %q", recs[1].Type, CategoryDate)
	}
	if recs[2].Type != CategoryBoolean {
		t.Errorf("active type = %q, want %q", recs[2].Type, CategoryBoolean)
	}

	if recs[1].MissingCount != 1 {
		t.Errorf("signup_date missing = %d, want 1", recs[1].MissingCount)
	}
	if got := recs[1].Example.String(); got != "2024-01-15" {
		t.Errorf("signup_date example = %q, want first non-missing value", got)
	}
	if got := len(recs[2].UniqueSample); got != 2 {
		t.Errorf("active unique sample size = %d, want 2", got)
	}
}

// TestBuildMixedDisconfirmation verifies that one bad value is enough to
// demote a column: a near-date column and a near-boolean column both land on
// String while the clean numeric column keeps its category.
func TestBuildMixedDisconfirmation(t *testing.T) {
	t.Parallel()

	ds := dataset.Sampled{
		Headers: []string{"id", "signup_date", "active"},
		Rows: [][]dataset.Value{
			textRow("1", "2024-01-05", "yes"),
			textRow("2", "not-a-date", "no"),
			textRow("3", "2024-03-10", "maybe"),
		},
	}

	recs, err := Build(ds, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []Category{CategoryNumeric, CategoryString, CategoryString}
	for i, rec := range recs {
		if rec.Type != want[i] {
			t.Errorf("%s type = %q, want %q", rec.Field, rec.Type, want[i])
		}
		if rec.MissingCount != 0 {
			t.Errorf("%s missing = %d, want 0", rec.Field, rec.MissingCount)
		}
	}
}

// TestBuildEmptyDataset verifies the terminal empty-dataset error for both a
// header-only dataset and one with no headers at all.
func TestBuildEmptyDataset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ds   dataset.Sampled
	}{
		{"headers only", dataset.Sampled{Headers: []string{"a"}}},
		{"no headers", dataset.Sampled{Rows: [][]dataset.Value{textRow("x")}}},
		{"nothing at all", dataset.Sampled{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Build(tt.ds, 10)
			if !errors.Is(err, dataset.ErrEmpty) {
				t.Fatalf("Build = %v, want dataset.ErrEmpty", err)
			}
		})
	}
}

// TestBuildSampleBound verifies that only the first sampleRows rows feed the
// profile, and that non-positive bounds fall back to the default.
func TestBuildSampleBound(t *testing.T) {
	t.Parallel()

	rows := make([][]dataset.Value, 0, 15)
	for i := 0; i < 15; i++ {
		cell := "1"
		if i >= 2 {
			cell = "" // missing beyond the first two rows
		}
		rows = append(rows, textRow(cell))
	}
	ds := dataset.Sampled{Headers: []string{"n"}, Rows: rows}

	recs, err := Build(ds, 5)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := recs[0].MissingCount; got != 3 {
		t.Fatalf("missing within bound 5 = %d, want 3", got)
	}

	recs, err = Build(ds, 0)
	if err != nil {
		t.Fatalf("Build with default bound: %v", err)
	}
	if got := recs[0].MissingCount; got != DefaultSampleRows-2 {
		t.Fatalf("missing within default bound = %d, want %d", got, DefaultSampleRows-2)
	}
}

// TestBuildAllMissingColumn verifies the degenerate column: every sampled cell
// empty. The record still exists, types as String, and has no example.
func TestBuildAllMissingColumn(t *testing.T) {
	t.Parallel()

	ds := dataset.Sampled{
		Headers: []string{"note"},
		Rows:    [][]dataset.Value{textRow(""), {dataset.Missing()}, textRow("")},
	}

	recs, err := Build(ds, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rec := recs[0]

	if rec.Type != CategoryString {
		t.Errorf("type = %q, want %q", rec.Type, CategoryString)
	}
	if rec.MissingCount != 3 {
		t.Errorf("missing = %d, want 3", rec.MissingCount)
	}
	if !rec.Example.IsMissing() {
		t.Errorf("example = %v, want missing", rec.Example)
	}
	if len(rec.UniqueSample) != 0 {
		t.Errorf("unique sample = %v, want empty", rec.UniqueSample)
	}
}

// TestBuildUniqueSample verifies the distinct-value sample: first-seen order,
// dedup before the cap, and the cap at ten distinct values.
func TestBuildUniqueSample(t *testing.T) {
	t.Parallel()

	// 12 distinct city names, each preceded by a repeat of the first. Dedup
	// must not let the repeats consume cap slots.
	cities := []string{"oslo", "lima", "rome", "kyiv", "cairo", "quito", "dakar", "hanoi", "perth", "turin", "leeds", "minsk"}

	rows := make([][]dataset.Value, 0, 2*len(cities))
	for _, c := range cities {
		rows = append(rows, textRow("oslo"), textRow(c))
	}
	ds := dataset.Sampled{Headers: []string{"city"}, Rows: rows}

	recs, err := Build(ds, len(rows))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	got := make([]string, 0, len(recs[0].UniqueSample))
	for _, v := range recs[0].UniqueSample {
		got = append(got, v.String())
	}
	want := cities[:10]
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unique sample = %v, want %v", got, want)
	}
}

// TestBuildSkipsMisalignedRows verifies that rows whose width differs from the
// header count are dropped from the sample instead of failing the run.
func TestBuildSkipsMisalignedRows(t *testing.T) {
	t.Parallel()

	ds := dataset.Sampled{
		Headers: []string{"a", "b"},
		Rows: [][]dataset.Value{
			textRow("1", "x"),
			textRow("oops"),
			textRow("2", "y"),
		},
	}

	recs, err := Build(ds, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := recs[0].MissingCount; got != 0 {
		t.Fatalf("missing = %d, want 0 (misaligned row not counted)", got)
	}
	if got := len(recs[0].UniqueSample); got != 2 {
		t.Fatalf("unique sample size = %d, want 2", got)
	}
}
