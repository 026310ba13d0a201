// Package render materializes a data dictionary for human consumption.
package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"datadict/internal/dataset"
	"datadict/internal/dictionary"
)

// Header is the column header row of the rendered dictionary, in the order
// dictionary consumers expect to read it.
var Header = []string{
	"Field Name",
	"Data Type",
	"Description",
	"Example Value",
	"Missing Count",
	"Unique Values (sample)",
}

// CSV writes the dictionary as CSV: one header row, then one row per record
// in the given order. Unique values are joined with ", " inside one cell.
func CSV(w io.Writer, recs []dictionary.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range recs {
		row := []string{
			r.Field,
			string(r.Type),
			r.Description,
			r.Example.String(),
			strconv.Itoa(r.MissingCount),
			JoinUnique(r.UniqueSample),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %s: %w", r.Field, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// JoinUnique renders a distinct-value sample the way the dictionary sheet
// does: canonical forms joined with ", ".
func JoinUnique(vals []dataset.Value) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, ", ")
}
