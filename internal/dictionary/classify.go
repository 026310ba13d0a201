// Package dictionary implements column type classification and data
// dictionary assembly for sampled tabular datasets.
//
// The package is responsible for:
//   - Classifying each column's non-missing sampled values into one of four
//     coarse categories (Date, Numeric, Boolean, String)
//   - Building one dictionary record per column: inferred type, an example
//     value, a missing-cell count, and a small distinct-value sample
//
// Design constraints:
//   - Classification is deterministic and rule-based, never probabilistic.
//   - A malformed value only weakens a type hypothesis; it must never fail
//     the run or suppress the record for its column.
//   - The package is side-effect free; callers own sourcing and sinking.
package dictionary

import (
	"math"
	"strconv"
	"strings"
	"time"

	"datadict/internal/dataset"
)

// Category is the coarse classification assigned to a column.
type Category string

const (
	CategoryDate    Category = "Date"
	CategoryNumeric Category = "Numeric"
	CategoryBoolean Category = "Boolean"
	CategoryString  Category = "String"
)

// Classify decides which single category best describes a column's
// non-missing sampled values.
//
// Three hypotheses (date, numeric, boolean) start true and are flipped false
// the first time a value disconfirms them; they are never re-enabled. On
// completion the first surviving hypothesis wins, checked in fixed order
// Date > Numeric > Boolean, with String as the unconditional fallback.
// Date-shaped strings are the most structured signal so they take priority;
// boolean tokens are a narrow closed set and rank last among the three.
//
// Values that arrive already typed carry their own evidence: a concrete
// timestamp rules out numeric and boolean, a concrete number rules out
// boolean and date, a concrete bool rules out numeric and date.
//
// The input must already exclude missing values. An empty input returns
// CategoryString: no evidence means the fallback, never an error. The result
// is a function of which disconfirmations fired, not of input order.
func Classify(values []dataset.Value) Category {
	if len(values) == 0 {
		return CategoryString
	}

	isDate := true
	isNumeric := true
	isBoolean := true

	for _, v := range values {
		switch v.Kind {
		case dataset.KindText:
			if isDate && !parseableDate(v.Text) {
				isDate = false
			}
			if isNumeric && !parseableNumber(v.Text) {
				isNumeric = false
			}
			if isBoolean && !booleanToken(v.Text) {
				isBoolean = false
			}
		case dataset.KindNumber:
			// A number's textual form never matches a calendar layout.
			isDate = false
			isBoolean = false
		case dataset.KindBool:
			isDate = false
			isNumeric = false
		case dataset.KindTime:
			isNumeric = false
			isBoolean = false
		}
	}

	switch {
	case isDate:
		return CategoryDate
	case isNumeric:
		return CategoryNumeric
	case isBoolean:
		return CategoryBoolean
	default:
		return CategoryString
	}
}

// dateLayouts is the fixed, locale-stable layout set for the date hypothesis.
// Calendar dates and timestamps both count as date evidence.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"02.01.2006 15:04:05",
}

func parseableDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, lay := range dateLayouts {
		if _, err := time.Parse(lay, s); err == nil {
			return true
		}
	}
	return false
}

// parseableNumber accepts finite real numbers only. strconv parses "inf" and
// "nan" tokens, which are not numeric evidence for profiling purposes.
func parseableNumber(s string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return false
	}
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func booleanToken(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "false", "yes", "no":
		return true
	default:
		return false
	}
}
