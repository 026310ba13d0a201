// Package dataset defines the in-memory representation of a sampled tabular
// dataset exchanged between input adapters and the dictionary core.
//
// A sample is a bounded prefix of a larger source. Cells are tagged variants:
// a source may deliver a value as raw text or as a type already concrete to
// the backing store (SQLite integers, driver timestamps, ...). The dictionary
// core switches on the variant tag instead of inspecting runtime types.
package dataset

import (
	"errors"
	"strconv"
	"time"
)

// ErrEmpty reports a dataset that has headers but no data rows. Profiling
// such a dataset is a terminal failure of the run; callers surface it.
var ErrEmpty = errors.New("dataset has no data rows")

// Kind tags the concrete variant held by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindText
	KindNumber
	KindBool
	KindTime
)

// Value is one raw cell of a sampled dataset.
//
// Exactly one payload field is meaningful, selected by Kind. A Text value
// holding the empty string is treated as missing (the empty-string marker),
// the same as an explicit KindMissing cell.
type Value struct {
	Kind Kind
	Text string
	Num  float64
	Bool bool
	Time time.Time
}

// Missing returns the absent-cell marker.
func Missing() Value { return Value{Kind: KindMissing} }

// Text wraps a textual token. The empty string is the missing marker.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Number wraps a value that arrived numerically typed from the source.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Bool wraps a value that arrived boolean typed from the source.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Time wraps a value that arrived temporally typed from the source.
func Time(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// IsMissing reports whether the cell is excluded from type evidence and
// distinct-value sampling. Missing cells are still counted per column.
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing || (v.Kind == KindText && v.Text == "")
}

// String renders the canonical textual form of the value. The canonical form
// defines value equality for distinct-value sampling and is what sinks write.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindTime:
		return v.Time.Format(time.RFC3339)
	default:
		return ""
	}
}
