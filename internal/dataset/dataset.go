package dataset

// Sampled is a bounded prefix of a tabular source: an ordered header row plus
// data rows aligned positionally to it.
//
// Invariants expected by consumers:
//   - Headers are unique and order-significant; output records preserve
//     header order end to end.
//   - Every row has the same length as Headers. Misaligned rows may appear
//     when a source is truncated mid-record; consumers skip them rather than
//     failing the run.
type Sampled struct {
	Headers []string
	Rows    [][]Value
}
