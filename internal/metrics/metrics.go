// Package metrics defines the minimal backend interface the profiler reports
// through. The core stays free of vendor-specific metrics code; binaries pick
// a backend at startup (datadog or none).
package metrics

// Labels are free-form key/value tags attached to an observation.
type Labels map[string]string

// Backend receives profiling observations.
//
// Implementations must be safe for concurrent use. Flush submits buffered
// data; Close stops any background work and performs a final Flush.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
	Close() error
}

// Metric names emitted by the profiler.
const (
	ColumnsTotal       = "datadict_columns_total"
	RowsSampledTotal   = "datadict_rows_sampled_total"
	MissingCellsTotal  = "datadict_missing_cells_total"
	RunDurationSeconds = "datadict_run_duration_seconds"
)

// Nop discards all observations. It is the default backend.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels) {}

func (Nop) ObserveHistogram(string, float64, Labels) {}

func (Nop) Flush() error { return nil }

func (Nop) Close() error { return nil }

var _ Backend = Nop{}
