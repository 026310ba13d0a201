// Package datadog implements a Datadog backend for the internal/metrics
// package.
//
// Profiling runs are usually short-lived, but nothing stops an operator from
// pointing the CLI at many sources in a loop, so the backend behaves like a
// long-running one:
//   - observations are buffered in-memory (fast, lock-protected)
//   - a ticker Flush()es periodically (default: once per minute)
//   - Close() stops the loop and performs one final Flush()
//
// Concurrency model:
//   - callers may IncCounter/ObserveHistogram at any time
//   - Flush snapshots+resets buffers under a mutex, then submits out-of-lock
package datadog

import (
	"context"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"datadict/internal/metrics"
)

// Options controls Datadog backend configuration.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric.
	// If empty, defaults to "datadict".
	JobName string

	// RunID becomes tag "run:<id>" on every metric when set.
	RunID string

	// Tags are extra Datadog tags (e.g. []string{"env:prod"}).
	Tags []string

	// FlushEvery controls how often buffered metrics are submitted.
	// If <= 0, defaults to 60 seconds.
	FlushEvery time.Duration

	// The following fields are unexported test seams. Production code never
	// sets them; unit tests use them to avoid real network submission and
	// nondeterministic clocks/tickers.
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker
	submitter metricsSubmitter
}

// metricsSubmitter is the minimal interface needed to submit metrics.
//
// The Datadog SDK exposes a concrete *datadogV2.MetricsApi, which cannot be
// stubbed without real HTTP. Backend depends on this interface instead,
// enabling deterministic tests with a fake submitter.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api metricsSubmitter
	ctx context.Context

	flushEvery time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	baseTags []string

	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker

	mu sync.Mutex

	// columnCounts is keyed by inferred type category.
	columnCounts map[string]float64
	rowsSampled  float64
	missingCells float64
	runDurations []float64
}

func resolveEnvTag() string {
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		return "env:" + v
	}
	if v := strings.TrimSpace(os.Getenv("DD_ENV")); v != "" {
		return "env:" + v
	}
	return "env:unknown"
}

// NewBackend constructs a Datadog backend using the official client.
//
// Edge cases:
//   - If opts.FlushEvery <= 0, defaults to 60s.
//   - If opts.JobName is empty, defaults to "datadict".
//   - Environment tag selection uses ENV then DD_ENV, otherwise env:unknown.
//
// Network errors occur during Flush(), not here.
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "datadict"
	}

	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	baseTags := make([]string, 0, 3+len(opts.Tags))
	baseTags = append(baseTags, resolveEnvTag(), "job:"+job)
	if opts.RunID != "" {
		baseTags = append(baseTags, "run:"+opts.RunID)
	}
	baseTags = append(baseTags, opts.Tags...)

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	newTicker := opts.newTicker
	if newTicker == nil {
		newTicker = time.NewTicker
	}

	submitter := opts.submitter
	if submitter == nil {
		client := dd.NewAPIClient(dd.NewConfiguration())
		submitter = datadogV2.NewMetricsApi(client)
	}

	b := &Backend{
		api:        submitter,
		ctx:        dd.NewDefaultContext(parent),
		flushEvery: flushEvery,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),

		baseTags: baseTags,

		now:       nowFn,
		newTicker: newTicker,

		columnCounts: make(map[string]float64),
	}

	go b.loop()
	return b, nil
}

func (b *Backend) loop() {
	defer close(b.doneCh)

	t := b.newTicker(b.flushEvery)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// Close stops the background flush loop and performs one final Flush().
// Close once; a second call panics on the closed channel, as usual for
// process-lifetime backends.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch name {
	case metrics.ColumnsTotal:
		kind := labels["type"]
		if kind == "" {
			kind = "unknown"
		}
		b.columnCounts[kind] += delta

	case metrics.RowsSampledTotal:
		b.rowsSampled += delta

	case metrics.MissingCellsTotal:
		b.missingCells += delta

	default:
		// Unknown metric names are dropped.
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if value < 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch name {
	case metrics.RunDurationSeconds:
		b.runDurations = append(b.runDurations, value)

	default:
		// Unknown metric names are dropped.
	}
}

// snapshot is the buffered metric state used to build one flush payload.
// Flush() resets buffers under the lock but submits out-of-lock; snapshot
// separates collect+reset from payload building+submission.
type snapshot struct {
	columnCounts map[string]float64
	rowsSampled  float64
	missingCells float64
	runDurations []float64
}

func (b *Backend) snapshotAndReset() snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := snapshot{
		columnCounts: b.columnCounts,
		rowsSampled:  b.rowsSampled,
		missingCells: b.missingCells,
		runDurations: b.runDurations,
	}

	b.columnCounts = make(map[string]float64)
	b.rowsSampled = 0
	b.missingCells = 0
	b.runDurations = nil

	return s
}

func (s snapshot) isEmpty() bool {
	return len(s.columnCounts) == 0 &&
		s.rowsSampled == 0 &&
		s.missingCells == 0 &&
		len(s.runDurations) == 0
}

// Flush submits buffered metrics to Datadog and resets local buffers.
//
// Buffers reset even if submission fails, to avoid blocking future writes;
// profiling metrics are not worth at-least-once delivery machinery.
func (b *Backend) Flush() error {
	snap := b.snapshotAndReset()
	if snap.isEmpty() {
		return nil
	}

	series := b.buildSeries(snap, b.now().Unix())
	payload := datadogV2.MetricPayload{Series: series}

	_, _, err := b.api.SubmitMetrics(b.ctx, payload, *datadogV2.NewSubmitMetricsOptionalParameters())
	return err
}

// buildSeries constructs Datadog series for a snapshot at a fixed timestamp.
// It is pure (no locks, no network, no clocks) and centralizes naming and
// tagging, which is an operational contract.
func (b *Backend) buildSeries(s snapshot, nowUnix int64) []datadogV2.MetricSeries {
	series := make([]datadogV2.MetricSeries, 0, len(s.columnCounts)+8)

	for kind, v := range s.columnCounts {
		if v == 0 {
			continue
		}
		tags := withTags(b.baseTags, "type:"+kind)
		series = append(series, countSeries("datadict.columns.total", v, tags, nowUnix))
	}

	if s.rowsSampled != 0 {
		series = append(series, countSeries("datadict.rows.sampled", s.rowsSampled, b.baseTags, nowUnix))
	}
	if s.missingCells != 0 {
		series = append(series, countSeries("datadict.cells.missing", s.missingCells, b.baseTags, nowUnix))
	}

	if len(s.runDurations) > 0 {
		cp := append([]float64(nil), s.runDurations...)
		sort.Float64s(cp)

		series = append(series, gaugeSeries("datadict.run.duration_seconds.p50", percentileNearestRank(cp, 0.50), b.baseTags, nowUnix))
		series = append(series, gaugeSeries("datadict.run.duration_seconds.p95", percentileNearestRank(cp, 0.95), b.baseTags, nowUnix))
		series = append(series, gaugeSeries("datadict.run.duration_seconds.max", cp[len(cp)-1], b.baseTags, nowUnix))
		series = append(series, gaugeSeries("datadict.run.duration_seconds.samples", float64(len(cp)), b.baseTags, nowUnix))
	}

	return series
}

func countSeries(metric string, value float64, tags []string, nowUnix int64) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: metric,
		Type:   datadogV2.METRICINTAKETYPE_COUNT.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
		},
		Tags: tags,
	}
}

func gaugeSeries(metric string, value float64, tags []string, nowUnix int64) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: metric,
		Type:   datadogV2.METRICINTAKETYPE_GAUGE.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
		},
		Tags: tags,
	}
}

func withTags(base []string, extras ...string) []string {
	out := make([]string, 0, len(base)+len(extras))
	out = append(out, base...)
	out = append(out, extras...)
	return out
}

func percentileNearestRank(s []float64, p float64) float64 {
	n := len(s)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return s[0]
	}
	if p >= 1 {
		return s[n-1]
	}
	idx := int(p*float64(n-1) + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return s[idx]
}

var _ metrics.Backend = (*Backend)(nil)

// ParseTagsCSV parses comma-separated tags like "env:prod,service:datadict".
func ParseTagsCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
