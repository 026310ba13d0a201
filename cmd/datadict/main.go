// Command datadict profiles a sampled dataset and emits its data dictionary.
//
// The input is selected with -kind/-source (csv file or URL, html table, or
// sqlite table), the output with -sink (csv to a file or stdout, or a
// postgres/sqlite/mssql dictionary table). A JSON profile file can carry the
// same settings; flags set on the command line win over the file.
//
// Database DSNs resolve in precedence order: the -dsn flag, then the DSN
// environment variable, then DSN_* component variables (DSN_HOST, DSN_PORT,
// DSN_USER, DSN_PASSWORD, DSN_DB, plus DSN_SSLMODE / DSN_ENCRYPT /
// DSN_SQLITE / DSN_PARAMS).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"datadict/internal/config"
	"datadict/internal/dataset"
	"datadict/internal/dictionary"
	"datadict/internal/fieldname"
	"datadict/internal/metrics"
	datadogmetrics "datadict/internal/metrics/datadog"
	"datadict/internal/render"
	"datadict/internal/source"
	_ "datadict/internal/source/csvsource"
	_ "datadict/internal/source/htmlsource"
	_ "datadict/internal/source/sqlitesource"
	"datadict/internal/storage"
	_ "datadict/internal/storage/all"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a JSON profile file")
		validate   = flag.Bool("validate", false, "validate the profile and exit")

		locator    = flag.String("source", "", "dataset locator: file path, URL, or DSN")
		kind       = flag.String("kind", "", "source kind: csv, html, or sqlite")
		table      = flag.String("table", "", "source table name (sqlite sources)")
		selector   = flag.String("selector", "", "CSS selector for html sources (default: table)")
		maxBytes   = flag.Int("bytes", 0, "max bytes to read from byte-oriented sources (default: adapter-specific)")
		sampleRows = flag.Int("sample-rows", 0, fmt.Sprintf("rows to analyze per column (default: %d)", dictionary.DefaultSampleRows))
		name       = flag.String("name", "", "logical dataset name (default: derived from the locator)")

		sink      = flag.String("sink", "", "output: csv, postgres, sqlite, or mssql (default: csv)")
		out       = flag.String("out", "", "output file for csv sinks (default: stdout)")
		dsn       = flag.String("dsn", "", "DSN for database sinks (overrides DSN env vars)")
		dictTable = flag.String("dict-table", "", "dictionary table name (default: <name>_dictionary)")

		metricsBackend = flag.String("metrics-backend", "none", "metrics backend: none or datadog")
		metricsTags    = flag.String("metrics-tags", "", "extra metrics tags, comma-separated (env:prod,team:data)")
		timeout        = flag.Duration("timeout", 60*time.Second, "overall run timeout")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "datadict: ", log.LstdFlags|log.Lmsgprefix)

	prof, err := loadProfile(*configPath)
	if err != nil {
		fatalf(logger, "%v", err)
	}
	applyFlagOverrides(&prof, map[string]string{
		"source":     *locator,
		"kind":       *kind,
		"table":      *table,
		"selector":   *selector,
		"name":       *name,
		"sink":       *sink,
		"out":        *out,
		"dict-table": *dictTable,
		"dsn":        *dsn,
	}, *maxBytes, *sampleRows)

	if prof.Source.Kind == "" {
		prof.Source.Kind = "csv"
	}
	prof.Sink.Kind = normalizeSink(prof.Sink.Kind)
	if prof.Sink.Kind != "csv" {
		prof.Sink.DSN = resolveDSN(prof.Sink.DSN, prof.Sink.Kind)
	}

	issues := config.ValidateProfile(prof)
	hadError := false
	for _, is := range issues {
		logger.Printf("config %s: %s: %s", is.Severity, is.Path, is.Message)
		if is.Severity == config.SeverityError {
			hadError = true
		}
	}
	if hadError {
		fatalf(logger, "invalid profile")
	}
	if *validate {
		logger.Printf("profile ok (%d warning(s))", len(issues))
		return
	}

	if prof.Name == "" {
		prof.Name = deriveName(prof.Source.Locator)
	}
	if prof.Sink.Table == "" {
		prof.Sink.Table = fieldname.Truncate(fieldname.Normalize(prof.Name) + "_dictionary")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	backend, err := buildMetricsBackend(ctx, *metricsBackend, prof.Name, *metricsTags)
	if err != nil {
		fatalf(logger, "metrics backend: %v", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Printf("metrics close: %v", err)
		}
	}()

	started := time.Now()
	recs, sampled, err := profile(ctx, prof)
	if err != nil {
		if errors.Is(err, dataset.ErrEmpty) {
			fatalf(logger, "dataset %s is empty: %v", prof.Name, err)
		}
		if errors.Is(err, source.ErrNotFound) {
			fatalf(logger, "source %s: %v", prof.Source.Locator, err)
		}
		fatalf(logger, "profile %s: %v", prof.Name, err)
	}

	emitMetrics(backend, recs, sampled, time.Since(started))

	if err := write(ctx, prof, recs, logger); err != nil {
		fatalf(logger, "write dictionary: %v", err)
	}
	logger.Printf("profiled %s: %d column(s), %d row(s) sampled in %s",
		prof.Name, len(recs), sampled, time.Since(started).Round(time.Millisecond))
}

func fatalf(logger *log.Logger, format string, args ...any) {
	logger.Printf(format, args...)
	os.Exit(1)
}

func loadProfile(path string) (config.Profile, error) {
	if path == "" {
		return config.Profile{}, nil
	}
	return config.Load(path)
}

// applyFlagOverrides folds explicitly-set flags into the profile. Flags not
// present on the command line leave the file values alone, which is why the
// string flags arrive pre-read and flag.Visit decides what applies.
func applyFlagOverrides(p *config.Profile, strs map[string]string, maxBytes, sampleRows int) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["source"] {
		p.Source.Locator = strs["source"]
	}
	if set["kind"] {
		p.Source.Kind = strs["kind"]
	}
	if set["table"] {
		p.Source.Table = strs["table"]
	}
	if set["selector"] {
		p.Source.Selector = strs["selector"]
	}
	if set["bytes"] {
		p.Source.MaxBytes = maxBytes
	}
	if set["sample-rows"] {
		p.SampleRows = sampleRows
	}
	if set["name"] {
		p.Name = strs["name"]
	}
	if set["sink"] {
		p.Sink.Kind = strs["sink"]
	}
	if set["out"] {
		p.Sink.Out = strs["out"]
	}
	if set["dict-table"] {
		p.Sink.Table = strs["dict-table"]
	}
	if set["dsn"] {
		p.Sink.DSN = strs["dsn"]
	}
}

// deriveName turns a locator into a logical dataset name: the base path
// component without extension, normalized. Falls back to "dataset".
func deriveName(locator string) string {
	base := locator
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		base = u.Path
	}
	base = filepath.Base(base)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if n := fieldname.Normalize(base); n != "" {
		return n
	}
	return "dataset"
}

func profile(ctx context.Context, prof config.Profile) ([]dictionary.Record, int, error) {
	src, err := source.New(source.Config{
		Kind:       prof.Source.Kind,
		Locator:    prof.Source.Locator,
		Table:      prof.Source.Table,
		Selector:   prof.Source.Selector,
		MaxBytes:   prof.Source.MaxBytes,
		SampleRows: prof.SampleRows,
	})
	if err != nil {
		return nil, 0, err
	}

	ds, err := src.Fetch(ctx)
	if err != nil {
		return nil, 0, err
	}

	recs, err := dictionary.Build(ds, prof.SampleRows)
	if err != nil {
		return nil, 0, err
	}

	sampled := len(ds.Rows)
	bound := prof.SampleRows
	if bound <= 0 {
		bound = dictionary.DefaultSampleRows
	}
	if sampled > bound {
		sampled = bound
	}
	return recs, sampled, nil
}

func write(ctx context.Context, prof config.Profile, recs []dictionary.Record, logger *log.Logger) error {
	switch normalizeSink(prof.Sink.Kind) {
	case "csv":
		w := os.Stdout
		if prof.Sink.Out != "" {
			f, err := os.Create(prof.Sink.Out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return render.CSV(w, recs)

	default:
		repo, err := storage.New(ctx, storage.Config{Kind: normalizeSink(prof.Sink.Kind), DSN: prof.Sink.DSN})
		if err != nil {
			return err
		}
		defer repo.Close()

		if err := repo.EnsureTable(ctx, prof.Sink.Table); err != nil {
			return err
		}
		n, err := repo.InsertRecords(ctx, prof.Sink.Table, recs)
		if err != nil {
			return err
		}
		logger.Printf("stored %d record(s) in %s", n, prof.Sink.Table)
		return nil
	}
}

func normalizeSink(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "csv":
		return "csv"
	case "pg", "postgres", "postgresql":
		return "postgres"
	case "mssql", "sqlserver":
		return "mssql"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return strings.ToLower(strings.TrimSpace(kind))
	}
}

func buildMetricsBackend(ctx context.Context, kind, job, tagsCSV string) (metrics.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "none":
		return metrics.Nop{}, nil
	case "datadog":
		return datadogmetrics.NewBackend(ctx, datadogmetrics.Options{
			JobName: "datadict",
			RunID:   uuid.NewString(),
			Tags:    append([]string{"dataset:" + job}, datadogmetrics.ParseTagsCSV(tagsCSV)...),
		})
	default:
		return nil, fmt.Errorf("unknown metrics backend %q", kind)
	}
}

func emitMetrics(b metrics.Backend, recs []dictionary.Record, sampled int, elapsed time.Duration) {
	for _, r := range recs {
		b.IncCounter(metrics.ColumnsTotal, 1, metrics.Labels{"type": string(r.Type)})
		b.IncCounter(metrics.MissingCellsTotal, float64(r.MissingCount), nil)
	}
	b.IncCounter(metrics.RowsSampledTotal, float64(sampled), nil)
	b.ObserveHistogram(metrics.RunDurationSeconds, elapsed.Seconds(), nil)
}

// resolveDSN picks the effective DSN for a database sink: the flag value
// first, then the DSN environment variable, then a DSN assembled from DSN_*
// component variables. Returns "" when nothing is configured.
func resolveDSN(flagDSN, kind string) string {
	if flagDSN != "" {
		return flagDSN
	}
	if v := strings.TrimSpace(os.Getenv("DSN")); v != "" {
		return v
	}
	switch kind {
	case "postgres":
		return buildPostgresDSN()
	case "mssql":
		return buildMSSQLDSN()
	case "sqlite":
		return buildSQLiteDSN()
	}
	return ""
}

func buildPostgresDSN() string {
	host := strings.TrimSpace(os.Getenv("DSN_HOST"))
	if host == "" {
		return ""
	}
	port := strings.TrimSpace(os.Getenv("DSN_PORT"))
	if port == "" {
		port = "5432"
	}

	u := url.URL{
		Scheme: "postgresql",
		Host:   host + ":" + port,
		Path:   "/" + strings.TrimSpace(os.Getenv("DSN_DB")),
	}
	user := strings.TrimSpace(os.Getenv("DSN_USER"))
	if user != "" {
		if pw := os.Getenv("DSN_PASSWORD"); pw != "" {
			u.User = url.UserPassword(user, pw)
		} else {
			u.User = url.User(user)
		}
	}

	q := url.Values{}
	if v := strings.TrimSpace(os.Getenv("DSN_SSLMODE")); v != "" {
		q.Set("sslmode", v)
	}
	appendRawParams(q, os.Getenv("DSN_PARAMS"))
	u.RawQuery = q.Encode()
	return u.String()
}

func buildMSSQLDSN() string {
	host := strings.TrimSpace(os.Getenv("DSN_HOST"))
	if host == "" {
		return ""
	}
	port := strings.TrimSpace(os.Getenv("DSN_PORT"))
	if port == "" {
		port = "1433"
	}

	u := url.URL{
		Scheme: "sqlserver",
		Host:   host + ":" + port,
	}
	user := strings.TrimSpace(os.Getenv("DSN_USER"))
	if user != "" {
		if pw := os.Getenv("DSN_PASSWORD"); pw != "" {
			u.User = url.UserPassword(user, pw)
		} else {
			u.User = url.User(user)
		}
	}

	q := url.Values{}
	if v := strings.TrimSpace(os.Getenv("DSN_DB")); v != "" {
		q.Set("database", v)
	}
	if v := strings.TrimSpace(os.Getenv("DSN_ENCRYPT")); v != "" {
		q.Set("encrypt", v)
	}
	appendRawParams(q, os.Getenv("DSN_PARAMS"))
	u.RawQuery = q.Encode()
	return u.String()
}

func buildSQLiteDSN() string {
	path := strings.TrimSpace(os.Getenv("DSN_SQLITE"))
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path
}

// appendRawParams merges "k=v&k2=v2" style extras into q. Malformed input is
// dropped rather than failing the run.
func appendRawParams(q url.Values, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	extra, err := url.ParseQuery(raw)
	if err != nil {
		return
	}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
}
