// Package csvsource samples CSV datasets from local files or HTTP(S) URLs.
//
// Sampling is bounded: only the first MaxBytes bytes are fetched, cut back to
// the last complete line so a half-record at the end never produces a
// misaligned row. All cells surface as textual values; empty cells are the
// missing marker.
package csvsource

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"datadict/internal/dataset"
	"datadict/internal/source"
)

const defaultMaxBytes = 20000

func init() {
	source.Register("csv", New)
}

// CSV reads a bounded byte prefix of a CSV source and parses it into a
// sampled dataset.
type CSV struct {
	locator  string
	maxBytes int
}

// New constructs the csv adapter from cfg. Bare paths are treated as file://
// locators.
func New(cfg source.Config) (source.Source, error) {
	loc := strings.TrimSpace(cfg.Locator)
	if loc == "" {
		return nil, fmt.Errorf("csv source: empty locator")
	}
	n := cfg.MaxBytes
	if n <= 0 {
		n = defaultMaxBytes
	}
	return &CSV{locator: loc, maxBytes: n}, nil
}

// peekFn is a small overridable seam used to fetch the first N bytes of the
// source. Tests can replace it to avoid real I/O.
var peekFn = peek

func (c *CSV) Fetch(ctx context.Context) (dataset.Sampled, error) {
	b, err := peekFn(ctx, c.locator, c.maxBytes)
	if err != nil {
		return dataset.Sampled{}, fmt.Errorf("peek: %w", err)
	}

	// Cut sample at last newline to avoid a half-line record at the end.
	if i := bytes.LastIndexByte(b, '\n'); i > 0 {
		b = b[:i+1]
	}

	headers, rows, err := readSample(b)
	if err != nil {
		return dataset.Sampled{}, fmt.Errorf("parse csv sample: %w", err)
	}
	return dataset.Sampled{Headers: headers, Rows: rows}, nil
}

// peek fetches the first n bytes from a file path, file:// URL, or http(s)
// URL.
func peek(ctx context.Context, locator string, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("peek: n must be > 0")
	}

	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return peekHTTP(ctx, locator, n)
	}

	path := strings.TrimPrefix(locator, "file://")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open %s: %w", path, source.ErrNotFound)
		}
		return nil, err
	}
	defer f.Close()

	lr := &io.LimitedReader{R: f, N: int64(n)}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lr); err != nil && err != io.EOF {
		return nil, err
	}
	return buf.Bytes(), nil
}

func peekHTTP(ctx context.Context, url string, n int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", "datadict/1.0")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("http status 404: %w", source.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	lr := &io.LimitedReader{R: resp.Body, N: int64(n)}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lr); err != nil && err != io.EOF {
		return nil, err
	}
	return buf.Bytes(), nil
}

// readSample parses CSV bytes into a header row and aligned data rows.
//
// Parsing is best-effort, designed for sampling:
//   - records with the wrong field count are skipped
//   - the sample is expected to already be cut to a newline boundary
func readSample(data []byte) ([]string, [][]dataset.Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // we validate manually
	r.LazyQuotes = true

	headers, err := r.Read()
	if err != nil {
		return nil, nil, err
	}
	for i := range headers {
		h := headers[i]
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([][]dataset.Value, 0, 64)
	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return headers, rows, err
		}
		if len(rec) != len(headers) {
			continue
		}
		row := make([]dataset.Value, len(rec))
		for i := range rec {
			row[i] = dataset.Text(strings.TrimSpace(rec[i]))
		}
		rows = append(rows, row)
	}

	return headers, rows, nil
}
