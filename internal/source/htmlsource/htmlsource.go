// Package htmlsource samples tabular data published as an HTML <table>.
//
// The adapter fetches a document (or reads a local file), locates the target
// table, and maps header cells and body rows into a sampled dataset. All
// cells surface as textual values.
package htmlsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"datadict/internal/dataset"
	"datadict/internal/source"
)

const defaultTimeout = 30 * time.Second

func init() {
	source.Register("html", New)
}

// Table extracts one HTML table into a sampled dataset.
type Table struct {
	locator  string
	selector string
	rows     int
	loader   *Loader
}

// New constructs the html adapter from cfg. Selector defaults to "table"
// (first table in the document).
func New(cfg source.Config) (source.Source, error) {
	loc := strings.TrimSpace(cfg.Locator)
	if loc == "" {
		return nil, fmt.Errorf("html source: empty locator")
	}
	sel := strings.TrimSpace(cfg.Selector)
	if sel == "" {
		sel = "table"
	}
	return &Table{
		locator:  loc,
		selector: sel,
		rows:     cfg.SampleRows,
		loader:   NewLoader(nil, defaultTimeout),
	}, nil
}

func (t *Table) Fetch(ctx context.Context) (dataset.Sampled, error) {
	html, err := t.loader.Load(ctx, t.locator)
	if err != nil {
		return dataset.Sampled{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return dataset.Sampled{}, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find(t.selector).First()
	if table.Length() == 0 {
		return dataset.Sampled{}, fmt.Errorf("selector %q matched no table: %w", t.selector, source.ErrNotFound)
	}

	return extractTable(table, t.rows), nil
}

// extractTable maps an HTML table into headers and rows.
//
// Headers come from <th> cells when present, otherwise from the first row's
// <td> cells. Row order is preserved; rows beyond the bound are not read.
func extractTable(table *goquery.Selection, maxRows int) dataset.Sampled {
	var headers []string
	headerInBody := false

	table.Find("th").Each(func(_ int, s *goquery.Selection) {
		headers = append(headers, cellText(s))
	})

	trs := table.Find("tr").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find("td").Length() > 0
	})

	if len(headers) == 0 && trs.Length() > 0 {
		trs.First().Find("td").Each(func(_ int, s *goquery.Selection) {
			headers = append(headers, cellText(s))
		})
		headerInBody = true
	}

	var rows [][]dataset.Value
	trs.EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if headerInBody && i == 0 {
			return true
		}
		if maxRows > 0 && len(rows) >= maxRows {
			return false
		}
		row := make([]dataset.Value, 0, len(headers))
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			row = append(row, dataset.Text(cellText(td)))
		})
		rows = append(rows, row)
		return true
	})

	return dataset.Sampled{Headers: headers, Rows: rows}
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// Loader fetches or reads HTML with a consistent timeout policy.
type Loader struct {
	client  *http.Client
	timeout time.Duration
}

// NewLoader creates a Loader. If client is nil, http.DefaultClient is used.
func NewLoader(client *http.Client, timeout time.Duration) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{client: client, timeout: timeout}
}

// Load returns the HTML source for either a local path/file:// locator or a
// fetched URL.
//
// On non-2xx HTTP responses, Load returns an error that includes the status
// code and up to 4KB of the response body for debugging.
func (l *Loader) Load(ctx context.Context, locator string) (string, error) {
	if !strings.HasPrefix(locator, "http://") && !strings.HasPrefix(locator, "https://") {
		path := strings.TrimPrefix(locator, "file://")
		b, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("open %s: %w", path, source.ErrNotFound)
			}
			return "", fmt.Errorf("read file: %w", err)
		}
		return string(b), nil
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", "datadict/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("http status 404: %w", source.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(b), nil
}
