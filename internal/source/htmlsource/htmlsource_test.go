package htmlsource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"datadict/internal/source"
)

func selectionFromHTML(t *testing.T, html, selector string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc.Find(selector).First()
}

//
// extractTable
//

// TestExtractTableWithHeaders verifies the common shape: <th> header cells
// and <td> body rows, with cell text whitespace collapsed.
func TestExtractTableWithHeaders(t *testing.T) {
	t.Parallel()

	html := `<table>
		<tr><th>ID</th><th>Full  Name</th></tr>
		<tr><td>1</td><td>  Alice
			Smith </td></tr>
		<tr><td>2</td><td>Bob</td></tr>
	</table>`

	ds := extractTable(selectionFromHTML(t, html, "table"), 0)

	if want := []string{"ID", "Full Name"}; !reflect.DeepEqual(ds.Headers, want) {
		t.Fatalf("headers = %v, want %v", ds.Headers, want)
	}
	if len(ds.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(ds.Rows))
	}
	if got := ds.Rows[0][1].String(); got != "Alice Smith" {
		t.Fatalf("cell = %q, want %q", got, "Alice Smith")
	}
}

// TestExtractTableHeaderlessTable verifies the fallback: when no <th> cells
// exist, the first <td> row becomes the header and is excluded from the data.
func TestExtractTableHeaderlessTable(t *testing.T) {
	t.Parallel()

	html := `<table>
		<tr><td>id</td><td>name</td></tr>
		<tr><td>1</td><td>alice</td></tr>
	</table>`

	ds := extractTable(selectionFromHTML(t, html, "table"), 0)

	if want := []string{"id", "name"}; !reflect.DeepEqual(ds.Headers, want) {
		t.Fatalf("headers = %v, want %v", ds.Headers, want)
	}
	if len(ds.Rows) != 1 {
		t.Fatalf("got %d rows, want 1 (header row excluded)", len(ds.Rows))
	}
	if got := ds.Rows[0][0].String(); got != "1" {
		t.Fatalf("first data cell = %q, want %q", got, "1")
	}
}

// TestExtractTableRowBound verifies that extraction stops once the sample
// bound is reached instead of walking the whole table.
func TestExtractTableRowBound(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("<table><tr><th>n</th></tr>")
	for i := 0; i < 50; i++ {
		b.WriteString("<tr><td>x</td></tr>")
	}
	b.WriteString("</table>")

	ds := extractTable(selectionFromHTML(t, b.String(), "table"), 5)
	if len(ds.Rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(ds.Rows))
	}
}

//
// Fetch
//

// TestFetchSelectsTable verifies selector targeting against a local document
// containing several tables.
func TestFetchSelectsTable(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<table id="nav"><tr><th>link</th></tr><tr><td>home</td></tr></table>
		<table id="data"><tr><th>id</th></tr><tr><td>7</td></tr></table>
	</body></html>`

	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	src, err := New(source.Config{Kind: "html", Locator: path, Selector: "table#data"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ds, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(ds.Headers) != 1 || ds.Headers[0] != "id" {
		t.Fatalf("headers = %v, want [id]", ds.Headers)
	}
	if got := ds.Rows[0][0].String(); got != "7" {
		t.Fatalf("cell = %q, want %q", got, "7")
	}
}

// TestFetchSelectorMiss verifies that a selector matching nothing reports the
// adapter-level not-found error.
func TestFetchSelectorMiss(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("<html><body><p>no tables here</p></body></html>"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	src, err := New(source.Config{Kind: "html", Locator: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := src.Fetch(context.Background()); !errors.Is(err, source.ErrNotFound) {
		t.Fatalf("Fetch = %v, want source.ErrNotFound", err)
	}
}

//
// Loader
//

// TestLoaderHTTP verifies HTTP loading, 404 mapping, and the error excerpt on
// other non-2xx statuses.
func TestLoaderHTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("<table><tr><th>a</th></tr></table>"))
		case "/boom":
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(nil, 5*time.Second)

	body, err := l.Load(context.Background(), srv.URL+"/ok")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(body, "<table>") {
		t.Fatalf("body = %q", body)
	}

	if _, err := l.Load(context.Background(), srv.URL+"/gone"); !errors.Is(err, source.ErrNotFound) {
		t.Fatalf("Load 404 = %v, want source.ErrNotFound", err)
	}

	_, err = l.Load(context.Background(), srv.URL+"/boom")
	if err == nil || !strings.Contains(err.Error(), "upstream exploded") {
		t.Fatalf("Load 502 = %v, want body excerpt in error", err)
	}
}

// TestLoaderMissingFile verifies the local-path branch maps a missing file to
// not-found.
func TestLoaderMissingFile(t *testing.T) {
	t.Parallel()

	l := NewLoader(nil, time.Second)
	if _, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "nope.html")); !errors.Is(err, source.ErrNotFound) {
		t.Fatalf("Load = %v, want source.ErrNotFound", err)
	}
}
