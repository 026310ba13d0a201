package fieldname

import (
	"strings"
	"testing"
	"unicode/utf8"
)

//
// Normalize
//

// TestNormalize verifies identifier normalization: diacritic folding,
// separator collapsing, character filtering, and the leading-digit rule.
func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already safe", "customer_id", "customer_id"},
		{"upper case", "CustomerID", "customerid"},
		{"spaces", "First Name", "first_name"},
		{"repeated separators", "a - b / c", "a_b_c"},
		{"diacritics", "Prénom Médecin", "prenom_medecin"},
		{"dots and colons", "etl.run:2024", "etl_run_2024"},
		{"leading digit", "2024 report", "_2024_report"},
		{"symbols dropped", "price (€)", "price"},
		{"trim underscores", "__x__", "x"},
		{"empty", "", ""},
		{"only symbols", "***", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

//
// Truncate
//

// TestTruncate verifies the 63-byte backend identifier bound and that
// truncation never splits a multi-byte rune.
func TestTruncate(t *testing.T) {
	t.Parallel()

	short := "abc"
	if got := Truncate(short); got != short {
		t.Fatalf("Truncate(%q) = %q, want unchanged", short, got)
	}

	long := strings.Repeat("a", 100)
	if got := Truncate(long); len(got) != 63 {
		t.Fatalf("len(Truncate(long)) = %d, want 63", len(Truncate(long)))
	}

	// 62 ASCII bytes followed by a 2-byte rune straddling the cut.
	straddle := strings.Repeat("a", 62) + "é"
	got := Truncate(straddle)
	if len(got) > 63 {
		t.Fatalf("len = %d, want <= 63", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("Truncate produced invalid UTF-8: %q", got)
	}
}
