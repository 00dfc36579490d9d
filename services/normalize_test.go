package services

import (
	"testing"

	"invoice-extraction-platform/models"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.234,56", 1234.56, true},
		{"950,00", 950, true},
		{"1200", 1200, true},
		{" 42,5 ", 42.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"12,34,56", 0, false},
	}

	for _, tc := range cases {
		got := ParsePrice(tc.in)
		if !tc.ok {
			if got != nil {
				t.Fatalf("ParsePrice(%q) = %v, expected nil", tc.in, *got)
			}
			continue
		}
		if got == nil {
			t.Fatalf("ParsePrice(%q) = nil, expected %v", tc.in, tc.want)
		}
		if *got != tc.want {
			t.Fatalf("ParsePrice(%q) = %v, expected %v", tc.in, *got, tc.want)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	if got := ParseQuantity("3"); got == nil || *got != 3 {
		t.Fatalf("ParseQuantity(3) = %v, expected 3", got)
	}
	if got := ParseQuantity(" 7 "); got == nil || *got != 7 {
		t.Fatalf("ParseQuantity with spaces = %v, expected 7", got)
	}
	if got := ParseQuantity("3.5"); got != nil {
		t.Fatalf("ParseQuantity(3.5) = %v, expected nil", *got)
	}
	if got := ParseQuantity(""); got != nil {
		t.Fatalf("ParseQuantity of empty = %v, expected nil", *got)
	}
}

func TestMatchCanonical(t *testing.T) {
	canonical := []string{"DURIAN", "PIANTA MAIORCA"}

	name, ok := MatchCanonical("Rivestimento DURIAN extra", canonical)
	if !ok || name != "DURIAN" {
		t.Fatalf("expected DURIAN match, got %q ok=%v", name, ok)
	}

	name, ok = MatchCanonical("pianta maiorca cat. B", canonical)
	if !ok || name != "PIANTA MAIORCA" {
		t.Fatalf("expected case-insensitive match, got %q ok=%v", name, ok)
	}

	name, ok = MatchCanonical("VELLUTO", canonical)
	if ok {
		t.Fatalf("unexpected match %q", name)
	}
	if name != "VELLUTO" {
		t.Fatalf("no-match must return the original name, got %q", name)
	}
}

func TestMatchCanonicalFirstWins(t *testing.T) {
	// Both entries are substrings; list order decides
	name, ok := MatchCanonical("DIVANO GIOIA PLUS", []string{"DIVANO GIOIA", "DIVANO GIOIA PLUS"})
	if !ok || name != "DIVANO GIOIA" {
		t.Fatalf("expected first-listed match, got %q ok=%v", name, ok)
	}
}

func TestNormalizeCoverings(t *testing.T) {
	coverings := []models.Covering{
		{Name: "Tessuto DURIAN col. 12", Code: "D12", Count: 2},
		{Name: "sconosciuto", Code: "X", Count: 1},
		{Name: "", Code: "E", Count: 1},
	}

	got := NormalizeCoverings(coverings, []string{"DURIAN"})
	if len(got) != 1 {
		t.Fatalf("expected 1 covering, got %d", len(got))
	}
	if got[0].Name != "DURIAN" || got[0].Code != "D12" || got[0].Count != 2 {
		t.Fatalf("unexpected covering %+v", got[0])
	}
}
