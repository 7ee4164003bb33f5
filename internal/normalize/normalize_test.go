package normalize

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNormalizeCode(t *testing.T) {
	cases := map[string]string{
		"S06.9X9A": "S069X9A",
		" e11.9 ":  "E119",
		"":         "",
		"I10":      "I10",
	}
	for in, want := range cases {
		if got := NormalizeCode(in); got != want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", in, got, want)
		}
	}
	if IsNormalizedCode("") || IsNormalizedCode("E11.9") || !IsNormalizedCode("E119") {
		t.Error("IsNormalizedCode misclassified")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		50:     "50.0",
		123.45: "123.45",
		123.4:  "123.4",
		0:      "0.0",
		10.01:  "10.01",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Errorf("FormatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestCents(t *testing.T) {
	if got := DollarsToCents(19.99); got != 1999 {
		t.Errorf("DollarsToCents(19.99) = %d", got)
	}
	if got := DollarsToCents(-2.5); got != -250 {
		t.Errorf("DollarsToCents(-2.5) = %d", got)
	}
	if got := RoundCents(123.456); got != 123.46 {
		t.Errorf("RoundCents(123.456) = %v", got)
	}
	if got := CentsToDollars(5000); got != 50 {
		t.Errorf("CentsToDollars(5000) = %v", got)
	}
}

func TestParseDate(t *testing.T) {
	want := Date(2026, time.April, 30)
	for _, s := range []string{"2026-04-30", "04/30/2026", "4/30/2026", "Apr 30, 2026"} {
		got := ParseDate(s)
		if got == nil || !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v", s, got)
		}
	}
	if ParseDate("") != nil || ParseDate("later") != nil {
		t.Error("expected nil for empty or unparseable input")
	}
}

func TestYearBounds(t *testing.T) {
	start, end := YearBounds(2024)
	if FormatDate(start) != "2024-01-01" || FormatDate(end) != "2024-12-31" {
		t.Errorf("bounds = %s..%s", FormatDate(start), FormatDate(end))
	}
	if d := DaysBetween(start, end); d != 365 {
		t.Errorf("leap-year days between = %d, want 365", d)
	}
}

func TestFileHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FileHash(path)
	if err != nil {
		t.Fatal(err)
	}
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("FileHash = %s", got)
	}
}
