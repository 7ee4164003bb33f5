package codemap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMap_Known(t *testing.T) {
	m := Default()
	cases := map[string]string{
		"1A00": "A000",
		"2A00": "B20",
		"NA00": "S069X9A",
		"BA00": "I10",
	}
	for src, want := range cases {
		if got := m.Map(src); got != want {
			t.Errorf("Map(%q) = %q, want %q", src, got, want)
		}
	}
}

func TestMap_UnknownFallsBack(t *testing.T) {
	m := Default()
	for _, src := range []string{"ZZ99", "", "1a00", "1A00 "} {
		if got := m.Map(src); got != Fallback {
			t.Errorf("Map(%q) = %q, want fallback %q", src, got, Fallback)
		}
	}
}

func TestNew_StripsSeparators(t *testing.T) {
	m := New(map[string]string{"X1": "S06.9X9A", "X2": "I25-10"}, "R.69")
	if got := m.Map("X1"); got != "S069X9A" {
		t.Errorf("Map(X1) = %q", got)
	}
	if got := m.Map("X2"); got != "I2510" {
		t.Errorf("Map(X2) = %q", got)
	}
	if got := m.Map("nope"); got != "R69" {
		t.Errorf("fallback = %q", got)
	}
}

func TestTargets_IncludesFallback(t *testing.T) {
	targets := Default().Targets()
	found := false
	for _, c := range targets {
		if c == Fallback {
			found = true
		}
	}
	if !found {
		t.Fatalf("targets %v missing fallback", targets)
	}
	for i := 1; i < len(targets); i++ {
		if targets[i-1] >= targets[i] {
			t.Fatalf("targets not sorted/unique at %d: %v", i, targets)
		}
	}
}

func TestLoadFile_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codes.yaml")
	os.WriteFile(path, []byte("fallback: R69.0\ncodes:\n  1A00: A00.1\n  9Z99: Z99.89\n"), 0644)

	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := m.Map("1A00"); got != "A001" {
		t.Errorf("override Map(1A00) = %q", got)
	}
	if got := m.Map("9Z99"); got != "Z9989" {
		t.Errorf("added Map(9Z99) = %q", got)
	}
	if got := m.Map("BA00"); got != "I10" {
		t.Errorf("default entry lost: %q", got)
	}
	if got := m.Map("unknown"); got != "R690" {
		t.Errorf("fallback = %q", got)
	}
}

func TestLoadFile_EmptyTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codes.yaml")
	os.WriteFile(path, []byte("codes:\n  1A00: \"..\"\n"), 0644)

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for empty target")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/codes.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLookup(t *testing.T) {
	m := Default()
	if dst, ok := m.Lookup("BA00"); !ok || dst != "I10" {
		t.Errorf("Lookup(BA00) = %q, %v", dst, ok)
	}
	if _, ok := m.Lookup("ZZ99"); ok {
		t.Error("Lookup(ZZ99) reported a mapping")
	}
}
