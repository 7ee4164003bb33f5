// Package codemap translates ICD-11 diagnosis codes from the scenario
// catalog into the ICD-10-CM codes the claim tables carry.
package codemap

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/claimgen/internal/normalize"
)

// Fallback is the target code for any source code absent from the table
// (R69, illness, unspecified).
const Fallback = "R69"

// defaultTable maps ICD-11 codes used by the stock scenario catalog to
// ICD-10-CM codes.
var defaultTable = map[string]string{
	// Infectious
	"1A00": "A000", "1A01": "A001", "1A02": "A009", "1B11": "J101",
	"2A00": "B20", "2B20": "A150", "1D60": "A984",
	// Neoplasms
	"2B30": "C859", "2C60": "C61", "2D10": "C3490", "8A20": "C50919",
	// Blood
	"3A00": "D509", "3B60": "D619",
	// Endocrine and mental health
	"4A00": "E109", "4A01": "E119", "5A10": "F329", "5A11": "F319",
	// Nervous
	"6A40": "G40909", "8A00": "G20",
	// Circulatory
	"BA00": "I10", "BA41": "I219", "BA42": "I2510", "BC20": "I509",
	// Respiratory
	"CA22": "J449", "CA40": "J45909", "CB00": "J189",
	// Digestive
	"DA00": "K219", "DA40": "K5090",
	// Musculoskeletal
	"FA00": "M069", "FA20": "M179",
	// Genitourinary
	"GA00": "N189", "GA10": "N390",
	// Pregnancy
	"JA00": "O80",
	// Perinatal
	"KA00": "P0730", "KB00": "P0700",
	// Injury
	"NA00": "S069X9A", "ND90": "T3150",
	// Factors influencing health status
	"QA00": "Z0000",
}

// Mapper is a static, exact-match lookup from source to target codes.
// It is safe for concurrent reads once built.
type Mapper struct {
	table    map[string]string
	fallback string
}

// New returns a Mapper over table. Target codes are normalized (separators
// stripped) once here so Map never allocates a second time.
func New(table map[string]string, fallback string) *Mapper {
	m := &Mapper{
		table:    make(map[string]string, len(table)),
		fallback: normalize.NormalizeCode(fallback),
	}
	for src, dst := range table {
		m.table[src] = normalize.NormalizeCode(dst)
	}
	return m
}

// Default returns the Mapper for the stock ICD-11 to ICD-10-CM table.
func Default() *Mapper {
	return New(defaultTable, Fallback)
}

// Map returns the target code for src, or the fallback when src is not in
// the table. Map never fails.
func (m *Mapper) Map(src string) string {
	if dst, ok := m.table[src]; ok && dst != "" {
		return dst
	}
	return m.fallback
}

// Lookup returns the target for src and whether the table has it.
func (m *Mapper) Lookup(src string) (string, bool) {
	dst, ok := m.table[src]
	return dst, ok && dst != ""
}

// MapAll maps every code in order.
func (m *Mapper) MapAll(src []string) []string {
	out := make([]string, len(src))
	for i, c := range src {
		out[i] = m.Map(c)
	}
	return out
}

// Fallback returns the normalized fallback code.
func (m *Mapper) Fallback() string {
	return m.fallback
}

// Len returns the number of source codes in the table.
func (m *Mapper) Len() int {
	return len(m.table)
}

// Targets returns the sorted set of codes Map can return, fallback included.
func (m *Mapper) Targets() []string {
	seen := map[string]bool{m.fallback: true}
	for _, dst := range m.table {
		seen[dst] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// With returns a copy of m with extra entries added; extra wins on conflict.
func (m *Mapper) With(extra map[string]string) *Mapper {
	merged := make(map[string]string, len(m.table)+len(extra))
	for k, v := range m.table {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return New(merged, m.fallback)
}

// yamlTable is the on-disk override file: a flat source -> target mapping
// plus an optional fallback.
type yamlTable struct {
	Fallback string            `yaml:"fallback"`
	Codes    map[string]string `yaml:"codes"`
}

// LoadFile reads a YAML override file and merges it over the default table.
func LoadFile(path string) (*Mapper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read code map: %w", err)
	}
	var yt yamlTable
	if err := yaml.Unmarshal(data, &yt); err != nil {
		return nil, fmt.Errorf("parse code map: %w", err)
	}
	for src, dst := range yt.Codes {
		if normalize.NormalizeCode(dst) == "" {
			return nil, fmt.Errorf("code map entry %q has an empty target", src)
		}
	}
	m := Default().With(yt.Codes)
	if yt.Fallback != "" {
		m.fallback = normalize.NormalizeCode(yt.Fallback)
	}
	return m, nil
}
