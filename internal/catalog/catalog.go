// Package catalog loads the clinical scenario catalog: a JSON object mapping
// category names to ordered lists of scenarios.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/gyeh/claimgen/internal/model"
)

// DefaultCostRange applies to scenarios that omit cost_range.
var DefaultCostRange = CostRange{Low: 100.0, High: 500.0}

// MaxDrugsPerScenario bounds the drug list so pharmacy claim IDs keep their
// two-digit drug sequence.
const MaxDrugsPerScenario = 100

// CostRange is an inclusive dollar range.
type CostRange struct {
	Low  float64
	High float64
}

// Scenario is one clinical vignette. Diagnoses are ICD-11 coded; the first
// is primary.
type Scenario struct {
	Category        string
	Diagnoses       []string
	Drugs           []string
	ServiceCategory string
	CostRange       CostRange
}

// Catalog is the flattened scenario list in document order.
type Catalog struct {
	Categories []string
	Scenarios  []Scenario
}

// rawScenario is the on-disk scenario object.
type rawScenario struct {
	Diagnoses       []string    `json:"diagnoses"`
	Drugs           []string    `json:"drugs"`
	ServiceCategory string      `json:"service_category"`
	CostRange       *[]*float64 `json:"cost_range"`
}

// Load reads and parses the catalog file at path. Any error is fatal to the
// run: a partial catalog is never returned.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("scenario catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog document. Categories are flattened in the order
// they appear in the document, which keeps generation reproducible; a plain
// map decode would not.
func Parse(r io.Reader) (*Catalog, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("catalog must be a JSON object of category -> scenarios")
	}

	c := &Catalog{}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read category name: %w", err)
		}
		category, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		if seen[category] {
			return nil, fmt.Errorf("duplicate category %q", category)
		}
		seen[category] = true

		var raws []*rawScenario
		if err := dec.Decode(&raws); err != nil {
			return nil, fmt.Errorf("category %q: %w", category, err)
		}
		if raws == nil {
			return nil, fmt.Errorf("category %q: scenarios must be a list, got null", category)
		}
		c.Categories = append(c.Categories, category)
		for i, raw := range raws {
			if raw == nil {
				return nil, fmt.Errorf("category %q scenario %d: null scenario", category, i)
			}
			s, err := raw.scenario(category)
			if err != nil {
				return nil, fmt.Errorf("category %q scenario %d: %w", category, i, err)
			}
			c.Scenarios = append(c.Scenarios, s)
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read catalog end: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after catalog object")
	}
	return c, nil
}

func (raw *rawScenario) scenario(category string) (Scenario, error) {
	s := Scenario{
		Category:        category,
		Diagnoses:       raw.Diagnoses,
		Drugs:           raw.Drugs,
		ServiceCategory: raw.ServiceCategory,
		CostRange:       DefaultCostRange,
	}
	if s.Diagnoses == nil {
		s.Diagnoses = []string{}
	}
	if s.Drugs == nil {
		s.Drugs = []string{}
	}
	// null list elements decode to "".
	for i, d := range s.Diagnoses {
		if strings.TrimSpace(d) == "" {
			return s, fmt.Errorf("diagnosis %d is empty or null", i)
		}
	}
	for i, d := range s.Drugs {
		if strings.TrimSpace(d) == "" {
			return s, fmt.Errorf("drug %d is empty or null", i)
		}
	}
	if len(s.Drugs) > MaxDrugsPerScenario {
		return s, fmt.Errorf("%d drugs exceeds limit of %d", len(s.Drugs), MaxDrugsPerScenario)
	}
	if raw.CostRange != nil {
		cr := *raw.CostRange
		if len(cr) != 2 {
			return s, fmt.Errorf("cost_range must have 2 elements, got %d", len(cr))
		}
		if cr[0] == nil || cr[1] == nil {
			return s, errors.New("cost_range bounds must be numbers, got null")
		}
		s.CostRange = CostRange{Low: *cr[0], High: *cr[1]}
	}
	if err := s.CostRange.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks that the range is finite, non-negative, ordered and holds
// at least one whole-cent amount.
func (r CostRange) Validate() error {
	for _, v := range []float64{r.Low, r.High} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("cost_range bound %v out of range", v)
		}
	}
	if r.Low > r.High {
		return fmt.Errorf("cost_range low %v greater than high %v", r.Low, r.High)
	}
	if lo, hi := r.Cents(); lo > hi {
		return fmt.Errorf("cost_range [%v, %v] holds no whole-cent amount", r.Low, r.High)
	}
	return nil
}

// centEpsilon absorbs float error in bound*100 (0.1*100 is 10.000000000000002).
const centEpsilon = 1e-6

// Cents returns the smallest and largest whole-cent amounts inside the range.
func (r CostRange) Cents() (int64, int64) {
	return int64(math.Ceil(r.Low*100 - centEpsilon)), int64(math.Floor(r.High*100 + centEpsilon))
}

// Contains reports whether v lies in the inclusive range.
func (r CostRange) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// Len returns the number of scenarios.
func (c *Catalog) Len() int {
	return len(c.Scenarios)
}

// Stats summarizes a catalog for the plan report.
type Stats struct {
	ByCategory         map[string]int
	DistinctDiagnoses  int
	DistinctDrugs      int
	MultiDiagnosis     int
	WithDrugs          int
	InpatientScenarios int
	MeanDrugs          float64
}

// Stats computes catalog statistics.
func (c *Catalog) Stats() Stats {
	st := Stats{ByCategory: make(map[string]int)}
	dx := make(map[string]bool)
	drugs := make(map[string]bool)
	totalDrugs := 0
	for _, s := range c.Scenarios {
		st.ByCategory[s.Category]++
		for _, d := range s.Diagnoses {
			dx[d] = true
		}
		for _, d := range s.Drugs {
			drugs[d] = true
		}
		if len(s.Diagnoses) > 1 {
			st.MultiDiagnosis++
		}
		if len(s.Drugs) > 0 {
			st.WithDrugs++
		}
		if s.ServiceCategory == model.InpatientCategory {
			st.InpatientScenarios++
		}
		totalDrugs += len(s.Drugs)
	}
	st.DistinctDiagnoses = len(dx)
	st.DistinctDrugs = len(drugs)
	if len(c.Scenarios) > 0 {
		st.MeanDrugs = float64(totalDrugs) / float64(len(c.Scenarios))
	}
	return st
}
