package catalog

import (
	"strings"
	"testing"
)

func TestParse_PreservesDocumentOrder(t *testing.T) {
	doc := `{
		"zeta":  [{"diagnoses": ["Z1"]}, {"diagnoses": ["Z2"]}],
		"alpha": [{"diagnoses": ["A1"]}],
		"mid":   [{"diagnoses": ["M1"]}]
	}`
	c, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	wantCats := []string{"zeta", "alpha", "mid"}
	for i, cat := range wantCats {
		if c.Categories[i] != cat {
			t.Fatalf("categories = %v, want %v", c.Categories, wantCats)
		}
	}
	wantDx := []string{"Z1", "Z2", "A1", "M1"}
	if c.Len() != len(wantDx) {
		t.Fatalf("Len = %d, want %d", c.Len(), len(wantDx))
	}
	for i, dx := range wantDx {
		if got := c.Scenarios[i].Diagnoses[0]; got != dx {
			t.Errorf("scenario %d primary = %q, want %q", i, got, dx)
		}
	}
	if c.Scenarios[2].Category != "alpha" {
		t.Errorf("scenario 2 category = %q", c.Scenarios[2].Category)
	}
}

func TestParse_Defaults(t *testing.T) {
	c, err := Parse(strings.NewReader(`{"x": [{"diagnoses": ["1A00"]}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := c.Scenarios[0]
	if s.CostRange != DefaultCostRange {
		t.Errorf("cost range = %+v, want default", s.CostRange)
	}
	if s.Drugs == nil || len(s.Drugs) != 0 {
		t.Errorf("drugs = %v, want empty", s.Drugs)
	}
	if s.ServiceCategory != "" {
		t.Errorf("service category = %q", s.ServiceCategory)
	}
}

func TestParse_ExplicitFields(t *testing.T) {
	doc := `{"cardio": [{"diagnoses": ["BA41", "BA42"], "drugs": ["Aspirin", "Atorvastatin"], "service_category": "Inpatient", "cost_range": [50, 50]}]}`
	c, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := c.Scenarios[0]
	if len(s.Diagnoses) != 2 || len(s.Drugs) != 2 {
		t.Fatalf("unexpected scenario %+v", s)
	}
	if s.CostRange.Low != 50 || s.CostRange.High != 50 {
		t.Errorf("cost range = %+v", s.CostRange)
	}
	if !s.CostRange.Contains(50) || s.CostRange.Contains(50.01) {
		t.Error("Contains is not inclusive on a point range")
	}
}

func TestParse_Empty(t *testing.T) {
	c, err := Parse(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d", c.Len())
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"not object":     `[1, 2]`,
		"truncated":      `{"x": [{"diagnoses": ["1A00"]}`,
		"bad range len":  `{"x": [{"cost_range": [1]}]}`,
		"inverted range": `{"x": [{"cost_range": [500, 100]}]}`,
		"negative range": `{"x": [{"cost_range": [-5, 10]}]}`,
		"bad type":       `{"x": [{"diagnoses": "1A00"}]}`,
		"not a list":     `{"x": {"diagnoses": ["1A00"]}}`,
		"duplicate":      `{"x": [], "x": []}`,
		"trailing":       `{"x": []} {}`,
		"empty input":    ``,
		"null scenario":  `{"x": [null]}`,
		"null category":  `{"x": null}`,
		"null diagnosis": `{"x": [{"diagnoses": [null]}]}`,
		"empty drug":     `{"x": [{"diagnoses": ["1A00"], "drugs": [""]}]}`,
		"null bound":     `{"x": [{"cost_range": [null, 5]}]}`,
		"no whole cent":  `{"x": [{"cost_range": [0.001, 0.004]}]}`,
	}
	for name, doc := range cases {
		if _, err := Parse(strings.NewReader(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoad_Fixture(t *testing.T) {
	c, err := Load("../../testdata/scenarios.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 18 {
		t.Errorf("Len = %d, want 18", c.Len())
	}
	st := c.Stats()
	if st.ByCategory["endocrine"] != 2 {
		t.Errorf("endocrine count = %d", st.ByCategory["endocrine"])
	}
	if st.InpatientScenarios == 0 || st.WithDrugs == 0 || st.MultiDiagnosis == 0 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load("/nonexistent/scenarios.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCostRange_Cents(t *testing.T) {
	cases := []struct {
		r      CostRange
		lo, hi int64
	}{
		{CostRange{Low: 0.1, High: 0.3}, 10, 30},
		{CostRange{Low: 100, High: 500}, 10000, 50000},
		{CostRange{Low: 10.005, High: 10.019}, 1001, 1001},
		{CostRange{Low: 50, High: 50}, 5000, 5000},
	}
	for _, c := range cases {
		lo, hi := c.r.Cents()
		if lo != c.lo || hi != c.hi {
			t.Errorf("%+v.Cents() = %d, %d, want %d, %d", c.r, lo, hi, c.lo, c.hi)
		}
		if err := c.r.Validate(); err != nil {
			t.Errorf("%+v: %v", c.r, err)
		}
	}
	if err := (CostRange{Low: 0.001, High: 0.004}).Validate(); err == nil {
		t.Error("expected error for a range with no whole-cent amount")
	}
}
