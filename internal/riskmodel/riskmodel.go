// Package riskmodel turns run settings into the parameter prelude of the
// risk-adjustment SQL batch. It never connects to a database.
package riskmodel

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/claimgen/internal/normalize"
)

// Marker separates the hard-coded input block of the SQL script from the body.
const Marker = "/***** End User Inputs; Do not edit below this line ******/"

var (
	stateRe  = regexp.MustCompile(`^[A-Z]{2}$`)
	issuerRe = regexp.MustCompile(`^[0-9]{5}$`)
)

// Params are the run settings substituted into the script prelude.
type Params struct {
	BenefitYear int
	StartDate   time.Time
	EndDate     time.Time
	PaidThrough time.Time
	State       string
	Market      int
	IssuerHIOS  string
}

// Validate checks the settings for values the script cannot accept.
func (p *Params) Validate() error {
	if p.BenefitYear < 1900 || p.BenefitYear > 9999 {
		return fmt.Errorf("benefit_year %d out of range", p.BenefitYear)
	}
	if p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("end_date %s before start_date %s",
			normalize.FormatDate(p.EndDate), normalize.FormatDate(p.StartDate))
	}
	if p.PaidThrough.Before(p.StartDate) {
		return fmt.Errorf("paid_through_date %s before start_date %s",
			normalize.FormatDate(p.PaidThrough), normalize.FormatDate(p.StartDate))
	}
	if !stateRe.MatchString(p.State) {
		return fmt.Errorf("state %q must be two uppercase letters", p.State)
	}
	if p.Market != 1 && p.Market != 2 {
		return fmt.Errorf("market %d must be 1 (individual) or 2 (small group)", p.Market)
	}
	if !issuerRe.MatchString(p.IssuerHIOS) {
		return fmt.Errorf("issuer_hios_id %q must be five digits", p.IssuerHIOS)
	}
	return nil
}

type fileConfig struct {
	RunSettings *struct {
		BenefitYear    int `yaml:"benefit_year"`
		AnalysisPeriod struct {
			StartDate       string `yaml:"start_date"`
			EndDate         string `yaml:"end_date"`
			PaidThroughDate string `yaml:"paid_through_date"`
		} `yaml:"analysis_period"`
		PopulationFilters struct {
			State        string `yaml:"state"`
			Market       int    `yaml:"market"`
			IssuerHIOSID string `yaml:"issuer_hios_id"`
		} `yaml:"population_filters"`
	} `yaml:"run_settings"`
	Database *DBSettings `yaml:"database"`
}

// LoadRunSettings reads the run_settings section of a YAML config file.
func LoadRunSettings(path string) (*Params, error) {
	fc, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	return paramsFrom(fc)
}

// ParseRunSettings parses the run_settings section of YAML config data.
func ParseRunSettings(data []byte) (*Params, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return paramsFrom(&fc)
}

func readConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &fc, nil
}

func paramsFrom(fc *fileConfig) (*Params, error) {
	rs := fc.RunSettings
	if rs == nil {
		return nil, fmt.Errorf("missing run_settings section")
	}
	p := &Params{
		BenefitYear: rs.BenefitYear,
		State:       strings.ToUpper(strings.TrimSpace(rs.PopulationFilters.State)),
		Market:      rs.PopulationFilters.Market,
		IssuerHIOS:  strings.TrimSpace(rs.PopulationFilters.IssuerHIOSID),
	}
	dates := []struct {
		name string
		raw  string
		dst  *time.Time
	}{
		{"start_date", rs.AnalysisPeriod.StartDate, &p.StartDate},
		{"end_date", rs.AnalysisPeriod.EndDate, &p.EndDate},
		{"paid_through_date", rs.AnalysisPeriod.PaidThroughDate, &p.PaidThrough},
	}
	for _, d := range dates {
		t := normalize.ParseDate(d.raw)
		if t == nil {
			return nil, fmt.Errorf("analysis_period.%s: invalid date %q", d.name, d.raw)
		}
		*d.dst = *t
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Prelude renders the DECLARE block with every parameter as a T-SQL literal.
func Prelude(p Params) string {
	var b strings.Builder
	b.WriteString("SET NOCOUNT ON;\n\n")
	fmt.Fprintf(&b, "DECLARE @benefityear int = %d;\n", p.BenefitYear)
	fmt.Fprintf(&b, "DECLARE @startdate date = %s;\n", quote(normalize.FormatDate(p.StartDate)))
	fmt.Fprintf(&b, "DECLARE @enddate date = %s;\n", quote(normalize.FormatDate(p.EndDate)))
	fmt.Fprintf(&b, "DECLARE @paidthrough date = %s;\n\n", quote(normalize.FormatDate(p.PaidThrough)))
	fmt.Fprintf(&b, "DECLARE @state varchar(2) = %s;\n", quote(p.State))
	fmt.Fprintf(&b, "DECLARE @market int = %d;\n", p.Market)
	fmt.Fprintf(&b, "DECLARE @issuer_hios varchar(5) = %s;\n\n", quote(p.IssuerHIOS))
	b.WriteString("DECLARE @droptemp bit = 1;\n")
	b.WriteString("DECLARE @output_table varchar(50) = 'hcc_list';\n")
	b.WriteString("DECLARE @drop_existing bit = 0;")
	return b.String()
}

// BuildBatch replaces everything before Marker in sqlText with the prelude
// for p. It refuses to guess when the marker is missing.
func BuildBatch(sqlText string, p Params) (string, error) {
	_, tail, ok := strings.Cut(sqlText, Marker)
	if !ok {
		return "", fmt.Errorf("marker line %q not found in SQL script", Marker)
	}
	return Prelude(p) + "\n\n" + Marker + tail, nil
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
