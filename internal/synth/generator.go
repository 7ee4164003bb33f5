// Package synth generates the synthetic enrollment and claims dataset.
//
// Every random draw goes through one *gofakeit.Faker owned by the Generator,
// consumed in a fixed order, so a given seed, configuration and catalog always
// produce the same rows:
//
//	per member:   gender, birth date, plan ID
//	per year:     metal level, market, claims gate, scenario count, sample
//	per scenario: service date, cost, then one cost per drug
package synth

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"

	"github.com/gyeh/claimgen/internal/catalog"
	"github.com/gyeh/claimgen/internal/codemap"
	"github.com/gyeh/claimgen/internal/model"
	"github.com/gyeh/claimgen/internal/normalize"
	"github.com/gyeh/claimgen/internal/progress"
)

// pcgStream is the fixed second PCG word; only the seed varies between runs.
const pcgStream = 0x9e3779b97f4a7c15

// MaxMembers keeps member indexes at five digits inside claim IDs.
const MaxMembers = 99999

// Options controls the shape of a generation run.
type Options struct {
	Seed         int64
	Members      int
	Years        []int
	Probability  float64 // chance a member-year receives any scenario
	MinAge       int
	MaxAge       int
	MaxScenarios int // scenarios per member-year are drawn from [1, MaxScenarios]
	RxCost       catalog.CostRange
}

// DefaultOptions returns the options the seed dataset has always used.
func DefaultOptions() Options {
	return Options{
		Seed:         0,
		Members:      200,
		Years:        []int{2025},
		Probability:  0.8,
		MinAge:       0,
		MaxAge:       85,
		MaxScenarios: 3,
		RxCost:       catalog.CostRange{Low: 10.0, High: 200.0},
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.Members < 1 || o.Members > MaxMembers {
		return fmt.Errorf("members must be between 1 and %d, got %d", MaxMembers, o.Members)
	}
	if len(o.Years) == 0 {
		return fmt.Errorf("at least one benefit year is required")
	}
	seen := make(map[int]bool, len(o.Years))
	for _, y := range o.Years {
		if y < 1900 || y > 9999 {
			return fmt.Errorf("benefit year %d out of range", y)
		}
		if seen[y] {
			return fmt.Errorf("benefit year %d listed twice", y)
		}
		seen[y] = true
	}
	if o.Probability < 0 || o.Probability > 1 {
		return fmt.Errorf("probability must be in [0, 1], got %v", o.Probability)
	}
	if o.MinAge < 0 || o.MaxAge < o.MinAge || o.MaxAge > 120 {
		return fmt.Errorf("invalid age range [%d, %d]", o.MinAge, o.MaxAge)
	}
	if o.MaxScenarios < 1 || o.MaxScenarios > 999 {
		return fmt.Errorf("max scenarios must be between 1 and 999, got %d", o.MaxScenarios)
	}
	if err := o.RxCost.Validate(); err != nil {
		return fmt.Errorf("rx cost: %w", err)
	}
	return nil
}

// NewFaker returns the generator for seed. Unlike gofakeit.New, a zero seed
// is as reproducible as any other.
func NewFaker(seed int64) *gofakeit.Faker {
	return gofakeit.NewFaker(rand.NewPCG(uint64(seed), pcgStream), false)
}

// Assignment records which catalog scenario produced a medical claim.
type Assignment struct {
	MemberID      string
	Year          int
	Seq           int
	ScenarioIndex int
	ClaimID       string
}

// Result is the output of one generation pass.
type Result struct {
	Dataset              *model.Dataset
	Assignments          []Assignment
	MemberYears          int64
	MemberYearsWithClaim int64
	Duration             time.Duration
}

// Generator runs the member, enrollment and claim synthesis pass. It is not
// safe for concurrent use.
type Generator struct {
	faker     *gofakeit.Faker
	scenarios []catalog.Scenario
	mapper    *codemap.Mapper
	opts      Options
	reference time.Time
	log       zerolog.Logger
}

// New validates opts and builds a Generator. The catalog may be empty, in
// which case no claims are produced.
func New(opts Options, cat *catalog.Catalog, mapper *codemap.Mapper, log zerolog.Logger) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	if mapper == nil {
		mapper = codemap.Default()
	}
	earliest := opts.Years[0]
	for _, y := range opts.Years {
		if y < earliest {
			earliest = y
		}
	}
	return &Generator{
		faker:     NewFaker(opts.Seed),
		scenarios: cat.Scenarios,
		mapper:    mapper,
		opts:      opts,
		reference: normalize.Date(earliest, time.January, 1),
		log:       log,
	}, nil
}

// Run generates the full dataset. tracker may be nil.
func (g *Generator) Run(tracker progress.Tracker) (*Result, error) {
	start := time.Now()
	if tracker == nil {
		tracker = progress.Discard
	}
	tracker.SetStage("generating")

	res := &Result{Dataset: &model.Dataset{}}
	total := int64(g.opts.Members)

	for i := 1; i <= g.opts.Members; i++ {
		m := g.member(i)
		for _, year := range g.opts.Years {
			span := g.enrollment(m, year)
			if err := span.Validate(); err != nil {
				return nil, fmt.Errorf("member %s year %d: %w", m.MemberID, year, err)
			}
			res.Dataset.Enrollment = append(res.Dataset.Enrollment, span)

			n := g.memberYear(m, span, res)
			res.MemberYears++
			if n > 0 {
				res.MemberYearsWithClaim++
			}
		}
		tracker.SetProgress(int64(i), total)
	}
	tracker.Done()

	if err := res.Dataset.Validate(); err != nil {
		return nil, fmt.Errorf("generated dataset failed validation: %w", err)
	}
	res.Duration = time.Since(start)

	counts := res.Dataset.RowCounts()
	g.log.Info().
		Int("members", g.opts.Members).
		Ints("years", g.opts.Years).
		Int64("member_years", res.MemberYears).
		Int64("member_years_with_claims", res.MemberYearsWithClaim).
		Int64("enrollment", counts[model.TableEnrollment]).
		Int64("medical", counts[model.TableMedicalClaims]).
		Int64("pharmacy", counts[model.TablePharmacyClaims]).
		Int64("supplemental", counts[model.TableSupplemental]).
		Dur("duration", res.Duration).
		Msg("generation complete")

	return res, nil
}

// pick draws an index in [0, n).
func (g *Generator) pick(n int) int {
	return g.faker.Number(0, n-1)
}

// dateWithin draws a calendar day uniformly from [from, to].
func (g *Generator) dateWithin(from, to time.Time) time.Time {
	return from.AddDate(0, 0, g.faker.Number(0, normalize.DaysBetween(from, to)))
}

// cost draws a whole-cent dollar amount uniformly from r.
func (g *Generator) cost(r catalog.CostRange) float64 {
	lo, hi := r.Cents()
	return normalize.CentsToDollars(int64(g.faker.Number(int(lo), int(hi))))
}
