package synth

import (
	"time"

	"github.com/gyeh/claimgen/internal/ident"
	"github.com/gyeh/claimgen/internal/model"
	"github.com/gyeh/claimgen/internal/normalize"
)

// member draws the identity of the member at a 1-based index.
func (g *Generator) member(index int) model.Member {
	gender := model.Genders[g.pick(len(model.Genders))]
	dob := g.birthDate()
	return model.Member{
		Index:    index,
		MemberID: model.MemberIDFor(index),
		Gender:   gender,
		DOB:      dob,
		PlanID:   ident.PlanID(g.faker),
	}
}

// birthDate draws a date of birth giving an age in [MinAge, MaxAge] on the
// reference date (January 1 of the earliest benefit year).
func (g *Generator) birthDate() time.Time {
	latest := g.reference.AddDate(-g.opts.MinAge, 0, 0)
	earliest := g.reference.AddDate(-(g.opts.MaxAge + 1), 0, 1)
	return g.dateWithin(earliest, latest)
}

// enrollment builds the single full-year span for a member and year. The
// plan is the member's; metal level and market are drawn per year.
func (g *Generator) enrollment(m model.Member, year int) model.EnrollmentSpan {
	start, end := normalize.YearBounds(year)
	metal := model.AllMetalLevels[g.pick(len(model.AllMetalLevels))]
	market := model.AllMarkets[g.pick(len(model.AllMarkets))]
	return model.EnrollmentSpan{
		MemberID:   m.MemberID,
		Gender:     m.Gender,
		DOB:        m.DOB,
		PlanID:     m.PlanID,
		Start:      start,
		End:        end,
		MetalLevel: metal,
		Market:     market,
	}
}
