package synth

import (
	"github.com/gyeh/claimgen/internal/catalog"
	"github.com/gyeh/claimgen/internal/ident"
	"github.com/gyeh/claimgen/internal/model"
)

// memberYear assigns scenarios to one member-year and appends the resulting
// claim rows. It returns the number of scenarios assigned.
func (g *Generator) memberYear(m model.Member, span model.EnrollmentSpan, res *Result) int {
	if g.faker.Float64() >= g.opts.Probability {
		return 0
	}
	count := g.faker.Number(1, g.opts.MaxScenarios)
	picked := g.sample(count)

	year := span.Year()
	for seq, idx := range picked {
		claimID := g.emitScenario(m, span, year, seq, &g.scenarios[idx], res.Dataset)
		res.Assignments = append(res.Assignments, Assignment{
			MemberID:      m.MemberID,
			Year:          year,
			Seq:           seq,
			ScenarioIndex: idx,
			ClaimID:       claimID,
		})
	}
	return len(picked)
}

// sample draws k distinct catalog indexes without replacement (partial
// Fisher-Yates). A catalog smaller than k is taken whole, in shuffled order.
func (g *Generator) sample(k int) []int {
	n := len(g.scenarios)
	if k > n {
		k = n
	}
	if k == 0 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := g.faker.Number(i, n-1)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// emitScenario writes the medical, supplemental and pharmacy rows for one
// assigned scenario and returns the medical claim ID.
func (g *Generator) emitScenario(m model.Member, span model.EnrollmentSpan, year, seq int, s *catalog.Scenario, ds *model.Dataset) string {
	dos := g.dateWithin(span.Start, span.End)

	dx := g.mapper.MapAll(s.Diagnoses)
	primary := g.mapper.Fallback()
	if len(dx) > 0 {
		primary = dx[0]
	}

	amount := g.cost(s.CostRange)
	claimID := model.MedicalClaimID(m.Index, year, seq)
	ds.MedicalClaims = append(ds.MedicalClaims, model.MedicalClaim{
		MemberID:    m.MemberID,
		ClaimID:     claimID,
		LineNumber:  1,
		ServiceFrom: dos,
		ServiceTo:   dos,
		FormType:    model.FormTypeFor(s.ServiceCategory),
		DX1:         primary,
		Billed:      amount,
		Allowed:     amount,
		Paid:        amount,
	})

	if len(dx) > 1 {
		for _, code := range dx[1:] {
			ds.Supplemental = append(ds.Supplemental, model.SupplementalDiagnosis{
				MemberID:      m.MemberID,
				ClaimID:       claimID,
				DX:            code,
				AddDeleteFlag: model.FlagAdd,
			})
		}
	}

	for d, drug := range s.Drugs {
		rxAmount := g.cost(g.opts.RxCost)
		ds.PharmacyClaims = append(ds.PharmacyClaims, model.PharmacyClaim{
			MemberID:   m.MemberID,
			ClaimID:    model.PharmacyClaimID(m.Index, year, seq, d),
			NDC:        ident.NDC(drug),
			FilledDate: dos,
			PaidDate:   dos,
			Billed:     rxAmount,
			Allowed:    rxAmount,
			Paid:       rxAmount,
		})
	}
	return claimID
}
