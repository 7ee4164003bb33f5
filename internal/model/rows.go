package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gyeh/claimgen/internal/normalize"
)

// Member is one synthetic insured person. Every other row references it by
// MemberID.
type Member struct {
	Index    int // 1-based position in the population
	MemberID string
	Gender   string
	DOB      time.Time
	PlanID   string
}

// MemberIDFor returns the stable member identifier for a 1-based index.
func MemberIDFor(index int) string {
	return fmt.Sprintf("MEM%05d", index)
}

// EnrollmentSpan is one row of the enrollment table.
type EnrollmentSpan struct {
	MemberID   string
	Gender     string
	DOB        time.Time
	PlanID     string
	Start      time.Time
	End        time.Time
	MetalLevel MetalLevel
	Market     Market
}

// Validate checks the span invariants: Start <= End and both inside one
// calendar year.
func (r *EnrollmentSpan) Validate() error {
	if r.MemberID == "" {
		return fmt.Errorf("enrollment: empty member id")
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("enrollment %s: end %s before start %s",
			r.MemberID, normalize.FormatDate(r.End), normalize.FormatDate(r.Start))
	}
	if r.Start.Year() != r.End.Year() {
		return fmt.Errorf("enrollment %s: span crosses benefit years", r.MemberID)
	}
	if !ValidMetalLevel(r.MetalLevel) {
		return fmt.Errorf("enrollment %s: unknown metal level %q", r.MemberID, r.MetalLevel)
	}
	if _, ok := MarketByCode(r.Market.Code); !ok {
		return fmt.Errorf("enrollment %s: unknown market %q", r.MemberID, r.Market.Code)
	}
	return nil
}

// Year returns the benefit year the span belongs to.
func (r *EnrollmentSpan) Year() int {
	return r.Start.Year()
}

// EnrollmentColumns is the fixed header of the enrollment table.
func EnrollmentColumns() []string {
	return []string{"MemberID", "Gender", "DOB", "PlanID", "EnrollmentStart", "EnrollmentEnd", "MetalLevel", "Market"}
}

// Record returns the row cells in EnrollmentColumns() order.
func (r *EnrollmentSpan) Record() []string {
	return []string{
		r.MemberID,
		r.Gender,
		normalize.FormatDate(r.DOB),
		r.PlanID,
		normalize.FormatDate(r.Start),
		normalize.FormatDate(r.End),
		string(r.MetalLevel),
		r.Market.Code,
	}
}

// MedicalClaim is one single-line medical claim. Billed, allowed and paid
// amounts are always equal.
type MedicalClaim struct {
	MemberID    string
	ClaimID     string
	LineNumber  int
	ServiceFrom time.Time
	ServiceTo   time.Time
	FormType    string
	DX1         string
	Billed      float64
	Allowed     float64
	Paid        float64
}

// MedicalClaimID builds the claim identifier from member index, benefit year
// and 0-based scenario sequence.
func MedicalClaimID(memberIndex, year, seq int) string {
	return fmt.Sprintf("CLM%05d%d%03d", memberIndex, year, seq)
}

// Validate checks the medical claim invariants.
func (r *MedicalClaim) Validate() error {
	if r.ClaimID == "" || r.MemberID == "" {
		return fmt.Errorf("medical claim: missing identifiers")
	}
	if r.LineNumber != 1 {
		return fmt.Errorf("medical claim %s: line number %d", r.ClaimID, r.LineNumber)
	}
	if !r.ServiceFrom.Equal(r.ServiceTo) {
		return fmt.Errorf("medical claim %s: service dates differ", r.ClaimID)
	}
	if r.FormType != FormInstitutional && r.FormType != FormProfessional {
		return fmt.Errorf("medical claim %s: form type %q", r.ClaimID, r.FormType)
	}
	if !normalize.IsNormalizedCode(r.DX1) {
		return fmt.Errorf("medical claim %s: diagnosis %q not normalized", r.ClaimID, r.DX1)
	}
	if r.Billed != r.Allowed || r.Allowed != r.Paid {
		return fmt.Errorf("medical claim %s: amounts differ", r.ClaimID)
	}
	return nil
}

// MedicalClaimColumns is the fixed header of the medical claims table.
func MedicalClaimColumns() []string {
	return []string{"MemberID", "ClaimID", "LineNumber", "ServiceFromDate", "ServiceToDate", "FormType", "DX1", "BilledAmount", "AllowedAmount", "PaidAmount"}
}

// Record returns the row cells in MedicalClaimColumns() order.
func (r *MedicalClaim) Record() []string {
	return []string{
		r.MemberID,
		r.ClaimID,
		strconv.Itoa(r.LineNumber),
		normalize.FormatDate(r.ServiceFrom),
		normalize.FormatDate(r.ServiceTo),
		r.FormType,
		r.DX1,
		normalize.FormatAmount(r.Billed),
		normalize.FormatAmount(r.Allowed),
		normalize.FormatAmount(r.Paid),
	}
}

// SupplementalDiagnosis attaches one secondary diagnosis to a medical claim.
type SupplementalDiagnosis struct {
	MemberID      string
	ClaimID       string
	DX            string
	AddDeleteFlag string
}

// Validate checks the supplemental diagnosis invariants.
func (r *SupplementalDiagnosis) Validate() error {
	if r.ClaimID == "" || r.MemberID == "" {
		return fmt.Errorf("supplemental: missing identifiers")
	}
	if !normalize.IsNormalizedCode(r.DX) {
		return fmt.Errorf("supplemental %s: diagnosis %q not normalized", r.ClaimID, r.DX)
	}
	if r.AddDeleteFlag != FlagAdd {
		return fmt.Errorf("supplemental %s: flag %q", r.ClaimID, r.AddDeleteFlag)
	}
	return nil
}

// SupplementalColumns is the fixed header of the supplemental table.
func SupplementalColumns() []string {
	return []string{"MemberID", "ClaimID", "DX", "AddDeleteFlag"}
}

// Record returns the row cells in SupplementalColumns() order.
func (r *SupplementalDiagnosis) Record() []string {
	return []string{r.MemberID, r.ClaimID, r.DX, r.AddDeleteFlag}
}

// PharmacyClaim is one filled prescription.
type PharmacyClaim struct {
	MemberID   string
	ClaimID    string
	NDC        string
	FilledDate time.Time
	PaidDate   time.Time
	Billed     float64
	Allowed    float64
	Paid       float64
}

// PharmacyClaimID builds the pharmacy claim identifier from member index,
// benefit year, 0-based scenario sequence and 0-based drug sequence.
func PharmacyClaimID(memberIndex, year, seq, drugSeq int) string {
	return fmt.Sprintf("RX%05d%d%03d%02d", memberIndex, year, seq, drugSeq)
}

// Validate checks the pharmacy claim invariants.
func (r *PharmacyClaim) Validate() error {
	if r.ClaimID == "" || r.MemberID == "" {
		return fmt.Errorf("pharmacy claim: missing identifiers")
	}
	if len(r.NDC) != 11 {
		return fmt.Errorf("pharmacy claim %s: ndc %q is not 11 digits", r.ClaimID, r.NDC)
	}
	for _, c := range r.NDC {
		if c < '0' || c > '9' {
			return fmt.Errorf("pharmacy claim %s: ndc %q is not numeric", r.ClaimID, r.NDC)
		}
	}
	if !r.FilledDate.Equal(r.PaidDate) {
		return fmt.Errorf("pharmacy claim %s: filled and paid dates differ", r.ClaimID)
	}
	if r.Billed != r.Allowed || r.Allowed != r.Paid {
		return fmt.Errorf("pharmacy claim %s: amounts differ", r.ClaimID)
	}
	return nil
}

// PharmacyClaimColumns is the fixed header of the pharmacy claims table.
func PharmacyClaimColumns() []string {
	return []string{"MemberID", "ClaimID", "NDC", "FilledDate", "PaidDate", "BilledAmount", "AllowedAmount", "PaidAmount"}
}

// Record returns the row cells in PharmacyClaimColumns() order.
func (r *PharmacyClaim) Record() []string {
	return []string{
		r.MemberID,
		r.ClaimID,
		r.NDC,
		normalize.FormatDate(r.FilledDate),
		normalize.FormatDate(r.PaidDate),
		normalize.FormatAmount(r.Billed),
		normalize.FormatAmount(r.Allowed),
		normalize.FormatAmount(r.Paid),
	}
}
