package model

import (
	"fmt"
	"time"

	"github.com/gyeh/claimgen/internal/normalize"
)

// The *Parquet types mirror the output Parquet schemas. Dates are ISO
// strings and amounts float64 so the files read the same as the CSVs.

type EnrollmentParquet struct {
	MemberID        string `parquet:"member_id"`
	Gender          string `parquet:"gender"`
	DOB             string `parquet:"dob"`
	PlanID          string `parquet:"plan_id"`
	EnrollmentStart string `parquet:"enrollment_start"`
	EnrollmentEnd   string `parquet:"enrollment_end"`
	MetalLevel      string `parquet:"metal_level"`
	Market          string `parquet:"market"`
}

type MedicalClaimParquet struct {
	MemberID        string  `parquet:"member_id"`
	ClaimID         string  `parquet:"claim_id"`
	LineNumber      int32   `parquet:"line_number"`
	ServiceFromDate string  `parquet:"service_from_date"`
	ServiceToDate   string  `parquet:"service_to_date"`
	FormType        string  `parquet:"form_type"`
	DX1             string  `parquet:"dx1"`
	BilledAmount    float64 `parquet:"billed_amount"`
	AllowedAmount   float64 `parquet:"allowed_amount"`
	PaidAmount      float64 `parquet:"paid_amount"`
}

type PharmacyClaimParquet struct {
	MemberID      string  `parquet:"member_id"`
	ClaimID       string  `parquet:"claim_id"`
	NDC           string  `parquet:"ndc"`
	FilledDate    string  `parquet:"filled_date"`
	PaidDate      string  `parquet:"paid_date"`
	BilledAmount  float64 `parquet:"billed_amount"`
	AllowedAmount float64 `parquet:"allowed_amount"`
	PaidAmount    float64 `parquet:"paid_amount"`
}

type SupplementalParquet struct {
	MemberID      string `parquet:"member_id"`
	ClaimID       string `parquet:"claim_id"`
	DX            string `parquet:"dx"`
	AddDeleteFlag string `parquet:"add_delete_flag"`
}

// RequiredParquetColumns lists, per table, the columns a Parquet file must
// carry to be read back.
var RequiredParquetColumns = map[string][]string{
	TableEnrollment:     {"member_id", "plan_id", "enrollment_start", "enrollment_end"},
	TableMedicalClaims:  {"member_id", "claim_id", "service_from_date", "dx1", "paid_amount"},
	TablePharmacyClaims: {"member_id", "claim_id", "ndc", "filled_date", "paid_amount"},
	TableSupplemental:   {"member_id", "claim_id", "dx"},
}

func (r *EnrollmentSpan) Parquet() EnrollmentParquet {
	return EnrollmentParquet{
		MemberID:        r.MemberID,
		Gender:          r.Gender,
		DOB:             normalize.FormatDate(r.DOB),
		PlanID:          r.PlanID,
		EnrollmentStart: normalize.FormatDate(r.Start),
		EnrollmentEnd:   normalize.FormatDate(r.End),
		MetalLevel:      string(r.MetalLevel),
		Market:          r.Market.Code,
	}
}

// Enrollment converts the Parquet row back into an EnrollmentSpan.
func (p *EnrollmentParquet) Enrollment() (EnrollmentSpan, error) {
	var (
		r   EnrollmentSpan
		err error
	)
	r.MemberID, r.Gender, r.PlanID = p.MemberID, p.Gender, p.PlanID
	r.MetalLevel = MetalLevel(p.MetalLevel)
	if r.DOB, err = parseDate("dob", p.DOB); err != nil {
		return r, err
	}
	if r.Start, err = parseDate("enrollment_start", p.EnrollmentStart); err != nil {
		return r, err
	}
	if r.End, err = parseDate("enrollment_end", p.EnrollmentEnd); err != nil {
		return r, err
	}
	m, ok := MarketByCode(p.Market)
	if !ok {
		return r, fmt.Errorf("unknown market code %q", p.Market)
	}
	r.Market = m
	return r, r.Validate()
}

func (r *MedicalClaim) Parquet() MedicalClaimParquet {
	return MedicalClaimParquet{
		MemberID:        r.MemberID,
		ClaimID:         r.ClaimID,
		LineNumber:      int32(r.LineNumber),
		ServiceFromDate: normalize.FormatDate(r.ServiceFrom),
		ServiceToDate:   normalize.FormatDate(r.ServiceTo),
		FormType:        r.FormType,
		DX1:             r.DX1,
		BilledAmount:    r.Billed,
		AllowedAmount:   r.Allowed,
		PaidAmount:      r.Paid,
	}
}

// MedicalClaim converts the Parquet row back into a MedicalClaim.
func (p *MedicalClaimParquet) MedicalClaim() (MedicalClaim, error) {
	var err error
	r := MedicalClaim{
		MemberID:   p.MemberID,
		ClaimID:    p.ClaimID,
		LineNumber: int(p.LineNumber),
		FormType:   p.FormType,
		DX1:        p.DX1,
		Billed:     p.BilledAmount,
		Allowed:    p.AllowedAmount,
		Paid:       p.PaidAmount,
	}
	if r.ServiceFrom, err = parseDate("service_from_date", p.ServiceFromDate); err != nil {
		return r, err
	}
	if r.ServiceTo, err = parseDate("service_to_date", p.ServiceToDate); err != nil {
		return r, err
	}
	return r, r.Validate()
}

func (r *PharmacyClaim) Parquet() PharmacyClaimParquet {
	return PharmacyClaimParquet{
		MemberID:      r.MemberID,
		ClaimID:       r.ClaimID,
		NDC:           r.NDC,
		FilledDate:    normalize.FormatDate(r.FilledDate),
		PaidDate:      normalize.FormatDate(r.PaidDate),
		BilledAmount:  r.Billed,
		AllowedAmount: r.Allowed,
		PaidAmount:    r.Paid,
	}
}

// PharmacyClaim converts the Parquet row back into a PharmacyClaim.
func (p *PharmacyClaimParquet) PharmacyClaim() (PharmacyClaim, error) {
	var err error
	r := PharmacyClaim{
		MemberID: p.MemberID,
		ClaimID:  p.ClaimID,
		NDC:      p.NDC,
		Billed:   p.BilledAmount,
		Allowed:  p.AllowedAmount,
		Paid:     p.PaidAmount,
	}
	if r.FilledDate, err = parseDate("filled_date", p.FilledDate); err != nil {
		return r, err
	}
	if r.PaidDate, err = parseDate("paid_date", p.PaidDate); err != nil {
		return r, err
	}
	return r, r.Validate()
}

func (r *SupplementalDiagnosis) Parquet() SupplementalParquet {
	return SupplementalParquet{
		MemberID:      r.MemberID,
		ClaimID:       r.ClaimID,
		DX:            r.DX,
		AddDeleteFlag: r.AddDeleteFlag,
	}
}

// Supplemental converts the Parquet row back into a SupplementalDiagnosis.
func (p *SupplementalParquet) Supplemental() (SupplementalDiagnosis, error) {
	r := SupplementalDiagnosis{
		MemberID:      p.MemberID,
		ClaimID:       p.ClaimID,
		DX:            p.DX,
		AddDeleteFlag: p.AddDeleteFlag,
	}
	return r, r.Validate()
}

func parseDate(column, s string) (time.Time, error) {
	t, err := time.Parse(normalize.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", column, err)
	}
	return t, nil
}
