package model

import (
	"github.com/google/uuid"

	"github.com/gyeh/claimgen/internal/normalize"
)

// Postgres column lists for COPY into the claims schema. Each starts with
// load_batch_id; money is stored as int64 cents.

func EnrollmentCopyColumns() []string {
	return []string{
		"load_batch_id",
		"member_id",
		"gender",
		"dob",
		"plan_id",
		"enrollment_start",
		"enrollment_end",
		"metal_level",
		"market",
	}
}

func (r *EnrollmentSpan) CopyValues(batchID uuid.UUID) []any {
	return []any{
		batchID,
		r.MemberID,
		r.Gender,
		r.DOB,
		r.PlanID,
		r.Start,
		r.End,
		string(r.MetalLevel),
		r.Market.Code,
	}
}

func MedicalClaimCopyColumns() []string {
	return []string{
		"load_batch_id",
		"member_id",
		"claim_id",
		"line_number",
		"service_from_date",
		"service_to_date",
		"form_type",
		"dx1",
		"billed_cents",
		"allowed_cents",
		"paid_cents",
	}
}

func (r *MedicalClaim) CopyValues(batchID uuid.UUID) []any {
	return []any{
		batchID,
		r.MemberID,
		r.ClaimID,
		int32(r.LineNumber),
		r.ServiceFrom,
		r.ServiceTo,
		r.FormType,
		r.DX1,
		normalize.DollarsToCents(r.Billed),
		normalize.DollarsToCents(r.Allowed),
		normalize.DollarsToCents(r.Paid),
	}
}

func PharmacyClaimCopyColumns() []string {
	return []string{
		"load_batch_id",
		"member_id",
		"claim_id",
		"ndc",
		"filled_date",
		"paid_date",
		"billed_cents",
		"allowed_cents",
		"paid_cents",
	}
}

func (r *PharmacyClaim) CopyValues(batchID uuid.UUID) []any {
	return []any{
		batchID,
		r.MemberID,
		r.ClaimID,
		r.NDC,
		r.FilledDate,
		r.PaidDate,
		normalize.DollarsToCents(r.Billed),
		normalize.DollarsToCents(r.Allowed),
		normalize.DollarsToCents(r.Paid),
	}
}

func SupplementalCopyColumns() []string {
	return []string{
		"load_batch_id",
		"member_id",
		"claim_id",
		"dx",
		"add_delete_flag",
	}
}

func (r *SupplementalDiagnosis) CopyValues(batchID uuid.UUID) []any {
	return []any{
		batchID,
		r.MemberID,
		r.ClaimID,
		r.DX,
		r.AddDeleteFlag,
	}
}
