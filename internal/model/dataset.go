package model

import "fmt"

// Table names, also used as output file stems and Postgres table names.
const (
	TableEnrollment     = "enrollment"
	TableMedicalClaims  = "medicalclaims"
	TablePharmacyClaims = "pharmacyclaims"
	TableSupplemental   = "supplemental"
)

// TableNames lists the tables in write order.
var TableNames = []string{TableEnrollment, TableMedicalClaims, TablePharmacyClaims, TableSupplemental}

// Dataset holds every row produced by one generation run.
type Dataset struct {
	Enrollment     []EnrollmentSpan
	MedicalClaims  []MedicalClaim
	PharmacyClaims []PharmacyClaim
	Supplemental   []SupplementalDiagnosis
}

// Table is a serialized view of one row collection.
type Table struct {
	Name    string
	Columns []string
	Records [][]string
}

// Tables renders the dataset into its four fixed-schema tables, in
// TableNames order.
func (d *Dataset) Tables() []Table {
	enr := make([][]string, len(d.Enrollment))
	for i := range d.Enrollment {
		enr[i] = d.Enrollment[i].Record()
	}
	med := make([][]string, len(d.MedicalClaims))
	for i := range d.MedicalClaims {
		med[i] = d.MedicalClaims[i].Record()
	}
	rx := make([][]string, len(d.PharmacyClaims))
	for i := range d.PharmacyClaims {
		rx[i] = d.PharmacyClaims[i].Record()
	}
	sup := make([][]string, len(d.Supplemental))
	for i := range d.Supplemental {
		sup[i] = d.Supplemental[i].Record()
	}
	return []Table{
		{Name: TableEnrollment, Columns: EnrollmentColumns(), Records: enr},
		{Name: TableMedicalClaims, Columns: MedicalClaimColumns(), Records: med},
		{Name: TablePharmacyClaims, Columns: PharmacyClaimColumns(), Records: rx},
		{Name: TableSupplemental, Columns: SupplementalColumns(), Records: sup},
	}
}

// RowCounts returns the number of rows per table name.
func (d *Dataset) RowCounts() map[string]int64 {
	return map[string]int64{
		TableEnrollment:     int64(len(d.Enrollment)),
		TableMedicalClaims:  int64(len(d.MedicalClaims)),
		TablePharmacyClaims: int64(len(d.PharmacyClaims)),
		TableSupplemental:   int64(len(d.Supplemental)),
	}
}

// Validate checks every row plus the cross-table invariants: claim IDs are
// unique per table, every claim references an enrolled member, and every
// supplemental row references exactly one medical claim of the same member.
func (d *Dataset) Validate() error {
	members := make(map[string]bool)
	for i := range d.Enrollment {
		if err := d.Enrollment[i].Validate(); err != nil {
			return err
		}
		members[d.Enrollment[i].MemberID] = true
	}

	medical := make(map[string]string, len(d.MedicalClaims))
	for i := range d.MedicalClaims {
		c := &d.MedicalClaims[i]
		if err := c.Validate(); err != nil {
			return err
		}
		if _, dup := medical[c.ClaimID]; dup {
			return fmt.Errorf("duplicate medical claim id %s", c.ClaimID)
		}
		if !members[c.MemberID] {
			return fmt.Errorf("medical claim %s: member %s not enrolled", c.ClaimID, c.MemberID)
		}
		medical[c.ClaimID] = c.MemberID
	}

	rx := make(map[string]bool, len(d.PharmacyClaims))
	for i := range d.PharmacyClaims {
		c := &d.PharmacyClaims[i]
		if err := c.Validate(); err != nil {
			return err
		}
		if rx[c.ClaimID] {
			return fmt.Errorf("duplicate pharmacy claim id %s", c.ClaimID)
		}
		if !members[c.MemberID] {
			return fmt.Errorf("pharmacy claim %s: member %s not enrolled", c.ClaimID, c.MemberID)
		}
		rx[c.ClaimID] = true
	}

	for i := range d.Supplemental {
		s := &d.Supplemental[i]
		if err := s.Validate(); err != nil {
			return err
		}
		owner, ok := medical[s.ClaimID]
		if !ok {
			return fmt.Errorf("supplemental row references unknown claim %s", s.ClaimID)
		}
		if owner != s.MemberID {
			return fmt.Errorf("supplemental row for claim %s has member %s, claim has %s", s.ClaimID, s.MemberID, owner)
		}
	}
	return nil
}
