// Package ident synthesizes plan and drug-product identifiers.
package ident

import (
	"fmt"
	"regexp"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cespare/xxhash/v2"
)

// PlanStates are the state codes a synthetic plan ID may carry, in draw order.
var PlanStates = []string{"VA", "MD", "DC", "CA", "TX", "FL"}

// planIDPattern is the HIOS-like layout: issuer[5] state[2] product "001"
// variant[4] component "01".
var planIDPattern = regexp.MustCompile(`^[1-9][0-9]{4}[A-Z]{2}001[0-9]{4}01$`)

// PlanID draws a 16-character HIOS-like plan identifier, for example
// "48213TX001003701". Draw order: state, issuer, variant. IDs are not unique.
func PlanID(f *gofakeit.Faker) string {
	state := f.RandomString(PlanStates)
	issuer := f.Number(10000, 99999)
	variant := f.Number(1, 99)
	return fmt.Sprintf("%d%s001%04d01", issuer, state, variant)
}

// ValidPlanID reports whether s follows the PlanID layout.
func ValidPlanID(s string) bool {
	return planIDPattern.MatchString(s)
}

// NDC derives an 11-digit product code from a drug name. The digits come
// from xxHash64 of the UTF-8 name, so a name maps to the same NDC in every
// run and on every platform. Different names may collide.
//
// Layout: labeler[5] = h % 1e5, product[4] = (h / 1e5) % 1e4,
// package[2] = (h / 1e9) % 1e2.
func NDC(drug string) string {
	h := xxhash.Sum64String(drug)
	return fmt.Sprintf("%05d%04d%02d", h%100000, (h/100000)%10000, (h/1000000000)%100)
}

// FormatNDC renders an 11-digit NDC in 5-4-2 hyphenated form. Inputs of any
// other length are returned unchanged.
func FormatNDC(ndc string) string {
	if len(ndc) != 11 {
		return ndc
	}
	return ndc[:5] + "-" + ndc[5:9] + "-" + ndc[9:]
}
