package model

// MetalLevel is the actuarial value tier of an ACA plan.
type MetalLevel string

const (
	Bronze       MetalLevel = "Bronze"
	Silver       MetalLevel = "Silver"
	Gold         MetalLevel = "Gold"
	Platinum     MetalLevel = "Platinum"
	Catastrophic MetalLevel = "Catastrophic"
)

// AllMetalLevels lists metal levels in draw order. Reordering changes the
// output for a fixed seed.
var AllMetalLevels = []MetalLevel{Bronze, Silver, Gold, Platinum, Catastrophic}

// Market is the ACA market segment of an enrollment span.
type Market struct {
	Name string // e.g. "Individual"
	Code string // EDGE server market code, e.g. "1"
}

var (
	Individual = Market{Name: "Individual", Code: "1"}
	SmallGroup = Market{Name: "SmallGroup", Code: "2"}
)

// AllMarkets lists market segments in draw order.
var AllMarkets = []Market{Individual, SmallGroup}

// MarketByCode returns the Market for the given EDGE code, or ok=false.
func MarketByCode(code string) (Market, bool) {
	for _, m := range AllMarkets {
		if m.Code == code {
			return m, true
		}
	}
	return Market{}, false
}

// ValidMetalLevel reports whether m is one of AllMetalLevels.
func ValidMetalLevel(m MetalLevel) bool {
	for _, l := range AllMetalLevels {
		if l == m {
			return true
		}
	}
	return false
}

// Genders lists the gender codes in draw order.
var Genders = []string{"M", "F"}

const (
	FormInstitutional = "I"
	FormProfessional  = "P"

	// InpatientCategory is the scenario service category billed on an
	// institutional form.
	InpatientCategory = "Inpatient"

	FlagAdd = "A"
)

// FormTypeFor returns the claim form type for a scenario service category.
func FormTypeFor(serviceCategory string) string {
	if serviceCategory == InpatientCategory {
		return FormInstitutional
	}
	return FormProfessional
}
