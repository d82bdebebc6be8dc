package policy

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Region ids.
const (
	RegionEurope           = "EUROPE"
	RegionNorthAmerica     = "NORTH_AMERICA"
	RegionLatinAmerica     = "LATIN_AMERICA"
	RegionAsiaPacific      = "ASIA_PACIFIC"
	RegionAfricaMiddleEast = "AFRICA_MIDDLE_EAST"
)

// DefaultRegionID is returned for any country not listed in a region.
const DefaultRegionID = RegionEurope

// Region is static pricing reference data for a group of countries.
type Region struct {
	ID            string          `json:"region"`
	Name          string          `json:"name"`
	Currency      string          `json:"currency"`
	PointsPerPlay int64           `json:"points_per_play"`
	CostPerPoint  decimal.Decimal `json:"cost_per_point"`
	Countries     []string        `json:"-"`
}

var regions = []Region{
	{
		ID:            RegionEurope,
		Name:          "Europe",
		Currency:      "EUR",
		PointsPerPlay: 1,
		CostPerPoint:  decimal.RequireFromString("0.10"),
		Countries: []string{
			"AT", "BE", "BG", "CH", "CY", "CZ", "DE", "DK", "EE", "ES", "FI", "FR", "GB", "GR", "HR",
			"HU", "IE", "IS", "IT", "LT", "LU", "LV", "MT", "NL", "NO", "PL", "PT", "RO", "SE", "SI", "SK",
		},
	},
	{
		ID:            RegionNorthAmerica,
		Name:          "North America",
		Currency:      "USD",
		PointsPerPlay: 1,
		CostPerPoint:  decimal.RequireFromString("0.12"),
		Countries:     []string{"US", "CA"},
	},
	{
		ID:            RegionLatinAmerica,
		Name:          "Latin America",
		Currency:      "USD",
		PointsPerPlay: 2,
		CostPerPoint:  decimal.RequireFromString("0.05"),
		Countries: []string{
			"AR", "BO", "BR", "CL", "CO", "CR", "CU", "DO", "EC", "GT", "HN", "MX", "NI", "PA", "PE",
			"PR", "PY", "SV", "UY", "VE",
		},
	},
	{
		ID:            RegionAsiaPacific,
		Name:          "Asia Pacific",
		Currency:      "USD",
		PointsPerPlay: 1,
		CostPerPoint:  decimal.RequireFromString("0.08"),
		Countries: []string{
			"AU", "BD", "CN", "HK", "ID", "IN", "JP", "KR", "MY", "NZ", "PH", "PK", "SG", "TH", "TW", "VN",
		},
	},
	{
		ID:            RegionAfricaMiddleEast,
		Name:          "Africa & Middle East",
		Currency:      "USD",
		PointsPerPlay: 2,
		CostPerPoint:  decimal.RequireFromString("0.04"),
		Countries: []string{
			"AE", "DZ", "EG", "GH", "IL", "JO", "KE", "KW", "MA", "NG", "QA", "SA", "SN", "TN", "TR", "TZ", "ZA",
		},
	},
}

var countryIndex = buildCountryIndex()

func buildCountryIndex() map[string]int {
	idx := make(map[string]int)
	for i, r := range regions {
		for _, c := range r.Countries {
			idx[c] = i
		}
	}
	return idx
}

// ResolveRegion maps a country code to its region. Unknown, empty or malformed
// codes resolve to the default region; this never fails.
func ResolveRegion(countryCode string) Region {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if i, ok := countryIndex[code]; ok {
		return regions[i]
	}
	r, _ := RegionByID(DefaultRegionID)
	return r
}

// RegionByID looks up a region by id.
func RegionByID(id string) (Region, bool) {
	for _, r := range regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// Regions returns a copy of the region table.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}
