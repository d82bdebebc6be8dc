package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsForAmount(t *testing.T) {
	europe, _ := RegionByID(RegionEurope)
	northAmerica, _ := RegionByID(RegionNorthAmerica)

	tests := []struct {
		name   string
		region Region
		amount string
		want   int64
	}{
		{"exact", europe, "10.00", 100},
		{"floors fractions", northAmerica, "1.00", 8},
		{"single point", europe, "0.10", 1},
		{"large", europe, "500", 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PointsForAmount(tt.region, dec(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPointsForAmount_Rejects(t *testing.T) {
	europe, _ := RegionByID(RegionEurope)

	_, err := PointsForAmount(europe, dec("0"))
	assert.ErrorContains(t, err, "must be positive")

	_, err = PointsForAmount(europe, dec("-5"))
	assert.ErrorContains(t, err, "must be positive")

	_, err = PointsForAmount(europe, dec("0.05"))
	assert.ErrorContains(t, err, "below the price of one point")

	_, err = PointsForAmount(Region{ID: "FREE"}, dec("5"))
	assert.ErrorContains(t, err, "no point price")
}

func TestAmountForPoints(t *testing.T) {
	europe, _ := RegionByID(RegionEurope)
	assert.Equal(t, "2.50", AmountForPoints(europe, 25).StringFixed(2))
}
