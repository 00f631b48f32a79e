package standings

import (
	"github.com/shopspring/decimal"

	"efi-app/internal/model"
)

const (
	// TopSpots is the size of the top-finish group.
	TopSpots = 4
	// RelegationSpots is the size of the bottom group.
	RelegationSpots = 3

	probabilityPlaces = 4
)

// Derived holds the aggregate finishing probabilities of a row.
type Derived struct {
	Champion   decimal.Decimal
	Top4       decimal.Decimal
	Relegation decimal.Decimal
}

// Probabilities sums the prefix and suffix of the position-probability vector.
func Probabilities(row model.TeamRow) Derived {
	p := row.ProbPositions
	var d Derived
	if len(p) == 0 {
		return d
	}
	d.Champion = p[0]
	d.Top4 = sumRounded(p[:min(TopSpots, len(p))])
	d.Relegation = sumRounded(p[len(p)-min(RelegationSpots, len(p)):])
	return d
}

func sumRounded(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(values[0], values[1:]...).Round(probabilityPlaces)
}
