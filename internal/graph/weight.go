package graph

import (
	"math"

	"github.com/Veraticus/hessq/internal/model"
)

// SpatialDistance is the planar Euclidean distance between the two coordinate pairs.
func SpatialDistance(a, b model.Transaction) float64 {
	dLat := a.Latitude - b.Latitude
	dLon := a.Longitude - b.Longitude
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

// HoursApart is the absolute time difference in hours. The later timestamp is always the
// minuend so a saturated Duration stays positive.
func HoursApart(a, b model.Transaction) float64 {
	later, earlier := a.Timestamp, b.Timestamp
	if later.Before(earlier) {
		later, earlier = earlier, later
	}
	return later.Sub(earlier).Hours()
}

// AmountApart is the absolute amount difference in dollars.
func AmountApart(a, b model.Transaction) float64 {
	return a.Amount.Sub(b.Amount).Abs().InexactFloat64()
}

// Weight combines spatial, temporal and amount distance using the configured factors.
// Each term is an absolute difference, so Weight(a, b) == Weight(b, a).
func (c Config) Weight(a, b model.Transaction) float64 {
	return SpatialDistance(a, b) + c.TimeFactor*HoursApart(a, b) + c.AmountFactor*AmountApart(a, b)
}

// Weight computes the composite distance with the default coefficients.
func Weight(a, b model.Transaction) float64 {
	return DefaultConfig().Weight(a, b)
}
