package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between two coordinates
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceFee returns the delivery fee tier for a distance:
// up to 2 km 50, up to 5 km 100, up to 10 km 150, beyond that 200.
func DistanceFee(km float64) decimal.Decimal {
	switch {
	case km <= 2:
		return decimal.NewFromInt(50)
	case km <= 5:
		return decimal.NewFromInt(100)
	case km <= 10:
		return decimal.NewFromInt(150)
	default:
		return decimal.NewFromInt(200)
	}
}

// WithDeliveryFee returns a copy of r charging fee instead of the flat rate
func (r Rates) WithDeliveryFee(fee decimal.Decimal) Rates {
	r.DeliveryFee = fee
	return r
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
