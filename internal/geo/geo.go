// Package geo provides pure distance and coordinate primitives used by the
// route optimizer. All distances are kilometers.
package geo

import (
	"fmt"
	"math"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
)

const (
	earthRadiusKm = 6371.0
	// km per degree of latitude; longitude is scaled by cos(lat).
	kmPerDegreeLat = 111.32
)

// ErrInvalidCoordinate reports a coordinate outside the valid lat/lng ranges.
type ErrInvalidCoordinate struct {
	Lat, Lng float64
}

func (e ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate: lat=%.6f lng=%.6f", e.Lat, e.Lng)
}

// ValidateCoordinates fails fast on out-of-range coordinates so distance
// computations never silently produce NaN.
func ValidateCoordinates(p model.GeoPoint) error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return ErrInvalidCoordinate{Lat: p.Lat, Lng: p.Lng}
	}
	return nil
}

// Haversine returns the great-circle distance between two points in km.
// Symmetric, zero for identical points.
func Haversine(a, b model.GeoPoint) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// GridDistance returns a Manhattan approximation of the travel distance in
// km, using a latitude-dependent km-per-degree conversion. Suitable for
// grid-like road networks; intentionally not accurate for curved ones.
func GridDistance(a, b model.GeoPoint) float64 {
	avgLat := (a.Lat + b.Lat) / 2 * math.Pi / 180
	dLatKm := math.Abs(b.Lat-a.Lat) * kmPerDegreeLat
	dLngKm := math.Abs(b.Lng-a.Lng) * kmPerDegreeLat * math.Cos(avgLat)
	return dLatKm + dLngKm
}

// BoundingBox returns (minLat, minLng, maxLat, maxLng) for a radius around
// center, for coarse candidate filtering before fine-grained distance checks.
func BoundingBox(center model.GeoPoint, radiusKm float64) (minLat, minLng, maxLat, maxLng float64) {
	dLat := radiusKm / 111.0
	dLng := radiusKm / (111.0 * math.Cos(center.Lat*math.Pi/180))
	return center.Lat - dLat, center.Lng - dLng, center.Lat + dLat, center.Lng + dLng
}

// WithinRadius reports whether b lies within radiusKm of a (great-circle).
func WithinRadius(a, b model.GeoPoint, radiusKm float64) bool {
	return Haversine(a, b) <= radiusKm
}
