package session

import (
	"fmt"
	"math"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0
	// DefaultRadiusMeters is the geo-fence radius when none is configured.
	DefaultRadiusMeters = 100.0
)

// DistanceMeters returns the great-circle distance between a and b.
func DistanceMeters(a, b model.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * 1000 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Geofence is an accepted radius around a registered work location.
type Geofence struct {
	Target       model.Coordinates
	RadiusMeters float64
}

// GeofenceResult is the outcome of evaluating a detected position.
type GeofenceResult struct {
	DistanceMeters float64
	RadiusMeters   float64
	Inside         bool
}

// Evaluate measures detected against the fence.
func (g Geofence) Evaluate(detected model.Coordinates) GeofenceResult {
	radius := g.RadiusMeters
	if radius <= 0 {
		radius = DefaultRadiusMeters
	}
	d := DistanceMeters(g.Target, detected)
	return GeofenceResult{DistanceMeters: d, RadiusMeters: radius, Inside: d <= radius}
}

// GeofenceViolationError blocks a check-in made outside the fence until the
// user explicitly overrides it.
type GeofenceViolationError struct {
	Location model.LocationType
	Result   GeofenceResult
}

func (e *GeofenceViolationError) Error() string {
	return fmt.Sprintf("check-in at %s is %.0fm from the registered location (limit %.0fm); override to proceed",
		e.Location, e.Result.DistanceMeters, e.Result.RadiusMeters)
}
