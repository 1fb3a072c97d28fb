package geo

import (
	"math"
	"strings"
)

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate is within physical bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Calculator converts two coordinates into a distance. Implementations are
// deterministic, symmetric, and return zero for identical inputs.
type Calculator interface {
	DistanceKm(a, b Coordinate) float64
	AlgorithmName() string
}

// DistanceMeters is a convenience wrapper over DistanceKm.
func DistanceMeters(calc Calculator, a, b Coordinate) float64 {
	return calc.DistanceKm(a, b) * 1000.0
}

// Euclidean approximates distance by scaling degree deltas to meters and
// applying the planar distance formula. The scale constants are calibrated
// for the ~40° latitude band; accuracy degrades away from it.
type Euclidean struct{}

const (
	metersPerDegreeLatitude  = 111000.0
	metersPerDegreeLongitude = 85000.0
)

func (Euclidean) DistanceKm(a, b Coordinate) float64 {
	latMeters := (b.Lat - a.Lat) * metersPerDegreeLatitude
	lonMeters := (b.Lon - a.Lon) * metersPerDegreeLongitude
	return math.Sqrt(latMeters*latMeters+lonMeters*lonMeters) / 1000.0
}

func (Euclidean) AlgorithmName() string { return "euclidean" }

// Haversine computes the great-circle distance on a sphere of Earth's mean
// radius. Accurate globally at the cost of trig calls.
type Haversine struct{}

const earthRadiusKm = 6371.0

func (Haversine) DistanceKm(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func (Haversine) AlgorithmName() string { return "haversine" }

// FromAlgorithm selects a calculator by configured name. Unknown names fall
// back to the planar approximation, matching the default.
func FromAlgorithm(name string) Calculator {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "haversine":
		return Haversine{}
	default:
		return Euclidean{}
	}
}
