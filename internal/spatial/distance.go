package spatial

import (
	"github.com/golang/geo/s2"

	"tracemap/internal/models"
)

// EarthRadiusMeters is the mean Earth radius used for distance conversion
const EarthRadiusMeters = 6371000.0

// HaversineDistance calculates the great-circle distance between two points
// in meters
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// RouteLength sums the great-circle distances between consecutive polyline
// vertices, in meters
func RouteLength(points []models.RoutePoint) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += HaversineDistance(points[i-1].Lat, points[i-1].Lng, points[i].Lat, points[i].Lng)
	}
	return total
}
