package anomaly

import (
	"tracemap/internal/models"
	"tracemap/internal/spatial"
)

// GroupRoutes folds anomaly-flagged points, already ordered by
// (tripId, timestamp), into per-trip polylines. A new route starts whenever
// the trip id changes; trips without anomalous points never appear.
func GroupRoutes(points []models.Point) []models.AnomalyRoute {
	routes := make([]models.AnomalyRoute, 0)

	for _, p := range points {
		if len(routes) == 0 || routes[len(routes)-1].TripID != p.TripID {
			routes = append(routes, models.AnomalyRoute{TripID: p.TripID})
		}
		route := &routes[len(routes)-1]
		route.Points = append(route.Points, models.RoutePoint{
			Lat:       p.Lat,
			Lng:       p.Lng,
			Timestamp: p.Timestamp,
		})
	}

	for i := range routes {
		routes[i].Distance = spatial.RouteLength(routes[i].Points)
	}

	return routes
}
