package models

import "time"

// RoutePoint is one vertex of an anomalous route polyline
type RoutePoint struct {
	Lat       float64    `json:"lat"`
	Lng       float64    `json:"lng"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// AnomalyRoute groups the anomaly-flagged points of one trip, ordered by
// timestamp. Distance is the haversine length of the polyline in meters.
type AnomalyRoute struct {
	TripID   int64        `json:"tripId"`
	Distance float64      `json:"distance"`
	Points   []RoutePoint `json:"points"`
}

// AnomaliesResponse is the GET /api/v1/anomalies response envelope
type AnomaliesResponse struct {
	Anomalies []AnomalyRoute `json:"anomalies"`
}
