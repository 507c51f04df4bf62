package models

import "time"

// Point represents a persisted GPS trace point. A point is immutable once
// stored; the Anomaly flag is set at most once, during ingestion.
type Point struct {
	ID        int64      `json:"id" db:"id"`
	TripID    int64      `json:"tripId" db:"trip_id"` // randomized per-trip identifier
	Lat       float64    `json:"lat" db:"lat"`
	Lng       float64    `json:"lng" db:"lng"`
	Altitude  float64    `json:"alt" db:"alt"`
	Speed     float64    `json:"spd" db:"spd"`
	Heading   float64    `json:"azm" db:"azm"`
	Timestamp *time.Time `json:"timestamp,omitempty" db:"timestamp"`
	Anomaly   *bool      `json:"anomaly,omitempty" db:"anomaly"`
}

// NewPoint is a single element of an ingestion batch. Timestamp is optional;
// ingestion fills it with the receive time when absent.
type NewPoint struct {
	TripID    int64      `json:"tripId"`
	Lat       float64    `json:"lat"`
	Lng       float64    `json:"lng"`
	Altitude  float64    `json:"alt"`
	Speed     float64    `json:"spd"`
	Heading   float64    `json:"azm"`
	Timestamp *time.Time `json:"timestamp"`
}

// PointBatchRequest is the body of POST /api/v1/points
type PointBatchRequest struct {
	Points []NewPoint `json:"points"`
}
