package anomaly

import (
	"context"
	"log"
	"time"

	"tracemap/internal/models"
)

// TripHistory looks up a trip's stored points, most recent first. The point
// repository satisfies this; tests substitute a fake.
type TripHistory interface {
	FindByTrip(ctx context.Context, tripID int64) ([]models.Point, error)
}

// Classifier decides the anomaly flag for each incoming point by consulting
// the trip's history and the external oracle. It holds no state of its own;
// both collaborators are explicit ports.
type Classifier struct {
	history TripHistory
	oracle  Oracle
}

// NewClassifier creates a classifier over the given ports
func NewClassifier(history TripHistory, oracle Oracle) *Classifier {
	return &Classifier{history: history, oracle: oracle}
}

// Classify returns the anomaly flag for an incoming point, or nil when no
// classification is available. receivedAt substitutes for a missing point
// timestamp. Oracle and history failures degrade to nil — classification
// being unavailable never fails ingestion.
//
// Callers must invoke Classify strictly in ingestion order: the verdict for
// point N depends on point N-1 of the same trip already being persisted.
func (c *Classifier) Classify(ctx context.Context, p models.NewPoint, receivedAt time.Time) *bool {
	existing, err := c.history.FindByTrip(ctx, p.TripID)
	if err != nil {
		log.Printf("Trip history lookup failed for trip %d: %v", p.TripID, err)
		return nil
	}
	if len(existing) == 0 {
		return nil
	}

	payload := buildPayload(p, existing, receivedAt)
	verdict, err := c.oracle.CheckTrip(ctx, payload)
	if err != nil {
		log.Printf("Oracle call failed for trip %d: %v", p.TripID, err)
		return nil
	}

	switch verdict {
	case VerdictAnomalous:
		flag := true
		return &flag
	case VerdictNormal:
		flag := false
		return &flag
	default:
		return nil
	}
}

// buildPayload assembles the oracle request: first is the trip's most recent
// stored point, second the incoming one, gone the remaining history
// most-recent-first.
func buildPayload(p models.NewPoint, existing []models.Point, receivedAt time.Time) ClassificationPayload {
	second := PointSample{Lat: p.Lat, Lng: p.Lng, Heading: p.Heading, Timestamp: receivedAt}
	if p.Timestamp != nil {
		second.Timestamp = *p.Timestamp
	}

	payload := ClassificationPayload{
		First:  toSample(existing[0]),
		Second: second,
		Gone:   make([]PointSample, 0, len(existing)-1),
	}
	for _, prev := range existing[1:] {
		payload.Gone = append(payload.Gone, toSample(prev))
	}
	return payload
}

func toSample(p models.Point) PointSample {
	s := PointSample{Lat: p.Lat, Lng: p.Lng, Heading: p.Heading}
	if p.Timestamp != nil {
		s.Timestamp = *p.Timestamp
	}
	return s
}
