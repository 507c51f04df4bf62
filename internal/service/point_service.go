package service

import (
	"context"
	"fmt"
	"time"

	"tracemap/internal/anomaly"
	"tracemap/internal/models"
	"tracemap/internal/repository"
)

// PointService handles business logic for point ingestion
type PointService struct {
	repo       *repository.PointRepository
	classifier *anomaly.Classifier // nil when no oracle is configured
}

// NewPointService creates a new point service. classifier may be nil, in
// which case every point is ingested unclassified (degraded mode).
func NewPointService(repo *repository.PointRepository, classifier *anomaly.Classifier) *PointService {
	return &PointService{repo: repo, classifier: classifier}
}

// Ingest classifies and persists a batch of points strictly in array order.
// The loop must stay sequential: classifying point N reads the trip's latest
// stored point, which may be point N-1 of this same batch. An insert failure
// aborts the batch; points already inserted stay committed.
func (s *PointService) Ingest(ctx context.Context, batch []models.NewPoint) error {
	for i, np := range batch {
		receivedAt := time.Now().UTC()

		var flag *bool
		if s.classifier != nil {
			flag = s.classifier.Classify(ctx, np, receivedAt)
		}

		ts := np.Timestamp
		if ts == nil {
			ts = &receivedAt
		}

		point := models.Point{
			TripID:    np.TripID,
			Lat:       np.Lat,
			Lng:       np.Lng,
			Altitude:  np.Altitude,
			Speed:     np.Speed,
			Heading:   np.Heading,
			Timestamp: ts,
			Anomaly:   flag,
		}
		if err := s.repo.Insert(ctx, &point); err != nil {
			return fmt.Errorf("failed to insert point %d of %d: %w", i+1, len(batch), err)
		}
	}

	return nil
}
