package service

import (
	"context"
	"time"

	"tracemap/internal/anomaly"
	"tracemap/internal/models"
	"tracemap/internal/repository"
	"tracemap/internal/tiling"
	"tracemap/internal/tripfilter"
)

// MapService answers the spatial-temporal aggregate queries drawn as map
// overlays: density heatmap, traffic tiles, average-speed tiles and
// anomalous-route listings. Tiling and filtering are pure in-memory steps
// over a single store read; nothing is cached between requests.
type MapService struct {
	repo *repository.PointRepository
}

// NewMapService creates a new map service
func NewMapService(repo *repository.PointRepository) *MapService {
	return &MapService{repo: repo}
}

// Heatmap buckets one representative point per trip into count tiles and
// emits only occupied cells
func (s *MapService) Heatmap(ctx context.Context, rect models.Rect, start, end *time.Time, filter tripfilter.Options, tileWidth, tileHeight float64) (*models.HeatmapResponse, error) {
	filter.DedupeByTrip = true

	tiles, err := s.buildTiles(ctx, rect, start, end, filter, tileWidth, tileHeight, tiling.Options{
		Aggregate: tiling.CountOnly,
		Emit:      tiling.EmitOwnOnly,
	})
	if err != nil {
		return nil, err
	}

	data := make([]models.HeatTile, 0, len(tiles))
	for _, t := range tiles {
		data = append(data, models.HeatTile{
			Count:       t.Count,
			TopLeft:     t.TopLeft,
			BottomRight: t.BottomRight,
		})
	}
	return &models.HeatmapResponse{Heatmap: models.HeatmapData{Data: data}}, nil
}

// Trafficmap buckets every sample into count tiles and emits occupied cells
// plus the halo of cells with occupied neighborhoods
func (s *MapService) Trafficmap(ctx context.Context, rect models.Rect, start, end *time.Time, filter tripfilter.Options, tileWidth, tileHeight float64) (*models.TrafficmapResponse, error) {
	filter.DedupeByTrip = false

	tiles, err := s.buildTiles(ctx, rect, start, end, filter, tileWidth, tileHeight, tiling.Options{
		Aggregate: tiling.CountOnly,
		Emit:      tiling.EmitSmoothed,
	})
	if err != nil {
		return nil, err
	}

	data := make([]models.TrafficTile, 0, len(tiles))
	for _, t := range tiles {
		data = append(data, models.TrafficTile{
			Count:         t.Count,
			NeighborCount: t.NeighborCount,
			TopLeft:       t.TopLeft,
			BottomRight:   t.BottomRight,
		})
	}
	return &models.TrafficmapResponse{Trafficmap: models.TrafficmapData{Data: data}}, nil
}

// Speedmap buckets every sample into average-speed tiles and emits occupied
// cells plus the halo of cells with occupied neighborhoods
func (s *MapService) Speedmap(ctx context.Context, rect models.Rect, start, end *time.Time, filter tripfilter.Options, tileWidth, tileHeight float64) (*models.SpeedmapResponse, error) {
	filter.DedupeByTrip = false

	tiles, err := s.buildTiles(ctx, rect, start, end, filter, tileWidth, tileHeight, tiling.Options{
		Aggregate: tiling.CountAndSpeed,
		Emit:      tiling.EmitSmoothed,
	})
	if err != nil {
		return nil, err
	}

	data := make([]models.SpeedTile, 0, len(tiles))
	for _, t := range tiles {
		data = append(data, models.SpeedTile{
			AvgSpeed:         t.AvgSpeed(),
			NeighborAvgSpeed: t.NeighborAvgSpeed(),
			TopLeft:          t.TopLeft,
			BottomRight:      t.BottomRight,
		})
	}
	return &models.SpeedmapResponse{Speedmap: models.SpeedmapData{Data: data}}, nil
}

// Anomalies lists anomaly-flagged points grouped into per-trip polylines
func (s *MapService) Anomalies(ctx context.Context, rect models.Rect, start, end *time.Time) (*models.AnomaliesResponse, error) {
	points, err := s.repo.FindAnomalousByBounds(ctx, rect, start, end)
	if err != nil {
		return nil, err
	}
	return &models.AnomaliesResponse{Anomalies: anomaly.GroupRoutes(points)}, nil
}

func (s *MapService) buildTiles(ctx context.Context, rect models.Rect, start, end *time.Time, filter tripfilter.Options, tileWidth, tileHeight float64, opts tiling.Options) ([]tiling.Tile, error) {
	// Degenerate rectangle: skip the store read entirely
	if rect.LatSpan() == 0 || rect.LngSpan() == 0 {
		return []tiling.Tile{}, nil
	}

	points, err := s.repo.FindByBounds(ctx, rect, start, end)
	if err != nil {
		return nil, err
	}
	filtered := tripfilter.Apply(points, filter)
	return tiling.Build(rect, tileWidth, tileHeight, filtered, opts)
}
