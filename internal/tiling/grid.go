package tiling

import (
	"fmt"
	"math"

	"tracemap/internal/models"
)

// Aggregate selects the per-cell statistic a grid computes
type Aggregate int

const (
	// CountOnly accumulates point counts per cell
	CountOnly Aggregate = iota
	// CountAndSpeed additionally accumulates speed sums for averages
	CountAndSpeed
)

// EmitMode selects which cells appear in the output
type EmitMode int

const (
	// EmitOwnOnly emits cells holding at least one point
	EmitOwnOnly EmitMode = iota
	// EmitSmoothed also emits empty cells whose Moore neighborhood holds
	// points, so consumers see the halo around sparse clusters
	EmitSmoothed
)

// Options parameterizes one grid build; the per-endpoint call sites supply
// only their aggregate kind and emission mode.
type Options struct {
	Aggregate Aggregate
	Emit      EmitMode
}

// Tile is one emitted grid cell. Neighbor aggregates cover the up-to-8
// in-bounds surrounding cells and never include the cell itself.
type Tile struct {
	Count            int
	SpeedSum         float64
	NeighborCount    int
	NeighborSpeedSum float64
	TopLeft          models.MapPoint
	BottomRight      models.MapPoint
}

// AvgSpeed returns the cell's average speed, 0.0 for an empty cell
func (t Tile) AvgSpeed() float64 {
	if t.Count == 0 {
		return 0.0
	}
	return t.SpeedSum / float64(t.Count)
}

// NeighborAvgSpeed returns the neighborhood average speed, 0.0 when the
// neighborhood holds no points
func (t Tile) NeighborAvgSpeed() float64 {
	if t.NeighborCount == 0 {
		return 0.0
	}
	return t.NeighborSpeedSum / float64(t.NeighborCount)
}

// Build buckets points into a row/column grid over rect and returns the
// emitted tiles in row-major order (row ascending, then column ascending).
// A zero-span rectangle yields an empty tile list; a non-positive tile size
// is a validation error. Points exactly on the rectangle's maximum latitude
// or longitude are clamped into the last row/column rather than dropped.
func Build(rect models.Rect, tileWidth, tileHeight float64, points []models.Point, opts Options) ([]Tile, error) {
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, fmt.Errorf("tileWidth and tileHeight must be > 0")
	}

	latSpan := math.Max(rect.LatSpan(), 0)
	lngSpan := math.Max(rect.LngSpan(), 0)

	rows := 0
	if latSpan > 0 {
		rows = int(math.Ceil(latSpan / tileHeight))
		if rows < 1 {
			rows = 1
		}
	}
	cols := 0
	if lngSpan > 0 {
		cols = int(math.Ceil(lngSpan / tileWidth))
		if cols < 1 {
			cols = 1
		}
	}
	if rows == 0 || cols == 0 {
		return []Tile{}, nil
	}

	counts := make([]int, rows*cols)
	var speedSums []float64
	if opts.Aggregate == CountAndSpeed {
		speedSums = make([]float64, rows*cols)
	}

	for _, p := range points {
		r := int(math.Floor((p.Lat - rect.LatMin) / tileHeight))
		c := int(math.Floor((p.Lng - rect.LngMin) / tileWidth))

		// Clamp so points on the max edges land in the last row/column
		if r < 0 {
			r = 0
		}
		if c < 0 {
			c = 0
		}
		if r >= rows {
			r = rows - 1
		}
		if c >= cols {
			c = cols - 1
		}

		idx := r*cols + c
		counts[idx]++
		if speedSums != nil {
			speedSums[idx] += p.Speed
		}
	}

	tiles := make([]Tile, 0, rows*cols)
	for r := 0; r < rows; r++ {
		tileLatMin := rect.LatMin + float64(r)*tileHeight
		tileLatMax := math.Min(tileLatMin+tileHeight, rect.LatMax)
		for c := 0; c < cols; c++ {
			tileLngMin := rect.LngMin + float64(c)*tileWidth
			tileLngMax := math.Min(tileLngMin+tileWidth, rect.LngMax)

			idx := r*cols + c
			tile := Tile{
				Count:       counts[idx],
				TopLeft:     models.MapPoint{Lat: tileLatMin, Lng: tileLngMin},
				BottomRight: models.MapPoint{Lat: tileLatMax, Lng: tileLngMax},
			}
			if speedSums != nil {
				tile.SpeedSum = speedSums[idx]
			}

			// Moore neighborhood: the up-to-8 in-bounds surrounding cells
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if dr == 0 && dc == 0 {
						continue
					}
					nr, nc := r+dr, c+dc
					if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
						continue
					}
					nidx := nr*cols + nc
					tile.NeighborCount += counts[nidx]
					if speedSums != nil {
						tile.NeighborSpeedSum += speedSums[nidx]
					}
				}
			}

			switch opts.Emit {
			case EmitOwnOnly:
				if tile.Count == 0 {
					continue
				}
			case EmitSmoothed:
				if tile.Count == 0 && tile.NeighborCount == 0 {
					continue
				}
			}
			tiles = append(tiles, tile)
		}
	}

	return tiles, nil
}
