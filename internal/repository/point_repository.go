package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tracemap/internal/models"
)

// PointRepository handles database operations for GPS trace points
type PointRepository struct {
	db *sql.DB
}

// NewPointRepository creates a new point repository
func NewPointRepository(db *sql.DB) *PointRepository {
	return &PointRepository{db: db}
}

const pointColumns = "id, trip_id, lat, lng, alt, spd, azm, timestamp, anomaly"

// Insert persists a new point and fills in its assigned id
func (r *PointRepository) Insert(ctx context.Context, p *models.Point) error {
	query := `INSERT INTO points (trip_id, lat, lng, alt, spd, azm, timestamp, anomaly)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var ts interface{}
	if p.Timestamp != nil {
		ts = p.Timestamp.Unix()
	}
	var anomaly interface{}
	if p.Anomaly != nil {
		anomaly = *p.Anomaly
	}

	result, err := r.db.ExecContext(ctx, query, p.TripID, p.Lat, p.Lng, p.Altitude, p.Speed, p.Heading, ts, anomaly)
	if err != nil {
		return fmt.Errorf("failed to insert point: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted point id: %w", err)
	}
	p.ID = id

	return nil
}

// FindByBounds retrieves points inside a rectangle and optional inclusive
// timestamp range, ordered by timestamp ascending
func (r *PointRepository) FindByBounds(ctx context.Context, rect models.Rect, start, end *time.Time) ([]models.Point, error) {
	query := fmt.Sprintf(`SELECT %s FROM points`, pointColumns)

	conditions := []string{"lat BETWEEN ? AND ?", "lng BETWEEN ? AND ?"}
	args := []interface{}{rect.LatMin, rect.LatMax, rect.LngMin, rect.LngMax}

	if start != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, start.Unix())
	}
	if end != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, end.Unix())
	}

	query += " WHERE " + strings.Join(conditions, " AND ")
	query += " ORDER BY timestamp ASC"

	return r.queryPoints(ctx, query, args...)
}

// FindByTrip retrieves all points of a trip, most recent first
func (r *PointRepository) FindByTrip(ctx context.Context, tripID int64) ([]models.Point, error) {
	query := fmt.Sprintf(`SELECT %s FROM points WHERE trip_id = ? ORDER BY timestamp DESC, id DESC`, pointColumns)
	return r.queryPoints(ctx, query, tripID)
}

// FindAnomalousByBounds retrieves anomaly-flagged points inside a rectangle
// and optional inclusive timestamp range, ordered by (trip_id, timestamp)
// for single-pass route grouping
func (r *PointRepository) FindAnomalousByBounds(ctx context.Context, rect models.Rect, start, end *time.Time) ([]models.Point, error) {
	query := fmt.Sprintf(`SELECT %s FROM points`, pointColumns)

	conditions := []string{"lat BETWEEN ? AND ?", "lng BETWEEN ? AND ?", "anomaly = 1"}
	args := []interface{}{rect.LatMin, rect.LatMax, rect.LngMin, rect.LngMax}

	if start != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, start.Unix())
	}
	if end != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, end.Unix())
	}

	query += " WHERE " + strings.Join(conditions, " AND ")
	query += " ORDER BY trip_id ASC, timestamp ASC"

	return r.queryPoints(ctx, query, args...)
}

func (r *PointRepository) queryPoints(ctx context.Context, query string, args ...interface{}) ([]models.Point, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	defer rows.Close()

	var points []models.Point
	for rows.Next() {
		var p models.Point
		var ts sql.NullInt64
		var anomaly sql.NullBool
		err := rows.Scan(&p.ID, &p.TripID, &p.Lat, &p.Lng, &p.Altitude, &p.Speed, &p.Heading, &ts, &anomaly)
		if err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		if ts.Valid {
			t := time.Unix(ts.Int64, 0).UTC()
			p.Timestamp = &t
		}
		if anomaly.Valid {
			p.Anomaly = &anomaly.Bool
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate points: %w", err)
	}

	return points, nil
}
