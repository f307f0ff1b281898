package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/meltforce/vitalsink/internal/models"
)

// InsertHealthMetric writes one scalar metric point. Duplicate points on the
// (user, metric, timestamp) key are absorbed; the bool reports whether a row
// actually landed.
func (s *session) InsertHealthMetric(ctx context.Context, row models.HealthMetricRow) (bool, error) {
	tag, err := s.conn.Exec(ctx,
		`INSERT INTO health_metrics (user_id, metric_name, metric_unit, timestamp, value)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (user_id, metric_name, timestamp) DO NOTHING`,
		row.UserID, row.MetricName, row.MetricUnit, row.Timestamp, row.Value)
	if err != nil {
		return false, fmt.Errorf("inserting health metric: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// QueryMetricPoints retrieves points for one metric name, optionally bounded
// by a time range, oldest first, capped at limit.
func (db *DB) QueryMetricPoints(ctx context.Context, userID, metricName string, from, to *time.Time, limit int) ([]models.MetricDataPoint, error) {
	query := `SELECT timestamp, value FROM health_metrics
		 WHERE user_id = $1 AND metric_name = $2`
	args := []any{userID, metricName}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND timestamp >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND timestamp <= $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY timestamp ASC LIMIT $%d", len(args))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying metric points: %w", err)
	}
	defer rows.Close()

	result := []models.MetricDataPoint{}
	for rows.Next() {
		var p models.MetricDataPoint
		if err := rows.Scan(&p.Timestamp, &p.Value); err != nil {
			return nil, fmt.Errorf("scanning metric point: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// CountMetricPoints returns the number of points matching the name and
// optional range, independent of any limit.
func (db *DB) CountMetricPoints(ctx context.Context, userID, metricName string, from, to *time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM health_metrics
		 WHERE user_id = $1 AND metric_name = $2`
	args := []any{userID, metricName}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND timestamp >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND timestamp <= $%d", len(args))
	}

	var count int64
	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting metric points: %w", err)
	}
	return count, nil
}

// HRVStats holds period aggregates for heart rate variability.
type HRVStats struct {
	Avg *float64 `json:"avg"`
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// GetHRVStats returns HRV avg/min/max over [start, end). Fields are nil when
// the period holds no data.
func (db *DB) GetHRVStats(ctx context.Context, userID string, start, end time.Time) (*HRVStats, error) {
	stats := &HRVStats{}
	err := db.Pool.QueryRow(ctx,
		`SELECT AVG(value), MIN(value), MAX(value)
		 FROM health_metrics
		 WHERE user_id = $1 AND metric_name = 'heart_rate_variability'
		   AND timestamp >= $2 AND timestamp < $3`,
		userID, start, end,
	).Scan(&stats.Avg, &stats.Min, &stats.Max)
	if err != nil {
		return nil, fmt.Errorf("querying hrv stats: %w", err)
	}
	return stats, nil
}

// WorkoutStats holds period aggregates for workout calorie rows.
type WorkoutStats struct {
	TotalCalories float64 `json:"total_calories"`
	Sessions      int64   `json:"sessions"`
}

// GetWorkoutStats returns total calories and session count over [start, end).
func (db *DB) GetWorkoutStats(ctx context.Context, userID string, start, end time.Time) (*WorkoutStats, error) {
	stats := &WorkoutStats{}
	err := db.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(value), 0), COUNT(*)
		 FROM health_metrics
		 WHERE user_id = $1 AND metric_name = 'workout'
		   AND timestamp >= $2 AND timestamp < $3`,
		userID, start, end,
	).Scan(&stats.TotalCalories, &stats.Sessions)
	if err != nil {
		return nil, fmt.Errorf("querying workout stats: %w", err)
	}
	return stats, nil
}
