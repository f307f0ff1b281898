package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/meltforce/vitalsink/internal/models"
)

// InsertSleepSession writes one sleep session. Duplicate sessions on the
// (user, start_time) key are absorbed; the bool reports whether a row landed.
func (s *session) InsertSleepSession(ctx context.Context, row models.SleepSessionRow) (bool, error) {
	tag, err := s.conn.Exec(ctx,
		`INSERT INTO sleep_metrics (user_id, start_time, end_time,
		 duration_total_minutes, duration_in_bed_minutes, duration_awake_minutes,
		 duration_light_minutes, duration_deep_minutes, duration_rem_minutes, efficiency)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (user_id, start_time) DO NOTHING`,
		row.UserID, row.StartTime, row.EndTime,
		row.TotalMinutes, row.InBedMinutes, row.AwakeMinutes,
		row.LightMinutes, row.DeepMinutes, row.RemMinutes, row.EfficiencyPct)
	if err != nil {
		return false, fmt.Errorf("inserting sleep session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// QuerySleepDurations retrieves sleep sessions as (start_time, hours slept)
// points, optionally bounded by a time range, oldest first, capped at limit.
func (db *DB) QuerySleepDurations(ctx context.Context, userID string, from, to *time.Time, limit int) ([]models.MetricDataPoint, error) {
	query := `SELECT start_time, duration_total_minutes / 60.0 FROM sleep_metrics
		 WHERE user_id = $1`
	args := []any{userID}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND start_time >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND start_time <= $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY start_time ASC LIMIT $%d", len(args))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sleep durations: %w", err)
	}
	defer rows.Close()

	result := []models.MetricDataPoint{}
	for rows.Next() {
		var p models.MetricDataPoint
		if err := rows.Scan(&p.Timestamp, &p.Value); err != nil {
			return nil, fmt.Errorf("scanning sleep duration: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// CountSleepSessions returns the number of sessions matching the optional
// range, independent of any limit.
func (db *DB) CountSleepSessions(ctx context.Context, userID string, from, to *time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM sleep_metrics WHERE user_id = $1`
	args := []any{userID}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND start_time >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND start_time <= $%d", len(args))
	}

	var count int64
	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting sleep sessions: %w", err)
	}
	return count, nil
}

// SleepStats holds period aggregates for sleep sessions.
type SleepStats struct {
	AvgDurationHours *float64 `json:"avg_duration_hours"`
	AvgEfficiency    *float64 `json:"avg_efficiency"`
	Nights           int64    `json:"nights"`
}

// GetSleepStats returns average nightly duration (hours) and efficiency over
// sessions starting in [start, end). Averages are nil when the period holds
// no sessions.
func (db *DB) GetSleepStats(ctx context.Context, userID string, start, end time.Time) (*SleepStats, error) {
	stats := &SleepStats{}
	err := db.Pool.QueryRow(ctx,
		`SELECT AVG(duration_total_minutes / 60.0), AVG(efficiency), COUNT(*)
		 FROM sleep_metrics
		 WHERE user_id = $1 AND start_time >= $2 AND start_time < $3`,
		userID, start, end,
	).Scan(&stats.AvgDurationHours, &stats.AvgEfficiency, &stats.Nights)
	if err != nil {
		return nil, fmt.Errorf("querying sleep stats: %w", err)
	}
	return stats, nil
}
