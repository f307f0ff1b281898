package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IngestLog records the outcome of a single webhook call.
type IngestLog struct {
	ID               uuid.UUID `json:"id"`
	UserID           string    `json:"user_id"`
	CreatedAt        time.Time `json:"created_at"`
	RequestHash      string    `json:"request_hash"`
	Status           string    `json:"status"`
	MetricsInserted  int       `json:"metrics_inserted"`
	SleepInserted    int       `json:"sleep_inserted"`
	WorkoutsInserted int       `json:"workouts_inserted"`
	Skipped          int       `json:"skipped"`
	ErrorMessage     *string   `json:"error_message"`
}

// InsertIngestLog creates a new ingest log entry and returns its ID.
func (db *DB) InsertIngestLog(ctx context.Context, log IngestLog) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO ingest_logs (id, user_id, request_hash, status,
		 metrics_inserted, sleep_inserted, workouts_inserted, skipped, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		id, log.UserID, log.RequestHash, log.Status,
		log.MetricsInserted, log.SleepInserted, log.WorkoutsInserted, log.Skipped, log.ErrorMessage)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting ingest log: %w", err)
	}
	return id, nil
}

// QueryIngestLogs returns the most recent ingest logs for a user.
func (db *DB) QueryIngestLogs(ctx context.Context, userID string, limit int) ([]IngestLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, created_at, request_hash, status,
		 metrics_inserted, sleep_inserted, workouts_inserted, skipped, error_message
		 FROM ingest_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ingest logs: %w", err)
	}
	defer rows.Close()

	result := []IngestLog{}
	for rows.Next() {
		var l IngestLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.CreatedAt, &l.RequestHash, &l.Status,
			&l.MetricsInserted, &l.SleepInserted, &l.WorkoutsInserted, &l.Skipped, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning ingest log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
