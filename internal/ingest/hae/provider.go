package hae

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meltforce/vitalsink/internal/ingest"
	"github.com/meltforce/vitalsink/internal/models"
)

// Provider drives the ingestion pipeline: discriminate each metric block,
// then validate → extract → write per data point, isolating failures at the
// per-record level. Only a missing envelope or an unavailable store fails
// the whole call.
type Provider struct {
	store ingest.Store
	log   *slog.Logger
	now   func() time.Time
}

// NewProvider creates an ingest provider.
func NewProvider(store ingest.Store, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log, now: time.Now}
}

// Ingest processes one webhook payload for the given user and returns the
// per-category insertion summary. Record-level failures are logged, counted
// as skips, and never abort the call.
func (p *Provider) Ingest(ctx context.Context, payload *models.Payload, userID string) (*ingest.Result, error) {
	if payload == nil || payload.Data == nil {
		return nil, ErrPayloadShape
	}

	sess, err := p.store.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer sess.Release()

	result := &ingest.Result{}

	for _, block := range payload.Data.Metrics {
		switch DetectMetricKind(block) {
		case KindSleep:
			p.ingestSleepBlock(ctx, sess, block, userID, result)
		default:
			p.ingestCommonBlock(ctx, sess, block, userID, result)
		}
	}

	p.ingestWorkouts(ctx, sess, payload.Data.Workouts, userID, result)

	return result, nil
}

func (p *Provider) ingestCommonBlock(ctx context.Context, sess ingest.Session, block models.MetricBlock, userID string, result *ingest.Result) {
	for i, raw := range block.Data {
		point, err := validateCommonPoint(raw)
		if err != nil {
			p.log.Warn("skipping data point", "metric", block.Name, "index", i, "error", err)
			result.Skip(fmt.Sprintf("%s[%d]: %v", block.Name, i, err))
			continue
		}

		inserted, err := sess.InsertHealthMetric(ctx, models.HealthMetricRow{
			UserID:     userID,
			MetricName: block.Name,
			MetricUnit: block.Units,
			Timestamp:  point.Date.Time,
			Value:      point.Qty,
		})
		if err != nil {
			p.log.Warn("metric insert failed", "metric", block.Name, "index", i, "error", err)
			result.Skip(fmt.Sprintf("%s[%d]: insert: %v", block.Name, i, err))
			continue
		}
		if inserted {
			result.MetricsInserted++
		}
	}
}

func (p *Provider) ingestSleepBlock(ctx context.Context, sess ingest.Session, block models.MetricBlock, userID string, result *ingest.Result) {
	for i, raw := range block.Data {
		entry, err := validateSleepEntry(raw)
		if err != nil {
			p.log.Warn("skipping sleep entry", "index", i, "error", err)
			result.Skip(fmt.Sprintf("sleep[%d]: %v", i, err))
			continue
		}

		inserted, err := sess.InsertSleepSession(ctx, sleepRowFromEntry(userID, entry))
		if err != nil {
			p.log.Warn("sleep insert failed", "index", i, "error", err)
			result.Skip(fmt.Sprintf("sleep[%d]: insert: %v", i, err))
			continue
		}
		if inserted {
			result.SleepInserted++
		}
	}
}

func (p *Provider) ingestWorkouts(ctx context.Context, sess ingest.Session, workouts []models.Workout, userID string, result *ingest.Result) {
	now := p.now().UTC()

	for i := range workouts {
		w := &workouts[i]

		// Zero-calorie workouts produce no row and are not an error.
		calories := workoutCalories(w)
		if calories <= 0 {
			continue
		}

		duration, err := workoutDuration(w)
		if err != nil {
			p.log.Warn("skipping workout", "index", i, "error", err)
			result.Skip(fmt.Sprintf("workout[%d]: %v", i, err))
			continue
		}

		inserted, err := sess.InsertHealthMetric(ctx, models.HealthMetricRow{
			UserID:     userID,
			MetricName: "workout",
			MetricUnit: "cal",
			Timestamp:  workoutTimestamp(w, now),
			Value:      calories,
		})
		if err != nil {
			p.log.Warn("workout insert failed", "index", i, "error", err)
			result.Skip(fmt.Sprintf("workout[%d]: insert: %v", i, err))
			continue
		}
		if inserted {
			result.WorkoutsInserted++
			p.log.Info("inserted workout", "calories", calories, "duration_min", duration)
		}
	}
}
