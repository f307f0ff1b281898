package insights

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meltforce/vitalsink/internal/storage"
)

// MetricStats holds avg/min/max for a scalar metric over a period. Empty
// periods report zeros rather than nulls.
type MetricStats struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SleepPeriodStats holds average nightly duration and efficiency.
type SleepPeriodStats struct {
	AvgDurationHours float64 `json:"avg_duration_hours"`
	AvgEfficiency    float64 `json:"avg_efficiency"`
}

// WorkoutPeriodStats holds total calories and session count.
type WorkoutPeriodStats struct {
	TotalCalories float64 `json:"total_calories"`
	SessionCount  int64   `json:"session_count"`
}

// PeriodData bundles the three metric families for one analysis window.
type PeriodData struct {
	HRV     MetricStats        `json:"hrv"`
	Sleep   SleepPeriodStats   `json:"sleep"`
	Workout WorkoutPeriodStats `json:"workout"`
}

// Changes captures deltas between the current and previous periods.
type Changes struct {
	HRVChangePercent     float64 `json:"hrv_change_percent"`
	SleepDurationChange  float64 `json:"sleep_duration_change"`
	WorkoutCalorieChange float64 `json:"workout_calorie_change"`
}

// Report is the full insights response for one user and window.
type Report struct {
	PeriodHours int        `json:"period_hours"`
	Current     PeriodData `json:"current"`
	Previous    PeriodData `json:"previous"`
	Changes     Changes    `json:"changes"`
	Insight     string     `json:"insight"`
}

// StatsStore is the slice of storage the service needs. *storage.DB
// satisfies it.
type StatsStore interface {
	GetHRVStats(ctx context.Context, userID string, start, end time.Time) (*storage.HRVStats, error)
	GetSleepStats(ctx context.Context, userID string, start, end time.Time) (*storage.SleepStats, error)
	GetWorkoutStats(ctx context.Context, userID string, start, end time.Time) (*storage.WorkoutStats, error)
}

// Service computes period comparisons and asks the generator for a
// narrative insight.
type Service struct {
	store StatsStore
	gen   *Generator
	log   *slog.Logger
	now   func() time.Time
}

// NewService creates an insights service.
func NewService(store StatsStore, gen *Generator, log *slog.Logger) *Service {
	return &Service{store: store, gen: gen, log: log, now: time.Now}
}

// Compare builds the report for the last rangeHours against the equal window
// before it.
func (s *Service) Compare(ctx context.Context, userID string, rangeHours int) (*Report, error) {
	now := s.now().UTC()
	currentStart := now.Add(-time.Duration(rangeHours) * time.Hour)
	previousStart := now.Add(-time.Duration(rangeHours*2) * time.Hour)

	current, err := s.periodData(ctx, userID, currentStart, now)
	if err != nil {
		return nil, fmt.Errorf("current period: %w", err)
	}
	previous, err := s.periodData(ctx, userID, previousStart, currentStart)
	if err != nil {
		return nil, fmt.Errorf("previous period: %w", err)
	}

	changes := Changes{
		SleepDurationChange:  current.Sleep.AvgDurationHours - previous.Sleep.AvgDurationHours,
		WorkoutCalorieChange: current.Workout.TotalCalories - previous.Workout.TotalCalories,
	}
	if previous.HRV.Avg > 0 {
		changes.HRVChangePercent = (current.HRV.Avg - previous.HRV.Avg) / previous.HRV.Avg * 100
	}

	insight := s.gen.Insight(ctx, current, previous, rangeHours)

	return &Report{
		PeriodHours: rangeHours,
		Current:     current,
		Previous:    previous,
		Changes:     changes,
		Insight:     insight,
	}, nil
}

func (s *Service) periodData(ctx context.Context, userID string, start, end time.Time) (PeriodData, error) {
	var data PeriodData

	hrv, err := s.store.GetHRVStats(ctx, userID, start, end)
	if err != nil {
		return data, err
	}
	data.HRV = MetricStats{Avg: deref(hrv.Avg), Min: deref(hrv.Min), Max: deref(hrv.Max)}

	sleep, err := s.store.GetSleepStats(ctx, userID, start, end)
	if err != nil {
		return data, err
	}
	data.Sleep = SleepPeriodStats{
		AvgDurationHours: deref(sleep.AvgDurationHours),
		AvgEfficiency:    deref(sleep.AvgEfficiency),
	}

	workout, err := s.store.GetWorkoutStats(ctx, userID, start, end)
	if err != nil {
		return data, err
	}
	data.Workout = WorkoutPeriodStats{
		TotalCalories: workout.TotalCalories,
		SessionCount:  workout.Sessions,
	}

	return data, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
