package hae

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/meltforce/vitalsink/internal/models"
)

// sleepRowFromEntry converts a validated sleep entry into a storage row.
// Hour-denominated stage fields become minutes by truncation. In-bed minutes
// come from the session window; a zero or negative window yields efficiency 0
// rather than an error. Core hours land in the light column — the export and
// the schema name that stage differently.
func sleepRowFromEntry(userID string, e *SleepEntry) models.SleepSessionRow {
	totalMinutes := int(e.TotalSleep * 60)
	inBed := int(math.Round(e.SleepEnd.Sub(e.SleepStart.Time).Minutes()))

	efficiency := 0.0
	if inBed > 0 {
		efficiency = float64(totalMinutes) / float64(inBed) * 100
	}

	return models.SleepSessionRow{
		UserID:        userID,
		StartTime:     e.SleepStart.Time,
		EndTime:       e.SleepEnd.Time,
		TotalMinutes:  totalMinutes,
		InBedMinutes:  inBed,
		AwakeMinutes:  int(e.Awake * 60),
		LightMinutes:  int(e.Core * 60),
		DeepMinutes:   int(e.Deep * 60),
		RemMinutes:    int(e.REM * 60),
		EfficiencyPct: efficiency,
	}
}

// workoutCalories extracts total calories from the two alternative energy
// encodings: the aggregate object's qty when activeEnergyBurned carries one,
// otherwise the sum over the activeEnergy timeseries, otherwise 0. Malformed
// or empty aggregates (a non-object value, a JSON null, an object without
// qty) fall through to the series; bad series elements are skipped rather
// than failing the workout.
func workoutCalories(w *models.Workout) float64 {
	if len(w.ActiveEnergyBurned) > 0 {
		var agg struct {
			Qty *float64 `json:"qty"`
		}
		if err := json.Unmarshal(w.ActiveEnergyBurned, &agg); err == nil && agg.Qty != nil {
			return *agg.Qty
		}
	}

	var total float64
	for _, raw := range w.ActiveEnergy {
		p, err := validateEnergyPoint(raw)
		if err != nil {
			continue
		}
		total += *p.Qty
	}
	return total
}

// workoutDuration returns the workout duration in minutes: the start/end
// window when both are present, otherwise the explicit hint, otherwise 0.
// A negative window is a contradiction and fails extraction.
func workoutDuration(w *models.Workout) (float64, error) {
	if w.Start != nil && w.End != nil {
		minutes := w.End.Sub(w.Start.Time).Minutes()
		if minutes < 0 {
			return 0, fmt.Errorf("%w: workout end precedes start", ErrExtraction)
		}
		return minutes, nil
	}
	if w.Duration != nil {
		return *w.Duration, nil
	}
	return 0, nil
}

// workoutTimestamp returns the row timestamp: the workout start when present,
// otherwise the ingestion call's current time.
func workoutTimestamp(w *models.Workout, now time.Time) time.Time {
	if w.Start != nil {
		return w.Start.Time
	}
	return now
}
