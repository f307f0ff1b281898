package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// HAETime handles the Health Auto Export date format: "2006-01-02 15:04:05 -0700"
// (space-separated, numeric offset without a colon). Exports produced by other
// tooling send ISO 8601 instead, sometimes with a trailing "Z"; that literal is
// rewritten to "+00:00" before the fallback parse. Offset-less ISO strings
// are accepted as naive timestamps and read as UTC.
type HAETime struct {
	time.Time
}

const (
	HAETimeLayout  = "2006-01-02 15:04:05 -0700"
	isoLayout      = "2006-01-02T15:04:05-07:00"
	isoFracLayout  = "2006-01-02T15:04:05.999999999-07:00"
	isoNaiveLayout = "2006-01-02T15:04:05.999999999"
)

func (t *HAETime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return t.Parse(s)
}

func (t HAETime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(HAETimeLayout))
}

// Parse parses an export time string, trying the HAE layout first, then ISO 8601.
func (t *HAETime) Parse(s string) error {
	parsed, err := time.Parse(HAETimeLayout, s)
	if err == nil {
		t.Time = parsed
		return nil
	}

	iso := s
	if strings.HasSuffix(iso, "Z") {
		iso = strings.TrimSuffix(iso, "Z") + "+00:00"
	}
	parsed, err2 := time.Parse(isoLayout, iso)
	if err2 == nil {
		t.Time = parsed
		return nil
	}
	parsed, err2 = time.Parse(isoFracLayout, iso)
	if err2 == nil {
		t.Time = parsed
		return nil
	}
	// Offset-less ISO strings are naive timestamps; read them as UTC.
	parsed, err2 = time.Parse(isoNaiveLayout, iso)
	if err2 == nil {
		t.Time = parsed
		return nil
	}
	return fmt.Errorf("cannot parse export time %q: %w", s, err)
}

// ParseHAETime parses an export time string into a time.Time.
func ParseHAETime(s string) (time.Time, error) {
	var t HAETime
	if err := t.Parse(s); err != nil {
		return time.Time{}, err
	}
	return t.Time, nil
}

// Payload is the top-level webhook JSON structure.
type Payload struct {
	Data      *DataNode `json:"data"`
	RequestID string    `json:"request_id,omitempty"`
}

// DataNode contains the arrays of health data.
type DataNode struct {
	Metrics  []MetricBlock `json:"metrics"`
	Workouts []Workout     `json:"workouts"`
}

// MetricBlock is a single metric entry with name, units, and data points.
// Data points stay raw until the block has been discriminated, because
// sleep_analysis blocks and common blocks carry different element shapes.
type MetricBlock struct {
	Name  string            `json:"name"`
	Units string            `json:"units"`
	Data  []json.RawMessage `json:"data"`
}

// Workout is a workout record from the export. Every field is optional and
// the energy/heart-rate sub-objects are inconsistently shaped across export
// versions, so they stay raw and are only opportunistically inspected.
type Workout struct {
	Start       *HAETime `json:"start,omitempty"`
	End         *HAETime `json:"end,omitempty"`
	Duration    *float64 `json:"duration,omitempty"` // minutes, explicit hint
	WorkoutType *string  `json:"workoutType,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Source      *string  `json:"source,omitempty"`

	// Two mutually-exclusive energy encodings: a single aggregate object
	// or a timeseries to be summed.
	ActiveEnergyBurned json.RawMessage   `json:"activeEnergyBurned,omitempty"`
	ActiveEnergy       []json.RawMessage `json:"activeEnergy,omitempty"`

	HeartRateData     []json.RawMessage `json:"heartRateData,omitempty"`
	HeartRateRecovery []json.RawMessage `json:"heartRateRecovery,omitempty"`
	Intensity         json.RawMessage   `json:"intensity,omitempty"`
	Metadata          json.RawMessage   `json:"metadata,omitempty"`
}

// EnergyPoint is one element of a workout's activeEnergy timeseries.
type EnergyPoint struct {
	Date   *HAETime `json:"date"`
	Qty    *float64 `json:"qty"`
	Source *string  `json:"source,omitempty"`
	Units  string   `json:"units"`
}

// HeartRateValues is the nested qty object of a workout heart-rate point
// (capitalized keys in the export JSON).
type HeartRateValues struct {
	Avg *float64 `json:"Avg,omitempty"`
	Min *float64 `json:"Min,omitempty"`
	Max *float64 `json:"Max,omitempty"`
}

// HeartRatePoint is one element of a workout's heartRateData timeseries.
type HeartRatePoint struct {
	Date   *HAETime         `json:"date"`
	Qty    *HeartRateValues `json:"qty"`
	Source *string          `json:"source,omitempty"`
	Units  string           `json:"units"`
}

// WebhookResponse is the ingest endpoint's response envelope. It is returned
// on every path, including total failure.
type WebhookResponse struct {
	Success     bool           `json:"success"`
	Message     string         `json:"message"`
	Processed   ProcessedCount `json:"processed"`
	RequestHash string         `json:"request_hash"`
}

// ProcessedCount reports how many rows each category inserted.
type ProcessedCount struct {
	Metrics  int `json:"metrics"`
	Sleep    int `json:"sleep"`
	Workouts int `json:"workouts"`
}
