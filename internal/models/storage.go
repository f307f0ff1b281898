package models

import "time"

// HealthMetricRow is a row ready for insertion into the health_metrics table.
// The natural key is (user_id, metric_name, timestamp); duplicate deliveries
// are absorbed by the insert, never overwritten.
type HealthMetricRow struct {
	UserID     string    `json:"user_id"`
	MetricName string    `json:"metric_name"`
	MetricUnit string    `json:"metric_unit"`
	Timestamp  time.Time `json:"timestamp"`
	Value      float64   `json:"value"`
}

// SleepSessionRow is a row ready for insertion into the sleep_metrics table.
// Natural key: (user_id, start_time). All stage durations are whole minutes.
type SleepSessionRow struct {
	UserID        string    `json:"user_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	TotalMinutes  int       `json:"duration_total_minutes"`
	InBedMinutes  int       `json:"duration_in_bed_minutes"`
	AwakeMinutes  int       `json:"duration_awake_minutes"`
	LightMinutes  int       `json:"duration_light_minutes"`
	DeepMinutes   int       `json:"duration_deep_minutes"`
	RemMinutes    int       `json:"duration_rem_minutes"`
	EfficiencyPct float64   `json:"efficiency"`
}

// MetricDataPoint is a (timestamp, value) pair served by the query endpoint.
type MetricDataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}
