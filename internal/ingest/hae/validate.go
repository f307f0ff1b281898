package hae

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meltforce/vitalsink/internal/models"
)

// Validators decode one raw data point into its discriminated shape and
// enforce required fields. Decoding into pointer fields distinguishes
// "absent" from "zero"; extra fields are ignored so partial records from
// newer export versions still validate.

// CommonPoint is a validated scalar measurement.
type CommonPoint struct {
	Date models.HAETime
	Qty  float64
}

type rawCommonPoint struct {
	Date *models.HAETime `json:"date"`
	Qty  *float64        `json:"qty"`
}

func validateCommonPoint(raw json.RawMessage) (*CommonPoint, error) {
	var p rawCommonPoint
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, wrapShapeErr("common point", err)
	}
	if p.Date == nil {
		return nil, fmt.Errorf("%w: common point missing date", ErrRecordShape)
	}
	if p.Qty == nil {
		return nil, fmt.Errorf("%w: common point missing qty", ErrRecordShape)
	}
	return &CommonPoint{Date: *p.Date, Qty: *p.Qty}, nil
}

// SleepEntry is a validated sleep session. All stage durations are hours.
type SleepEntry struct {
	Date       models.HAETime
	Asleep     float64
	Awake      float64
	Core       float64
	Deep       float64
	REM        float64
	SleepStart models.HAETime
	SleepEnd   models.HAETime
	Source     string
	TotalSleep float64
}

type rawSleepEntry struct {
	Date       *models.HAETime `json:"date"`
	Asleep     *float64        `json:"asleep"`
	Awake      *float64        `json:"awake"`
	Core       *float64        `json:"core"`
	Deep       *float64        `json:"deep"`
	REM        *float64        `json:"rem"`
	SleepStart *models.HAETime `json:"sleepStart"`
	SleepEnd   *models.HAETime `json:"sleepEnd"`
	Source     *string         `json:"source"`
	TotalSleep *float64        `json:"totalSleep"`
}

func validateSleepEntry(raw json.RawMessage) (*SleepEntry, error) {
	var e rawSleepEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, wrapShapeErr("sleep entry", err)
	}
	switch {
	case e.Date == nil:
		return nil, fmt.Errorf("%w: sleep entry missing date", ErrRecordShape)
	case e.Asleep == nil:
		return nil, fmt.Errorf("%w: sleep entry missing asleep", ErrRecordShape)
	case e.Awake == nil:
		return nil, fmt.Errorf("%w: sleep entry missing awake", ErrRecordShape)
	case e.Core == nil:
		return nil, fmt.Errorf("%w: sleep entry missing core", ErrRecordShape)
	case e.Deep == nil:
		return nil, fmt.Errorf("%w: sleep entry missing deep", ErrRecordShape)
	case e.REM == nil:
		return nil, fmt.Errorf("%w: sleep entry missing rem", ErrRecordShape)
	case e.SleepStart == nil:
		return nil, fmt.Errorf("%w: sleep entry missing sleepStart", ErrRecordShape)
	case e.SleepEnd == nil:
		return nil, fmt.Errorf("%w: sleep entry missing sleepEnd", ErrRecordShape)
	case e.Source == nil:
		return nil, fmt.Errorf("%w: sleep entry missing source", ErrRecordShape)
	case e.TotalSleep == nil:
		return nil, fmt.Errorf("%w: sleep entry missing totalSleep", ErrRecordShape)
	}
	return &SleepEntry{
		Date:       *e.Date,
		Asleep:     *e.Asleep,
		Awake:      *e.Awake,
		Core:       *e.Core,
		Deep:       *e.Deep,
		REM:        *e.REM,
		SleepStart: *e.SleepStart,
		SleepEnd:   *e.SleepEnd,
		Source:     *e.Source,
		TotalSleep: *e.TotalSleep,
	}, nil
}

// validateEnergyPoint decodes one element of a workout's activeEnergy
// timeseries. Only qty is required; unknown sibling fields are tolerated.
func validateEnergyPoint(raw json.RawMessage) (*models.EnergyPoint, error) {
	var p models.EnergyPoint
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, wrapShapeErr("energy point", err)
	}
	if p.Qty == nil {
		return nil, fmt.Errorf("%w: energy point missing qty", ErrRecordShape)
	}
	return &p, nil
}

// validateHeartRatePoint decodes one element of a workout's heartRateData
// timeseries. The nested qty object may carry any subset of Avg/Min/Max.
func validateHeartRatePoint(raw json.RawMessage) (*models.HeartRatePoint, error) {
	var p models.HeartRatePoint
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, wrapShapeErr("heart rate point", err)
	}
	if p.Date == nil {
		return nil, fmt.Errorf("%w: heart rate point missing date", ErrRecordShape)
	}
	return &p, nil
}

// wrapShapeErr classifies a decode failure: timestamp parse failures surface
// as ErrTimestampFormat, everything else as ErrRecordShape. HAETime.Parse
// errors reach us flattened by encoding/json, so the match is on message.
func wrapShapeErr(what string, err error) error {
	if strings.Contains(err.Error(), "cannot parse export time") {
		return fmt.Errorf("%w: %s: %v", ErrTimestampFormat, what, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrRecordShape, what, err)
}
