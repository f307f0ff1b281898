package ingest

// Result holds the outcome of one ingestion call. Per-record failures are
// accumulated here instead of aborting the call.
type Result struct {
	MetricsInserted  int `json:"metrics_inserted"`
	SleepInserted    int `json:"sleep_inserted"`
	WorkoutsInserted int `json:"workouts_inserted"`

	// Skipped counts records that failed validation or extraction and were
	// passed over. SkippedDetails carries one diagnostic per skip.
	Skipped        int      `json:"skipped"`
	SkippedDetails []string `json:"skipped_details,omitempty"`
}

// Skip records one per-record failure diagnostic.
func (r *Result) Skip(detail string) {
	r.Skipped++
	r.SkippedDetails = append(r.SkippedDetails, detail)
}
