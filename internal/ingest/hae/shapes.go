package hae

import "github.com/meltforce/vitalsink/internal/models"

// MetricKind classifies a metric block. The decision is made once per block
// by inspecting the name field; every data point inside the block shares the
// block's classification. Workouts arrive in their own top-level array and
// never pass through this discrimination.
type MetricKind int

const (
	KindCommon MetricKind = iota // {"date": ..., "qty": N}
	KindSleep                    // rich sleep session entries
)

// sleepMetricName is the only metric name carrying sleep session entries.
const sleepMetricName = "sleep_analysis"

// DetectMetricKind returns the data point kind for a metric block.
func DetectMetricKind(block models.MetricBlock) MetricKind {
	if block.Name == sleepMetricName {
		return KindSleep
	}
	return KindCommon
}
