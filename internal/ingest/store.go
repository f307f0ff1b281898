package ingest

import (
	"context"

	"github.com/meltforce/vitalsink/internal/models"
)

// Store acquires scoped write sessions. *storage.DB satisfies this; tests
// substitute an in-memory fake.
type Store interface {
	Acquire(ctx context.Context) (Session, error)
}

// Session is a storage connection scoped to one ingestion call. Inserts are
// insert-or-ignore on the natural key; the bool reports whether a row landed
// (false means a duplicate was absorbed). Release must be safe to call on
// every exit path.
type Session interface {
	InsertHealthMetric(ctx context.Context, row models.HealthMetricRow) (bool, error)
	InsertSleepSession(ctx context.Context, row models.SleepSessionRow) (bool, error)
	Release()
}
