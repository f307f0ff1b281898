package hae

import "errors"

// Record-level errors: the offending record is skipped and processing
// continues with the next one.
var (
	// ErrTimestampFormat means neither known time format parsed a timestamp string.
	ErrTimestampFormat = errors.New("timestamp matches no known format")

	// ErrRecordShape means a record failed structural validation for its kind.
	ErrRecordShape = errors.New("record does not match its discriminated shape")

	// ErrExtraction means a validated record yielded a contradiction while
	// computing derived values.
	ErrExtraction = errors.New("derived value extraction failed")
)

// Call-level errors: the whole ingestion call fails with zero insertions.
var (
	// ErrPayloadShape means the top-level document is not the expected
	// {data:{metrics, workouts}} envelope.
	ErrPayloadShape = errors.New("payload is not a recognizable export envelope")

	// ErrStorageUnavailable means no storage session could be acquired.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
