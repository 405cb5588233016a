package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrTimeout is returned when an operation exceeds its upper bound.
	ErrTimeout = errors.New("resilience: operation timed out")

	// ErrMaxRetriesExceeded is returned when retry attempts are exhausted.
	ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")
)
