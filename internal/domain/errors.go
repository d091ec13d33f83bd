package domain

import "errors"

var (
	// ErrSourceUnavailable means the collision resource could not be fetched
	// or was not the expected tabular data. It is never retried.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrInvalidParameter marks a caller contract violation such as an hour
	// outside 0-23 or a negative injury threshold.
	ErrInvalidParameter = errors.New("invalid parameter")
)
