package domain

import (
	"context"
)

// RowSource defines the interface for reading raw collision rows.
// The domain defines it, the repository packages implement it.
type RowSource interface {
	// Fetch returns at most maxRows data rows along with the header.
	// Failures wrap ErrSourceUnavailable.
	Fetch(ctx context.Context, maxRows int) (RawTable, error)

	// Name identifies the source in logs
	Name() string
}
