package service

import (
	"github.com/smartcity/collisions/internal/domain"
)

// RowSource is re-exported from domain for convenience
type RowSource = domain.RowSource
