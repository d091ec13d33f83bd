package service

import (
	"context"
	"fmt"
	"time"

	"github.com/smartcity/collisions/internal/domain"
	"github.com/smartcity/collisions/pkg/utils"
)

// DashboardService derives every dashboard view from the cached collision table
type DashboardService struct {
	loader  *CachedLoader
	maxRows int
}

// NewDashboardService creates a new dashboard service. maxRows is fixed for
// the life of the process.
func NewDashboardService(loader *CachedLoader, maxRows int) *DashboardService {
	return &DashboardService{
		loader:  loader,
		maxRows: maxRows,
	}
}

// Warm loads the collision table ahead of the first request
func (s *DashboardService) Warm(ctx context.Context) error {
	_, err := s.loader.Load(ctx, s.maxRows)
	return err
}

// Table returns the canonical collision table
func (s *DashboardService) Table(ctx context.Context) (*domain.Table, error) {
	return s.loader.Load(ctx, s.maxRows)
}

// Points returns the locations where at least threshold people were injured
func (s *DashboardService) Points(ctx context.Context, threshold int) (domain.PointsView, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return domain.PointsView{}, err
	}
	return pointsView(table, threshold)
}

// HourWindow returns the hexagon, histogram and density views for one hour
func (s *DashboardService) HourWindow(ctx context.Context, hour, precision int) (domain.HourWindow, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return domain.HourWindow{}, err
	}
	return hourWindow(table, hour, precision)
}

// TopStreets returns the streets with the most injured road users of a category
func (s *DashboardService) TopStreets(ctx context.Context, category domain.Category, limit int) (domain.TopStreetsView, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return domain.TopStreetsView{}, err
	}
	return topStreets(table, category, limit)
}

// RawRows returns up to limit canonical rows, optionally narrowed to one hour
func (s *DashboardService) RawRows(ctx context.Context, hour *int, limit int) (domain.RawView, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return domain.RawView{}, err
	}
	if limit <= 0 {
		return domain.RawView{}, fmt.Errorf("dashboard: limit must be positive, got %d: %w", limit, domain.ErrInvalidParameter)
	}
	if hour != nil {
		if table, err = ByHour(table, *hour); err != nil {
			return domain.RawView{}, err
		}
	}

	n := utils.ClampInt(table.Len(), 0, limit)
	rows := make([]map[string]string, 0, n)
	for _, r := range table.Records[:n] {
		row := make(map[string]string, len(table.Columns))
		for i, col := range table.Columns {
			if i < len(r.Values) {
				row[col] = r.Values[i]
			}
		}
		rows = append(rows, row)
	}

	return domain.RawView{
		Columns: table.Columns,
		Rows:    rows,
		Total:   table.Len(),
	}, nil
}

// Overview computes every view for one parameter set
func (s *DashboardService) Overview(ctx context.Context, p domain.Params) (domain.DashboardData, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return domain.DashboardData{}, err
	}

	points, err := pointsView(table, p.InjuredThreshold)
	if err != nil {
		return domain.DashboardData{}, err
	}
	window, err := hourWindow(table, p.Hour, p.Precision)
	if err != nil {
		return domain.DashboardData{}, err
	}
	// rankings ignore the hour selection
	top, err := topStreets(table, p.Category, domain.DefaultTopLimit)
	if err != nil {
		return domain.DashboardData{}, err
	}

	return domain.DashboardData{
		SnapshotID: table.SnapshotID,
		LoadedAt:   table.LoadedAt,
		TotalRows:  table.Len(),
		Excluded:   table.Excluded,
		Viewport:   points.Viewport,
		Points:     points,
		HourWindow: window,
		TopStreets: top,
		Timestamp:  time.Now(),
	}, nil
}

func pointsView(table *domain.Table, threshold int) (domain.PointsView, error) {
	points, err := ByMinInjured(table, threshold)
	if err != nil {
		return domain.PointsView{}, err
	}
	return domain.PointsView{
		Threshold: threshold,
		Points:    points,
		Viewport:  ViewportOf(table),
	}, nil
}

func hourWindow(table *domain.Table, hour, precision int) (domain.HourWindow, error) {
	narrowed, err := ByHour(table, hour)
	if err != nil {
		return domain.HourWindow{}, err
	}
	density, err := DensityCells(narrowed, precision)
	if err != nil {
		return domain.HourWindow{}, err
	}
	return domain.HourWindow{
		Hour:      hour,
		NextHour:  utils.NextHour(hour),
		Count:     narrowed.Len(),
		Points:    HexPoints(narrowed),
		Histogram: MinuteHistogram(narrowed),
		Density:   density,
		Precision: precision,
	}, nil
}

func topStreets(table *domain.Table, category domain.Category, limit int) (domain.TopStreetsView, error) {
	rows, err := TopByCategory(table, category, limit)
	if err != nil {
		return domain.TopStreetsView{}, err
	}
	return domain.TopStreetsView{
		Category: category,
		Limit:    limit,
		Rows:     rows,
	}, nil
}
