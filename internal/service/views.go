package service

import (
	"fmt"
	"sort"

	"github.com/smartcity/collisions/internal/domain"
)

// ByMinInjured returns the locations of collisions that injured at least
// threshold people. Records without an injured_persons value never match.
func ByMinInjured(t *domain.Table, threshold int) ([]domain.MapPoint, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("views: injured threshold must be >= 0, got %d: %w", threshold, domain.ErrInvalidParameter)
	}

	points := make([]domain.MapPoint, 0, t.Len())
	for i := range t.Records {
		r := &t.Records[i]
		if r.InjuredPersons == nil || *r.InjuredPersons < threshold {
			continue
		}
		points = append(points, domain.MapPoint{Latitude: r.Latitude, Longitude: r.Longitude})
	}
	return points, nil
}

// ByHour narrows the table to collisions that happened during hour (0-23).
func ByHour(t *domain.Table, hour int) (*domain.Table, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("views: hour must be in [0, 23], got %d: %w", hour, domain.ErrInvalidParameter)
	}

	recs := make([]domain.Record, 0)
	for _, r := range t.Records {
		if r.Timestamp.Hour() == hour {
			recs = append(recs, r)
		}
	}
	return t.WithRecords(recs), nil
}

// HexPoints projects the table onto timestamp and coordinates
func HexPoints(t *domain.Table) []domain.HexPoint {
	points := make([]domain.HexPoint, 0, t.Len())
	for _, r := range t.Records {
		points = append(points, domain.HexPoint{
			Timestamp: r.Timestamp,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		})
	}
	return points
}

// MinuteHistogram counts collisions per minute. It is meant for a table
// already narrowed with ByHour.
func MinuteHistogram(t *domain.Table) domain.MinuteHistogram {
	var h domain.MinuteHistogram
	for _, r := range t.Records {
		h[r.Timestamp.Minute()]++
	}
	return h
}

// TopByCategory ranks streets by the category's injury count, highest first.
// Ties keep table order. Records with no count, a count below one or no
// street name are left out.
func TopByCategory(t *domain.Table, category domain.Category, limit int) ([]domain.StreetRanking, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("views: limit must be positive, got %d: %w", limit, domain.ErrInvalidParameter)
	}
	if category.Field() == "" {
		return nil, fmt.Errorf("views: unknown category %d: %w", int(category), domain.ErrInvalidParameter)
	}

	rows := make([]domain.StreetRanking, 0)
	for i := range t.Records {
		r := &t.Records[i]
		n := category.Count(r)
		if n == nil || *n < 1 || r.OnStreetName == "" {
			continue
		}
		rows = append(rows, domain.StreetRanking{StreetName: r.OnStreetName, InjuryCount: *n})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].InjuryCount > rows[j].InjuryCount
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
