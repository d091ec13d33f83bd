package service

import (
	"fmt"
	"sort"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/smartcity/collisions/internal/domain"
	"github.com/smartcity/collisions/pkg/utils"
)

// DefaultGeohashPrecision gives cells of roughly 1.2km x 0.6km
const DefaultGeohashPrecision = 6

const maxGeohashPrecision = 12

// ViewportOf centers a map on the centroid of every collision in t.
func ViewportOf(t *domain.Table) domain.Viewport {
	if t.Len() == 0 {
		return domain.Viewport{}
	}

	flat := make([]float64, 0, 2*t.Len())
	for _, r := range t.Records {
		flat = append(flat, r.Longitude, r.Latitude)
	}
	mp := geom.NewMultiPointFlat(geom.XY, flat)
	center := xy.MultiPointCentroid(mp)
	bounds := mp.Bounds()

	return domain.Viewport{
		Latitude:  utils.RoundTo(center.Y(), 6),
		Longitude: utils.RoundTo(center.X(), 6),
		MinLat:    bounds.Min(1),
		MinLon:    bounds.Min(0),
		MaxLat:    bounds.Max(1),
		MaxLon:    bounds.Max(0),
		ExtentKm:  utils.RoundTo(utils.Haversine(bounds.Min(1), bounds.Min(0), bounds.Max(1), bounds.Max(0)), 2),
	}
}

// DensityCells buckets collisions by geohash prefix so the hexagon layer can
// extrude by count. Cells are ordered by count, then geohash.
func DensityCells(t *domain.Table, precision int) ([]domain.DensityCell, error) {
	if precision < 1 || precision > maxGeohashPrecision {
		return nil, fmt.Errorf("geo: precision must be in [1, %d], got %d: %w", maxGeohashPrecision, precision, domain.ErrInvalidParameter)
	}

	type acc struct {
		lat, lon float64
		n        int
	}
	cells := make(map[string]*acc)
	for _, r := range t.Records {
		hash := geohash.Encode(r.Latitude, r.Longitude)
		if len(hash) > precision {
			hash = hash[:precision]
		}
		c, ok := cells[hash]
		if !ok {
			c = &acc{}
			cells[hash] = c
		}
		c.lat += r.Latitude
		c.lon += r.Longitude
		c.n++
	}

	out := make([]domain.DensityCell, 0, len(cells))
	for hash, c := range cells {
		out = append(out, domain.DensityCell{
			Geohash:   hash,
			Latitude:  utils.RoundTo(c.lat/float64(c.n), 6),
			Longitude: utils.RoundTo(c.lon/float64(c.n), 6),
			Count:     c.n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Geohash < out[j].Geohash
	})
	return out, nil
}
