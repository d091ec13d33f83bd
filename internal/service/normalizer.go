package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartcity/collisions/internal/domain"
)

// timestampLayouts are tried in order against "<date> <time>".
var timestampLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2 15:04:05",
}

// Schema names the raw columns the normalizer reads. Lookups ignore case.
type Schema struct {
	DateColumn        string `yaml:"date_column"`
	TimeColumn        string `yaml:"time_column"`
	LatitudeColumn    string `yaml:"latitude_column"`
	LongitudeColumn   string `yaml:"longitude_column"`
	StreetColumn      string `yaml:"street_column"`
	PersonsColumn     string `yaml:"persons_column"`
	PedestriansColumn string `yaml:"pedestrians_column"`
	CyclistsColumn    string `yaml:"cyclists_column"`
	MotoristsColumn   string `yaml:"motorists_column"`
}

// DefaultSchema matches the published NYC collisions extract
func DefaultSchema() Schema {
	return Schema{
		DateColumn:        "crash_date",
		TimeColumn:        "crash_time",
		LatitudeColumn:    "latitude",
		LongitudeColumn:   "longitude",
		StreetColumn:      "on_street_name",
		PersonsColumn:     "injured_persons",
		PedestriansColumn: "injured_pedestrians",
		CyclistsColumn:    "injured_cyclists",
		MotoristsColumn:   "injured_motorists",
	}
}

// Normalizer turns raw rows into the canonical table
type Normalizer struct {
	schema Schema
	now    func() time.Time
}

// NewNormalizer creates a new normalizer for the given raw schema
func NewNormalizer(schema Schema) *Normalizer {
	return &Normalizer{schema: schema, now: time.Now}
}

// Normalize merges date and time into the leading timestamp column, drops
// rows without a parseable timestamp or coordinates and lowercases column
// names. The input is not retained.
func (n *Normalizer) Normalize(raw domain.RawTable) (*domain.Table, error) {
	table := &domain.Table{
		SnapshotID: uuid.NewString(),
		LoadedAt:   n.now(),
		Columns:    []string{domain.TimestampColumn},
		Records:    []domain.Record{},
	}

	if len(raw.Header) == 0 {
		if len(raw.Rows) > 0 {
			return nil, fmt.Errorf("normalizer: %d rows without a header: %w", len(raw.Rows), domain.ErrSourceUnavailable)
		}
		return table, nil
	}

	index := make(map[string]int, len(raw.Header))
	for i, h := range raw.Header {
		key := strings.ToLower(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	lookup := func(name string) int {
		if i, ok := index[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}

	dateIdx, timeIdx := lookup(n.schema.DateColumn), lookup(n.schema.TimeColumn)
	latIdx, lonIdx := lookup(n.schema.LatitudeColumn), lookup(n.schema.LongitudeColumn)
	required := []struct {
		name string
		idx  int
	}{
		{n.schema.DateColumn, dateIdx},
		{n.schema.TimeColumn, timeIdx},
		{n.schema.LatitudeColumn, latIdx},
		{n.schema.LongitudeColumn, lonIdx},
	}
	for _, col := range required {
		if col.idx < 0 {
			return nil, fmt.Errorf("normalizer: missing column %q: %w", col.name, domain.ErrSourceUnavailable)
		}
	}

	keep := make([]int, 0, len(raw.Header))
	for i, h := range raw.Header {
		if i == dateIdx || i == timeIdx {
			continue
		}
		keep = append(keep, i)
		table.Columns = append(table.Columns, strings.ToLower(h))
	}

	streetIdx := lookup(n.schema.StreetColumn)
	personsIdx := lookup(n.schema.PersonsColumn)
	pedestriansIdx := lookup(n.schema.PedestriansColumn)
	cyclistsIdx := lookup(n.schema.CyclistsColumn)
	motoristsIdx := lookup(n.schema.MotoristsColumn)

	table.Records = make([]domain.Record, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		cell := func(i int) string {
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		ts, ok := parseTimestamp(cell(dateIdx), cell(timeIdx))
		if !ok {
			table.Excluded++
			continue
		}
		lat, okLat := parseCoordinate(cell(latIdx))
		lon, okLon := parseCoordinate(cell(lonIdx))
		if !okLat || !okLon {
			table.Excluded++
			continue
		}

		values := make([]string, 0, len(table.Columns))
		values = append(values, ts.Format(time.DateTime))
		for _, i := range keep {
			values = append(values, cell(i))
		}

		table.Records = append(table.Records, domain.Record{
			Timestamp:          ts,
			Latitude:           lat,
			Longitude:          lon,
			InjuredPersons:     parseCount(cell(personsIdx)),
			InjuredPedestrians: parseCount(cell(pedestriansIdx)),
			InjuredCyclists:    parseCount(cell(cyclistsIdx)),
			InjuredMotorists:   parseCount(cell(motoristsIdx)),
			OnStreetName:       cell(streetIdx),
			Values:             values,
		})
	}

	return table, nil
}

func parseTimestamp(date, clock string) (time.Time, bool) {
	if date == "" || clock == "" {
		return time.Time{}, false
	}
	// ISO exports carry a midnight time part on the date column
	if i := strings.IndexByte(date, 'T'); i > 0 {
		date = date[:i]
	}
	combined := date + " " + clock
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, combined); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseCoordinate(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseCount(s string) *int {
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return nil
		}
		return &n
	}
	// float-typed exports write counts as "2.0"
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return nil
	}
	n := int(f)
	return &n
}
