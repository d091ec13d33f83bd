package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/smartcity/collisions/internal/domain"
)

func rawFixture() domain.RawTable {
	return domain.RawTable{
		Header: []string{"CRASH_DATE", "CRASH_TIME", "BOROUGH", "LATITUDE", "LONGITUDE", "ON_STREET_NAME", "INJURED_PERSONS", "INJURED_PEDESTRIANS"},
		Rows: []domain.RawRow{
			{"09/11/2021", "2:39", "BROOKLYN", "40.667202", "-73.8665", "WHITESTONE EXPRESSWAY", "2", "0"},
			{"09/11/2021", "9:35", "BROOKLYN", "", "-73.8665", "SARATOGA AVENUE", "0", "0"},
			{"12/14/2021", "8:17", "BRONX", "40.86816", "", "", "2", "1"},
			{"12/14/2021", "not a time", "BRONX", "40.86816", "-73.83148", "", "0", "0"},
			{"12/14/2021", "21:10", "BROOKLYN", "40.67172", "-73.8971", "", "", "3.0"},
		},
	}
}

func TestNormalizeDropsRowsWithoutCoordinates(t *testing.T) {
	table, err := NewNormalizer(DefaultSchema()).Normalize(rawFixture())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", table.Len())
	}
	if table.Excluded != 3 {
		t.Fatalf("expected 3 excluded rows, got %d", table.Excluded)
	}
	for _, r := range table.Records {
		if r.Latitude == 0 || r.Longitude == 0 {
			t.Fatalf("record without coordinates survived: %+v", r)
		}
	}
}

func TestNormalizeColumnOrderAndCase(t *testing.T) {
	table, err := NewNormalizer(DefaultSchema()).Normalize(rawFixture())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	want := []string{"timestamp", "borough", "latitude", "longitude", "on_street_name", "injured_persons", "injured_pedestrians"}
	if diff := cmp.Diff(want, table.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}

	first := table.Records[0]
	wantValues := []string{"2021-09-11 02:39:00", "BROOKLYN", "40.667202", "-73.8665", "WHITESTONE EXPRESSWAY", "2", "0"}
	if diff := cmp.Diff(wantValues, first.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if !first.Timestamp.Equal(time.Date(2021, 9, 11, 2, 39, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp %s", first.Timestamp)
	}
}

func TestNormalizeLowercaseIsIdempotent(t *testing.T) {
	n := NewNormalizer(DefaultSchema())
	upper, err := n.Normalize(rawFixture())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	raw := rawFixture()
	for i, h := range raw.Header {
		raw.Header[i] = strings.ToLower(h)
	}
	lower, err := n.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize lowercase: %v", err)
	}

	if diff := cmp.Diff(upper.Columns, lower.Columns); diff != "" {
		t.Fatalf("lowercased schema changed again (-first +second):\n%s", diff)
	}
	if upper.Len() != lower.Len() {
		t.Fatalf("record count changed: %d vs %d", upper.Len(), lower.Len())
	}
}

func TestNormalizeCounts(t *testing.T) {
	table, err := NewNormalizer(DefaultSchema()).Normalize(rawFixture())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	last := table.Records[1]
	if last.InjuredPersons != nil {
		t.Fatalf("empty injured_persons should be null, got %d", *last.InjuredPersons)
	}
	if last.InjuredPedestrians == nil || *last.InjuredPedestrians != 3 {
		t.Fatalf("expected 3 injured pedestrians, got %v", last.InjuredPedestrians)
	}
	if last.InjuredCyclists != nil {
		t.Fatalf("missing column should give null cyclists")
	}
	if last.OnStreetName != "" {
		t.Fatalf("expected no street name, got %q", last.OnStreetName)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	table, err := NewNormalizer(DefaultSchema()).Normalize(domain.RawTable{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("expected empty table, got %d records", table.Len())
	}
	if diff := cmp.Diff([]string{domain.TimestampColumn}, table.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	if table.SnapshotID == "" {
		t.Fatalf("expected a snapshot id")
	}
}

func TestNormalizeHeaderOnly(t *testing.T) {
	raw := rawFixture()
	raw.Rows = nil
	table, err := NewNormalizer(DefaultSchema()).Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if table.Len() != 0 || len(table.Columns) != 7 {
		t.Fatalf("expected 0 records and 7 columns, got %d and %d", table.Len(), len(table.Columns))
	}
}

func TestNormalizeMissingRequiredColumn(t *testing.T) {
	raw := domain.RawTable{
		Header: []string{"CRASH_DATE", "CRASH_TIME", "LATITUDE"},
		Rows:   []domain.RawRow{{"09/11/2021", "2:39", "40.6"}},
	}
	_, err := NewNormalizer(DefaultSchema()).Normalize(raw)
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "longitude") {
		t.Fatalf("error should name the missing column: %v", err)
	}
}

func TestNormalizeShortRowsArePadded(t *testing.T) {
	raw := domain.RawTable{
		Header: []string{"CRASH_DATE", "CRASH_TIME", "LATITUDE", "LONGITUDE", "ON_STREET_NAME"},
		Rows:   []domain.RawRow{{"09/11/2021", "2:39", "40.6", "-73.9"}},
	}
	table, err := NewNormalizer(DefaultSchema()).Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", table.Len())
	}
	if got := table.Records[0].Values; len(got) != len(table.Columns) {
		t.Fatalf("values not aligned with columns: %v vs %v", got, table.Columns)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		date, clock string
		want        time.Time
		ok          bool
	}{
		{"09/11/2021", "2:39", time.Date(2021, 9, 11, 2, 39, 0, 0, time.UTC), true},
		{"9/1/2021", "14:05:30", time.Date(2021, 9, 1, 14, 5, 30, 0, time.UTC), true},
		{"2021-09-11T00:00:00.000", "23:59", time.Date(2021, 9, 11, 23, 59, 0, 0, time.UTC), true},
		{"2021-09-11", "0:00:01", time.Date(2021, 9, 11, 0, 0, 1, 0, time.UTC), true},
		{"", "2:39", time.Time{}, false},
		{"09/11/2021", "", time.Time{}, false},
		{"yesterday", "2:39", time.Time{}, false},
		{"09/11/2021", "25:00", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := parseTimestamp(tt.date, tt.clock)
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q, %q) = %s, %v; want %s, %v", tt.date, tt.clock, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"2", intp(2)},
		{"0", intp(0)},
		{"2.0", intp(2)},
		{"", nil},
		{"-1", nil},
		{"1.5", nil},
		{"many", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, parseCount(tt.in)); diff != "" {
			t.Errorf("parseCount(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func intp(n int) *int { return &n }
