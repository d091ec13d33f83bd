package postgres

import (
	"context"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/smartcity/collisions/internal/service"
)

func TestTextValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"null", nil, ""},
		{"string", "QUEENS", "QUEENS"},
		{"bytes", []byte("11413"), "11413"},
		{"int", int32(4), "4"},
		{"float", 40.667202, "40.667202"},
		{"nan", math.NaN(), ""},
		{"date", time.Date(2021, 9, 11, 0, 0, 0, 0, time.UTC), "2021-09-11"},
		{"timestamp", time.Date(2021, 9, 11, 2, 39, 0, 0, time.UTC), "2021-09-11 02:39:00"},
		{"time", pgtype.Time{Microseconds: (14*3600 + 5*60 + 7) * 1_000_000, Valid: true}, "14:05:07"},
		{"null time", pgtype.Time{}, ""},
		{"numeric", pgtype.Numeric{Int: big.NewInt(-738665), Exp: -4, Valid: true}, "-73.8665"},
		{"null numeric", pgtype.Numeric{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := textValue(tt.in); got != tt.want {
				t.Fatalf("textValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPostgresTimeAndDateNormalize(t *testing.T) {
	// a DATE column and a TIME column rendered by textValue must merge
	date := textValue(time.Date(2021, 9, 11, 0, 0, 0, 0, time.UTC))
	clock := textValue(pgtype.Time{Microseconds: (2*3600 + 39*60) * 1_000_000, Valid: true})

	raw, _ := NewMockSource().Fetch(context.Background(), 1)
	raw.Rows[0][0], raw.Rows[0][1] = date, clock

	table, err := service.NewNormalizer(service.DefaultSchema()).Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if table.Len() != 1 || !table.Records[0].Timestamp.Equal(time.Date(2021, 9, 11, 2, 39, 0, 0, time.UTC)) {
		t.Fatalf("unexpected records %+v", table.Records)
	}
}

func TestMockSourceFetch(t *testing.T) {
	src := NewMockSource()

	raw, err := src.Fetch(context.Background(), 3)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(raw.Rows) != 3 || len(raw.Header) != len(mockHeader) {
		t.Fatalf("expected 3 rows with %d columns, got %d rows and %d columns", len(mockHeader), len(raw.Rows), len(raw.Header))
	}

	raw.Rows[0][0] = "mutated"
	raw.Header[0] = "mutated"
	again, _ := src.Fetch(context.Background(), 3)
	if again.Rows[0][0] == "mutated" || again.Header[0] == "mutated" {
		t.Fatalf("fixture was modified through a fetched table")
	}

	all, _ := src.Fetch(context.Background(), 1_000_000)
	if len(all.Rows) != len(mockRows) {
		t.Fatalf("expected all %d rows, got %d", len(mockRows), len(all.Rows))
	}
}

func TestMockSourceHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMockSource().Fetch(ctx, 10); err == nil {
		t.Fatalf("expected an error for a cancelled context")
	}
}

func TestMockRowsNormalize(t *testing.T) {
	raw, err := NewMockSource().Fetch(context.Background(), 1000)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	table, err := service.NewNormalizer(service.DefaultSchema()).Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if table.Len() != len(mockRows)-1 || table.Excluded != 1 {
		t.Fatalf("expected one row without coordinates to be dropped, got %d records and %d excluded", table.Len(), table.Excluded)
	}
	if table.Columns[0] != "timestamp" || table.Columns[1] != "borough" {
		t.Fatalf("unexpected columns %v", table.Columns)
	}
}

func TestSourceName(t *testing.T) {
	if got := NewSource(nil, "").Name(); got != "postgres:collisions" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := NewSource(nil, "nyc.crashes").Name(); got != "postgres:nyc.crashes" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestSelectQuery(t *testing.T) {
	tests := []struct {
		table   string
		orderBy []string
		want    string
	}{
		{"", nil, `SELECT * FROM "collisions" LIMIT $1`},
		{"nyc.crashes", []string{"crash_date", "crash_time"}, `SELECT * FROM "nyc"."crashes" ORDER BY "crash_date", "crash_time" LIMIT $1`},
		{"collisions", []string{`odd"name`}, `SELECT * FROM "collisions" ORDER BY "odd""name" LIMIT $1`},
	}
	for _, tt := range tests {
		if got := NewSource(nil, tt.table, tt.orderBy...).selectQuery(); got != tt.want {
			t.Errorf("selectQuery(%q, %v) = %s, want %s", tt.table, tt.orderBy, got, tt.want)
		}
	}
}
