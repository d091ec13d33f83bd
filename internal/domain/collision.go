package domain

import "time"

// TimestampColumn is the merged date+time column, always first in a Table.
const TimestampColumn = "timestamp"

// RawRow is one record as read from the source, aligned with RawTable.Header.
// An empty cell is a missing value.
type RawRow []string

// RawTable is the untouched output of a RowSource
type RawTable struct {
	Header []string
	Rows   []RawRow
}

// Record is a normalized collision
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`

	InjuredPersons     *int `json:"injured_persons"`
	InjuredPedestrians *int `json:"injured_pedestrians"`
	InjuredCyclists    *int `json:"injured_cyclists"`
	InjuredMotorists   *int `json:"injured_motorists"`

	OnStreetName string `json:"on_street_name,omitempty"`

	// Values holds every column of the row as text, aligned with Table.Columns.
	Values []string `json:"-"`
}

// Table is the canonical collision table produced once per row-count.
// It is shared by every request and must not be modified after creation.
type Table struct {
	SnapshotID string    `json:"snapshot_id"`
	LoadedAt   time.Time `json:"loaded_at"`
	Columns    []string  `json:"columns"`
	Records    []Record  `json:"-"`
	Excluded   int       `json:"excluded"`
}

// Len returns the number of records
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// WithRecords returns a table sharing t's schema and metadata but holding
// recs. t itself is left untouched.
func (t *Table) WithRecords(recs []Record) *Table {
	return &Table{
		SnapshotID: t.SnapshotID,
		LoadedAt:   t.LoadedAt,
		Columns:    t.Columns,
		Records:    recs,
		Excluded:   t.Excluded,
	}
}
