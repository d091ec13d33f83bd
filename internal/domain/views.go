package domain

import "time"

// MinutesPerHour is the fixed bucket count of a MinuteHistogram
const MinutesPerHour = 60

// DefaultTopLimit is the size of the street ranking table
const DefaultTopLimit = 5

// MapPoint is a single collision location for the point map
type MapPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// HexPoint feeds the 3D hexagon layer
type HexPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
}

// MinuteHistogram counts collisions per minute of the selected hour.
type MinuteHistogram [MinutesPerHour]int

// Total sums all buckets
func (h MinuteHistogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// StreetRanking is one row of the top streets table
type StreetRanking struct {
	StreetName  string `json:"street_name"`
	InjuryCount int    `json:"injury_count"`
}

// DensityCell aggregates the collisions that share a geohash prefix.
type DensityCell struct {
	Geohash   string  `json:"geohash"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Count     int     `json:"count"`
}

// Viewport centers a map on the loaded collisions
type Viewport struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	MinLat    float64 `json:"min_lat"`
	MinLon    float64 `json:"min_lon"`
	MaxLat    float64 `json:"max_lat"`
	MaxLon    float64 `json:"max_lon"`
	ExtentKm  float64 `json:"extent_km"`
}

// HourWindow is every view narrowed to one hour of the day
type HourWindow struct {
	Hour      int             `json:"hour"`
	NextHour  int             `json:"next_hour"`
	Count     int             `json:"count"`
	Points    []HexPoint      `json:"points"`
	Histogram MinuteHistogram `json:"histogram"`
	Density   []DensityCell   `json:"density"`
	Precision int             `json:"precision"`
}

// PointsView is the injured-people map
type PointsView struct {
	Threshold int        `json:"threshold"`
	Points    []MapPoint `json:"points"`
	Viewport  Viewport   `json:"viewport"`
}

// TopStreetsView is the ranking table for one category
type TopStreetsView struct {
	Category Category        `json:"category"`
	Limit    int             `json:"limit"`
	Rows     []StreetRanking `json:"rows"`
}

// RawView is a page of the canonical table as column/value maps.
type RawView struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
	Total   int                 `json:"total"`
}

// Params are the user-controlled dashboard inputs
type Params struct {
	InjuredThreshold int
	Hour             int
	Category         Category
	Precision        int
}

// DashboardData aggregates all views for one parameter set
type DashboardData struct {
	SnapshotID string         `json:"snapshot_id"`
	LoadedAt   time.Time      `json:"loaded_at"`
	TotalRows  int            `json:"total_rows"`
	Excluded   int            `json:"excluded_rows"`
	Viewport   Viewport       `json:"viewport"`
	Points     PointsView     `json:"points"`
	HourWindow HourWindow     `json:"hour_window"`
	TopStreets TopStreetsView `json:"top_streets"`
	Timestamp  time.Time      `json:"timestamp"`
}
