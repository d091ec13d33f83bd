package postgres

import (
	"context"
	"fmt"

	"github.com/smartcity/collisions/internal/domain"
)

var mockHeader = []string{
	"CRASH_DATE", "CRASH_TIME", "BOROUGH", "ZIP_CODE", "LATITUDE", "LONGITUDE",
	"ON_STREET_NAME", "INJURED_PERSONS", "KILLED_PERSONS",
	"INJURED_PEDESTRIANS", "INJURED_CYCLISTS", "INJURED_MOTORISTS",
}

var mockRows = []domain.RawRow{
	{"09/11/2021", "2:39", "BROOKLYN", "11208", "40.667202", "-73.8665", "WHITESTONE EXPRESSWAY", "2", "0", "0", "0", "2"},
	{"03/26/2022", "11:45", "", "", "40.86816", "-73.83148", "QUEENSBORO BRIDGE UPPER", "1", "0", "0", "0", "1"},
	{"06/29/2022", "6:55", "BROOKLYN", "11233", "40.683304", "-73.917274", "THROGS NECK BRIDGE", "0", "0", "0", "0", "0"},
	{"09/11/2021", "9:35", "BROOKLYN", "11208", "40.667202", "-73.8665", "", "0", "0", "0", "0", "0"},
	{"12/14/2021", "8:13", "BROOKLYN", "11233", "40.683304", "-73.917274", "SARATOGA AVENUE", "0", "0", "0", "0", "0"},
	{"04/14/2021", "12:47", "", "", "", "", "MAJOR DEEGAN EXPRESSWAY", "0", "0", "0", "0", "0"},
	{"12/14/2021", "17:05", "", "", "40.709183", "-73.956825", "BROOKLYN QUEENS EXPRESSWAY", "0", "0", "0", "0", "0"},
	{"12/14/2021", "8:17", "BRONX", "10475", "40.86816", "-73.83148", "", "2", "0", "0", "0", "2"},
	{"12/14/2021", "21:10", "BROOKLYN", "11207", "40.67172", "-73.8971", "", "0", "0", "0", "0", "0"},
	{"12/14/2021", "14:58", "MANHATTAN", "10017", "40.75144", "-73.97397", "3 AVENUE", "0", "0", "0", "0", "0"},
	{"12/13/2021", "0:34", "", "", "40.701275", "-73.88887", "MYRTLE AVENUE", "0", "0", "0", "0", "0"},
	{"12/14/2021", "16:50", "QUEENS", "11413", "40.675884", "-73.75577", "SPRINGFIELD BOULEVARD", "0", "0", "0", "0", "0"},
	{"12/14/2021", "23:10", "QUEENS", "11434", "40.66684", "-73.78941", "NORTH CONDUIT AVENUE", "2", "0", "0", "0", "2"},
	{"12/14/2021", "17:58", "BROOKLYN", "11217", "40.68158", "-73.97463", "FLATBUSH AVENUE", "0", "0", "0", "0", "0"},
	{"12/14/2021", "20:03", "BROOKLYN", "11226", "40.65068", "-73.95836", "LINDEN BOULEVARD", "4", "0", "0", "0", "4"},
	{"12/11/2021", "19:43", "BRONX", "10463", "40.87262", "-73.904686", "WEST KINGSBRIDGE ROAD", "1", "0", "0", "0", "1"},
	{"12/11/2021", "4:45", "", "", "40.78808", "-73.82223", "WHITESTONE EXPRESSWAY", "1", "0", "0", "0", "1"},
	{"12/14/2021", "14:10", "BRONX", "10475", "40.86985", "-73.82533", "BAYCHESTER AVENUE", "1", "0", "1", "0", "0"},
	{"12/13/2021", "20:55", "BROOKLYN", "11203", "40.65303", "-73.93032", "UTICA AVENUE", "1", "0", "1", "0", "0"},
	{"12/14/2021", "16:40", "BRONX", "10456", "40.835167", "-73.91006", "EAST 169 STREET", "1", "0", "0", "1", "0"},
}

// MockSource implements domain.RowSource with a small embedded extract for
// demo mode and for running without a database.
type MockSource struct{}

// NewMockSource creates a new mock source
func NewMockSource() *MockSource {
	return &MockSource{}
}

// Name identifies the source in logs
func (s *MockSource) Name() string {
	return "mock"
}

// Fetch returns at most maxRows embedded rows. The rows are copied so
// callers can not alter the fixture.
func (s *MockSource) Fetch(ctx context.Context, maxRows int) (domain.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawTable{}, fmt.Errorf("mock: %w: %w", domain.ErrSourceUnavailable, err)
	}
	n := len(mockRows)
	if maxRows < n {
		n = max(maxRows, 0)
	}
	raw := domain.RawTable{
		Header: append([]string(nil), mockHeader...),
		Rows:   make([]domain.RawRow, 0, n),
	}
	for _, row := range mockRows[:n] {
		raw.Rows = append(raw.Rows, append(domain.RawRow(nil), row...))
	}
	return raw, nil
}

// Health always returns nil in mock mode
func (s *MockSource) Health(ctx context.Context) error {
	return nil
}
