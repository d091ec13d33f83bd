package postgres

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartcity/collisions/internal/domain"
)

// DefaultTable holds the imported collisions extract
const DefaultTable = "collisions"

// Source implements domain.RowSource over a PostgreSQL table. It only reads.
type Source struct {
	pool    *pgxpool.Pool
	table   string
	orderBy []string
}

// NewSource creates a new PostgreSQL row source. Rows are read in orderBy
// column order so every process loads the same first rows; with no columns
// the table's physical order is used.
func NewSource(pool *pgxpool.Pool, table string, orderBy ...string) *Source {
	if table == "" {
		table = DefaultTable
	}
	return &Source{pool: pool, table: table, orderBy: orderBy}
}

// Name identifies the source in logs
func (s *Source) Name() string {
	return "postgres:" + s.table
}

// Fetch reads the first maxRows rows of the table with every column as text
func (s *Source) Fetch(ctx context.Context, maxRows int) (domain.RawTable, error) {
	rows, err := s.pool.Query(ctx, s.selectQuery(), maxRows)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("postgres: failed to query collisions: %w: %w", domain.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var raw domain.RawTable
	for _, fd := range rows.FieldDescriptions() {
		raw.Header = append(raw.Header, fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return domain.RawTable{}, fmt.Errorf("postgres: failed to scan collision row: %w: %w", domain.ErrSourceUnavailable, err)
		}
		row := make(domain.RawRow, len(values))
		for i, v := range values {
			row[i] = textValue(v)
		}
		raw.Rows = append(raw.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return domain.RawTable{}, fmt.Errorf("postgres: failed to read collisions: %w: %w", domain.ErrSourceUnavailable, err)
	}

	return raw, nil
}

func (s *Source) selectQuery() string {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(pgx.Identifier(strings.Split(s.table, ".")).Sanitize())
	if len(s.orderBy) > 0 {
		cols := make([]string, 0, len(s.orderBy))
		for _, col := range s.orderBy {
			cols = append(cols, pgx.Identifier{col}.Sanitize())
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(cols, ", "))
	}
	b.WriteString(" LIMIT $1")
	return b.String()
}

// Health checks database connectivity
func (s *Source) Health(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// textValue renders a decoded column the way the CSV extract spells it,
// NULL becoming the empty string.
func textValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.DateTime)
	case pgtype.Time:
		if !x.Valid {
			return ""
		}
		secs := x.Microseconds / 1_000_000
		return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		return formatFloat(f.Float64)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
