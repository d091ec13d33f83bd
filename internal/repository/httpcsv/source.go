package httpcsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/smartcity/collisions/internal/domain"
)

// Source reads collision rows from a CSV resource. location may be an
// http(s) URL, a file:// URL or a plain filesystem path.
type Source struct {
	location   string
	httpClient *http.Client
}

// NewSource creates a new CSV source
func NewSource(location string, timeout time.Duration) *Source {
	return &Source{
		location: location,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name identifies the source in logs, without the URL's query string.
func (s *Source) Name() string {
	u, err := url.Parse(s.location)
	if err != nil || u.Scheme == "" {
		return "csv:" + s.location
	}
	return "csv:" + u.Host + u.Path
}

// Fetch reads the header and at most maxRows data rows.
func (s *Source) Fetch(ctx context.Context, maxRows int) (domain.RawTable, error) {
	body, err := s.open(ctx)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("httpcsv: failed to open %s: %w: %w", s.Name(), domain.ErrSourceUnavailable, err)
	}
	defer body.Close()

	raw, err := readRows(body, maxRows)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("httpcsv: failed to read %s: %w: %w", s.Name(), domain.ErrSourceUnavailable, err)
	}
	return raw, nil
}

func (s *Source) open(ctx context.Context) (io.ReadCloser, error) {
	u, err := url.Parse(s.location)
	if err == nil && u.Scheme == "file" {
		return os.Open(u.Path)
	}
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return os.Open(s.location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// readRows stops after maxRows records, leaving the rest of the body unread.
func readRows(r io.Reader, maxRows int) (domain.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return domain.RawTable{}, nil
	}
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	raw := domain.RawTable{Header: header}
	for len(raw.Rows) < maxRows {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.RawTable{}, err
		}
		raw.Rows = append(raw.Rows, domain.RawRow(rec))
	}
	return raw, nil
}
