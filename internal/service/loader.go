package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/smartcity/collisions/internal/domain"
)

// CachedLoader fetches and normalizes the collision table once per row-count
// and keeps the result for the life of the process. A single instance is
// created at startup and shared by every handler.
type CachedLoader struct {
	source     RowSource
	normalizer *Normalizer
	timeout    time.Duration

	mu     sync.RWMutex
	tables map[int]*domain.Table
	group  singleflight.Group
}

// NewCachedLoader creates a new loader. A zero timeout disables the fetch deadline.
func NewCachedLoader(source RowSource, normalizer *Normalizer, timeout time.Duration) *CachedLoader {
	return &CachedLoader{
		source:     source,
		normalizer: normalizer,
		timeout:    timeout,
		tables:     make(map[int]*domain.Table),
	}
}

// Load returns the canonical table for maxRows, fetching it on first use.
// Concurrent callers share one fetch, bounded by the loader timeout rather
// than by any caller's context. Failed loads are not cached.
func (l *CachedLoader) Load(ctx context.Context, maxRows int) (*domain.Table, error) {
	if maxRows <= 0 {
		return nil, fmt.Errorf("loader: max rows must be positive, got %d: %w", maxRows, domain.ErrInvalidParameter)
	}

	if t, ok := l.cached(maxRows); ok {
		return t, nil
	}

	// the shared fetch must outlive any single caller; each caller only
	// stops waiting when its own ctx ends
	fetchCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(strconv.Itoa(maxRows), func() (interface{}, error) {
		if t, ok := l.cached(maxRows); ok {
			return t, nil
		}
		t, err := l.fetch(fetchCtx, maxRows)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.tables[maxRows] = t
		l.mu.Unlock()
		return t, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("loader: gave up waiting for %d rows: %w", maxRows, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Table), nil
	}
}

// Len returns the number of cached tables
func (l *CachedLoader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tables)
}

func (l *CachedLoader) cached(maxRows int) (*domain.Table, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.tables[maxRows]
	return t, ok
}

func (l *CachedLoader) fetch(ctx context.Context, maxRows int) (*domain.Table, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := l.source.Fetch(ctx, maxRows)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to fetch from %s: %w", l.source.Name(), err)
	}

	table, err := l.normalizer.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to normalize rows from %s: %w", l.source.Name(), err)
	}

	log.Printf("loader: loaded %d collisions from %s (max_rows=%d, excluded=%d, took %s)",
		table.Len(), l.source.Name(), maxRows, table.Excluded, time.Since(start).Round(time.Millisecond))
	return table, nil
}
