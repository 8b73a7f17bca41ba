package models

import (
	"context"

	"github.com/mmdatafocus/drcm_backend/config"
)

// TabularStore is the case spreadsheet seen as rows under a header.
type TabularStore interface {
	// LoadAll reads the whole case worksheet.
	LoadAll(ctx context.Context) (*Snapshot, error)
	// WriteCell writes value at the 1-based sheet row and the named column.
	WriteCell(ctx context.Context, row int, column string, value any) error
	// AppendRow appends values to sheet, creating it with header when absent.
	AppendRow(ctx context.Context, sheet string, header []string, values []any) error
}

// CachedStore serves LoadAll from a SnapshotCache and drops the cache after
// every successful write.
type CachedStore struct {
	store TabularStore
	cache SnapshotCache
}

func NewCachedStore(store TabularStore, cache SnapshotCache) *CachedStore {
	if cache == nil {
		cache = NoopCache{}
	}
	return &CachedStore{store: store, cache: cache}
}

func (s *CachedStore) LoadAll(ctx context.Context) (*Snapshot, error) {
	if snap, ok := s.cache.Get(ctx); ok {
		snapshotCacheTotal.WithLabelValues("hit").Inc()
		return snap, nil
	}
	snapshotCacheTotal.WithLabelValues("miss").Inc()
	snap, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, snap)
	return snap, nil
}

// LoadFresh bypasses the cache and refreshes it with the result.
func (s *CachedStore) LoadFresh(ctx context.Context) (*Snapshot, error) {
	snap, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, snap)
	return snap, nil
}

func (s *CachedStore) WriteCell(ctx context.Context, row int, column string, value any) error {
	if err := s.store.WriteCell(ctx, row, column, value); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CachedStore) AppendRow(ctx context.Context, sheet string, header []string, values []any) error {
	if err := s.store.AppendRow(ctx, sheet, header, values); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CachedStore) Invalidate(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *CachedStore) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		config.LogError(config.GetLogger(), "store.go", "invalidate", "cache.Invalidate", nil, err)
	}
}
