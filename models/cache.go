package models

import (
	"context"
	"sync"
	"time"

	"github.com/mmdatafocus/drcm_backend/config"
)

// SnapshotCache holds at most one snapshot (there is a single dataset).
type SnapshotCache interface {
	Get(ctx context.Context) (*Snapshot, bool)
	Set(ctx context.Context, snap *Snapshot)
	Invalidate(ctx context.Context) error
}

// NoopCache never holds anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context) (*Snapshot, bool) { return nil, false }
func (NoopCache) Set(context.Context, *Snapshot)        {}
func (NoopCache) Invalidate(context.Context) error      { return nil }

// MemoryCache keeps the snapshot in process for ttl.
type MemoryCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	snap     *Snapshot
	storedAt time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Get(context.Context) (*Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil || c.now().Sub(c.storedAt) >= c.ttl {
		return nil, false
	}
	return c.snap, true
}

func (c *MemoryCache) Set(_ context.Context, snap *Snapshot) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap
	c.storedAt = c.now()
}

func (c *MemoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = nil
	return nil
}

const snapshotRedisKey = "drcm:snapshot"

// RedisCache shares the snapshot between instances. Redis errors degrade to
// cache misses.
type RedisCache struct {
	ttl time.Duration
}

func NewRedisCache(ttl time.Duration) *RedisCache {
	return &RedisCache{ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) (*Snapshot, bool) {
	var snap Snapshot
	exists, err := config.GetRedisObject(ctx, snapshotRedisKey, &snap)
	if err != nil {
		config.LogError(config.GetLogger(), "cache.go", "RedisCache.Get", "GetRedisObject", nil, err)
		return nil, false
	}
	if !exists {
		return nil, false
	}
	return &snap, true
}

func (c *RedisCache) Set(ctx context.Context, snap *Snapshot) {
	if c.ttl <= 0 {
		return
	}
	if err := config.SetRedisObject(ctx, snapshotRedisKey, snap, c.ttl); err != nil {
		config.LogError(config.GetLogger(), "cache.go", "RedisCache.Set", "SetRedisObject", nil, err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return config.RemoveRedisKey(ctx, snapshotRedisKey)
}
