package client

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	KeyDeals    = "deals"
	KeyWishlist = "wishlist"
)

// ErrRefreshDiscarded is returned when a refresh finished after it was
// cancelled or after a newer write to the same key.
var ErrRefreshDiscarded = errors.New("refresh result discarded")

// DealKey is the cache key of a single deal.
func DealKey(id uuid.UUID) string {
	return "deal:" + id.String()
}

// Entry is one cached query result.
type Entry struct {
	Value     any
	Stale     bool
	UpdatedAt time.Time
}

// Snapshot is a point-in-time copy of some cache keys. Absent keys are
// recorded as nil so restoring removes them again.
type Snapshot map[string]*Entry

type refresh struct {
	cancel context.CancelFunc
}

// QueryCache stores query results by key. Every write bumps the key's
// generation; a refresh only lands if the generation it started from is
// still current.
type QueryCache struct {
	mu          sync.Mutex
	entries     map[string]Entry
	generations map[string]uint64
	inflight    map[string]*refresh
	now         func() time.Time
}

func NewQueryCache() *QueryCache {
	return &QueryCache{
		entries:     map[string]Entry{},
		generations: map[string]uint64{},
		inflight:    map[string]*refresh{},
		now:         time.Now,
	}
}

func (c *QueryCache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *QueryCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

func (c *QueryCache) setLocked(key string, value any) {
	c.entries[key] = Entry{Value: value, UpdatedAt: c.now()}
	c.generations[key]++
}

// Update replaces the value under key with fn(old). Missing keys are left
// alone and Update reports false.
func (c *QueryCache) Update(key string, fn func(any) any) bool {
	_, ok := c.update(key, fn)
	return ok
}

// update is Update that also returns the generation it wrote.
func (c *QueryCache) update(key string, fn func(any) any) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	e.Value = fn(e.Value)
	e.UpdatedAt = c.now()
	c.entries[key] = e
	c.generations[key]++
	return c.generations[key], true
}

// MarkStale flags keys so the next Fetch goes to the network.
func (c *QueryCache) MarkStale(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if e, ok := c.entries[key]; ok {
			e.Stale = true
			c.entries[key] = e
		}
	}
}

// Cancel aborts in-flight refreshes for keys. A refresh whose fetch ignores
// its context is still discarded when it completes.
func (c *QueryCache) Cancel(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if r, ok := c.inflight[key]; ok {
			r.cancel()
			delete(c.inflight, key)
		}
		c.generations[key]++
	}
}

// Snapshot copies the current entries for keys.
func (c *QueryCache) Snapshot(keys ...string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := make(Snapshot, len(keys))
	for _, key := range keys {
		if e, ok := c.entries[key]; ok {
			cp := e
			snap[key] = &cp
			continue
		}
		snap[key] = nil
	}
	return snap
}

// Restore puts every key of snap back exactly as captured.
func (c *QueryCache) Restore(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range snap {
		if e == nil {
			delete(c.entries, key)
		} else {
			c.entries[key] = *e
		}
		c.generations[key]++
	}
}

// RestoreUnchanged restores the keys of gens from snap, but only where the
// key's generation still equals the recorded one. Keys written since are
// left alone and returned.
func (c *QueryCache) RestoreUnchanged(snap Snapshot, gens map[string]uint64) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var moved []string
	for key, gen := range gens {
		if c.generations[key] != gen {
			moved = append(moved, key)
			continue
		}
		if e := snap[key]; e == nil {
			delete(c.entries, key)
		} else {
			c.entries[key] = *e
		}
		c.generations[key]++
	}
	sort.Strings(moved)
	return moved
}

// Fetch returns the cached value unless it is missing or stale.
func (c *QueryCache) Fetch(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	if e, ok := c.Get(key); ok && !e.Stale {
		return e.Value, nil
	}
	return c.Refresh(ctx, key, fetch)
}

// Refresh runs fetch and stores its result unless the key was cancelled or
// written while fetch ran. A newer Refresh for the same key cancels this one.
func (c *QueryCache) Refresh(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if prev, ok := c.inflight[key]; ok {
		prev.cancel()
	}
	r := &refresh{cancel: cancel}
	c.inflight[key] = r
	c.generations[key]++
	gen := c.generations[key]
	c.mu.Unlock()

	value, err := fetch(rctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key] == r {
		delete(c.inflight, key)
	}
	if c.generations[key] != gen || rctx.Err() != nil {
		if err == nil {
			err = ErrRefreshDiscarded
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	c.setLocked(key, value)
	return value, nil
}
