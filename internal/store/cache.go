package store

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Velocidex/ttlcache/v2"
)

// QueryCache memoizes read results keyed by statement text plus bound
// parameters. Invalidation is wholesale: any successful write purges
// every entry. There is no finer granularity.
type QueryCache struct {
	lru    *ttlcache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats is a point-in-time snapshot of cache activity.
type CacheStats struct {
	Hits   int64
	Misses int64
	Len    int
}

// NewQueryCache builds a cache that holds results for ttl at most, with
// at most maxEntries entries.
func NewQueryCache(ttl time.Duration, maxEntries int) *QueryCache {
	c := &QueryCache{lru: ttlcache.NewCache()}
	if maxEntries > 0 {
		c.lru.SetCacheSizeLimit(maxEntries)
	}
	if ttl > 0 {
		_ = c.lru.SetTTL(ttl)
	}
	c.lru.SkipTTLExtensionOnHit(true)
	return c
}

// Get returns the cached table for key, if present.
func (c *QueryCache) Get(key string) (*Table, bool) {
	v, err := c.lru.Get(key)
	if err != nil {
		c.misses.Add(1)
		return nil, false
	}
	tbl, ok := v.(*Table)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return tbl, true
}

// Put stores a result table under key.
func (c *QueryCache) Put(key string, tbl *Table) {
	_ = c.lru.Set(key, tbl)
}

// Purge drops every entry. This is the only invalidation.
func (c *QueryCache) Purge() {
	_ = c.lru.Purge()
}

// Stats reports hit/miss counters and the current entry count.
func (c *QueryCache) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Len:    c.lru.Count(),
	}
}

// Close stops the cache's expiry loop.
func (c *QueryCache) Close() {
	_ = c.lru.Close()
}

// cacheKey renders a statement and its parameters as a stable string.
// Parameter names are sorted so equal maps produce equal keys.
func cacheKey(query string, params map[string]any) string {
	if len(params) == 0 {
		return query
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(query)
	for _, name := range names {
		fmt.Fprintf(&b, "\x1f%s=%v", name, params[name])
	}
	return b.String()
}
