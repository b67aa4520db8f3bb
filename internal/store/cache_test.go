package store

import (
	"testing"
	"time"
)

func TestQueryCachePutGet(t *testing.T) {
	c := NewQueryCache(time.Minute, 8)
	defer c.Close()

	tbl := &Table{Columns: []string{"n"}, Rows: [][]any{{int64(3)}}}
	c.Put("k", tbl)

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got != tbl {
		t.Error("cache returned a different table")
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected a miss for an unknown key")
	}
}

func TestQueryCachePurge(t *testing.T) {
	c := NewQueryCache(time.Minute, 8)
	defer c.Close()

	c.Put("a", &Table{})
	c.Put("b", &Table{})
	c.Purge()

	if _, ok := c.Get("a"); ok {
		t.Error("entry a survived the purge")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("entry b survived the purge")
	}
	if n := c.Stats().Len; n != 0 {
		t.Errorf("entries after purge = %d, want 0", n)
	}
}

func TestQueryCacheStats(t *testing.T) {
	c := NewQueryCache(time.Minute, 8)
	defer c.Close()

	c.Put("k", &Table{})
	c.Get("k")
	c.Get("k")
	c.Get("missing")

	stats := c.Stats()
	if stats.Hits != 2 {
		t.Errorf("hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("misses = %d, want 1", stats.Misses)
	}
	if stats.Len != 1 {
		t.Errorf("len = %d, want 1", stats.Len)
	}
}

func TestQueryCacheTTL(t *testing.T) {
	c := NewQueryCache(30*time.Millisecond, 8)
	defer c.Close()

	c.Put("k", &Table{})
	time.Sleep(150 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("entry survived past its TTL")
	}
}

func TestCacheKey(t *testing.T) {
	t.Run("equal maps produce equal keys", func(t *testing.T) {
		a := cacheKey("SELECT 1", map[string]any{"x": "1", "y": "2"})
		b := cacheKey("SELECT 1", map[string]any{"y": "2", "x": "1"})
		if a != b {
			t.Errorf("keys differ: %q vs %q", a, b)
		}
	})

	t.Run("different params produce different keys", func(t *testing.T) {
		a := cacheKey("SELECT 1", map[string]any{"x": "1"})
		b := cacheKey("SELECT 1", map[string]any{"x": "2"})
		if a == b {
			t.Error("keys collide across different parameter values")
		}
	})

	t.Run("different statements produce different keys", func(t *testing.T) {
		if cacheKey("SELECT 1", nil) == cacheKey("SELECT 2", nil) {
			t.Error("keys collide across different statements")
		}
	})

	t.Run("no params keys on the statement alone", func(t *testing.T) {
		if cacheKey("SELECT 1", nil) != "SELECT 1" {
			t.Error("bare statement should be its own key")
		}
	})
}
