package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), opts...)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertProvider(t *testing.T, s *Store, name, ptype, city string) {
	t.Helper()
	_, err := s.Execute(context.Background(), `
		INSERT INTO providers (Name, Type, Address, City, Contact)
		VALUES (:n, :t, :a, :c, :p)`,
		map[string]any{"n": name, "t": ptype, "a": "1 Test Lane", "c": city, "p": "+91-9000000000"})
	if err != nil {
		t.Fatalf("failed to insert provider: %v", err)
	}
}

func insertReceiver(t *testing.T, s *Store, name, city string) {
	t.Helper()
	_, err := s.Execute(context.Background(), `
		INSERT INTO receivers (Name, Type, City, Contact)
		VALUES (:n, :t, :c, :p)`,
		map[string]any{"n": name, "t": "NGO", "c": city, "p": "+91-9000000001"})
	if err != nil {
		t.Fatalf("failed to insert receiver: %v", err)
	}
}

func countRows(t *testing.T, s *Store, table string) int64 {
	t.Helper()
	tbl, err := s.Query(context.Background(), "SELECT COUNT(*) AS n FROM "+table, nil)
	if err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	n, ok := tbl.Rows[0][0].(int64)
	if !ok {
		t.Fatalf("count came back as %T, want int64", tbl.Rows[0][0])
	}
	return n
}

func TestOpenCreatesSchema(t *testing.T) {
	s := newTestStore(t)

	for _, table := range Tables() {
		exists, err := s.tableExists(table)
		if err != nil {
			t.Fatalf("tableExists(%s): %v", table, err)
		}
		if !exists {
			t.Errorf("table %s was not created", table)
		}
	}

	for _, col := range []struct{ table, column string }{
		{"providers", "Provider_ID"},
		{"providers", "Contact"},
		{"receivers", "Receiver_ID"},
		{"food_listings", "Meal_Type"},
		{"food_listings", "Expiry_Date"},
		{"claims", "Timestamp"},
		{"claims", "Status"},
	} {
		exists, err := s.columnExists(col.table, col.column)
		if err != nil {
			t.Fatalf("columnExists(%s.%s): %v", col.table, col.column, err)
		}
		if !exists {
			t.Errorf("column %s.%s was not created", col.table, col.column)
		}
	}

	exists, err := s.tableExists("no_such_table")
	if err != nil {
		t.Fatalf("tableExists: %v", err)
	}
	if exists {
		t.Error("tableExists reported a table that does not exist")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	insertProvider(t, s1, "Annapurna Kitchen", "Restaurant", "Hyderabad")
	if err := s1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()
	if got := countRows(t, s2, "providers"); got != 1 {
		t.Errorf("provider count after reopen = %d, want 1", got)
	}
}

func TestOpenInMemory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	defer s.Close()

	if !s.InMemory() {
		t.Error("InMemory() = false for :memory: store")
	}

	insertProvider(t, s, "Udupi Tiffins", "Restaurant", "Bengaluru")
	if got := countRows(t, s, "providers"); got != 1 {
		t.Errorf("provider count = %d, want 1", got)
	}
}

func TestQueryReturnsOrderedColumns(t *testing.T) {
	s := newTestStore(t)
	insertProvider(t, s, "GreenLeaf Grocery", "Grocery Store", "Chennai")

	tbl, err := s.Query(context.Background(),
		"SELECT City, Name, Type FROM providers", nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	want := []string{"City", "Name", "Type"}
	if len(tbl.Columns) != len(want) {
		t.Fatalf("columns = %v, want %v", tbl.Columns, want)
	}
	for i := range want {
		if tbl.Columns[i] != want[i] {
			t.Errorf("column %d = %q, want %q", i, tbl.Columns[i], want[i])
		}
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(tbl.Rows))
	}
	if got := tbl.Rows[0][1]; got != "GreenLeaf Grocery" {
		t.Errorf("Name = %v, want GreenLeaf Grocery", got)
	}
}

func TestQueryNamedParams(t *testing.T) {
	s := newTestStore(t)
	insertProvider(t, s, "Bombay Bites", "Restaurant", "Mumbai")
	insertProvider(t, s, "Capital Greens", "Grocery Store", "Delhi")

	tbl, err := s.Query(context.Background(),
		"SELECT Name FROM providers WHERE City IN (:c0, :c1) ORDER BY Name",
		map[string]any{"c0": "Mumbai", "c1": "Delhi"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tbl.Rows))
	}
	if tbl.Rows[0][0] != "Bombay Bites" || tbl.Rows[1][0] != "Capital Greens" {
		t.Errorf("unexpected rows: %v", tbl.Rows)
	}
}

func TestQueryErrorSurfaces(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Query(context.Background(), "SELECT * FROM no_such_table", nil)
	if err == nil {
		t.Fatal("expected an error for a missing table")
	}
	if !strings.Contains(err.Error(), "no_such_table") {
		t.Errorf("error does not name the missing table: %v", err)
	}
}

func TestExecuteRollsBackOnConstraint(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Execute(context.Background(),
		"INSERT INTO claims (Food_ID, Receiver_ID, Status) VALUES (:f, :r, :s)",
		map[string]any{"f": 1, "r": 1, "s": "Bogus"})
	if err == nil {
		t.Fatal("expected a CHECK violation")
	}
	if got := countRows(t, s, "claims"); got != 0 {
		t.Errorf("claims count after failed write = %d, want 0", got)
	}
}

func TestWriteInvalidatesCachedReads(t *testing.T) {
	s := newTestStore(t)
	q := "SELECT COUNT(*) AS n FROM providers"

	if got := countRows(t, s, "providers"); got != 0 {
		t.Fatalf("initial count = %d, want 0", got)
	}
	// The count is now memoized.
	if _, ok := s.cache.Get(cacheKey(q, nil)); !ok {
		t.Fatal("expected the count query to be cached")
	}

	insertProvider(t, s, "Dilli Daawat", "Catering Service", "Delhi")

	if _, ok := s.cache.Get(cacheKey(q, nil)); ok {
		t.Error("cache still holds entries after a write")
	}
	if got := countRows(t, s, "providers"); got != 1 {
		t.Errorf("count after write = %d, want 1", got)
	}
}

func TestReadsAreMemoized(t *testing.T) {
	s := newTestStore(t)
	insertProvider(t, s, "Marina Fresh Mart", "Supermarket", "Chennai")

	first := countRows(t, s, "providers")

	// Mutate behind the store's back; the memoized result must survive.
	if _, err := s.db.Exec(
		"INSERT INTO providers (Name, Type) VALUES ('Ghost', 'Restaurant')"); err != nil {
		t.Fatalf("raw insert: %v", err)
	}
	if got := countRows(t, s, "providers"); got != first {
		t.Fatalf("memoized count = %d, want %d", got, first)
	}

	// Any successful write clears the cache, even one that matches no rows.
	if _, err := s.Execute(context.Background(),
		"DELETE FROM claims WHERE Claim_ID = :id", map[string]any{"id": -1}); err != nil {
		t.Fatalf("no-op write: %v", err)
	}
	if got := countRows(t, s, "providers"); got != first+1 {
		t.Errorf("count after purge = %d, want %d", got, first+1)
	}
}

func TestWithoutCache(t *testing.T) {
	s := newTestStore(t, WithoutCache())
	if s.cache != nil {
		t.Fatal("cache should be disabled")
	}

	insertProvider(t, s, "Namma Bazaar", "Grocery Store", "Bengaluru")
	if got := countRows(t, s, "providers"); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
	if stats := s.CacheStats(); stats != (CacheStats{}) {
		t.Errorf("cache-less stats = %+v, want zeros", stats)
	}
}

func TestCacheStatsCountsHits(t *testing.T) {
	s := newTestStore(t)
	insertProvider(t, s, "Lakeview Grocers", "Grocery Store", "Hyderabad")

	countRows(t, s, "providers") // miss
	countRows(t, s, "providers") // hit

	stats := s.CacheStats()
	if stats.Hits < 1 || stats.Misses < 1 {
		t.Errorf("stats = %+v, want at least one hit and one miss", stats)
	}
}

func TestRunSQL(t *testing.T) {
	s := newTestStore(t)
	insertProvider(t, s, "SeaBreeze Supermart", "Supermarket", "Mumbai")

	t.Run("select returns rows", func(t *testing.T) {
		tbl, err := s.RunSQL(context.Background(), "SELECT Name FROM providers")
		if err != nil {
			t.Fatalf("RunSQL: %v", err)
		}
		if len(tbl.Rows) != 1 {
			t.Errorf("rows = %d, want 1", len(tbl.Rows))
		}
	})

	t.Run("leading whitespace and case do not matter", func(t *testing.T) {
		tbl, err := s.RunSQL(context.Background(), "\n   select COUNT(*) from providers")
		if err != nil {
			t.Fatalf("RunSQL: %v", err)
		}
		if tbl.Rows[0][0].(int64) != 1 {
			t.Errorf("count = %v, want 1", tbl.Rows[0][0])
		}
	})

	t.Run("with clause routes as a read", func(t *testing.T) {
		tbl, err := s.RunSQL(context.Background(),
			"WITH c AS (SELECT City FROM providers) SELECT COUNT(*) FROM c")
		if err != nil {
			t.Fatalf("RunSQL: %v", err)
		}
		if len(tbl.Rows) != 1 {
			t.Errorf("rows = %d, want 1", len(tbl.Rows))
		}
	})

	t.Run("pragma routes as a read", func(t *testing.T) {
		tbl, err := s.RunSQL(context.Background(), "PRAGMA table_info(claims)")
		if err != nil {
			t.Fatalf("RunSQL: %v", err)
		}
		if len(tbl.Rows) != 5 {
			t.Errorf("claims columns = %d, want 5", len(tbl.Rows))
		}
	})

	t.Run("write returns rows_affected", func(t *testing.T) {
		tbl, err := s.RunSQL(context.Background(),
			"UPDATE providers SET Contact = '+91-9111111111'")
		if err != nil {
			t.Fatalf("RunSQL: %v", err)
		}
		if len(tbl.Columns) != 1 || tbl.Columns[0] != "rows_affected" {
			t.Fatalf("columns = %v, want [rows_affected]", tbl.Columns)
		}
		if tbl.Rows[0][0].(int64) != 1 {
			t.Errorf("rows_affected = %v, want 1", tbl.Rows[0][0])
		}
	})

	t.Run("write invalidates cached reads", func(t *testing.T) {
		before := countRows(t, s, "providers")
		if _, err := s.RunSQL(context.Background(),
			"INSERT INTO providers (Name, Type) VALUES ('Temp', 'Restaurant')"); err != nil {
			t.Fatalf("RunSQL insert: %v", err)
		}
		if got := countRows(t, s, "providers"); got != before+1 {
			t.Errorf("count = %d, want %d", got, before+1)
		}
	})

	t.Run("malformed SQL surfaces an error", func(t *testing.T) {
		if _, err := s.RunSQL(context.Background(), "SELEC wrong"); err == nil {
			t.Error("expected a syntax error")
		}
	})

	t.Run("empty input is rejected", func(t *testing.T) {
		if _, err := s.RunSQL(context.Background(), "   \n"); err == nil {
			t.Error("expected an error for empty input")
		}
	})
}

func TestRunSQLWith(t *testing.T) {
	s := newTestStore(t)
	insertProvider(t, s, "Udupi Tiffins", "Restaurant", "Bengaluru")
	insertProvider(t, s, "Namma Bazaar", "Grocery Store", "Bengaluru")

	tbl, err := s.RunSQLWith(context.Background(),
		"SELECT Name FROM providers WHERE Type = :t ORDER BY Name",
		map[string]any{"t": "Restaurant"})
	if err != nil {
		t.Fatalf("RunSQLWith: %v", err)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0][0] != "Udupi Tiffins" {
		t.Errorf("rows = %v, want the one restaurant", tbl.Rows)
	}

	tbl, err = s.RunSQLWith(context.Background(),
		"UPDATE providers SET City = :c WHERE Type = :t",
		map[string]any{"c": "Mysuru", "t": "Grocery Store"})
	if err != nil {
		t.Fatalf("RunSQLWith update: %v", err)
	}
	if tbl.Rows[0][0].(int64) != 1 {
		t.Errorf("rows_affected = %v, want 1", tbl.Rows[0][0])
	}
}

func TestFirstKeyword(t *testing.T) {
	cases := []struct {
		sql  string
		want string
	}{
		{"SELECT 1", "select"},
		{"  \n\tselect 1", "select"},
		{"WITH x AS (SELECT 1) SELECT * FROM x", "with"},
		{"PRAGMA table_info(claims)", "pragma"},
		{"DELETE FROM claims", "delete"},
		{"select*from t", "select"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := firstKeyword(tc.sql); got != tc.want {
			t.Errorf("firstKeyword(%q) = %q, want %q", tc.sql, got, tc.want)
		}
	}
}
