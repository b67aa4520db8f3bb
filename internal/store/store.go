package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// DefaultDBPath is the database file used when configuration does not
// name one.
const DefaultDBPath = "Local_Food_Wastage.db"

// Store is the data access layer over the food wastage database.
// Reads go through Query and are memoized; writes go through Execute,
// run in their own transaction, and clear the whole cache before
// returning, so a later read always observes the write.
type Store struct {
	db     *sql.DB
	dbPath string
	logger *zap.Logger
	cache  *QueryCache
	mu     sync.RWMutex
}

type options struct {
	logger      *zap.Logger
	busyTimeout time.Duration
	cacheTTL    time.Duration
	cacheSize   int
	noCache     bool
}

// Option adjusts how Open configures the store.
type Option func(*options)

// WithLogger attaches a logger. The default is a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCache sets the query cache TTL and entry limit.
func WithCache(ttl time.Duration, maxEntries int) Option {
	return func(o *options) {
		o.cacheTTL = ttl
		o.cacheSize = maxEntries
		o.noCache = false
	}
}

// WithoutCache disables query memoization entirely.
func WithoutCache() Option {
	return func(o *options) { o.noCache = true }
}

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// Open opens the database at path, creating the file and the schema if
// they do not exist yet.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{
		logger:      zap.NewNop(),
		busyTimeout: 5 * time.Second,
		cacheTTL:    5 * time.Minute,
		cacheSize:   128,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if isMemoryPath(path) {
		// Each pooled connection would otherwise see its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", o.busyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}

	s := &Store{
		db:     db,
		dbPath: path,
		logger: o.logger,
	}
	if !o.noCache {
		s.cache = NewQueryCache(o.cacheTTL, o.cacheSize)
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("store opened",
		zap.String("path", path),
		zap.Bool("cache", s.cache != nil))
	return s, nil
}

// initialize creates the four dataset tables and their indexes.
func (s *Store) initialize() error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// Close releases the database and stops the query cache.
func (s *Store) Close() error {
	if s.cache != nil {
		s.cache.Close()
	}
	return s.db.Close()
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string {
	return s.dbPath
}

// InMemory reports whether the store is backed by an in-memory database.
func (s *Store) InMemory() bool {
	return isMemoryPath(s.dbPath)
}

// CacheStats returns the query cache counters. A cache-less store
// reports zeros.
func (s *Store) CacheStats() CacheStats {
	if s.cache == nil {
		return CacheStats{}
	}
	return s.cache.Stats()
}

// Query runs a read statement with named parameters and returns its
// result table. Results are memoized until the next successful write;
// callers must not modify the returned table.
func (s *Store) Query(ctx context.Context, query string, params map[string]any) (*Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cacheable := s.cache != nil && isCacheable(query)
	key := cacheKey(query, params)
	if cacheable {
		if tbl, ok := s.cache.Get(key); ok {
			return tbl, nil
		}
	}

	qid := uuid.NewString()[:8]
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, namedArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	tbl, err := scanTable(rows)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	s.logger.Debug("query executed",
		zap.String("query_id", qid),
		zap.Int("rows", len(tbl.Rows)),
		zap.Duration("elapsed", time.Since(start)))

	if cacheable {
		s.cache.Put(key, tbl)
	}
	return tbl, nil
}

// Execute runs a write statement in its own transaction and returns the
// number of rows affected. On error the transaction is rolled back and
// nothing is written. On success the query cache is cleared before
// Execute returns.
func (s *Store) Execute(ctx context.Context, stmt string, params map[string]any) (int64, error) {
	res, err := s.exec(ctx, stmt, params)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}

func (s *Store) exec(ctx context.Context, stmt string, params map[string]any) (sql.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	qid := uuid.NewString()[:8]
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	res, err := tx.ExecContext(ctx, stmt, namedArgs(params)...)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("write failed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	s.purgeCache()
	s.logger.Debug("write executed", zap.String("query_id", qid))
	return res, nil
}

func (s *Store) purgeCache() {
	if s.cache == nil {
		return
	}
	s.cache.Purge()
	s.logger.Debug("query cache cleared")
}

// RunSQL executes free-form SQL from the ad-hoc query surface. Read
// statements return their result table; everything else runs as a write
// and returns a one-row rows_affected table.
func (s *Store) RunSQL(ctx context.Context, sqlText string) (*Table, error) {
	return s.RunSQLWith(ctx, sqlText, nil)
}

// RunSQLWith is RunSQL with values bound to :name placeholders.
func (s *Store) RunSQLWith(ctx context.Context, sqlText string, params map[string]any) (*Table, error) {
	if strings.TrimSpace(sqlText) == "" {
		return nil, fmt.Errorf("empty SQL statement")
	}
	if isReadStatement(sqlText) {
		return s.Query(ctx, sqlText, params)
	}
	n, err := s.Execute(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	return &Table{
		Columns: []string{"rows_affected"},
		Rows:    [][]any{{n}},
	}, nil
}

// isReadStatement classifies a statement by its first keyword.
func isReadStatement(sqlText string) bool {
	switch firstKeyword(sqlText) {
	case "select", "with", "pragma", "explain", "values":
		return true
	}
	return false
}

// isCacheable excludes PRAGMA from memoization; some pragmas mutate
// connection state.
func isCacheable(sqlText string) bool {
	switch firstKeyword(sqlText) {
	case "select", "with", "explain", "values":
		return true
	}
	return false
}

func firstKeyword(sqlText string) string {
	fields := strings.Fields(sqlText)
	if len(fields) == 0 {
		return ""
	}
	word := strings.ToLower(fields[0])
	for i := 0; i < len(word); i++ {
		if word[i] < 'a' || word[i] > 'z' {
			return word[:i]
		}
	}
	return word
}

// namedArgs converts a parameter map to driver arguments, sorted by
// name so binding order is deterministic.
func namedArgs(params map[string]any) []any {
	if len(params) == 0 {
		return nil
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	args := make([]any, 0, len(names))
	for _, name := range names {
		args = append(args, sql.Named(name, params[name]))
	}
	return args
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}
