package store

import (
	"context"
	"database/sql"
	"fmt"
)

// The four dataset tables. Foreign keys are declared for documentation
// but not enforced (PRAGMA foreign_keys stays off), so deleting a
// listing leaves its claims behind; Integrity reports those.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS providers (
		Provider_ID INTEGER PRIMARY KEY AUTOINCREMENT,
		Name        TEXT NOT NULL,
		Type        TEXT NOT NULL,
		Address     TEXT,
		City        TEXT,
		Contact     TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS receivers (
		Receiver_ID INTEGER PRIMARY KEY AUTOINCREMENT,
		Name        TEXT NOT NULL,
		Type        TEXT,
		City        TEXT,
		Contact     TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS food_listings (
		Food_ID       INTEGER PRIMARY KEY AUTOINCREMENT,
		Food_Name     TEXT NOT NULL,
		Quantity      INTEGER NOT NULL DEFAULT 0 CHECK (Quantity >= 0),
		Expiry_Date   TEXT,
		Provider_ID   INTEGER REFERENCES providers(Provider_ID),
		Provider_Type TEXT,
		Location      TEXT,
		Food_Type     TEXT,
		Meal_Type     TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS claims (
		Claim_ID    INTEGER PRIMARY KEY AUTOINCREMENT,
		Food_ID     INTEGER REFERENCES food_listings(Food_ID),
		Receiver_ID INTEGER REFERENCES receivers(Receiver_ID),
		Status      TEXT NOT NULL DEFAULT 'Pending'
			CHECK (Status IN ('Pending', 'Completed', 'Cancelled')),
		Timestamp   DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_location ON food_listings(Location)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_provider ON food_listings(Provider_ID)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_food ON claims(Food_ID)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_receiver ON claims(Receiver_ID)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(Status)`,
}

// Tables lists the dataset tables in schema order.
func Tables() []string {
	return []string{"providers", "receivers", "food_listings", "claims"}
}

func knownTable(name string) bool {
	for _, t := range Tables() {
		if t == name {
			return true
		}
	}
	return false
}

// TableInfo returns the column layout of one dataset table, one row per
// column (PRAGMA table_info).
func (s *Store) TableInfo(ctx context.Context, table string) (*Table, error) {
	if !knownTable(table) {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return s.Query(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table), nil)
}

// tableExists checks sqlite_master for a table by name.
func (s *Store) tableExists(name string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return count > 0, nil
}

// columnExists inspects a table's layout for a named column.
func (s *Store) columnExists(table, column string) (bool, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("failed to scan column info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
