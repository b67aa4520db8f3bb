package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by typed writes that match no row.
var ErrNotFound = errors.New("not found")

// InsertListing adds a food listing and returns its Food_ID.
func (s *Store) InsertListing(ctx context.Context, l Listing) (int64, error) {
	if l.FoodName == "" {
		return 0, fmt.Errorf("food name is required")
	}
	if l.Quantity < 0 {
		return 0, fmt.Errorf("quantity must not be negative")
	}
	res, err := s.exec(ctx, `
		INSERT INTO food_listings
		  (Food_Name, Quantity, Expiry_Date, Provider_ID,
		   Provider_Type, Location, Food_Type, Meal_Type)
		VALUES (:n, :q, :e, :pid, :pt, :loc, :ft, :mt)`,
		map[string]any{
			"n":   l.FoodName,
			"q":   l.Quantity,
			"e":   l.ExpiryDate,
			"pid": l.ProviderID,
			"pt":  l.ProviderType,
			"loc": l.Location,
			"ft":  l.FoodType,
			"mt":  l.MealType,
		})
	if err != nil {
		return 0, fmt.Errorf("failed to add listing: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read listing id: %w", err)
	}
	return id, nil
}

// UpdateClaimStatus sets the status of one claim.
func (s *Store) UpdateClaimStatus(ctx context.Context, claimID int64, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid claim status %q", status)
	}
	n, err := s.Execute(ctx, "UPDATE claims SET Status = :s WHERE Claim_ID = :cid",
		map[string]any{"s": status, "cid": claimID})
	if err != nil {
		return fmt.Errorf("failed to update claim: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("claim %d: %w", claimID, ErrNotFound)
	}
	return nil
}

// DeleteListing removes a food listing. Claims referencing it stay
// behind; Integrity reports them as orphaned.
func (s *Store) DeleteListing(ctx context.Context, foodID int64) error {
	n, err := s.Execute(ctx, "DELETE FROM food_listings WHERE Food_ID = :fid",
		map[string]any{"fid": foodID})
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("listing %d: %w", foodID, ErrNotFound)
	}
	return nil
}

// ProviderInfo returns the type and city of one provider, so listing
// forms can fill the denormalized columns when the caller omits them.
func (s *Store) ProviderInfo(ctx context.Context, providerID int64) (ptype, city string, err error) {
	tbl, err := s.Query(ctx, "SELECT Type, City FROM providers WHERE Provider_ID = :pid",
		map[string]any{"pid": providerID})
	if err != nil {
		return "", "", err
	}
	if len(tbl.Rows) == 0 {
		return "", "", fmt.Errorf("provider %d: %w", providerID, ErrNotFound)
	}
	return FormatValue(tbl.Rows[0][0]), FormatValue(tbl.Rows[0][1]), nil
}

// Distinct returns the sorted non-NULL values of a column, used to
// build the filter vocabularies.
func (s *Store) Distinct(ctx context.Context, table, column string) ([]string, error) {
	if !validIdentifier(table) || !validIdentifier(column) {
		return nil, fmt.Errorf("invalid identifier %s.%s", table, column)
	}
	tbl, err := s.Query(ctx, fmt.Sprintf(
		"SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY %s",
		column, table, column, column), nil)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		values = append(values, FormatValue(row[0]))
	}
	return values, nil
}

// Counts returns the KPI totals across the four tables.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dst   *int64
	}{
		{"food_listings", &c.Listings},
		{"claims", &c.Claims},
		{"providers", &c.Providers},
		{"receivers", &c.Receivers},
	} {
		tbl, err := s.Query(ctx, "SELECT COUNT(*) AS n FROM "+q.table, nil)
		if err != nil {
			return Counts{}, err
		}
		if len(tbl.Rows) > 0 {
			if n, ok := tbl.Rows[0][0].(int64); ok {
				*q.dst = n
			}
		}
	}
	return c, nil
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
