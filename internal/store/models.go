package store

import (
	"fmt"
	"strings"

	"github.com/araddon/dateparse"
)

// Claim lifecycle statuses. The schema rejects anything else.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// Statuses lists the valid claim statuses in lifecycle order.
func Statuses() []string {
	return []string{StatusPending, StatusCompleted, StatusCancelled}
}

// ValidStatus reports whether s is a recognized claim status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Listing is one food_listings row.
type Listing struct {
	FoodID       int64
	FoodName     string
	Quantity     int64
	ExpiryDate   string
	ProviderID   int64
	ProviderType string
	Location     string
	FoodType     string
	MealType     string
}

// Counts holds the dashboard KPI totals, one per dataset table.
type Counts struct {
	Listings  int64
	Claims    int64
	Providers int64
	Receivers int64
}

// ParseExpiry normalizes a user-entered expiry date to YYYY-MM-DD.
// It accepts most common date layouts. An empty input stays empty.
func ParseExpiry(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	t, err := dateparse.ParseLocal(raw)
	if err != nil {
		return "", fmt.Errorf("unrecognized expiry date %q", raw)
	}
	return t.Format("2006-01-02"), nil
}
