package reports

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"wastenot/internal/store"
)

// Report is one entry in the fixed analytics battery the dashboard
// ships with.
type Report struct {
	Num   int
	Slug  string
	Title string
	SQL   string
}

// Result pairs a report with its data.
type Result struct {
	Report Report
	Table  *store.Table
}

var registry = []Report{
	{
		Num:   1,
		Slug:  "providers-per-city",
		Title: "Providers & Receivers per City",
		SQL: `SELECT p.City,
       COUNT(DISTINCT p.Provider_ID) AS Providers,
       COUNT(DISTINCT r.Receiver_ID) AS Receivers
FROM providers p
LEFT JOIN receivers r ON r.City = p.City
GROUP BY p.City
ORDER BY Providers DESC`,
	},
	{
		Num:   2,
		Slug:  "top-provider-types",
		Title: "Top Provider Types by Listings",
		SQL: `SELECT Provider_Type, COUNT(*) AS Count
FROM food_listings
GROUP BY Provider_Type
ORDER BY Count DESC`,
	},
	{
		Num:   3,
		Slug:  "food-type-distribution",
		Title: "Food Type Distribution",
		SQL: `SELECT Food_Type, COUNT(*) AS Count
FROM food_listings
GROUP BY Food_Type
ORDER BY Count DESC`,
	},
	{
		Num:   4,
		Slug:  "top-receivers",
		Title: "Receivers with Most Claims",
		SQL: `SELECT Receiver_ID, COUNT(*) AS Total_Claims
FROM claims
GROUP BY Receiver_ID
ORDER BY Total_Claims DESC
LIMIT 10`,
	},
	{
		Num:   5,
		Slug:  "total-quantity",
		Title: "Total Quantity Available",
		SQL: `SELECT COALESCE(SUM(Quantity), 0) AS Total_Quantity
FROM food_listings`,
	},
	{
		Num:   6,
		Slug:  "city-most-listings",
		Title: "City with Most Listings",
		SQL: `SELECT Location AS City, COUNT(*) AS Listings
FROM food_listings
GROUP BY Location
ORDER BY Listings DESC
LIMIT 1`,
	},
	{
		Num:   7,
		Slug:  "common-food-types",
		Title: "Most Common Food Types",
		SQL: `SELECT Food_Type, COUNT(*) AS Count
FROM food_listings
GROUP BY Food_Type
ORDER BY Count DESC`,
	},
	{
		Num:   8,
		Slug:  "claims-per-item",
		Title: "Claims per Food Item",
		SQL: `SELECT Food_ID, COUNT(*) AS Total_Claims
FROM claims
GROUP BY Food_ID
ORDER BY Total_Claims DESC
LIMIT 10`,
	},
	{
		Num:   9,
		Slug:  "top-provider-completed",
		Title: "Provider with Most Successful Claims",
		SQL: `SELECT fl.Provider_ID, COUNT(*) AS Successful_Claims
FROM claims c
JOIN food_listings fl ON fl.Food_ID = c.Food_ID
WHERE c.Status = 'Completed'
GROUP BY fl.Provider_ID
ORDER BY Successful_Claims DESC
LIMIT 1`,
	},
	{
		Num:   10,
		Slug:  "claim-status-split",
		Title: "Claims Status % Split",
		SQL: `SELECT Status,
       ROUND(100.0 * COUNT(*) / (SELECT COUNT(*) FROM claims), 2) AS Percent
FROM claims
GROUP BY Status`,
	},
	{
		Num:   11,
		Slug:  "avg-quantity-per-receiver",
		Title: "Avg Quantity Claimed per Receiver",
		SQL: `SELECT c.Receiver_ID, ROUND(AVG(fl.Quantity), 2) AS Avg_Qty
FROM claims c
JOIN food_listings fl ON fl.Food_ID = c.Food_ID
GROUP BY c.Receiver_ID
ORDER BY Avg_Qty DESC
LIMIT 10`,
	},
	{
		Num:   12,
		Slug:  "top-meal-type",
		Title: "Most Claimed Meal Type",
		SQL: `SELECT fl.Meal_Type, COUNT(*) AS Claimed_Count
FROM claims c
JOIN food_listings fl ON fl.Food_ID = c.Food_ID
GROUP BY fl.Meal_Type
ORDER BY Claimed_Count DESC
LIMIT 1`,
	},
	{
		Num:   13,
		Slug:  "quantity-by-provider",
		Title: "Total Quantity Donated by Provider",
		SQL: `SELECT Provider_ID, SUM(Quantity) AS Total_Qty
FROM food_listings
GROUP BY Provider_ID
ORDER BY Total_Qty DESC
LIMIT 10`,
	},
	{
		Num:   14,
		Slug:  "pending-claims",
		Title: "Pending Claims Count",
		SQL: `SELECT COUNT(*) AS Pending_Count
FROM claims
WHERE Status = 'Pending'`,
	},
	{
		Num:   15,
		Slug:  "recent-completed",
		Title: "Completed Claims (Last 30 Days)",
		SQL: `SELECT COUNT(*) AS Completed_Last_30_Days
FROM claims
WHERE Status = 'Completed'
  AND DATE(Timestamp) >= DATE('now', '-30 day')`,
	},
}

// All returns the battery in display order.
func All() []Report {
	out := make([]Report, len(registry))
	copy(out, registry)
	return out
}

// ByNum looks a report up by its 1-based number.
func ByNum(num int) (Report, bool) {
	for _, r := range registry {
		if r.Num == num {
			return r, true
		}
	}
	return Report{}, false
}

// BySlug looks a report up by slug.
func BySlug(slug string) (Report, bool) {
	for _, r := range registry {
		if r.Slug == slug {
			return r, true
		}
	}
	return Report{}, false
}

// Lookup resolves a report from a number or a slug, as typed on the
// command line.
func Lookup(key string) (Report, bool) {
	key = strings.TrimSpace(key)
	if num, err := strconv.Atoi(key); err == nil {
		return ByNum(num)
	}
	return BySlug(strings.ToLower(key))
}

// Run executes one report.
func Run(ctx context.Context, st *store.Store, r Report) (*store.Table, error) {
	tbl, err := st.Query(ctx, r.SQL, nil)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", r.Slug, err)
	}
	return tbl, nil
}

// RunAll executes the whole battery concurrently, preserving registry
// order in the results.
func RunAll(ctx context.Context, st *store.Store) ([]Result, error) {
	results := make([]Result, len(registry))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range registry {
		g.Go(func() error {
			tbl, err := Run(gctx, st, r)
			if err != nil {
				return err
			}
			results[i] = Result{Report: r, Table: tbl}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
