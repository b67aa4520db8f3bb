package reports

import (
	"context"
	"fmt"

	"wastenot/internal/filter"
	"wastenot/internal/store"
)

// LabelCount is one bar of a dashboard chart.
type LabelCount struct {
	Label string
	Count int64
}

// ClaimsByStatus feeds the claims-by-status chart.
func ClaimsByStatus(ctx context.Context, st *store.Store) ([]LabelCount, error) {
	return labelCounts(ctx, st,
		"SELECT Status, COUNT(*) AS Count FROM claims GROUP BY Status")
}

// ListingsByCity feeds the listings-per-city chart, busiest city first.
func ListingsByCity(ctx context.Context, st *store.Store) ([]LabelCount, error) {
	return labelCounts(ctx, st, `SELECT Location AS City, COUNT(*) AS Listings
FROM food_listings
GROUP BY Location
ORDER BY Listings DESC`)
}

func labelCounts(ctx context.Context, st *store.Store, query string) ([]LabelCount, error) {
	tbl, err := st.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	out := make([]LabelCount, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		lc := LabelCount{Label: store.FormatValue(row[0])}
		if n, ok := row[1].(int64); ok {
			lc.Count = n
		}
		out = append(out, lc)
	}
	return out, nil
}

// ListingFilter captures the dashboard's multi-select filters over
// food listings.
type ListingFilter struct {
	Cities        []string
	ProviderTypes []string
	FoodTypes     []string
	MealTypes     []string
}

// Selection renders the filter as a clause-builder selection over the
// listing columns.
func (f ListingFilter) Selection() *filter.Selection {
	return filter.NewSelection().
		InAs("fl.Location", "c", f.Cities...).
		InAs("fl.Provider_Type", "p", f.ProviderTypes...).
		InAs("fl.Food_Type", "f", f.FoodTypes...).
		InAs("fl.Meal_Type", "m", f.MealTypes...)
}

// FilteredListings returns listings matching the filter, soonest
// expiry first.
func FilteredListings(ctx context.Context, st *store.Store, f ListingFilter) (*store.Table, error) {
	where, params := f.Selection().Where()
	query := fmt.Sprintf(`SELECT fl.Food_ID, fl.Food_Name, fl.Quantity, fl.Expiry_Date,
       fl.Provider_ID, fl.Provider_Type, fl.Location, fl.Food_Type, fl.Meal_Type
FROM food_listings fl
%s
ORDER BY fl.Expiry_Date ASC`, where)
	return st.Query(ctx, query, params)
}

// Claims returns claims narrowed to the given statuses, newest first.
// An empty status list returns everything.
func Claims(ctx context.Context, st *store.Store, statuses []string) (*store.Table, error) {
	where, params := filter.NewSelection().InAs("Status", "s", statuses...).Where()
	query := fmt.Sprintf("SELECT * FROM claims %s ORDER BY Timestamp DESC", where)
	return st.Query(ctx, query, params)
}

// Contacts returns provider and receiver contact tables, optionally
// narrowed to the given cities.
func Contacts(ctx context.Context, st *store.Store, cities []string) (*store.Table, *store.Table, error) {
	where, params := filter.NewSelection().InAs("City", "c", cities...).Where()

	providers, err := st.Query(ctx, fmt.Sprintf(
		"SELECT Name, Type, City, Contact FROM providers %s ORDER BY City, Name", where), params)
	if err != nil {
		return nil, nil, err
	}
	receivers, err := st.Query(ctx, fmt.Sprintf(
		"SELECT Name, Type, City, Contact FROM receivers %s ORDER BY City, Name", where), params)
	if err != nil {
		return nil, nil, err
	}
	return providers, receivers, nil
}

// Vocabularies holds the drop-down values for the dashboard filters.
type Vocabularies struct {
	Cities        []string
	ProviderTypes []string
	FoodTypes     []string
	MealTypes     []string
	Statuses      []string
}

// LoadVocabularies reads the filter vocabularies from the data.
func LoadVocabularies(ctx context.Context, st *store.Store) (Vocabularies, error) {
	var v Vocabularies
	for _, src := range []struct {
		table, column string
		dst           *[]string
	}{
		{"providers", "City", &v.Cities},
		{"providers", "Type", &v.ProviderTypes},
		{"food_listings", "Food_Type", &v.FoodTypes},
		{"food_listings", "Meal_Type", &v.MealTypes},
		{"claims", "Status", &v.Statuses},
	} {
		values, err := st.Distinct(ctx, src.table, src.column)
		if err != nil {
			return Vocabularies{}, fmt.Errorf("failed to load %s.%s values: %w", src.table, src.column, err)
		}
		*src.dst = values
	}
	return v, nil
}
