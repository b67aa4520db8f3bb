package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type seedProvider struct {
	id      int64
	name    string
	ptype   string
	address string
	city    string
	contact string
}

type seedReceiver struct {
	id      int64
	name    string
	rtype   string
	city    string
	contact string
}

type seedListing struct {
	id         int64
	name       string
	quantity   int64
	expiryDays int // relative to today
	provider   int64
	foodType   string
	mealType   string
}

type seedClaim struct {
	id       int64
	foodID   int64
	receiver int64
	status   string
	ageDays  int // how long ago the claim was made
}

var seedProviders = []seedProvider{
	{1, "Annapurna Kitchen", "Restaurant", "12 Charminar Road", "Hyderabad", "+91-9000010001"},
	{2, "Spice Route Catering", "Catering Service", "4 Jubilee Hills", "Hyderabad", "+91-9000010002"},
	{3, "GreenLeaf Grocery", "Grocery Store", "88 Anna Salai", "Chennai", "+91-9000010003"},
	{4, "Marina Fresh Mart", "Supermarket", "15 Beach Road", "Chennai", "+91-9000010004"},
	{5, "Udupi Tiffins", "Restaurant", "22 MG Road", "Bengaluru", "+91-9000010005"},
	{6, "Namma Bazaar", "Grocery Store", "7 Koramangala", "Bengaluru", "+91-9000010006"},
	{7, "Bombay Bites", "Restaurant", "31 Linking Road", "Mumbai", "+91-9000010007"},
	{8, "SeaBreeze Supermart", "Supermarket", "5 Marine Drive", "Mumbai", "+91-9000010008"},
	{9, "Dilli Daawat", "Catering Service", "19 Chandni Chowk", "Delhi", "+91-9000010009"},
	{10, "Capital Greens", "Grocery Store", "2 Connaught Place", "Delhi", "+91-9000010010"},
}

var seedReceivers = []seedReceiver{
	{1, "Helping Hands Trust", "NGO", "Hyderabad", "+91-9000020001"},
	{2, "Sai Seva Shelter", "Shelter", "Hyderabad", "+91-9000020002"},
	{3, "Chennai Food Bank", "Food Bank", "Chennai", "+91-9000020003"},
	{4, "Anbu Illam", "Charity", "Chennai", "+91-9000020004"},
	{5, "Akshaya Patra Hub", "NGO", "Bengaluru", "+91-9000020005"},
	{6, "Nisha Kumar", "Individual", "Bengaluru", "+91-9000020006"},
	{7, "Mumbai Roti Bank", "Food Bank", "Mumbai", "+91-9000020007"},
	{8, "Asha Kiran Home", "Shelter", "Delhi", "+91-9000020008"},
}

var seedListings = []seedListing{
	{1, "Vegetable Biryani", 40, 2, 1, "Vegetarian", "Lunch"},
	{2, "Idli Sambar Trays", 60, 1, 1, "Vegetarian", "Breakfast"},
	{3, "Paneer Curry", 25, 3, 2, "Vegetarian", "Dinner"},
	{4, "Chicken Kebabs", 30, 1, 2, "Non-Vegetarian", "Dinner"},
	{5, "Fresh Fruit Crates", 50, 5, 3, "Vegan", "Snacks"},
	{6, "Day-Old Bread", 45, 1, 3, "Vegetarian", "Breakfast"},
	{7, "Fish Curry Packs", 20, 1, 4, "Non-Vegetarian", "Lunch"},
	{8, "Salad Boxes", 35, 2, 4, "Vegan", "Lunch"},
	{9, "Masala Dosa Batter", 30, 2, 5, "Vegetarian", "Breakfast"},
	{10, "Curd Rice Tubs", 28, 1, 5, "Vegetarian", "Lunch"},
	{11, "Lentil Soup", 22, 4, 6, "Vegan", "Dinner"},
	{12, "Vegetable Pulao", 26, 3, 6, "Vegetarian", "Lunch"},
	{13, "Egg Fried Rice", 24, 1, 7, "Non-Vegetarian", "Dinner"},
	{14, "Pav Bhaji", 32, 2, 7, "Vegetarian", "Snacks"},
	{15, "Banana Bunches", 55, 6, 8, "Vegan", "Snacks"},
	{16, "Mutton Rogan Josh", 15, 1, 9, "Non-Vegetarian", "Dinner"},
	{17, "Chole Bhature", 34, 2, 9, "Vegetarian", "Lunch"},
	{18, "Seasonal Vegetables", 48, 7, 10, "Vegan", "Dinner"},
}

var seedClaims = []seedClaim{
	{1, 1, 1, StatusCompleted, 1},
	{2, 2, 2, StatusCompleted, 2},
	{3, 3, 1, StatusPending, 0},
	{4, 4, 2, StatusCancelled, 4},
	{5, 5, 3, StatusCompleted, 5},
	{6, 6, 4, StatusPending, 1},
	{7, 7, 3, StatusCompleted, 12},
	{8, 9, 5, StatusPending, 2},
	{9, 10, 6, StatusCancelled, 20},
	{10, 11, 5, StatusCompleted, 40},
	{11, 13, 7, StatusPending, 3},
	{12, 14, 7, StatusCompleted, 55},
	{13, 16, 8, StatusCancelled, 35},
	{14, 17, 8, StatusPending, 6},
}

// Seed populates the sample dataset. Existing data is preserved unless
// wipe is set; with data already present and wipe false, Seed reports
// false and changes nothing.
func (s *Store) Seed(ctx context.Context, wipe bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !wipe {
		var n int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM food_listings").Scan(&n); err != nil {
			return false, fmt.Errorf("failed to inspect listings: %w", err)
		}
		if n > 0 {
			return false, nil
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if wipe {
		for _, stmt := range []string{
			"DELETE FROM claims",
			"DELETE FROM food_listings",
			"DELETE FROM receivers",
			"DELETE FROM providers",
			"DELETE FROM sqlite_sequence WHERE name IN ('providers', 'receivers', 'food_listings', 'claims')",
		} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return false, fmt.Errorf("failed to wipe tables: %w", err)
			}
		}
	}

	now := time.Now()
	for _, p := range seedProviders {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO providers (Provider_ID, Name, Type, Address, City, Contact)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.id, p.name, p.ptype, p.address, p.city, p.contact); err != nil {
			return false, fmt.Errorf("failed to seed provider %q: %w", p.name, err)
		}
	}
	for _, r := range seedReceivers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO receivers (Receiver_ID, Name, Type, City, Contact)
			VALUES (?, ?, ?, ?, ?)`,
			r.id, r.name, r.rtype, r.city, r.contact); err != nil {
			return false, fmt.Errorf("failed to seed receiver %q: %w", r.name, err)
		}
	}
	for _, l := range seedListings {
		expiry := now.AddDate(0, 0, l.expiryDays).Format("2006-01-02")
		city := seedProviders[l.provider-1].city
		ptype := seedProviders[l.provider-1].ptype
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO food_listings
			  (Food_ID, Food_Name, Quantity, Expiry_Date, Provider_ID,
			   Provider_Type, Location, Food_Type, Meal_Type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.id, l.name, l.quantity, expiry, l.provider,
			ptype, city, l.foodType, l.mealType); err != nil {
			return false, fmt.Errorf("failed to seed listing %q: %w", l.name, err)
		}
	}
	for _, c := range seedClaims {
		ts := now.AddDate(0, 0, -c.ageDays).Format("2006-01-02 15:04:05")
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO claims (Claim_ID, Food_ID, Receiver_ID, Status, Timestamp)
			VALUES (?, ?, ?, ?, ?)`,
			c.id, c.foodID, c.receiver, c.status, ts); err != nil {
			return false, fmt.Errorf("failed to seed claim %d: %w", c.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit seed: %w", err)
	}

	s.purgeCache()
	s.logger.Info("sample dataset seeded",
		zap.Int("providers", len(seedProviders)),
		zap.Int("receivers", len(seedReceivers)),
		zap.Int("listings", len(seedListings)),
		zap.Int("claims", len(seedClaims)))
	return true, nil
}
