package store

import (
	"context"
	"fmt"
)

// Finding is one integrity check result. A zero Count means the check
// passed.
type Finding struct {
	Name   string
	Detail string
	Count  int64
}

type integrityCheck struct {
	name   string
	detail string
	query  string
}

var integrityChecks = []integrityCheck{
	{
		name:   "orphaned_claims",
		detail: "claims whose Food_ID matches no listing",
		query: `SELECT COUNT(*) FROM claims c
			LEFT JOIN food_listings fl ON fl.Food_ID = c.Food_ID
			WHERE fl.Food_ID IS NULL`,
	},
	{
		name:   "unknown_receivers",
		detail: "claims whose Receiver_ID matches no receiver",
		query: `SELECT COUNT(*) FROM claims c
			LEFT JOIN receivers r ON r.Receiver_ID = c.Receiver_ID
			WHERE r.Receiver_ID IS NULL`,
	},
	{
		name:   "unknown_providers",
		detail: "listings whose Provider_ID matches no provider",
		query: `SELECT COUNT(*) FROM food_listings fl
			LEFT JOIN providers p ON p.Provider_ID = fl.Provider_ID
			WHERE p.Provider_ID IS NULL`,
	},
	{
		name:   "invalid_status",
		detail: "claims with a status outside the lifecycle",
		query: `SELECT COUNT(*) FROM claims
			WHERE Status NOT IN ('Pending', 'Completed', 'Cancelled')`,
	},
	{
		name:   "empty_listings",
		detail: "listings offering zero quantity",
		query:  `SELECT COUNT(*) FROM food_listings WHERE Quantity <= 0`,
	},
}

// Integrity runs the consistency checks the schema itself does not
// enforce. Foreign keys are declared but never enforced, so a deleted
// listing leaves its claims behind; those surface here.
func (s *Store) Integrity(ctx context.Context) ([]Finding, error) {
	findings := make([]Finding, 0, len(integrityChecks))
	for _, check := range integrityChecks {
		tbl, err := s.Query(ctx, check.query, nil)
		if err != nil {
			return nil, fmt.Errorf("integrity check %s failed: %w", check.name, err)
		}
		var count int64
		if len(tbl.Rows) > 0 {
			if n, ok := tbl.Rows[0][0].(int64); ok {
				count = n
			}
		}
		findings = append(findings, Finding{
			Name:   check.name,
			Detail: check.detail,
			Count:  count,
		})
	}
	return findings, nil
}

// Problems filters findings down to the failed checks.
func Problems(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Count > 0 {
			out = append(out, f)
		}
	}
	return out
}
