package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection_SingleColumn(t *testing.T) {
	sel := NewSelection().In("city", "Chicago", "Dallas")

	pred, params := sel.Predicate()
	assert.Equal(t, "city IN (:c0, :c1)", pred)
	require.Len(t, params, 2)
	assert.Equal(t, "Chicago", params["c0"])
	assert.Equal(t, "Dallas", params["c1"])
}

func TestSelection_EmptyColumnContributesNothing(t *testing.T) {
	sel := NewSelection().
		In("city", "Chicago", "Dallas").
		In("food_type")

	pred, params := sel.Predicate()
	assert.Equal(t, "city IN (:c0, :c1)", pred)
	assert.Len(t, params, 2)
}

func TestSelection_MultipleColumns(t *testing.T) {
	sel := NewSelection().
		InAs("fl.Location", "c", "Hyderabad").
		InAs("fl.Provider_Type", "p", "Restaurant", "Supermarket").
		InAs("fl.Food_Type", "f", "Vegan").
		InAs("fl.Meal_Type", "m", "Lunch", "Dinner", "Snacks")

	pred, params := sel.Predicate()

	t.Run("one IN clause per column, joined with AND", func(t *testing.T) {
		parts := strings.Split(pred, " AND ")
		require.Len(t, parts, 4)
		assert.Equal(t, "fl.Location IN (:c0)", parts[0])
		assert.Equal(t, "fl.Provider_Type IN (:p0, :p1)", parts[1])
		assert.Equal(t, "fl.Food_Type IN (:f0)", parts[2])
		assert.Equal(t, "fl.Meal_Type IN (:m0, :m1, :m2)", parts[3])
	})

	t.Run("one parameter per value", func(t *testing.T) {
		require.Len(t, params, 7)
		assert.Equal(t, "Hyderabad", params["c0"])
		assert.Equal(t, "Supermarket", params["p1"])
		assert.Equal(t, "Snacks", params["m2"])
	})
}

func TestSelection_Empty(t *testing.T) {
	t.Run("no columns", func(t *testing.T) {
		sel := NewSelection()
		assert.True(t, sel.Empty())

		pred, params := sel.Predicate()
		assert.Equal(t, "", pred)
		assert.Empty(t, params)

		where, _ := sel.Where()
		assert.Equal(t, "", where)
	})

	t.Run("columns with no values", func(t *testing.T) {
		sel := NewSelection().In("city").In("status")
		assert.True(t, sel.Empty())

		where, params := sel.Where()
		assert.Equal(t, "", where)
		assert.Empty(t, params)
	})
}

func TestSelection_Where(t *testing.T) {
	sel := NewSelection().InAs("Status", "s", "Pending", "Completed")

	where, params := sel.Where()
	assert.Equal(t, "WHERE Status IN (:s0, :s1)", where)
	assert.Equal(t, "Pending", params["s0"])
	assert.Equal(t, "Completed", params["s1"])
}

func TestSelection_PrefixDerivation(t *testing.T) {
	cases := []struct {
		column string
		want   string
	}{
		{"city", "c"},
		{"Provider_Type", "p"},
		{"fl.Meal_Type", "m"},
		{"fl.Location", "l"},
		{"_weird", "w"},
	}
	for _, tc := range cases {
		t.Run(tc.column, func(t *testing.T) {
			assert.Equal(t, tc.want, derivePrefix(tc.column))
		})
	}
}

func TestSelection_PrefixCollision(t *testing.T) {
	sel := NewSelection().
		In("city", "Chicago").
		In("contact", "555-0100")

	pred, params := sel.Predicate()
	assert.Equal(t, "city IN (:c0) AND contact IN (:cc0)", pred)
	require.Len(t, params, 2)
	assert.Equal(t, "Chicago", params["c0"])
	assert.Equal(t, "555-0100", params["cc0"])
}

func TestSelection_SanitizedPrefix(t *testing.T) {
	// Digits are stripped so a prefix can never blend into its index.
	sel := NewSelection().
		InAs("a", "c2", "x").
		InAs("b", "C", "y")

	pred, params := sel.Predicate()
	assert.Equal(t, "a IN (:c0) AND b IN (:cc0)", pred)
	assert.Equal(t, "x", params["c0"])
	assert.Equal(t, "y", params["cc0"])
}

func TestSelection_Clone(t *testing.T) {
	orig := NewSelection().In("city", "Chicago")
	copied := orig.Clone()
	copied.In("status", "Pending")

	_, origParams := orig.Predicate()
	_, copiedParams := copied.Predicate()
	assert.Len(t, origParams, 1)
	assert.Len(t, copiedParams, 2)
}

func TestSelection_ValuesNeverInterpolated(t *testing.T) {
	hostile := `Chicago'; DROP TABLE food_listings; --`
	sel := NewSelection().In("city", hostile)

	pred, params := sel.Predicate()
	assert.NotContains(t, pred, "DROP")
	assert.Equal(t, hostile, params["c0"])
}
