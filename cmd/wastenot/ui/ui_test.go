package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeFromName(t *testing.T) {
	assert.True(t, ThemeFromName("dark").IsDark)
	assert.False(t, ThemeFromName("light").IsDark)
	assert.True(t, ThemeFromName(" DARK ").IsDark)
}

func TestDetectTheme(t *testing.T) {
	t.Run("dark terminal background", func(t *testing.T) {
		t.Setenv("COLORFGBG", "15;0")
		t.Setenv("WASTENOT_DARK_MODE", "")
		assert.True(t, DetectTheme().IsDark)
	})

	t.Run("light terminal background", func(t *testing.T) {
		t.Setenv("COLORFGBG", "0;15")
		t.Setenv("WASTENOT_DARK_MODE", "")
		assert.False(t, DetectTheme().IsDark)
	})

	t.Run("explicit dark mode", func(t *testing.T) {
		t.Setenv("COLORFGBG", "")
		t.Setenv("WASTENOT_DARK_MODE", "1")
		assert.True(t, DetectTheme().IsDark)
	})

	t.Run("default light", func(t *testing.T) {
		t.Setenv("COLORFGBG", "")
		t.Setenv("WASTENOT_DARK_MODE", "")
		assert.False(t, DetectTheme().IsDark)
	})
}

func TestSimpleTableView(t *testing.T) {
	styles := NewStyles(LightTheme())

	t.Run("renders headers and cells", func(t *testing.T) {
		tbl := NewSimpleTable("Listings", []string{"Food", "City"})
		tbl.AddRow("Rice Bags", "Chennai")
		tbl.AddRow("Bread Loaves", "Delhi")

		out := tbl.View(styles)
		assert.Contains(t, out, "Listings")
		assert.Contains(t, out, "Food")
		assert.Contains(t, out, "Rice Bags")
		assert.Contains(t, out, "Delhi")
	})

	t.Run("empty table shows placeholder", func(t *testing.T) {
		tbl := NewSimpleTable("", []string{"Food", "City"})
		out := tbl.View(styles)
		assert.Contains(t, out, "Food")
		assert.Contains(t, out, "(no rows)")
	})

	t.Run("caps rows at MaxRows", func(t *testing.T) {
		tbl := NewSimpleTable("", []string{"N"})
		for _, n := range []string{"one", "two", "three", "four", "five"} {
			tbl.AddRow(n)
		}
		tbl.MaxRows = 3

		out := tbl.View(styles)
		assert.Contains(t, out, "three")
		assert.NotContains(t, out, "four")
		assert.Contains(t, out, "and 2 more rows")
	})

	t.Run("AddRows appends in order", func(t *testing.T) {
		tbl := NewSimpleTable("", []string{"N"})
		tbl.AddRows([][]string{{"first"}, {"second"}})
		require.Len(t, tbl.Rows, 2)
		assert.Equal(t, "first", tbl.Rows[0][0])
	})
}

func TestBarChartView(t *testing.T) {
	styles := NewStyles(LightTheme())

	t.Run("renders labels, bars and values", func(t *testing.T) {
		chart := NewBarChart("Claims by Status")
		chart.Add("Completed", 6)
		chart.Add("Pending", 5)
		chart.Add("Cancelled", 3)

		out := chart.View(styles)
		assert.Contains(t, out, "Claims by Status")
		assert.Contains(t, out, "Completed")
		assert.Contains(t, out, "█")
		assert.Contains(t, out, "6")
		assert.Contains(t, out, "3")
	})

	t.Run("largest value gets the longest bar", func(t *testing.T) {
		chart := &BarChart{Width: 40}
		chart.Add("big", 10)
		chart.Add("small", 1)

		lines := strings.Split(strings.TrimSpace(chart.View(styles)), "\n")
		require.Len(t, lines, 2)
		assert.Greater(t, strings.Count(lines[0], "█"), strings.Count(lines[1], "█"))
	})

	t.Run("zero value renders without a bar", func(t *testing.T) {
		chart := NewBarChart("")
		chart.Add("none", 0)

		out := chart.View(styles)
		assert.NotContains(t, out, "█")
		assert.Contains(t, out, "0")
	})

	t.Run("empty chart shows placeholder", func(t *testing.T) {
		out := NewBarChart("x").View(styles)
		assert.Contains(t, out, "(no data)")
	})
}

func TestKPICard(t *testing.T) {
	styles := NewStyles(LightTheme())

	card := KPICard(styles, "Listings", "18")
	assert.Contains(t, card, "Listings")
	assert.Contains(t, card, "18")

	row := KPIRow(card, KPICard(styles, "Claims", "14"))
	assert.Contains(t, row, "Claims")
}

func TestStatusBadge(t *testing.T) {
	styles := NewStyles(DarkTheme())
	for _, status := range []string{"Pending", "Completed", "Cancelled", "Other"} {
		assert.Contains(t, StatusBadge(styles, status), status)
	}
}
