package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BarItem is one labelled value in a BarChart.
type BarItem struct {
	Label string
	Value int
}

// BarChart renders labelled counts as horizontal bars, scaled to the
// largest value. Bars cycle through the chart palette.
type BarChart struct {
	Title string
	Items []BarItem

	// Width is the total rendered width. Zero falls back to 60 cells.
	Width int
}

// NewBarChart creates a BarChart with the given title.
func NewBarChart(title string) *BarChart {
	return &BarChart{Title: title}
}

// Add appends one labelled value.
func (b *BarChart) Add(label string, value int) {
	b.Items = append(b.Items, BarItem{Label: label, Value: value})
}

// View renders the chart using the provided styles.
func (b *BarChart) View(styles Styles) string {
	var sb strings.Builder

	if b.Title != "" {
		sb.WriteString(styles.Title.Render(b.Title))
		sb.WriteString("\n")
	}

	if len(b.Items) == 0 {
		sb.WriteString(styles.Muted.Render("(no data)") + "\n")
		return sb.String()
	}

	width := b.Width
	if width <= 0 {
		width = 60
	}

	labelW, valueW, maxVal := 0, 1, 0
	for _, it := range b.Items {
		if w := lipgloss.Width(it.Label); w > labelW {
			labelW = w
		}
		if w := len(strconv.Itoa(it.Value)); w > valueW {
			valueW = w
		}
		if it.Value > maxVal {
			maxVal = it.Value
		}
	}

	// Label, space, bar, space, value
	barSpace := width - labelW - valueW - 2
	if barSpace < 10 {
		barSpace = 10
	}

	labelStyle := styles.Muted.Copy().Width(labelW).Align(lipgloss.Right)
	colors := ChartColors()

	for i, it := range b.Items {
		cells := 0
		if it.Value > 0 && maxVal > 0 {
			cells = it.Value * barSpace / maxVal
			if cells < 1 {
				cells = 1
			}
		}

		barStyle := lipgloss.NewStyle().Foreground(colors[i%len(colors)])
		sb.WriteString(labelStyle.Render(it.Label))
		sb.WriteString(" ")
		sb.WriteString(barStyle.Render(strings.Repeat("█", cells)))
		if cells > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(styles.Bold.Render(strconv.Itoa(it.Value)))
		sb.WriteString("\n")
	}

	return sb.String()
}
