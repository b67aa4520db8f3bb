package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// KPICard renders one labelled metric inside a bordered card.
func KPICard(s Styles, label, value string) string {
	inner := lipgloss.JoinVertical(lipgloss.Center,
		s.CardValue.Render(value),
		s.CardLabel.Render(label),
	)
	return s.Card.Render(inner)
}

// KPIRow lays cards out side by side.
func KPIRow(cards ...string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// StatusBadge renders a claim status as a colored badge.
func StatusBadge(s Styles, status string) string {
	style := s.Badge
	switch status {
	case "Completed":
		style = style.Copy().Background(Success)
	case "Pending":
		style = style.Copy().Background(Warning)
	case "Cancelled":
		style = style.Copy().Background(Destructive)
	}
	return style.Render(status)
}
