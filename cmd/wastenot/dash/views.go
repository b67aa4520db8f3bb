// This file contains view rendering for the dashboard tabs.
package dash

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"wastenot/cmd/wastenot/ui"
	"wastenot/internal/reports"
	"wastenot/internal/store"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()

	var body string
	if m.pick != nil {
		body = m.pick.view(m.styles)
	} else {
		switch m.tab {
		case tabOverview:
			body = m.renderOverview()
		case tabListings:
			body = m.renderListings()
		case tabClaims:
			body = m.renderClaims()
		case tabContacts:
			body = m.renderContacts()
		case tabReports:
			body = m.renderReports()
		case tabManage:
			body = m.renderManage()
		case tabQuery:
			body = m.renderQuery()
		}
	}

	footer := m.renderFooter()

	frame := lipgloss.NewStyle().Padding(0, 1)
	return frame.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, footer))
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" wastenot ")
	subtitle := m.styles.Subtitle.Render(" local food wastage dashboard")

	tabs := make([]string, 0, int(tabCount))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if tabID(i) == m.tab {
			tabs = append(tabs, m.styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.styles.TabInactive.Render(label))
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, title, subtitle),
		lipgloss.JoinHorizontal(lipgloss.Center, tabs...),
		m.styles.RenderDivider(max(10, m.width-2)),
	)
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.loading:
		status = m.spin.View() + " loading"
	case m.err != nil:
		status = m.styles.Error.Render(m.status)
	case m.status != "":
		status = m.styles.Info.Render(m.status)
	}

	cs := m.st.CacheStats()
	cacheLine := m.styles.Muted.Render(fmt.Sprintf(
		"cache %d hit / %d miss / %d cached", cs.Hits, cs.Misses, cs.Len))

	lines := []string{m.styles.RenderDivider(max(10, m.width-2))}
	if status != "" {
		lines = append(lines, status)
	}
	lines = append(lines, m.styles.Muted.Render(m.helpLine()), cacheLine)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) helpLine() string {
	switch m.tab {
	case tabListings, tabClaims, tabContacts:
		return "tab: next | f: filter | x: clear filter | e: export csv | r: refresh | q: quit"
	case tabReports:
		return "up/down: select | enter: run | e: export csv | r: refresh | q: quit"
	case tabManage:
		return "n: new listing | u: update claim | d: delete listing | q: quit"
	case tabQuery:
		return "ctrl+r: run | ctrl+e: export csv | tab: next tab"
	}
	return "tab: next | 1-7: jump | r: refresh | q: quit"
}

func (m Model) renderOverview() string {
	s := m.styles

	cards := ui.KPIRow(
		ui.KPICard(s, "Listings", humanize.Comma(m.counts.Listings)),
		ui.KPICard(s, "Claims", humanize.Comma(m.counts.Claims)),
		ui.KPICard(s, "Providers", humanize.Comma(m.counts.Providers)),
		ui.KPICard(s, "Receivers", humanize.Comma(m.counts.Receivers)),
	)

	chips := make([]string, 0, len(m.statusChart))
	for _, lc := range m.statusChart {
		chips = append(chips, ui.StatusBadge(s, lc.Label)+s.Muted.Render(fmt.Sprintf(" %d  ", lc.Count)))
	}

	chartW := max(30, (m.width-10)/2)
	statusChart := ui.NewBarChart("Claims by status")
	statusChart.Width = chartW
	for _, lc := range m.statusChart {
		statusChart.Add(lc.Label, int(lc.Count))
	}
	cityChart := ui.NewBarChart("Listings by city")
	cityChart.Width = chartW
	for _, lc := range m.cityChart {
		cityChart.Add(lc.Label, int(lc.Count))
	}

	parts := []string{
		ui.Logo(s),
		cards,
		lipgloss.JoinHorizontal(lipgloss.Center, chips...),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, statusChart.View(s), "   ", cityChart.View(s)),
	}
	if len(m.problems) > 0 {
		parts = append(parts, "", s.Warning.Render(fmt.Sprintf(
			"%d data integrity findings, run wastenot check", len(m.problems))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// tableView renders a result table, or a placeholder while it loads.
func (m Model) tableView(title string, t *store.Table, maxRows int) string {
	if t == nil {
		return m.styles.Muted.Render("(loading)")
	}
	st := ui.NewSimpleTable(title, t.Columns)
	st.AddRows(t.StringRows())
	st.MaxRows = maxRows
	return st.View(m.styles)
}

// bodyRows is how many table rows fit under the header and footer.
func (m Model) bodyRows() int {
	return max(5, m.height-14)
}

func (m Model) renderListings() string {
	title := "Food listings"
	if m.listings != nil {
		title = fmt.Sprintf("Food listings (%d)", len(m.listings.Rows))
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.styles.Subtitle.Render("filters: "+describeListingFilter(m.listingFilter)),
		m.tableView(title, m.listings, m.bodyRows()),
	)
}

func describeListingFilter(f reports.ListingFilter) string {
	var parts []string
	add := func(label string, vals []string) {
		if len(vals) > 0 {
			parts = append(parts, label+" in "+strings.Join(vals, "/"))
		}
	}
	add("city", f.Cities)
	add("provider type", f.ProviderTypes)
	add("food type", f.FoodTypes)
	add("meal type", f.MealTypes)
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func (m Model) renderClaims() string {
	summary := "filters: none"
	if len(m.claimStatuses) > 0 {
		summary = "filters: status in " + strings.Join(m.claimStatuses, "/")
	}
	title := "Claims"
	if m.claims != nil {
		title = fmt.Sprintf("Claims (%d)", len(m.claims.Rows))
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.styles.Subtitle.Render(summary),
		m.tableView(title, m.claims, m.bodyRows()),
	)
}

func (m Model) renderContacts() string {
	summary := "filters: none"
	if len(m.contactCities) > 0 {
		summary = "filters: city in " + strings.Join(m.contactCities, "/")
	}
	half := max(4, m.bodyRows()/2)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.styles.Subtitle.Render(summary),
		m.tableView("Provider contacts", m.provContacts, half),
		"",
		m.tableView("Receiver contacts", m.recvContacts, half),
	)
}

func (m Model) renderReports() string {
	s := m.styles

	var list strings.Builder
	list.WriteString(s.Title.Render("Reports") + "\n")
	for i, r := range m.allReports {
		line := fmt.Sprintf("%2d. %s", r.Num, r.Title)
		if i == m.reportIdx {
			list.WriteString(s.Bold.Render("▸ "+line) + "\n")
		} else {
			list.WriteString(s.Body.Render("  "+line) + "\n")
		}
	}
	left := lipgloss.NewStyle().Width(44).Render(list.String())

	right := s.Muted.Render("press enter to run the selected report")
	if m.reportTbl != nil {
		right = m.tableView(m.reportRan.Title, m.reportTbl, m.bodyRows())
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

func (m Model) renderManage() string {
	s := m.styles
	if m.form != nil {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			s.Title.Render(m.form.title),
			s.Body.Render(m.form.prompt()),
			m.textInput.View(),
			"",
			s.Muted.Render("enter: next | esc: cancel"),
		)
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.Title.Render("Manage data"),
		s.Body.Render("n  add a food listing"),
		s.Body.Render("u  update a claim status"),
		s.Body.Render("d  delete a food listing"),
	)
}

func (m Model) renderQuery() string {
	s := m.styles

	hint := lipgloss.JoinHorizontal(
		lipgloss.Center,
		s.InlineCode.Render("ctrl+r"), s.Muted.Render(" run   "),
		s.InlineCode.Render("ctrl+e"), s.Muted.Render(" export"),
	)

	parts := []string{
		s.Title.Render("SQL Query"),
		s.CodeBlock.Render(m.queryInput.View()),
		hint,
	}
	if m.queryTbl != nil {
		title := fmt.Sprintf("%d rows (%s)", len(m.queryTbl.Rows), m.queryElapsed.Round(time.Millisecond))
		parts = append(parts, "", m.tableView(title, m.queryTbl, max(5, m.height-20)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
