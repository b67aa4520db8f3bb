// This file tests the dashboard update loop and message routing.
package dash

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"wastenot/internal/config"
	"wastenot/internal/store"
)

// newTestModel builds a dashboard over a seeded in-memory database.
func newTestModel(t *testing.T) Model {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if _, err := st.Seed(context.Background(), false); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.Export.Dir = t.TempDir()
	return New(st, cfg, zap.NewNop(), nil)
}

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestLoadOverview(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	msg := m.loadOverviewCmd()()
	loaded, ok := msg.(overviewLoadedMsg)
	if !ok {
		t.Fatalf("got %T, want overviewLoadedMsg", msg)
	}
	if loaded.err != nil {
		t.Fatalf("overview load: %v", loaded.err)
	}

	m = apply(t, m, msg)
	want := store.Counts{Listings: 18, Claims: 14, Providers: 10, Receivers: 8}
	if m.counts != want {
		t.Errorf("counts = %+v, want %+v", m.counts, want)
	}
	if m.loading {
		t.Error("loading still set after the overview arrived")
	}
	if len(m.statusChart) != 3 {
		t.Errorf("status chart has %d entries, want 3", len(m.statusChart))
	}
	if len(m.cityChart) != 5 {
		t.Errorf("city chart has %d entries, want 5", len(m.cityChart))
	}
	if len(m.problems) != 0 {
		t.Errorf("unexpected integrity findings: %v", m.problems)
	}
}

func TestTabKeySwitches(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != tabListings {
		t.Fatalf("tab = %v, want listings", m.tab)
	}
	if !m.loading {
		t.Error("switching to listings should start a load")
	}

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.tab != tabOverview {
		t.Fatalf("tab = %v, want overview", m.tab)
	}
}

func TestDigitJump(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'5'}})
	if m.tab != tabReports {
		t.Fatalf("tab = %v, want reports", m.tab)
	}
	if m.loading {
		t.Error("reports tab with nothing run yet should not load")
	}
}

func TestListingsLoad(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m.tab = tabListings

	m = apply(t, m, m.loadListingsCmd()())
	if m.listings == nil {
		t.Fatal("listings table not set")
	}
	if got := len(m.listings.Rows); got != 18 {
		t.Errorf("listings rows = %d, want 18", got)
	}
}

func TestFilteredListingsLoad(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m.tab = tabListings
	m.listingFilter.Cities = []string{"Hyderabad"}

	m = apply(t, m, m.loadListingsCmd()())
	if m.listings == nil {
		t.Fatal("listings table not set")
	}
	if got := len(m.listings.Rows); got != 4 {
		t.Errorf("filtered rows = %d, want 4", got)
	}
}

func TestRunQuery(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m.tab = tabQuery
	m.queryInput.SetValue("SELECT COUNT(*) AS total FROM claims")

	msg := m.runQueryCmd()()
	res, ok := msg.(queryResultMsg)
	if !ok {
		t.Fatalf("got %T, want queryResultMsg", msg)
	}
	if res.err != nil {
		t.Fatalf("query: %v", res.err)
	}

	m = apply(t, m, msg)
	if m.queryTbl == nil || len(m.queryTbl.Rows) != 1 {
		t.Fatal("expected a single result row")
	}
	if got := m.queryTbl.Rows[0][0]; got != int64(14) {
		t.Errorf("total = %v, want 14", got)
	}
}

func TestRunQueryEmpty(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m.queryInput.SetValue("   ")

	msg := m.runQueryCmd()()
	note, ok := msg.(noteMsg)
	if !ok {
		t.Fatalf("got %T, want noteMsg", msg)
	}
	if !strings.Contains(string(note), "SQL") {
		t.Errorf("note = %q", note)
	}
}

func TestLoadErrorSurfaces(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m.loading = true

	m = apply(t, m, listingsLoadedMsg{err: errors.New("boom")})
	if m.err == nil || m.status != "boom" {
		t.Errorf("err = %v, status = %q", m.err, m.status)
	}
	if m.loading {
		t.Error("loading should clear on failure")
	}
}

func TestOpResultRefreshes(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m.tab = tabManage

	m = apply(t, m, opResultMsg{status: "listing 19 added"})
	if m.status != "listing 19 added" {
		t.Errorf("status = %q", m.status)
	}
	if m.loading {
		t.Error("manage tab has nothing to reload")
	}

	m.tab = tabListings
	m = apply(t, m, opResultMsg{status: "listing 20 added"})
	if !m.loading {
		t.Error("listings tab should reload after a write")
	}
}

func TestWatchTick(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	m = apply(t, m, watchTickMsg(time.Now()))
	if !strings.Contains(m.status, "refreshed") {
		t.Errorf("status = %q", m.status)
	}
	if !m.loading {
		t.Error("overview should reload on a watch tick")
	}
}

func TestExportListings(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m.tab = tabListings
	m = apply(t, m, m.loadListingsCmd()())

	cmd := m.exportCurrentCmd()
	if cmd == nil {
		t.Fatal("no export command for a loaded listings tab")
	}
	note, ok := cmd().(noteMsg)
	if !ok {
		t.Fatal("export did not report a note")
	}
	if !strings.Contains(string(note), "listings.csv") {
		t.Errorf("note = %q", note)
	}
	if _, err := os.Stat(filepath.Join(m.cfg.Export.Dir, "listings.csv")); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}

func TestExportNothingLoaded(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m.tab = tabListings

	if cmd := m.exportCurrentCmd(); cmd != nil {
		t.Error("export should be unavailable before the table loads")
	}
}

func TestFilterPickerFlow(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m = apply(t, m, m.loadVocabCmd()())
	m.tab = tabListings

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	if m.pick == nil {
		t.Fatal("picker did not open")
	}

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.pick != nil {
		t.Fatal("picker still open after esc")
	}
	if len(m.listingFilter.Cities) != 1 {
		t.Fatalf("cities filter = %v, want one entry", m.listingFilter.Cities)
	}
	if !m.loading {
		t.Error("applying a filter should reload the tab")
	}
}

func TestClearFilters(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m.tab = tabListings
	m.listingFilter.Cities = []string{"Delhi"}

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if len(m.listingFilter.Cities) != 0 {
		t.Errorf("filter = %v, want empty", m.listingFilter.Cities)
	}
	if !m.loading {
		t.Error("clearing a filter should reload the tab")
	}
}

func TestReportRunAndRender(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m = apply(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m.tab = tabReports

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.reportIdx != 1 {
		t.Fatalf("reportIdx = %d, want 1", m.reportIdx)
	}

	msg := m.runReportCmd(m.allReports[m.reportIdx])()
	loaded, ok := msg.(reportLoadedMsg)
	if !ok {
		t.Fatalf("got %T, want reportLoadedMsg", msg)
	}
	if loaded.err != nil {
		t.Fatalf("report: %v", loaded.err)
	}

	m = apply(t, m, msg)
	if m.reportTbl == nil {
		t.Fatal("report table not set")
	}
	if !strings.Contains(m.View(), m.allReports[1].Title) {
		t.Errorf("view missing report title %q", m.allReports[1].Title)
	}
}

func TestViewSmoke(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	if got := m.View(); got != "Loading..." {
		t.Errorf("pre-size view = %q", got)
	}

	m = apply(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = apply(t, m, m.loadOverviewCmd()())
	m = apply(t, m, m.loadVocabCmd()())

	view := m.View()
	for _, want := range []string{"wastenot", "Overview", "Reports", "Query", "cache"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestForceQuitAlwaysWorks(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	m.tab = tabManage
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if m.form == nil {
		t.Fatal("form did not open")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit even inside a form")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("got %T, want tea.QuitMsg", msg)
	}
}
