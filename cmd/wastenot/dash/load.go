package dash

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"wastenot/internal/reports"
	"wastenot/internal/store"
)

// Messages for tea updates
type overviewLoadedMsg struct {
	counts   store.Counts
	statuses []reports.LabelCount
	cities   []reports.LabelCount
	problems []store.Finding
	err      error
}

type vocabLoadedMsg struct {
	vocab reports.Vocabularies
	err   error
}

type listingsLoadedMsg struct {
	table *store.Table
	err   error
}

type claimsLoadedMsg struct {
	table *store.Table
	err   error
}

type contactsLoadedMsg struct {
	providers *store.Table
	receivers *store.Table
	err       error
}

type reportLoadedMsg struct {
	report reports.Report
	table  *store.Table
	err    error
}

type queryResultMsg struct {
	table   *store.Table
	elapsed time.Duration
	err     error
}

// opResultMsg reports a completed write; noteMsg carries a status-only
// note that does not trigger a reload.
type (
	opResultMsg struct {
		status string
		err    error
	}
	noteMsg      string
	watchTickMsg time.Time
)

const loadTimeout = 30 * time.Second

func (m Model) loadOverviewCmd() tea.Cmd {
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var msg overviewLoadedMsg
		if msg.counts, msg.err = st.Counts(ctx); msg.err != nil {
			return msg
		}
		if msg.statuses, msg.err = reports.ClaimsByStatus(ctx, st); msg.err != nil {
			return msg
		}
		if msg.cities, msg.err = reports.ListingsByCity(ctx, st); msg.err != nil {
			return msg
		}
		msg.problems, msg.err = st.Integrity(ctx)
		return msg
	}
}

func (m Model) loadVocabCmd() tea.Cmd {
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		vocab, err := reports.LoadVocabularies(ctx, st)
		return vocabLoadedMsg{vocab: vocab, err: err}
	}
}

func (m Model) loadListingsCmd() tea.Cmd {
	st, f := m.st, m.listingFilter
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		tbl, err := reports.FilteredListings(ctx, st, f)
		return listingsLoadedMsg{table: tbl, err: err}
	}
}

func (m Model) loadClaimsCmd() tea.Cmd {
	st, statuses := m.st, m.claimStatuses
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		tbl, err := reports.Claims(ctx, st, statuses)
		return claimsLoadedMsg{table: tbl, err: err}
	}
}

func (m Model) loadContactsCmd() tea.Cmd {
	st, cities := m.st, m.contactCities
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		providers, receivers, err := reports.Contacts(ctx, st, cities)
		return contactsLoadedMsg{providers: providers, receivers: receivers, err: err}
	}
}

func (m Model) runReportCmd(r reports.Report) tea.Cmd {
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		tbl, err := reports.Run(ctx, st, r)
		return reportLoadedMsg{report: r, table: tbl, err: err}
	}
}

func (m Model) runQueryCmd() tea.Cmd {
	st := m.st
	sqlText := m.queryInput.Value()
	return func() tea.Msg {
		if strings.TrimSpace(sqlText) == "" {
			return noteMsg("enter a SQL statement first")
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		start := time.Now()
		tbl, err := st.RunSQL(ctx, sqlText)
		return queryResultMsg{table: tbl, elapsed: time.Since(start), err: err}
	}
}

func exportTableCmd(dir, name string, tbl *store.Table) tea.Cmd {
	return func() tea.Msg {
		path, err := store.ExportCSV(dir, name, tbl)
		if err != nil {
			return opResultMsg{err: err}
		}
		return noteMsg("wrote " + path)
	}
}

func exportContactsCmd(dir string, providers, receivers *store.Table) tea.Cmd {
	return func() tea.Msg {
		p1, err := store.ExportCSV(dir, "contacts_providers.csv", providers)
		if err != nil {
			return opResultMsg{err: err}
		}
		p2, err := store.ExportCSV(dir, "contacts_receivers.csv", receivers)
		if err != nil {
			return opResultMsg{err: err}
		}
		return noteMsg("wrote " + p1 + " and " + p2)
	}
}

// waitForTickCmd blocks on the watcher channel and resolves when the
// database changes on disk.
func (m Model) waitForTickCmd() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch := m.watcher.Ticks()
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return watchTickMsg(t)
	}
}
