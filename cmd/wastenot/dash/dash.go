// Package dash implements the interactive terminal dashboard.
package dash

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"wastenot/cmd/wastenot/ui"
	"wastenot/internal/config"
	"wastenot/internal/reports"
	"wastenot/internal/store"
	"wastenot/internal/watch"
)

type tabID int

const (
	tabOverview tabID = iota
	tabListings
	tabClaims
	tabContacts
	tabReports
	tabManage
	tabQuery
	tabCount
)

var tabNames = [tabCount]string{
	"Overview", "Listings", "Claims", "Contacts", "Reports", "Manage", "Query",
}

// Picker group labels double as filter identities, so the same constant
// has to be used when building a picker and when reading it back.
const (
	groupCity     = "City"
	groupProvider = "Provider Type"
	groupFood     = "Food Type"
	groupMeal     = "Meal Type"
	groupStatus   = "Status"
)

// Model is the bubbletea model for the whole dashboard.
type Model struct {
	st      *store.Store
	cfg     *config.Config
	logger  *zap.Logger
	watcher *watch.Watcher

	styles ui.Styles
	keys   keyMap

	allReports []reports.Report

	tab    tabID
	width  int
	height int

	loading bool
	spin    spinner.Model
	status  string
	err     error

	counts      store.Counts
	statusChart []reports.LabelCount
	cityChart   []reports.LabelCount
	problems    []store.Finding

	vocab reports.Vocabularies

	listingFilter reports.ListingFilter
	listings      *store.Table

	claimStatuses []string
	claims        *store.Table

	contactCities []string
	provContacts  *store.Table
	recvContacts  *store.Table

	reportIdx int
	reportTbl *store.Table
	reportRan reports.Report

	form      *manageForm
	textInput textinput.Model

	queryInput   textarea.Model
	queryTbl     *store.Table
	queryElapsed time.Duration

	pick *picker
}

// New builds the dashboard model. The watcher may be nil when file
// watching is disabled or the database lives in memory.
func New(st *store.Store, cfg *config.Config, logger *zap.Logger, watcher *watch.Watcher) Model {
	styles := ui.NewStyles(ui.ThemeFromName(cfg.UI.Theme))

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.PromptStyle = styles.Info

	ta := textarea.New()
	ta.Placeholder = "SELECT City, COUNT(*) FROM providers GROUP BY City"
	ta.Prompt = "| "
	ta.SetHeight(6)
	ta.CharLimit = 0
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return Model{
		st:         st,
		cfg:        cfg,
		logger:     logger,
		watcher:    watcher,
		styles:     styles,
		keys:       newKeyMap(),
		allReports: reports.All(),
		loading:    true,
		spin:       sp,
		textInput:  ti,
		queryInput: ta,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadOverviewCmd(),
		m.loadVocabCmd(),
		m.spin.Tick,
		m.waitForTickCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.queryInput.SetWidth(max(40, m.width-8))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case overviewLoadedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.loading = false
		m.counts = msg.counts
		m.statusChart = msg.statuses
		m.cityChart = msg.cities
		m.problems = store.Problems(msg.problems)
		return m, nil

	case vocabLoadedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.vocab = msg.vocab
		return m, nil

	case listingsLoadedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.loading = false
		m.listings = msg.table
		return m, nil

	case claimsLoadedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.loading = false
		m.claims = msg.table
		return m, nil

	case contactsLoadedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.loading = false
		m.provContacts = msg.providers
		m.recvContacts = msg.receivers
		return m, nil

	case reportLoadedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.loading = false
		m.reportRan = msg.report
		m.reportTbl = msg.table
		return m, nil

	case queryResultMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.loading = false
		m.queryTbl = msg.table
		m.queryElapsed = msg.elapsed
		m.status = ""
		m.err = nil
		return m, nil

	case opResultMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.status = msg.status
		m.err = nil
		cmd := m.refreshCmd()
		return m, cmd

	case noteMsg:
		m.loading = false
		m.status = string(msg)
		m.err = nil
		return m, nil

	case watchTickMsg:
		m.status = "database changed on disk, view refreshed"
		m.err = nil
		cmd := m.refreshCmd()
		return m, tea.Batch(cmd, m.waitForTickCmd())
	}

	// Keep the focused input's cursor blinking.
	var cmd tea.Cmd
	switch {
	case m.form != nil:
		m.textInput, cmd = m.textInput.Update(msg)
	case m.pick == nil && m.tab == tabQuery:
		m.queryInput, cmd = m.queryInput.Update(msg)
	}
	return m, cmd
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.loading = false
	m.err = err
	m.status = err.Error()
	m.logger.Warn("dashboard operation failed", zap.Error(err))
	return m, nil
}

// refreshCmd reloads the active tab plus the filter vocabularies and
// flips the spinner on when there is anything to wait for.
func (m *Model) refreshCmd() tea.Cmd {
	cmds := []tea.Cmd{m.loadVocabCmd()}
	if cmd := m.reloadTabCmd(); cmd != nil {
		m.loading = true
		cmds = append(cmds, cmd, m.spin.Tick)
	}
	return tea.Batch(cmds...)
}

func (m Model) reloadTabCmd() tea.Cmd {
	switch m.tab {
	case tabOverview:
		return m.loadOverviewCmd()
	case tabListings:
		return m.loadListingsCmd()
	case tabClaims:
		return m.loadClaimsCmd()
	case tabContacts:
		return m.loadContactsCmd()
	case tabReports:
		if m.reportTbl == nil {
			return nil
		}
		return m.runReportCmd(m.reportRan)
	}
	return nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}
	if m.pick != nil {
		return m.updatePicker(msg)
	}
	if m.form != nil {
		return m.updateForm(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.tab + 1) % tabCount)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab((m.tab + tabCount - 1) % tabCount)
	}

	// The query tab owns the keyboard so SQL can be typed freely.
	if m.tab == tabQuery {
		return m.updateQuery(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		m.status = ""
		m.err = nil
		cmd := m.refreshCmd()
		return m, cmd

	case key.Matches(msg, m.keys.Filter):
		return m.openPicker()

	case key.Matches(msg, m.keys.ClearFilter):
		return m.clearFilters()

	case key.Matches(msg, m.keys.Export):
		cmd := m.exportCurrentCmd()
		if cmd == nil {
			m.status = "nothing to export on this tab"
			return m, nil
		}
		return m, cmd

	case key.Matches(msg, m.keys.Up):
		if m.tab == tabReports && m.reportIdx > 0 {
			m.reportIdx--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.tab == tabReports && m.reportIdx < len(m.allReports)-1 {
			m.reportIdx++
		}
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		if m.tab == tabReports && len(m.allReports) > 0 {
			m.loading = true
			m.status = ""
			m.err = nil
			return m, tea.Batch(m.runReportCmd(m.allReports[m.reportIdx]), m.spin.Tick)
		}
		return m, nil

	case key.Matches(msg, m.keys.NewListing):
		if m.tab == tabManage {
			cmd := m.startForm(newAddListingForm())
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.UpdateClaim):
		if m.tab == tabManage {
			cmd := m.startForm(newUpdateClaimForm())
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.DeleteListing):
		if m.tab == tabManage {
			cmd := m.startForm(newDeleteListingForm())
			return m, cmd
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if r := msg.Runes[0]; r >= '1' && r <= '7' {
			return m.switchTab(tabID(r - '1'))
		}
	}
	return m, nil
}

func (m Model) switchTab(tab tabID) (tea.Model, tea.Cmd) {
	if tab == m.tab {
		return m, nil
	}
	m.tab = tab
	m.status = ""
	m.err = nil

	var focus tea.Cmd
	if tab == tabQuery {
		m.queryInput.Focus()
		focus = textarea.Blink
	} else {
		m.queryInput.Blur()
	}

	cmd := m.refreshCmd()
	return m, tea.Batch(cmd, focus)
}

func (m Model) updateQuery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.RunQuery):
		m.loading = true
		m.status = ""
		m.err = nil
		return m, tea.Batch(m.runQueryCmd(), m.spin.Tick)

	case key.Matches(msg, m.keys.ExportQuery):
		if m.queryTbl == nil {
			m.status = "run a query first"
			return m, nil
		}
		return m, exportTableCmd(m.cfg.Export.Dir, "query_results.csv", m.queryTbl)
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	return m, cmd
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	var p *picker
	switch m.tab {
	case tabListings:
		p = newPicker("Filter listings",
			pickerGroup{label: groupCity, values: m.vocab.Cities},
			pickerGroup{label: groupProvider, values: m.vocab.ProviderTypes},
			pickerGroup{label: groupFood, values: m.vocab.FoodTypes},
			pickerGroup{label: groupMeal, values: m.vocab.MealTypes},
		)
		p.preselect(groupCity, m.listingFilter.Cities)
		p.preselect(groupProvider, m.listingFilter.ProviderTypes)
		p.preselect(groupFood, m.listingFilter.FoodTypes)
		p.preselect(groupMeal, m.listingFilter.MealTypes)
	case tabClaims:
		p = newPicker("Filter claims",
			pickerGroup{label: groupStatus, values: m.vocab.Statuses},
		)
		p.preselect(groupStatus, m.claimStatuses)
	case tabContacts:
		p = newPicker("Filter contacts",
			pickerGroup{label: groupCity, values: m.vocab.Cities},
		)
		p.preselect(groupCity, m.contactCities)
	default:
		m.status = "filters apply to the Listings, Claims and Contacts tabs"
		return m, nil
	}

	if p.size() == 0 {
		m.status = "no filter values yet, seed the database first"
		return m, nil
	}
	m.pick = p
	m.status = ""
	m.err = nil
	return m, nil
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m.applyPicker()
	case key.Matches(msg, m.keys.Up):
		m.pick.moveUp()
	case key.Matches(msg, m.keys.Down):
		m.pick.moveDown()
	case key.Matches(msg, m.keys.Toggle):
		m.pick.toggle()
	case key.Matches(msg, m.keys.ClearFilter):
		m.pick.clear()
	}
	return m, nil
}

func (m Model) applyPicker() (tea.Model, tea.Cmd) {
	p := m.pick
	m.pick = nil
	switch m.tab {
	case tabListings:
		m.listingFilter = reports.ListingFilter{
			Cities:        p.chosen(groupCity),
			ProviderTypes: p.chosen(groupProvider),
			FoodTypes:     p.chosen(groupFood),
			MealTypes:     p.chosen(groupMeal),
		}
	case tabClaims:
		m.claimStatuses = p.chosen(groupStatus)
	case tabContacts:
		m.contactCities = p.chosen(groupCity)
	}
	cmd := m.refreshCmd()
	return m, cmd
}

func (m Model) clearFilters() (tea.Model, tea.Cmd) {
	switch m.tab {
	case tabListings:
		m.listingFilter = reports.ListingFilter{}
	case tabClaims:
		m.claimStatuses = nil
	case tabContacts:
		m.contactCities = nil
	default:
		return m, nil
	}
	m.status = ""
	m.err = nil
	cmd := m.refreshCmd()
	return m, cmd
}

func (m Model) exportCurrentCmd() tea.Cmd {
	dir := m.cfg.Export.Dir
	switch m.tab {
	case tabListings:
		if m.listings == nil {
			return nil
		}
		return exportTableCmd(dir, "listings.csv", m.listings)
	case tabClaims:
		if m.claims == nil {
			return nil
		}
		return exportTableCmd(dir, "claims.csv", m.claims)
	case tabContacts:
		if m.provContacts == nil || m.recvContacts == nil {
			return nil
		}
		return exportContactsCmd(dir, m.provContacts, m.recvContacts)
	case tabReports:
		if m.reportTbl == nil {
			return nil
		}
		return exportTableCmd(dir, "report-"+m.reportRan.Slug+".csv", m.reportTbl)
	}
	return nil
}

// Run opens the dashboard over the given store and blocks until the
// user quits.
func Run(st *store.Store, cfg *config.Config, logger *zap.Logger) error {
	var w *watch.Watcher
	if cfg.UI.Watch && !st.InMemory() {
		var err error
		w, err = watch.New(st.Path(), watch.WithLogger(logger))
		if err != nil {
			logger.Warn("file watching unavailable", zap.Error(err))
			w = nil
		} else if err := w.Start(context.Background()); err != nil {
			logger.Warn("file watching unavailable", zap.Error(err))
			w.Stop()
			w = nil
		}
	}
	if w != nil {
		defer w.Stop()
	}

	p := tea.NewProgram(New(st, cfg, logger, w), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}
