package dash

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"wastenot/internal/store"
)

type formKind int

const (
	formAddListing formKind = iota
	formUpdateClaim
	formDeleteListing
)

type formStep struct {
	label       string
	placeholder string
	initial     string
}

// manageForm walks the user through one write operation, one field per
// step, in the style of a wizard.
type manageForm struct {
	kind   formKind
	title  string
	steps  []formStep
	step   int
	values []string
}

func newAddListingForm() *manageForm {
	return &manageForm{
		kind:  formAddListing,
		title: "Add listing",
		steps: []formStep{
			{label: "food name", placeholder: "e.g. Vegetable Biryani"},
			{label: "quantity", placeholder: "whole number of portions"},
			{label: "expiry date", placeholder: "e.g. 2026-09-15, blank for none"},
			{label: "provider id", placeholder: "numeric Provider_ID"},
			{label: "provider type", placeholder: "blank looks the provider up"},
			{label: "city", placeholder: "blank uses the provider city"},
			{label: "food type", placeholder: "Vegetarian, Non-Vegetarian or Vegan"},
			{label: "meal type", placeholder: "Breakfast, Lunch, Dinner or Snacks"},
		},
	}
}

func newUpdateClaimForm() *manageForm {
	return &manageForm{
		kind:  formUpdateClaim,
		title: "Update claim",
		steps: []formStep{
			{label: "claim id", placeholder: "numeric Claim_ID"},
			{label: "new status", placeholder: "Pending, Completed or Cancelled"},
		},
	}
}

func newDeleteListingForm() *manageForm {
	return &manageForm{
		kind:  formDeleteListing,
		title: "Delete listing",
		steps: []formStep{
			{label: "listing id", placeholder: "numeric Food_ID"},
			{label: "confirm", placeholder: `type "delete" to confirm`},
		},
	}
}

// advance records the value for the current step and reports whether
// more steps remain.
func (f *manageForm) advance(value string) bool {
	f.values = append(f.values, strings.TrimSpace(value))
	f.step++
	return f.step < len(f.steps)
}

func (f *manageForm) current() formStep {
	return f.steps[f.step]
}

func (f *manageForm) prompt() string {
	return f.title + " - " + f.current().label
}

// restart rewinds to the first step, keeping everything already typed
// as the initial value of each step.
func (f *manageForm) restart() {
	for i, v := range f.values {
		f.steps[i].initial = v
	}
	f.step = 0
	f.values = f.values[:0]
}

func (m *Model) startForm(f *manageForm) tea.Cmd {
	m.form = f
	m.status = ""
	m.err = nil
	m.prepFormStep()
	return textinput.Blink
}

func (m *Model) prepFormStep() {
	step := m.form.current()
	m.textInput.Placeholder = step.placeholder
	m.textInput.SetValue(step.initial)
	m.textInput.CursorEnd()
	m.textInput.Focus()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.form = nil
		m.textInput.Blur()
		m.textInput.SetValue("")
		m.status = ""
		m.err = nil
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		if m.form.advance(m.textInput.Value()) {
			m.prepFormStep()
			return m, nil
		}
		cmd, err := m.submitFormCmd()
		if err != nil {
			m.form.restart()
			m.prepFormStep()
			m.err = err
			m.status = err.Error()
			return m, nil
		}
		m.form = nil
		m.textInput.Blur()
		m.textInput.SetValue("")
		m.loading = true
		m.status = ""
		m.err = nil
		return m, tea.Batch(cmd, m.spin.Tick)
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// submitFormCmd validates the collected values and returns the command
// that performs the write. Validation failures come back as an error so
// the form can be corrected instead of discarded.
func (m *Model) submitFormCmd() (tea.Cmd, error) {
	st := m.st
	vals := m.form.values
	switch m.form.kind {
	case formAddListing:
		if vals[0] == "" {
			return nil, errors.New("food name is required")
		}
		qty, err := strconv.ParseInt(vals[1], 10, 64)
		if err != nil || qty < 0 {
			return nil, errors.New("quantity must be a whole number")
		}
		expiry, err := store.ParseExpiry(vals[2])
		if err != nil {
			return nil, err
		}
		pid, err := strconv.ParseInt(vals[3], 10, 64)
		if err != nil {
			return nil, errors.New("provider id must be a number")
		}
		l := store.Listing{
			FoodName:     vals[0],
			Quantity:     qty,
			ExpiryDate:   expiry,
			ProviderID:   pid,
			ProviderType: vals[4],
			Location:     vals[5],
			FoodType:     vals[6],
			MealType:     vals[7],
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()

			if l.ProviderType == "" || l.Location == "" {
				ptype, city, err := st.ProviderInfo(ctx, l.ProviderID)
				if err != nil {
					return opResultMsg{err: err}
				}
				if l.ProviderType == "" {
					l.ProviderType = ptype
				}
				if l.Location == "" {
					l.Location = city
				}
			}
			id, err := st.InsertListing(ctx, l)
			if err != nil {
				return opResultMsg{err: err}
			}
			return opResultMsg{status: fmt.Sprintf("listing %d added", id)}
		}, nil

	case formUpdateClaim:
		id, err := strconv.ParseInt(vals[0], 10, 64)
		if err != nil {
			return nil, errors.New("claim id must be a number")
		}
		var status string
		for _, s := range store.Statuses() {
			if strings.EqualFold(vals[1], s) {
				status = s
				break
			}
		}
		if status == "" {
			return nil, fmt.Errorf("status must be one of %s", strings.Join(store.Statuses(), ", "))
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()

			if err := st.UpdateClaimStatus(ctx, id, status); err != nil {
				return opResultMsg{err: err}
			}
			return opResultMsg{status: fmt.Sprintf("claim %d set to %s", id, status)}
		}, nil

	case formDeleteListing:
		id, err := strconv.ParseInt(vals[0], 10, 64)
		if err != nil {
			return nil, errors.New("listing id must be a number")
		}
		if !strings.EqualFold(vals[1], "delete") {
			return nil, errors.New(`type "delete" to confirm`)
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()

			if err := st.DeleteListing(ctx, id); err != nil {
				return opResultMsg{err: err}
			}
			return opResultMsg{status: fmt.Sprintf("listing %d deleted", id)}
		}, nil
	}
	return nil, errors.New("unknown form")
}
