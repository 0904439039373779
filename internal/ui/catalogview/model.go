// Package catalogview is the price-catalog search screen: a query input
// over the BCJ and WKI sources with ranked results. Picking a row sends
// it back to the parent so it lands in the estimate.
package catalogview

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kosztorapp/kosztor/internal/catalog"
	"github.com/kosztorapp/kosztor/internal/keys"
	"github.com/kosztorapp/kosztor/internal/theme"
)

// PickedMsg is dispatched when the user selects a catalog row.
type PickedMsg struct {
	Row catalog.Row
}

// CloseMsg signals the parent to leave the catalog screen.
type CloseMsg struct{}

// resultsMsg carries one search's outcome.
type resultsMsg struct {
	rows []catalog.Row
	err  error
}

// Model is the catalog search view.
type Model struct {
	searcher *catalog.Searcher
	keys     *keys.KeyMap

	source catalog.Source
	dbKey  string

	input     textinput.Model
	spin      spinner.Model
	searching bool
	rows      []catalog.Row
	selected  int
	err       error
	width     int
	height    int
}

// New creates a catalog view bound to a searcher and catalog snapshot.
func New(s *catalog.Searcher, k *keys.KeyMap, dbKey string, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = `query, e.g. beton "B20" -zbrojony`
	ti.Prompt = "/ "
	ti.Width = width - 4

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		searcher: s,
		keys:     k,
		source:   catalog.SourceBCJ,
		dbKey:    dbKey,
		input:    ti,
		spin:     sp,
		width:    width,
		height:   height,
	}
}

// SetDBKey switches the catalog snapshot searched against.
func (m *Model) SetDBKey(dbKey string) {
	m.dbKey = dbKey
}

// Init focuses the query input.
func (m Model) Init() tea.Cmd {
	return m.input.Focus()
}

// Update handles messages for the catalog view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultsMsg:
		m.searching = false
		m.err = msg.err
		m.rows = msg.rows
		m.selected = 0
		return m, nil

	case spinner.TickMsg:
		if !m.searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.input.Focused() {
		switch msg.String() {
		case "enter":
			m.input.Blur()
			return m.startSearch()
		case "esc":
			m.input.Blur()
			return m, func() tea.Msg { return CloseMsg{} }
		case "tab":
			m.toggleSource()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.rows) > 0 {
			m.selected = (m.selected + 1) % len(m.rows)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.rows) > 0 {
			m.selected--
			if m.selected < 0 {
				m.selected = len(m.rows) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.selected < len(m.rows) {
			row := m.rows[m.selected]
			return m, func() tea.Msg { return PickedMsg{Row: row} }
		}
		return m, nil

	case key.Matches(msg, m.keys.Catalog):
		return m, m.input.Focus()

	case msg.String() == "tab":
		m.toggleSource()
		return m.startSearch()
	}

	return m, nil
}

func (m *Model) toggleSource() {
	if m.source == catalog.SourceBCJ {
		m.source = catalog.SourceWKI
	} else {
		m.source = catalog.SourceBCJ
	}
}

// startSearch kicks off a remote query for the current input.
func (m Model) startSearch() (Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if query == "" || m.searcher == nil {
		return m, nil
	}

	m.searching = true
	m.err = nil

	searcher := m.searcher
	source := m.source
	params := catalog.SearchParams{DBKey: m.dbKey, Query: query}

	search := func() tea.Msg {
		rows, err := searcher.Search(context.Background(), source, params)
		return resultsMsg{rows: rows, err: err}
	}

	return m, tea.Batch(m.spin.Tick, search)
}

// View renders the catalog search screen.
func (m Model) View() string {
	var b strings.Builder

	sourceLabel := strings.ToUpper(string(m.source))
	header := fmt.Sprintf("Catalog search [%s]  (tab switches source)", sourceLabel)
	b.WriteString(theme.HeaderStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.searching:
		b.WriteString(m.spin.View())
		b.WriteString(" searching…")

	case m.err != nil:
		b.WriteString(theme.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))

	case len(m.rows) == 0:
		b.WriteString(theme.HelpStyle.Render(
			"No results. Quotes match phrases, * and ? are wildcards, -word excludes.",
		))

	default:
		visible := m.height - 6
		if visible < 1 {
			visible = 1
		}
		start := 0
		if m.selected >= visible {
			start = m.selected - visible + 1
		}
		end := start + visible
		if end > len(m.rows) {
			end = len(m.rows)
		}
		for i := start; i < end; i++ {
			r := m.rows[i]
			desc := r.Description
			if len([]rune(desc)) > 60 {
				desc = string([]rune(desc)[:59]) + "…"
			}
			label := fmt.Sprintf("%-14s %-60s %6s %10.2f", r.Symbol, desc, r.Unit, r.Price)
			if i == m.selected {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 4
}
