package app

import (
	"fmt"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/kosztorapp/kosztor/internal/api"
)

// pickKind says what the single-select pick form is choosing.
type pickKind int

const (
	pickReprice pickKind = iota
	pickWspreg
	pickExport
)

// wspregReset is the sentinel option that clears the regional factor.
const wspregReset = "__reset__"

// pickBindings holds the select value on the heap for huh.
type pickBindings struct {
	choice  string
	wspregs map[string]float64
}

// startPick opens a single-select form for repricing or exporting.
func (m Model) startPick(kind pickKind) (tea.Model, tea.Cmd, bool) {
	var title string
	var opts []huh.Option[string]

	switch kind {
	case pickReprice:
		if len(m.quarters) == 0 {
			m.errMsg = "No catalog snapshots available"
			return m, nil, true
		}
		title = "Reprice against catalog"
		for _, q := range m.quarters {
			opts = append(opts, huh.NewOption(q.Name, q.DBKey))
		}

	case pickExport:
		title = "Export format"
		opts = []huh.Option[string]{
			huh.NewOption("PDF", string(api.ExportPDF)),
			huh.NewOption("Excel", string(api.ExportExcel)),
			huh.NewOption("CSV", string(api.ExportCSV)),
		}

	default:
		return m, nil, true
	}

	m.pickKind = kind
	m.pickFB.choice = ""
	m.pick = m.buildPickForm(title, opts)
	m.previousView = m.currentView
	m.currentView = ViewPick
	return m, m.pick.Init(), true
}

// handleWspregList builds the regional-factor pick form once the
// available multipliers arrive.
func (m Model) handleWspregList(msg wspregListMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errMsg = fmt.Sprintf("regional factors: %v", msg.err)
		return m, nil
	}

	names := make([]string, 0, len(msg.values))
	for name := range msg.values {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := []huh.Option[string]{
		huh.NewOption("Brak (no factor)", wspregReset),
	}
	for _, name := range names {
		label := fmt.Sprintf("%s (×%.2f)", name, msg.values[name])
		opts = append(opts, huh.NewOption(label, name))
	}

	m.pickKind = pickWspreg
	m.pickFB.choice = ""
	m.pickFB.wspregs = msg.values
	m.pick = m.buildPickForm("Regional factor", opts)
	m.previousView = m.currentView
	m.currentView = ViewPick
	return m, m.pick.Init()
}

func (m Model) buildPickForm(title string, opts []huh.Option[string]) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(opts...).
				Value(&m.pickFB.choice),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// updatePick drives the active pick form and dispatches the selection.
func (m Model) updatePick(msg tea.Msg) (Model, tea.Cmd) {
	if m.pick == nil {
		return m, nil
	}

	mdl, cmd := m.pick.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.pick = f
	}

	if m.pick.State == huh.StateAborted {
		m.currentView = ViewEstimate
		return m, nil
	}
	if m.pick.State != huh.StateCompleted {
		return m, cmd
	}

	choice := m.pickFB.choice
	m.currentView = ViewEstimate

	switch m.pickKind {
	case pickReprice:
		return m, m.startReprice(choice)

	case pickExport:
		m.errMsg = "Exporting…"
		return m, m.exportProject(api.ExportFormat(choice))

	case pickWspreg:
		if choice == wspregReset {
			m.wspregName = "Brak"
			m.wspregValue = 1
		} else {
			m.wspregName = choice
			m.wspregValue = m.pickFB.wspregs[choice]
			if m.wspregValue <= 0 {
				m.wspregValue = 1
			}
		}
		if m.led != nil {
			m.estimateView.SetContent(m.led.Content(), m.totalOpts())
		}
		return m, m.saveWspreg(m.wspregName, m.wspregValue)
	}

	return m, nil
}

func (m Model) viewPick() string {
	if m.pick == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(m.pick.View())
}

func (m Model) formWidth() int {
	w := m.layout.ContentWidth() - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.layout.ContentHeight() - 4
	if h < 10 {
		h = 10
	}
	return h
}
