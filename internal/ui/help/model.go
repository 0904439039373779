// Package help renders the keyboard reference for the estimate editor,
// grouped the way the work flows: navigating the table, editing line
// items and taxes, managing subgroups, and project-level actions.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kosztorapp/kosztor/internal/keys"
	"github.com/kosztorapp/kosztor/internal/theme"
)

type section struct {
	title    string
	bindings []key.Binding
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a help view model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) sections() []section {
	k := m.keys
	return []section{
		{"Navigation", []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Quit}},
		{"Line items", []key.Binding{k.Add, k.Edit, k.Delete, k.Move, k.AddTax}},
		{"Subgroups", []key.Binding{k.AddGroup, k.RenameGroup, k.ColorGroup, k.DeleteGroup}},
		{"Project", []key.Binding{k.Catalog, k.Reprice, k.Wspreg, k.Export, k.Refresh, k.Help}},
	}
}

// View renders the grouped keyboard reference.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue)
	keyStyle := lipgloss.NewStyle().
		Foreground(theme.ColorYellow).
		Width(10)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Estimate Editor Keys"))
	b.WriteString("\n")

	for _, s := range m.sections() {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			h := bind.Help()
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(h.Desc)
			b.WriteString("\n")
		}
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(b.String())
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
