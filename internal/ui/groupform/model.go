// Package groupform edits a group's name and color.
package groupform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/kosztorapp/kosztor/internal/model"
	"github.com/kosztorapp/kosztor/internal/theme"
)

// SavedMsg is dispatched when the form is submitted.
type SavedMsg struct {
	GroupID int
	Name    string
	Color   string
}

// CancelMsg is dispatched when the user abandons the form.
type CancelMsg struct{}

type formBindings struct {
	name  string
	color string
}

// Model is the Bubble Tea model for the group form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	groupID int
	width   int
	height  int
}

// New creates a group form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the form with a group's current fields.
func (m *Model) Start(g model.Group) tea.Cmd {
	m.groupID = g.ID
	m.fb.name = g.Name
	m.fb.color = g.Color
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the group form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		fb := m.fb
		groupID := m.groupID
		return m, func() tea.Msg {
			return SavedMsg{
				GroupID: groupID,
				Name:    strings.TrimSpace(fb.name),
				Color:   strings.TrimSpace(fb.color),
			}
		}
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the group form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Edit Group") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Podgrupa").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Color").
				Placeholder("#e5e7eb").
				Value(&m.fb.color),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}
