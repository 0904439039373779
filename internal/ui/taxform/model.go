// Package taxform is the create/edit form for percentage tax rows. A
// tax either spans the whole project or one group; group-scoped taxes
// must name their target.
package taxform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/kosztorapp/kosztor/internal/model"
	"github.com/kosztorapp/kosztor/internal/numeric"
	"github.com/kosztorapp/kosztor/internal/theme"
)

// projectScope is the sentinel select value for a project-wide tax.
const projectScope = -1

// SavedMsg is dispatched when the tax form is submitted. ClientID is
// empty for a new tax; Target is nil for a project-wide one.
type SavedMsg struct {
	ClientID   string
	Name       string
	Percentage float64
	Target     *int
}

// CancelMsg is dispatched when the user abandons the form.
type CancelMsg struct{}

type formBindings struct {
	name       string
	percentage string
	scope      int
}

// Model is the Bubble Tea model for the tax form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editID   string
	editMode bool
	groups   []model.Group
	width    int
	height   int
}

// New creates a tax form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{scope: projectScope},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for a new tax.
func (m *Model) StartCreate(groups []model.Group) tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.groups = groups
	m.fb.name = "VAT"
	m.fb.percentage = "23"
	m.fb.scope = projectScope
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with an existing tax's fields.
func (m *Model) StartEdit(groups []model.Group, el model.Element) tea.Cmd {
	m.editMode = true
	m.editID = el.ClientID
	m.groups = groups
	m.fb.name = el.Name
	m.fb.percentage = fmt.Sprintf("%g", el.TaxPercentage)
	if el.TaxTarget != nil {
		m.fb.scope = *el.TaxTarget
	} else {
		m.fb.scope = projectScope
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the tax form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the tax form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Tax"
	if m.editMode {
		titleText = "Edit Tax"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

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
	scopeOpts := []huh.Option[int]{
		huh.NewOption("Whole project", projectScope),
	}
	for _, g := range m.groups {
		scopeOpts = append(scopeOpts, huh.NewOption(g.Name, g.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("VAT").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Percentage").
				Placeholder("23").
				Value(&m.fb.percentage).
				Validate(func(s string) error {
					if numeric.ParseDecimal(s) <= 0 {
						return fmt.Errorf("percentage must be greater than zero")
					}
					return nil
				}),
			huh.NewSelect[int]().
				Title("Applies to").
				Options(scopeOpts...).
				Value(&m.fb.scope),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	fb := m.fb
	editID := m.editID

	var target *int
	if fb.scope != projectScope {
		scope := fb.scope
		target = &scope
	}

	return func() tea.Msg {
		return SavedMsg{
			ClientID:   editID,
			Name:       strings.TrimSpace(fb.name),
			Percentage: numeric.ParseDecimal(fb.percentage),
			Target:     target,
		}
	}
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
