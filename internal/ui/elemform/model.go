// Package elemform is the create/edit form for priced line items. The
// quantity field accepts plain numbers and simple arithmetic, so "3*4"
// lands as 12.
package elemform

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

// SavedMsg is dispatched when the form is submitted. ClientID is empty
// for a new item.
type SavedMsg struct {
	ClientID string
	GroupID  int
	Symbol   string
	Name     string
	Unit     string
	Quantity float64
	Price    float64
	Kind     string
}

// CancelMsg is dispatched when the user abandons the form.
type CancelMsg struct{}

// formBindings holds field values on the heap so huh's Value() pointers
// stay valid across Bubble Tea model copies.
type formBindings struct {
	symbol   string
	name     string
	unit     string
	quantity string
	price    string
	groupID  int
}

// Model is the Bubble Tea model for the item form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editID   string
	kind     string
	editMode bool
	groups   []model.Group
	width    int
	height   int
}

// New creates an item form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for a new custom item in a group.
func (m *Model) StartCreate(groups []model.Group, groupID int) tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.kind = model.KindCustom
	m.groups = groups
	m.fb.symbol = ""
	m.fb.name = ""
	m.fb.unit = "szt"
	m.fb.quantity = "1"
	m.fb.price = "0"
	m.fb.groupID = groupID
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with an existing item's fields.
func (m *Model) StartEdit(groups []model.Group, el model.Element) tea.Cmd {
	m.editMode = true
	m.editID = el.ClientID
	m.kind = el.Kind
	m.groups = groups
	m.fb.symbol = el.Symbol
	m.fb.name = el.Name
	m.fb.unit = el.Unit
	m.fb.quantity = fmt.Sprintf("%g", el.Quantity)
	m.fb.price = fmt.Sprintf("%.2f", el.Price)
	m.fb.groupID = el.Group
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the item form.
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

// View renders the item form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Item"
	if m.editMode {
		titleText = "Edit Item"
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
	fields := []huh.Field{
		huh.NewInput().
			Title("Name").
			Placeholder("Item description").
			Value(&m.fb.name).
			Validate(validateRequired("Name")),
		huh.NewInput().
			Title("Symbol").
			Placeholder("Optional catalog symbol").
			Value(&m.fb.symbol),
		huh.NewInput().
			Title("Unit").
			Placeholder("szt").
			Value(&m.fb.unit),
		huh.NewInput().
			Title("Quantity").
			Placeholder("e.g. 12 or 3*4").
			Value(&m.fb.quantity).
			Validate(validateQuantity),
		huh.NewInput().
			Title("Unit price").
			Placeholder("0,00").
			Value(&m.fb.price),
		m.groupField(),
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) groupField() huh.Field {
	opts := make([]huh.Option[int], 0, len(m.groups))
	for _, g := range m.groups {
		opts = append(opts, huh.NewOption(g.Name, g.ID))
	}
	if len(opts) == 0 {
		opts = append(opts, huh.NewOption(model.UngroupedGroup().Name, model.UngroupedID))
	}
	return huh.NewSelect[int]().
		Title("Group").
		Options(opts...).
		Value(&m.fb.groupID)
}

func (m Model) handleSubmit() tea.Cmd {
	fb := m.fb
	editID := m.editID
	kind := m.kind

	quantity := numeric.QuantityFromInput(fb.quantity)
	price := numeric.Round2(numeric.ParseDecimal(fb.price))
	unit := strings.TrimSpace(fb.unit)
	if unit == "" {
		unit = "szt"
	}

	return func() tea.Msg {
		return SavedMsg{
			ClientID: editID,
			GroupID:  fb.groupID,
			Symbol:   strings.TrimSpace(fb.symbol),
			Name:     strings.TrimSpace(fb.name),
			Unit:     unit,
			Quantity: quantity,
			Price:    price,
			Kind:     kind,
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

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateQuantity(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, ok := numeric.EvalExpression(s); !ok {
		if numeric.ParseDecimal(s) == 0 && s != "0" {
			return fmt.Errorf("not a number or expression")
		}
	}
	return nil
}
