// Package estimate renders the grouped line-item table and drives
// keyboard-based relocation of items between groups. All mutation is
// delegated to the parent through messages; the view never edits
// content itself.
package estimate

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kosztorapp/kosztor/internal/keys"
	"github.com/kosztorapp/kosztor/internal/ledger"
	"github.com/kosztorapp/kosztor/internal/model"
	"github.com/kosztorapp/kosztor/internal/theme"
)

// AddElementMsg asks the parent to open the item form targeting a group.
type AddElementMsg struct {
	GroupID int
}

// AddTaxMsg asks the parent to open the tax form.
type AddTaxMsg struct{}

// EditElementMsg asks the parent to open the item form for an element.
type EditElementMsg struct {
	ClientID string
}

// DeleteElementMsg asks the parent to remove an element.
type DeleteElementMsg struct {
	ClientID string
}

// MoveElementMsg carries a committed relocation.
type MoveElementMsg struct {
	ClientID string
	Target   ledger.DropTarget
}

// AddGroupMsg asks the parent to create a new group.
type AddGroupMsg struct{}

// RenameGroupMsg asks the parent to open the rename form for a group.
type RenameGroupMsg struct {
	GroupID int
}

// ColorGroupMsg asks the parent to open the color form for a group.
type ColorGroupMsg struct {
	GroupID int
}

// DeleteGroupMsg asks the parent to dissolve a group.
type DeleteGroupMsg struct {
	GroupID int
}

// Model is the estimate table view.
type Model struct {
	keys    *keys.KeyMap
	content model.Content
	opts    ledger.TotalOptions
	rows    []row

	cursor  int
	offset  int
	moving  bool
	moveID  string
	width   int
	height  int
}

// New creates an estimate view.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetContent replaces the displayed content and rebuilds the table.
// The cursor stays on the same line where possible.
func (m *Model) SetContent(content model.Content, opts ledger.TotalOptions) {
	m.content = content
	m.opts = opts
	m.rows = buildRows(content, opts)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.snapToSelectable(1)
	if m.moving && m.findElement(m.moveID) == nil {
		m.moving = false
		m.moveID = ""
	}
}

// Moving reports whether the view is in move mode.
func (m Model) Moving() bool {
	return m.moving
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the estimate view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.moving {
		return m.handleMoveKeys(keyMsg)
	}
	return m.handleNormalKeys(keyMsg)
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Add):
		groupID := m.cursorGroupID()
		return m, func() tea.Msg { return AddElementMsg{GroupID: groupID} }

	case key.Matches(msg, m.keys.AddTax):
		return m, func() tea.Msg { return AddTaxMsg{} }

	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Select):
		if el := m.cursorElement(); el != nil {
			id := el.ClientID
			return m, func() tea.Msg { return EditElementMsg{ClientID: id} }
		}
		if g, ok := m.cursorGroup(); ok {
			id := g.ID
			return m, func() tea.Msg { return RenameGroupMsg{GroupID: id} }
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if el := m.cursorElement(); el != nil {
			id := el.ClientID
			return m, func() tea.Msg { return DeleteElementMsg{ClientID: id} }
		}
		return m, nil

	case key.Matches(msg, m.keys.Move):
		el := m.cursorElement()
		if el == nil || el.IsTax {
			// Taxes keep their configured placement; only priced items move.
			return m, nil
		}
		m.moving = true
		m.moveID = el.ClientID
		return m, nil

	case key.Matches(msg, m.keys.AddGroup):
		return m, func() tea.Msg { return AddGroupMsg{} }

	case key.Matches(msg, m.keys.RenameGroup):
		if g, ok := m.cursorGroup(); ok {
			id := g.ID
			return m, func() tea.Msg { return RenameGroupMsg{GroupID: id} }
		}
		return m, nil

	case key.Matches(msg, m.keys.ColorGroup):
		if g, ok := m.cursorGroup(); ok {
			id := g.ID
			return m, func() tea.Msg { return ColorGroupMsg{GroupID: id} }
		}
		return m, nil

	case key.Matches(msg, m.keys.DeleteGroup):
		if g, ok := m.cursorGroup(); ok && g.ID != model.UngroupedID {
			id := g.ID
			return m, func() tea.Msg { return DeleteGroupMsg{GroupID: id} }
		}
		return m, nil
	}

	return m, nil
}

// handleMoveKeys drives move mode: the cursor picks the drop target,
// enter commits, esc abandons.
func (m Model) handleMoveKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Select):
		target := m.cursorTarget()
		id := m.moveID
		m.moving = false
		m.moveID = ""
		return m, func() tea.Msg {
			return MoveElementMsg{ClientID: id, Target: target}
		}

	case key.Matches(msg, m.keys.Back):
		m.moving = false
		m.moveID = ""
		return m, nil
	}

	return m, nil
}

// cursorTarget translates the row under the cursor into a drop target.
func (m Model) cursorTarget() ledger.DropTarget {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return ledger.NoTarget()
	}
	r := m.rows[m.cursor]
	switch r.kind {
	case rowGroupHeader:
		return ledger.GroupTarget(r.group.ID)
	case rowElement:
		// Tax rows sit outside the sortable sequence: they can neither
		// be moved nor serve as a position to move to.
		if r.element.IsTax || r.element.ClientID == m.moveID {
			return ledger.NoTarget()
		}
		return ledger.ElementTarget(r.element.ClientID)
	default:
		return ledger.NoTarget()
	}
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	next := m.cursor
	for {
		next += delta
		if next < 0 || next >= len(m.rows) {
			return
		}
		if m.rows[next].selectable() {
			m.cursor = next
			m.clampOffset()
			return
		}
	}
}

// snapToSelectable moves the cursor to the nearest selectable row in
// the given direction, falling back to the other direction.
func (m *Model) snapToSelectable(delta int) {
	if len(m.rows) == 0 {
		m.cursor = 0
		return
	}
	if m.cursor < len(m.rows) && m.rows[m.cursor].selectable() {
		return
	}
	for i := m.cursor; i >= 0 && i < len(m.rows); i += delta {
		if m.rows[i].selectable() {
			m.cursor = i
			return
		}
	}
	for i := m.cursor; i >= 0 && i < len(m.rows); i -= delta {
		if m.rows[i].selectable() {
			m.cursor = i
			return
		}
	}
}

func (m *Model) clampOffset() {
	visible := m.height - 1
	if visible < 1 {
		visible = 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m Model) cursorElement() *model.Element {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	r := m.rows[m.cursor]
	if r.kind != rowElement {
		return nil
	}
	el := r.element
	return &el
}

func (m Model) cursorGroup() (model.Group, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return model.Group{}, false
	}
	r := m.rows[m.cursor]
	if r.kind != rowGroupHeader && r.kind != rowElement {
		return model.Group{}, false
	}
	return r.group, true
}

// cursorGroupID resolves the group new items should land in: the group
// of the row under the cursor, or the ungrouped bucket.
func (m Model) cursorGroupID() int {
	if g, ok := m.cursorGroup(); ok {
		return g.ID
	}
	return model.UngroupedID
}

func (m Model) findElement(clientID string) *model.Element {
	for i := range m.content.Elements {
		if m.content.Elements[i].ClientID == clientID {
			return &m.content.Elements[i]
		}
	}
	return nil
}

// View renders the table.
func (m Model) View() string {
	if len(m.rows) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Empty estimate. Press 'a' to add an item.")
	}

	visible := m.height - 1
	if visible < 1 {
		visible = 1
	}
	end := m.offset + visible
	if end > len(m.rows) {
		end = len(m.rows)
	}

	var b strings.Builder
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		moving := m.moving && r.kind == rowElement && r.element.ClientID == m.moveID
		b.WriteString(renderRow(r, m.width, i == m.cursor, moving))
		b.WriteString("\n")
	}

	if m.moving {
		b.WriteString(theme.HelpStyle.Render(
			"move: j/k pick a group or position, enter drop, esc cancel",
		))
	}

	return b.String()
}
