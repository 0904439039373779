// Package app is the root Bubble Tea model: view routing, the open
// project's ledger, and the plumbing between local edits, the cache
// mirror, and the debounced remote writer.
package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/kosztorapp/kosztor/internal/api"
	"github.com/kosztorapp/kosztor/internal/cache"
	"github.com/kosztorapp/kosztor/internal/catalog"
	"github.com/kosztorapp/kosztor/internal/keys"
	"github.com/kosztorapp/kosztor/internal/ledger"
	"github.com/kosztorapp/kosztor/internal/model"
	"github.com/kosztorapp/kosztor/internal/scheduler"
	"github.com/kosztorapp/kosztor/internal/ui"
	"github.com/kosztorapp/kosztor/internal/ui/catalogview"
	"github.com/kosztorapp/kosztor/internal/ui/elemform"
	"github.com/kosztorapp/kosztor/internal/ui/estimate"
	"github.com/kosztorapp/kosztor/internal/ui/groupform"
	helpview "github.com/kosztorapp/kosztor/internal/ui/help"
	"github.com/kosztorapp/kosztor/internal/ui/projectmgr"
	"github.com/kosztorapp/kosztor/internal/ui/taxform"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewProjects ViewState = iota
	ViewEstimate
	ViewElemForm
	ViewTaxForm
	ViewGroupForm
	ViewCatalog
	ViewPick
	ViewHelp
)

// Model is the root Bubble Tea model.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	client   *api.Client
	cache    *cache.Store
	writer   *scheduler.Writer
	searcher *catalog.Searcher

	projectView  projectmgr.Model
	estimateView estimate.Model
	elemForm     elemform.Model
	taxForm      taxform.Model
	groupForm    groupform.Model
	catalogView  catalogview.Model
	helpView     helpview.Model

	led         *ledger.Ledger
	projectID   string
	projectName string
	dbKey       string
	quarters    []api.CatalogQuarter
	wspregName  string
	wspregValue float64

	pick      *huh.Form
	pickFB    *pickBindings
	pickKind  pickKind
	repricing bool

	saveState string
	errMsg    string
	ready     bool
}

// New creates the root application model.
func New(client *api.Client, cacheStore *cache.Store, writer *scheduler.Writer) Model {
	k := keys.DefaultKeyMap()
	searcher := catalog.NewSearcher(client)

	return Model{
		currentView:  ViewProjects,
		keys:         k,
		client:       client,
		cache:        cacheStore,
		writer:       writer,
		searcher:     searcher,
		projectView:  projectmgr.New(client, k, 80, 24),
		estimateView: estimate.New(k, 80, 24),
		elemForm:     elemform.New(80, 24),
		taxForm:      taxform.New(80, 24),
		groupForm:    groupform.New(80, 24),
		catalogView:  catalogview.New(searcher, k, "", 80, 24),
		helpView:     helpview.New(k, 80, 24),
		pickFB:       &pickBindings{},
		wspregName:   "Brak",
		wspregValue:  1,
		saveState:    "saved",
	}
}

// Init loads the project list and starts listening for write results.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.projectView.Init(),
		m.writer.WaitForNextResult(),
	)
}

// OpenProject skips the project list and loads one project directly.
// Used by the `open` subcommand.
func (m *Model) OpenProject(id string) tea.Cmd {
	m.currentView = ViewEstimate
	return m.loadProject(id)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.projectView.SetSize(contentWidth, contentHeight)
		m.estimateView.SetSize(contentWidth, contentHeight)
		m.elemForm.SetSize(contentWidth, contentHeight)
		m.taxForm.SetSize(contentWidth, contentHeight)
		m.groupForm.SetSize(contentWidth, contentHeight)
		m.catalogView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case projectmgr.OpenProjectMsg:
		m.writer.Cancel()
		m.currentView = ViewEstimate
		m.errMsg = ""
		return m, m.loadProject(msg.ProjectID)

	case projectLoadedMsg:
		return m.handleProjectLoaded(msg)

	case quartersMsg:
		if msg.err == nil {
			m.quarters = msg.quarters
			if m.dbKey == "" && len(m.quarters) > 0 {
				m.dbKey = m.quarters[0].DBKey
				m.catalogView.SetDBKey(m.dbKey)
			}
		}
		return m, nil

	case scheduler.WriteResultMsg:
		return m.handleWriteResult(msg)

	case cacheErrMsg:
		// The mirror is best-effort; remote persistence is unaffected.
		m.errMsg = fmt.Sprintf("cache: %v", msg.err)
		return m, nil

	case repriceDoneMsg:
		return m.handleRepriceDone(msg)

	case wspregListMsg:
		return m.handleWspregList(msg)

	case wspregSavedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("regional factor: %v", msg.err)
		}
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("export: %v", msg.err)
		} else {
			m.errMsg = "Exported to " + msg.path
		}
		return m, nil

	case estimate.AddElementMsg:
		m.previousView = m.currentView
		m.currentView = ViewElemForm
		return m, m.elemForm.StartCreate(m.led.Groups(), msg.GroupID)

	case estimate.EditElementMsg:
		return m.startEditElement(msg.ClientID)

	case estimate.DeleteElementMsg:
		m.led.DeleteElement(msg.ClientID)
		return m, m.contentChanged()

	case estimate.MoveElementMsg:
		m.led.Move(msg.ClientID, msg.Target)
		return m, m.contentChanged()

	case estimate.AddTaxMsg:
		m.previousView = m.currentView
		m.currentView = ViewTaxForm
		return m, m.taxForm.StartCreate(m.led.Groups())

	case estimate.AddGroupMsg:
		m.led.AddGroup()
		return m, m.contentChanged()

	case estimate.RenameGroupMsg, estimate.ColorGroupMsg:
		var groupID int
		switch g := msg.(type) {
		case estimate.RenameGroupMsg:
			groupID = g.GroupID
		case estimate.ColorGroupMsg:
			groupID = g.GroupID
		}
		if g, ok := m.findGroup(groupID); ok {
			m.previousView = m.currentView
			m.currentView = ViewGroupForm
			return m, m.groupForm.Start(g)
		}
		return m, nil

	case estimate.DeleteGroupMsg:
		m.led.DeleteGroup(msg.GroupID)
		return m, m.contentChanged()

	case elemform.SavedMsg:
		m.currentView = ViewEstimate
		return m.handleElementSaved(msg)

	case elemform.CancelMsg, taxform.CancelMsg, groupform.CancelMsg:
		m.currentView = ViewEstimate
		return m, nil

	case taxform.SavedMsg:
		m.currentView = ViewEstimate
		return m.handleTaxSaved(msg)

	case groupform.SavedMsg:
		m.currentView = ViewEstimate
		m.led.RenameGroup(msg.GroupID, msg.Name)
		if msg.Color != "" {
			m.led.SetGroupColor(msg.GroupID, msg.Color)
		}
		return m, m.contentChanged()

	case catalogview.PickedMsg:
		m.currentView = ViewEstimate
		m.led.AddElement(model.Element{
			Symbol:   msg.Row.Symbol,
			Name:     msg.Row.Description,
			Unit:     msg.Row.Unit,
			Quantity: 1,
			Price:    msg.Row.Price,
			Group:    model.UngroupedID,
			Kind:     model.KindCatalog,
		})
		return m, m.contentChanged()

	case catalogview.CloseMsg:
		m.currentView = ViewEstimate
		return m, nil

	case tea.KeyMsg:
		if mdl, cmd, handled := m.handleGlobalKey(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that route between views. Returns
// handled=false when the active view should see the key instead.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, m.flushAndQuit(), true

	case "q":
		if m.currentView == ViewProjects || m.currentView == ViewEstimate {
			return m, m.flushAndQuit(), true
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		if m.currentView == ViewProjects || m.currentView == ViewEstimate {
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil, true
		}

	case "esc":
		switch m.currentView {
		case ViewHelp:
			m.currentView = m.previousView
			return m, nil, true
		case ViewEstimate:
			if !m.estimateView.Moving() {
				// Pending edits ride out with a flush; the writer is only
				// cancelled when another project is about to be opened.
				m.currentView = ViewProjects
				return m, tea.Batch(m.flushNow(), m.projectView.Init()), true
			}
		case ViewPick:
			m.currentView = ViewEstimate
			return m, nil, true
		}
	}

	if m.currentView != ViewEstimate || m.estimateView.Moving() {
		return m, nil, false
	}

	// Project-level actions available from the estimate table.
	switch msg.String() {
	case "/":
		m.previousView = m.currentView
		m.currentView = ViewCatalog
		m.catalogView.SetDBKey(m.dbKey)
		return m, m.catalogView.Init(), true

	case "p":
		if m.repricing {
			m.errMsg = "Reprice already running"
			return m, nil, true
		}
		return m.startPick(pickReprice)

	case "w":
		return m, m.loadWspregs(), true

	case "x":
		return m.startPick(pickExport)

	case "r":
		return m, m.refetchProject(), true
	}

	return m, nil, false
}

// startEditElement routes an edit request to the tax or item form.
func (m Model) startEditElement(clientID string) (tea.Model, tea.Cmd) {
	var el *model.Element
	for _, e := range m.led.Elements() {
		if e.ClientID == clientID {
			el = &e
			break
		}
	}
	if el == nil {
		return m, nil
	}
	m.previousView = m.currentView
	if el.IsTax {
		m.currentView = ViewTaxForm
		return m, m.taxForm.StartEdit(m.led.Groups(), *el)
	}
	m.currentView = ViewElemForm
	return m, m.elemForm.StartEdit(m.led.Groups(), *el)
}

func (m Model) handleElementSaved(msg elemform.SavedMsg) (tea.Model, tea.Cmd) {
	if m.led == nil {
		return m, nil
	}
	if msg.ClientID == "" {
		m.led.AddElement(model.Element{
			Symbol:   msg.Symbol,
			Name:     msg.Name,
			Unit:     msg.Unit,
			Quantity: msg.Quantity,
			Price:    msg.Price,
			Group:    msg.GroupID,
			Kind:     msg.Kind,
		})
	} else {
		m.led.UpdateElement(msg.ClientID, ledger.ElementUpdate{
			Symbol:   &msg.Symbol,
			Name:     &msg.Name,
			Unit:     &msg.Unit,
			Quantity: &msg.Quantity,
			Price:    &msg.Price,
			Group:    &msg.GroupID,
		})
	}
	return m, m.contentChanged()
}

func (m Model) handleTaxSaved(msg taxform.SavedMsg) (tea.Model, tea.Cmd) {
	if m.led == nil {
		return m, nil
	}

	// A tax row sits in the group it targets, or the ungrouped bucket
	// for project-wide taxes.
	group := model.UngroupedID
	if msg.Target != nil {
		group = *msg.Target
	}

	if msg.ClientID == "" {
		m.led.AddElement(model.Element{
			Name:          msg.Name,
			Group:         group,
			IsTax:         true,
			TaxPercentage: msg.Percentage,
			TaxTarget:     msg.Target,
			Kind:          model.KindTax,
		})
	} else {
		target := msg.Target
		m.led.UpdateElement(msg.ClientID, ledger.ElementUpdate{
			Name:          &msg.Name,
			Group:         &group,
			TaxPercentage: &msg.Percentage,
			TaxTarget:     &target,
		})
	}
	return m, m.contentChanged()
}

func (m Model) findGroup(id int) (model.Group, bool) {
	if m.led == nil {
		return model.Group{}, false
	}
	for _, g := range m.led.Groups() {
		if g.ID == id {
			return g, true
		}
	}
	return model.Group{}, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewProjects:
		m.projectView, cmd = m.projectView.Update(msg)
	case ViewEstimate:
		m.estimateView, cmd = m.estimateView.Update(msg)
	case ViewElemForm:
		m.elemForm, cmd = m.elemForm.Update(msg)
	case ViewTaxForm:
		m.taxForm, cmd = m.taxForm.Update(msg)
	case ViewGroupForm:
		m.groupForm, cmd = m.groupForm.Update(msg)
	case ViewCatalog:
		m.catalogView, cmd = m.catalogView.Update(msg)
	case ViewPick:
		m, cmd = m.updatePick(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "Kosztor"
	if m.projectName != "" {
		title = "Kosztor — " + m.projectName
	}
	header := m.layout.RenderHeader(title, m.headerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewProjects:
		return m.projectView.View()
	case ViewEstimate:
		return m.estimateView.View()
	case ViewElemForm:
		return m.elemForm.View()
	case ViewTaxForm:
		return m.taxForm.View()
	case ViewGroupForm:
		return m.groupForm.View()
	case ViewCatalog:
		return m.catalogView.View()
	case ViewPick:
		return m.viewPick()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// headerStatus is the right-hand side of the header: the persistence
// state, plus the active regional factor when one is applied.
func (m Model) headerStatus() string {
	state := m.saveState
	if m.repricing {
		state = "repricing"
	}
	if m.wspregValue != 1 {
		return fmt.Sprintf("wsp. %s ×%.2f | %s", m.wspregName, m.wspregValue, state)
	}
	return state
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.errMsg != "" &&
		(m.currentView == ViewEstimate || m.currentView == ViewProjects) {
		return m.errMsg
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewElemForm, ViewTaxForm, ViewGroupForm:
		return "enter submit | esc cancel"
	case ViewCatalog:
		return "enter pick | / edit query | tab source | esc back"
	case ViewPick:
		return "enter choose | esc cancel"
	case ViewProjects:
		return "enter open | n new | d delete | r refresh | q quit"
	default:
		if m.estimateView.Moving() {
			return "j/k pick position | enter drop | esc cancel"
		}
		return "a item | t tax | g group | m move | / catalog | p reprice | w factor | x export | ? help"
	}
}
