package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kosztorapp/kosztor/internal/api"
	"github.com/kosztorapp/kosztor/internal/ledger"
	"github.com/kosztorapp/kosztor/internal/model"
)

// remoteTimeout bounds one remote project operation.
const remoteTimeout = 30 * time.Second

// projectLoadedMsg carries the result of opening a project: the remote
// record when reachable, the cached content when present, or an error
// when neither source could produce anything.
type projectLoadedMsg struct {
	projectID string
	project   *api.Project
	cached    *model.Content
	err       error
}

// quartersMsg carries the available catalog snapshots.
type quartersMsg struct {
	quarters []api.CatalogQuarter
	err      error
}

// repriceDoneMsg carries the refetched project after a reprice run.
type repriceDoneMsg struct {
	project *api.Project
	err     error
}

// wspregListMsg carries the regional multipliers for the pick form.
type wspregListMsg struct {
	values map[string]float64
	err    error
}

type wspregSavedMsg struct {
	err error
}

// exportDoneMsg reports a finished export download.
type exportDoneMsg struct {
	path string
	err  error
}

// loadProject fetches the remote record and the cache entry for a
// project. Remote failure alone is not fatal: the cache carries the
// editor through offline starts.
func (m Model) loadProject(id string) tea.Cmd {
	client := m.client
	cacheStore := m.cache
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()

		project, remoteErr := client.GetProject(ctx, id)

		var cached *model.Content
		if cacheStore != nil {
			cached, _ = cacheStore.Get(ctx, id)
		}

		if remoteErr != nil && cached == nil {
			return projectLoadedMsg{projectID: id, err: remoteErr}
		}
		return projectLoadedMsg{projectID: id, project: project, cached: cached}
	}
}

// loadQuarters fetches the catalog snapshot list.
func (m Model) loadQuarters() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		quarters, err := client.ListCatalogQuarters(ctx)
		return quartersMsg{quarters: quarters, err: err}
	}
}

// handleProjectLoaded reconciles remote, cache, and defaults into the
// ledger and enters the editor.
func (m Model) handleProjectLoaded(msg projectLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.currentView = ViewProjects
		m.errMsg = fmt.Sprintf("open failed: %v", msg.err)
		return m, nil
	}

	m.projectID = msg.projectID
	m.errMsg = ""

	var remote *model.Content
	if msg.project != nil {
		m.projectName = msg.project.Name
		m.dbKey = msg.project.SekocenbudCatalog
		if msg.project.WspregValue > 0 {
			m.wspregName = msg.project.WspregName
			m.wspregValue = msg.project.WspregValue
		} else {
			m.wspregName = "Brak"
			m.wspregValue = 1
		}
		content := msg.project.Content
		remote = &content
	} else {
		// Offline open: the cache is all there is.
		m.projectName = msg.projectID
	}

	content := ledger.Reconcile(remote, msg.cached)
	m.applyExternal(ledger.New(content))
	m.catalogView.SetDBKey(m.dbKey)
	m.currentView = ViewEstimate

	// Mirror the reconciled state so the cache reflects what is shown.
	cmds := []tea.Cmd{m.loadQuarters()}
	if m.cache != nil {
		cacheStore := m.cache
		projectID := m.projectID
		snapshot := m.led.Content()
		cmds = append(cmds, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
			defer cancel()
			if err := cacheStore.Put(ctx, projectID, snapshot); err != nil {
				return cacheErrMsg{err: err}
			}
			return nil
		})
	}
	return m, tea.Batch(cmds...)
}

// refetchProject pulls the remote record again and applies it as an
// external update.
func (m Model) refetchProject() tea.Cmd {
	if m.projectID == "" {
		return nil
	}
	return m.loadProject(m.projectID)
}

// startReprice asks the server to recompute catalog prices against the
// chosen snapshot, then refetches. Only one run at a time; the flag is
// cleared when repriceDoneMsg arrives.
func (m *Model) startReprice(catalogKey string) tea.Cmd {
	if m.repricing || m.projectID == "" {
		return nil
	}
	m.repricing = true
	m.errMsg = ""

	client := m.client
	projectID := m.projectID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*remoteTimeout)
		defer cancel()

		if err := client.Reprice(ctx, projectID, catalogKey); err != nil {
			return repriceDoneMsg{err: err}
		}
		project, err := client.GetProject(ctx, projectID)
		return repriceDoneMsg{project: project, err: err}
	}
}

func (m Model) handleRepriceDone(msg repriceDoneMsg) (tea.Model, tea.Cmd) {
	m.repricing = false
	if msg.err != nil {
		m.errMsg = fmt.Sprintf("reprice: %v", msg.err)
		return m, nil
	}
	if msg.project != nil {
		m.dbKey = msg.project.SekocenbudCatalog
		m.catalogView.SetDBKey(m.dbKey)
		m.applyExternal(ledger.New(msg.project.Content))
		m.errMsg = "Repriced"
		return m, m.mirrorCurrent()
	}
	return m, nil
}

// mirrorCurrent writes the current snapshot to the local cache.
func (m Model) mirrorCurrent() tea.Cmd {
	if m.cache == nil || m.led == nil {
		return nil
	}
	cacheStore := m.cache
	projectID := m.projectID
	snapshot := m.led.Content()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
		defer cancel()
		if err := cacheStore.Put(ctx, projectID, snapshot); err != nil {
			return cacheErrMsg{err: err}
		}
		return nil
	}
}

// loadWspregs fetches the regional multipliers for the pick form.
func (m Model) loadWspregs() tea.Cmd {
	client := m.client
	dbKey := m.dbKey
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		values, err := client.ListWspregs(ctx, dbKey)
		return wspregListMsg{values: values, err: err}
	}
}

// saveWspreg persists the chosen regional factor on the project record.
func (m Model) saveWspreg(name string, value float64) tea.Cmd {
	client := m.client
	projectID := m.projectID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		err := client.UpdateWspreg(ctx, projectID, name, value)
		return wspregSavedMsg{err: err}
	}
}

// exportProject downloads a server-side export and writes it next to
// the working directory.
func (m Model) exportProject(format api.ExportFormat) tea.Cmd {
	client := m.client
	projectID := m.projectID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*remoteTimeout)
		defer cancel()

		data, filename, err := client.Export(ctx, projectID, format)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if err := os.WriteFile(filename, data, 0o644); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: filename}
	}
}
