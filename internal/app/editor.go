package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kosztorapp/kosztor/internal/ledger"
	"github.com/kosztorapp/kosztor/internal/scheduler"
)

// cacheErrMsg reports a failed local mirror write.
type cacheErrMsg struct {
	err error
}

// cacheTimeout bounds one local mirror write.
const cacheTimeout = 5 * time.Second

// totalOpts returns the display options for the estimate table. The
// regional factor scales what is shown, never what is stored.
func (m Model) totalOpts() ledger.TotalOptions {
	return ledger.TotalOptions{Wspreg: m.wspregValue}
}

// contentChanged is called after every successful ledger mutation. It
// refreshes the table, mirrors the snapshot into the local cache, and
// schedules the debounced remote write. The mirror happens first and
// synchronously: the cache must never lag the state a scheduled write
// could persist, and it must survive a quit inside the debounce window.
func (m *Model) contentChanged() tea.Cmd {
	if m.led == nil {
		return nil
	}

	snapshot := m.led.Content()
	fingerprint := ledger.Fingerprint(snapshot.Elements)

	m.estimateView.SetContent(snapshot, m.totalOpts())
	m.saveState = "pending"
	m.errMsg = ""

	if m.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
		defer cancel()
		if err := m.cache.Put(ctx, m.projectID, snapshot); err != nil {
			m.errMsg = fmt.Sprintf("cache: %v", err)
		}
	}

	m.writer.ScheduleWrite(m.projectID, snapshot, fingerprint)
	return nil
}

// applyExternal replaces the ledger with content that arrived from the
// remote service and tells the writer not to echo it back.
func (m *Model) applyExternal(led *ledger.Ledger) {
	m.led = led
	snapshot := led.Content()
	m.writer.OnExternalUpdate(ledger.Fingerprint(snapshot.Elements))
	m.estimateView.SetContent(snapshot, m.totalOpts())
	m.saveState = "saved"
}

// handleWriteResult updates the save indicator after a debounced write
// lands, and re-arms the listener.
func (m Model) handleWriteResult(msg scheduler.WriteResultMsg) (tea.Model, tea.Cmd) {
	if msg.ProjectID == m.projectID {
		if msg.Error != nil {
			m.saveState = "error"
			m.errMsg = "Save failed; edits are kept locally. Press r to retry after reconnecting."
		} else if m.led == nil || msg.Fingerprint == m.led.Fingerprint() {
			m.saveState = "saved"
		}
		// A stale fingerprint means more edits are already pending.
	}
	return m, m.writer.WaitForNextResult()
}

// flushNow writes any pending snapshot immediately, in the background.
func (m Model) flushNow() tea.Cmd {
	writer := m.writer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = writer.Flush(ctx)
		return nil
	}
}

// flushAndQuit drains the pending write, then exits.
func (m Model) flushAndQuit() tea.Cmd {
	writer := m.writer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = writer.Flush(ctx)
		return tea.Quit()
	}
}
