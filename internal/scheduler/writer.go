// Package scheduler debounces remote content writes. Rapid local edits
// coalesce into a single PATCH; only the latest snapshot ever reaches
// the wire.
package scheduler

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kosztorapp/kosztor/internal/model"
)

// writeTimeout is the maximum time allowed for a single remote write.
const writeTimeout = 30 * time.Second

// DefaultDebounce is the quiet period after the last edit before the
// pending snapshot is written.
const DefaultDebounce = 600 * time.Millisecond

// ContentWriter persists one project content snapshot remotely.
type ContentWriter interface {
	UpdateContent(ctx context.Context, projectID string, content model.Content) error
}

// WriteResultMsg is a tea.Msg sent when a scheduled write completes.
type WriteResultMsg struct {
	ProjectID   string
	Fingerprint string
	Error       error
}

// pendingWrite is the latest snapshot waiting for the debounce window
// to close.
type pendingWrite struct {
	projectID   string
	content     model.Content
	fingerprint string
}

// Writer schedules debounced content writes. It is safe for use from
// the Bubble Tea update loop; completed writes come back as
// WriteResultMsg values through WaitForNextResult.
type Writer struct {
	remote   ContentWriter
	debounce time.Duration
	resultCh chan WriteResultMsg

	mu           gosync.Mutex
	timer        *time.Timer
	pending      *pendingWrite
	lastExternal string
}

// New creates a Writer. A non-positive debounce falls back to
// DefaultDebounce.
func New(remote ContentWriter, debounce time.Duration) *Writer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Writer{
		remote:   remote,
		debounce: debounce,
		resultCh: make(chan WriteResultMsg, 16),
	}
}

// ScheduleWrite records a snapshot for deferred persistence, replacing
// any previously pending one and restarting the debounce window. A
// snapshot whose fingerprint matches the last externally applied
// content is dropped: it did not originate from a local edit.
func (w *Writer) ScheduleWrite(projectID string, content model.Content, fingerprint string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if fingerprint != "" && fingerprint == w.lastExternal {
		return
	}

	w.pending = &pendingWrite{
		projectID:   projectID,
		content:     content,
		fingerprint: fingerprint,
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

// OnExternalUpdate records the fingerprint of content that arrived from
// the remote service rather than from a local edit. Any write still
// pending from before the update is dropped, timer included: its
// snapshot predates the authoritative content and would clobber it.
// The fingerprint also suppresses the next matching ScheduleWrite echo.
func (w *Writer) OnExternalUpdate(fingerprint string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastExternal = fingerprint
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
}

// Cancel drops any pending write without executing it. Used when
// switching projects so a stale snapshot never lands on the wrong one.
func (w *Writer) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
}

// Flush executes the pending write immediately, if any. Called on
// shutdown so the last edits are not lost to the debounce window.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	p := w.pending
	w.pending = nil
	w.mu.Unlock()

	if p == nil {
		return nil
	}
	return w.remote.UpdateContent(ctx, p.projectID, p.content)
}

// fire runs when the debounce window closes: it takes the pending
// snapshot and writes it remotely.
func (w *Writer) fire() {
	w.mu.Lock()
	p := w.pending
	w.pending = nil
	w.timer = nil
	w.mu.Unlock()

	if p == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	err := w.remote.UpdateContent(ctx, p.projectID, p.content)
	w.sendResult(WriteResultMsg{
		ProjectID:   p.projectID,
		Fingerprint: p.fingerprint,
		Error:       err,
	})
}

// sendResult delivers a result without blocking the timer goroutine.
func (w *Writer) sendResult(msg WriteResultMsg) {
	select {
	case w.resultCh <- msg:
	default:
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next completed
// write. Call it again after each WriteResultMsg to keep listening.
func (w *Writer) WaitForNextResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-w.resultCh
		if !ok {
			return nil
		}
		return result
	}
}
