package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosztorapp/kosztor/internal/api"
	"github.com/kosztorapp/kosztor/internal/cache"
	"github.com/kosztorapp/kosztor/internal/ledger"
	"github.com/kosztorapp/kosztor/internal/model"
	"github.com/kosztorapp/kosztor/internal/scheduler"
)

// runCmd executes a command tree synchronously, descending into batches.
func runCmd(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmd(t, c)
		}
	}
}

func TestContentChangedMirrorsBeforeArmingDebounce(t *testing.T) {
	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close()

	client := api.NewClient("http://127.0.0.1:0", "t")
	writer := scheduler.New(client, time.Hour)

	m := New(client, store, writer)
	m.led = ledger.New(model.DefaultContent())
	m.led.AddElement(model.Element{Name: "wykop", Quantity: 1, Price: 10})
	m.projectID = "p1"

	_ = m.contentChanged()

	// The mirror must already be readable; the remote write is still an
	// hour away.
	got, err := store.Get(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Elements, 1)
	assert.Equal(t, "wykop", got.Elements[0].Name)
	assert.Equal(t, "pending", m.saveState)
}

func TestLeavingEditorFlushesPendingWrite(t *testing.T) {
	var patches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			patches.Add(1)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, "t")
	writer := scheduler.New(client, time.Hour)

	m := New(client, nil, writer)
	m.led = ledger.New(model.DefaultContent())
	m.led.AddElement(model.Element{Name: "beton", Quantity: 1, Price: 200})
	m.projectID = "p1"
	m.currentView = ViewEstimate

	_ = m.contentChanged()

	mdl, cmd, handled := m.handleGlobalKey(tea.KeyMsg{Type: tea.KeyEsc})
	require.True(t, handled)
	require.NotNil(t, cmd)
	runCmd(t, cmd)

	assert.Equal(t, int32(1), patches.Load())
	root, ok := mdl.(Model)
	require.True(t, ok)
	assert.Equal(t, ViewProjects, root.currentView)
}
