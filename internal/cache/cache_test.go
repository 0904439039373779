package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosztorapp/kosztor/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	content := model.Content{
		Version: model.ContentVersion,
		Groups:  []model.Group{{ID: 1, Name: "Podgrupa 1", Color: "#fef08a"}},
		Elements: []model.Element{
			{ClientID: "a", Name: "wykop", Unit: "m3", Quantity: 2, Price: 50, Value: 100},
		},
	}
	require.NoError(t, s.Put(ctx, "42", content))

	got, err := s.Get(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, content, *got)
}

func TestPutReplacesPreviousEntry(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "42", model.Content{Version: 1}))
	updated := model.Content{
		Version:  1,
		Elements: []model.Element{{ClientID: "b", Name: "beton"}},
	}
	require.NoError(t, s.Put(ctx, "42", updated))

	got, err := s.Get(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Elements, 1)
	assert.Equal(t, "beton", got.Elements[0].Name)
}

func TestGetMissReturnsNilNil(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Get(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetCorruptEntryIsAMiss(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_content (key, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)`,
		contentKey("42"), "{not json",
	)
	require.NoError(t, err)

	got, err := s.Get(ctx, "42")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "42", model.Content{Version: 1}))
	require.NoError(t, s.Delete(ctx, "42"))

	got, err := s.Get(ctx, "42")
	assert.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an absent entry is fine.
	assert.NoError(t, s.Delete(ctx, "42"))
}

func TestProjectsAreIsolated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "1", model.Content{Version: 1}))
	require.NoError(t, s.Put(ctx, "2", model.Content{Version: 1}))
	require.NoError(t, s.Delete(ctx, "1"))

	got, err := s.Get(ctx, "2")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestReopenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "42", model.Content{Version: 1}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
