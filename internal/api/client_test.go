package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosztorapp/kosztor/internal/model"
)

func TestGetSendsBearerToken(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token")
	var out map[string]string
	require.NoError(t, c.Get(context.Background(), "/api/ping", nil, &out))

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "yes", out["ok"])
}

func TestRateLimitRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	var out map[string]string
	require.NoError(t, c.Get(context.Background(), "/api/x", nil, &out))
	assert.Equal(t, int32(2), calls.Load())
}

func TestRateLimitExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	err := c.Get(context.Background(), "/api/x", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries")
}

func TestUnauthorizedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad")
	err := c.Get(context.Background(), "/api/x", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed (401)")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryResendsRequestBody(t *testing.T) {
	var calls atomic.Int32
	var lastBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lastBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	err := c.Post(context.Background(), "/api/x", map[string]string{"name": "dom"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "dom", lastBody["name"])
}

func TestUpdateContentPatchesContentField(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	content := model.Content{Version: model.ContentVersion}
	require.NoError(t, c.UpdateContent(context.Background(), "42", content))

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/projects/42/", gotPath)
	require.Contains(t, gotBody, "content")
}

func TestExportFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/42/export/excel", r.URL.Path)
		w.Write([]byte("binary"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	data, name, err := c.Export(context.Background(), "42", ExportExcel)
	require.NoError(t, err)
	assert.Equal(t, []byte("binary"), data)
	assert.Equal(t, "project-42.xlsx", name)
}

func TestExportFormatExtensions(t *testing.T) {
	assert.Equal(t, "pdf", ExportPDF.Extension())
	assert.Equal(t, "xlsx", ExportExcel.Extension())
	assert.Equal(t, "csv", ExportCSV.Extension())
}

func TestGetProjectDecodesContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/7/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":   "7",
			"name": "Dom jednorodzinny",
			"content": map[string]interface{}{
				"version": 1,
				"elements": []map[string]interface{}{
					{"clientId": "a", "name": "wykop", "group": nil},
				},
			},
			"wspreg_value": 1.1,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	p, err := c.GetProject(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Dom jednorodzinny", p.Name)
	assert.Equal(t, 1.1, p.WspregValue)
	require.Len(t, p.Content.Elements, 1)
	assert.Equal(t, model.UngroupedID, p.Content.Elements[0].Group)
}

func TestServerErrorSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"bad catalog key"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	err := c.Reprice(context.Background(), "42", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad catalog key")
}
