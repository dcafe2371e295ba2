package handlers

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/poller"
	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	// Initialize logger for all tests
	if err := logger.Init(logger.DefaultConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	m.Run()
}

type fakeJobs struct {
	records map[string]*types.JobRecord
	err     error
}

func (f *fakeJobs) Get(_ context.Context, jobID string) (*types.JobRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.records[jobID]
	if !ok {
		return nil, poller.ErrNotFound
	}
	return rec, nil
}

type fakeSessions struct {
	messages map[string][]types.SessionMessage
	resets   []string
}

func (f *fakeSessions) Messages(sessionID string) []types.SessionMessage {
	if msgs, ok := f.messages[sessionID]; ok {
		return msgs
	}
	return []types.SessionMessage{}
}

func (f *fakeSessions) Reset(_ context.Context, sessionID string) {
	f.resets = append(f.resets, sessionID)
	delete(f.messages, sessionID)
}

func newTestMux(h *APIHandlers) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/jobs/{id}", h.JobHandler)
	mux.HandleFunc("GET /api/sessions/{id}/messages", h.SessionMessagesHandler)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.ResetSessionHandler)
	mux.HandleFunc("GET /v1/models", h.ModelsHandler)
	return mux
}

func serve(t *testing.T, mux http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestNewAPIHandlers(t *testing.T) {
	jobs := &fakeJobs{}
	sessions := &fakeSessions{}

	handlers := NewAPIHandlers(jobs, sessions)

	require.NotNil(t, handlers)
	assert.Equal(t, jobs, handlers.Jobs)
	assert.Equal(t, sessions, handlers.Sessions)
}

func TestJobHandler(t *testing.T) {
	jobs := &fakeJobs{records: map[string]*types.JobRecord{
		"job-1": {
			JobID:     "job-1",
			SessionID: "s1",
			Provider:  types.ProviderGoogle,
			Model:     "veo-3",
			Mode:      types.ModeVideo,
			Status:    types.JobCompleted,
			ResultURL: "https://cdn.example/v.mp4",
			Content:   "Video ready",
		},
	}}
	mux := newTestMux(NewAPIHandlers(jobs, nil))

	t.Run("found", func(t *testing.T) {
		w := serve(t, mux, http.MethodGet, "/api/jobs/job-1")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var rec types.JobRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
		assert.Equal(t, "job-1", rec.JobID)
		assert.Equal(t, types.JobCompleted, rec.Status)
		assert.Equal(t, "https://cdn.example/v.mp4", rec.ResultURL)
	})

	t.Run("not found", func(t *testing.T) {
		w := serve(t, mux, http.MethodGet, "/api/jobs/missing")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "true", w.Header().Get("x-gateway-error"))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		errObj := body["error"].(map[string]interface{})
		assert.Equal(t, "NOT_FOUND", errObj["code"])
	})

	t.Run("store failure", func(t *testing.T) {
		failing := newTestMux(NewAPIHandlers(&fakeJobs{err: stdErrors.New("redis down")}, nil))
		w := serve(t, failing, http.MethodGet, "/api/jobs/job-1")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("no poller", func(t *testing.T) {
		w := serve(t, newTestMux(NewAPIHandlers(nil, nil)), http.MethodGet, "/api/jobs/job-1")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSessionHandlers(t *testing.T) {
	sessions := &fakeSessions{messages: map[string][]types.SessionMessage{
		"s1": {
			{ID: "m1", Role: "user", Content: "hi"},
			{ID: "m2", Role: "assistant", Content: "hello", Provider: types.ProviderClaude},
		},
	}}
	mux := newTestMux(NewAPIHandlers(nil, sessions))

	w := serve(t, mux, http.MethodGet, "/api/sessions/s1/messages")
	require.Equal(t, http.StatusOK, w.Code)
	var resp types.SessionMessagesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "assistant", resp.Messages[1].Role)

	w = serve(t, mux, http.MethodGet, "/api/sessions/unknown/messages")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session_id":"unknown","messages":[]}`, w.Body.String())

	w = serve(t, mux, http.MethodDelete, "/api/sessions/s1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"session_id":"s1"}`, w.Body.String())
	assert.Equal(t, []string{"s1"}, sessions.resets)

	w = serve(t, mux, http.MethodGet, "/api/sessions/s1/messages")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Messages)
}

func TestModelsHandler(t *testing.T) {
	mux := newTestMux(NewAPIHandlers(nil, nil))

	t.Run("all providers", func(t *testing.T) {
		w := serve(t, mux, http.MethodGet, "/v1/models")
		require.Equal(t, http.StatusOK, w.Code)

		var resp types.ModelsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "list", resp.Object)

		owners := map[types.Provider]bool{}
		for _, m := range resp.Data {
			owners[m.OwnedBy] = true
			assert.Equal(t, "model", m.Object)
			assert.NotEmpty(t, m.Name)
			assert.NotNil(t, m.Capabilities, m.ID)
		}
		assert.True(t, owners[types.ProviderClaude])
		assert.True(t, owners[types.ProviderOpenAI])
		assert.True(t, owners[types.ProviderGoogle])
	})

	t.Run("provider alias filter", func(t *testing.T) {
		w := serve(t, mux, http.MethodGet, "/v1/models?provider=gemini")
		require.Equal(t, http.StatusOK, w.Code)

		var resp types.ModelsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Data)

		byID := map[string]types.ModelInfo{}
		for _, m := range resp.Data {
			assert.Equal(t, types.ProviderGoogle, m.OwnedBy)
			byID[m.ID] = m
		}
		assert.True(t, byID["gemini-1.5-pro"].Valid)
		assert.Empty(t, byID["gemini-1.5-pro"].FallbackTo)
		assert.False(t, byID["gemini-2.5-pro"].Valid)
		assert.Equal(t, "gemini-1.5-pro", byID["gemini-2.5-pro"].FallbackTo)
		assert.Equal(t, "veo-3", byID["veo-3"].FallbackTo)
		assert.Equal(t, "gemini-1.5-pro", byID["gemini-embeddings"].FallbackTo)
	})

	t.Run("tier filter", func(t *testing.T) {
		w := serve(t, mux, http.MethodGet, "/v1/models?provider=openai&tier=legacy")
		require.Equal(t, http.StatusOK, w.Code)

		var resp types.ModelsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		var ids []string
		for _, m := range resp.Data {
			ids = append(ids, m.ID)
		}
		assert.ElementsMatch(t, []string{"babbage-002", "davinci-002"}, ids)
	})

	tests := []struct {
		name  string
		query string
	}{
		{name: "unknown provider", query: "?provider=mistral"},
		{name: "unknown tier", query: "?tier=premium"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, mux, http.MethodGet, "/v1/models"+tt.query)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
		})
	}
}

func TestModelInfoFor(t *testing.T) {
	info := ModelInfoFor(types.CatalogEntry{ID: "gpt-4o", Name: "GPT-4o", Provider: types.ProviderOpenAI, Tier: types.TierFlagship})
	assert.True(t, info.Valid)
	assert.Empty(t, info.FallbackTo)
	require.NotNil(t, info.Capabilities)
	assert.True(t, info.Capabilities.SupportsMultimodal)

	info = ModelInfoFor(types.CatalogEntry{ID: "gpt-5", Name: "GPT-5", Provider: types.ProviderOpenAI, Tier: types.TierFlagship})
	assert.False(t, info.Valid)
	assert.Equal(t, "gpt-4o", info.FallbackTo)
}
