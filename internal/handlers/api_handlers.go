package handlers

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aashari/go-generative-gateway/internal/errors"
	"github.com/aashari/go-generative-gateway/internal/filter"
	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/models"
	"github.com/aashari/go-generative-gateway/internal/poller"
	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/aashari/go-generative-gateway/internal/utils"
)

// JobReader reads asynchronous job records.
type JobReader interface {
	Get(ctx context.Context, jobID string) (*types.JobRecord, error)
}

// SessionStore exposes session message lists and resets.
type SessionStore interface {
	Messages(sessionID string) []types.SessionMessage
	Reset(ctx context.Context, sessionID string)
}

// APIHandlers contains the dependencies needed for API handlers
type APIHandlers struct {
	Jobs     JobReader
	Sessions SessionStore
}

// NewAPIHandlers creates a new APIHandlers instance
func NewAPIHandlers(jobs JobReader, sessions SessionStore) *APIHandlers {
	return &APIHandlers{
		Jobs:     jobs,
		Sessions: sessions,
	}
}

// SessionResetResponse is returned after a session reset.
type SessionResetResponse struct {
	Success   bool   `json:"success" example:"true"`
	SessionID string `json:"session_id" example:"sess_123"`
}

// JobHandler returns the current record of an asynchronous job
// @Summary      Get job status
// @Description  Returns the tracked record of an image or video generation job
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  types.JobRecord
// @Failure      404  {object}  errors.ErrorResponse  "NOT_FOUND"
// @Router       /api/jobs/{id} [get]
func (h *APIHandlers) JobHandler(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithComponent(r.Context(), logger.ComponentNames.Handler)
	jobID := strings.TrimSpace(r.PathValue("id"))
	if jobID == "" {
		errors.HandleErrorCtx(ctx, w, errors.NewValidationError("job id is required"), 0)
		return
	}
	if h.Jobs == nil {
		errors.HandleErrorCtx(ctx, w, errors.NewNotFoundError(fmt.Sprintf("Job %s not found", jobID)), 0)
		return
	}

	record, err := h.Jobs.Get(ctx, jobID)
	if stdErrors.Is(err, poller.ErrNotFound) {
		errors.HandleErrorCtx(ctx, w, errors.NewNotFoundError(fmt.Sprintf("Job %s not found", jobID)), 0)
		return
	}
	if err != nil {
		logger.Error(ctx, "Failed to read job record", err, "job_id", jobID)
		errors.HandleErrorCtx(ctx, w, errors.NewInternalError("Failed to read job record").WithCause(err), 0)
		return
	}
	writeJSON(ctx, w, http.StatusOK, record)
}

// SessionMessagesHandler returns the message list of a session
// @Summary      List session messages
// @Description  Returns the user and assistant messages recorded for a session, oldest first
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  types.SessionMessagesResponse
// @Router       /api/sessions/{id}/messages [get]
func (h *APIHandlers) SessionMessagesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithComponent(r.Context(), logger.ComponentNames.Handler)
	sessionID := strings.TrimSpace(r.PathValue("id"))
	if sessionID == "" {
		errors.HandleErrorCtx(ctx, w, errors.NewValidationError("session id is required"), 0)
		return
	}

	messages := []types.SessionMessage{}
	if h.Sessions != nil {
		messages = h.Sessions.Messages(sessionID)
	}
	writeJSON(ctx, w, http.StatusOK, types.SessionMessagesResponse{
		SessionID: sessionID,
		Messages:  messages,
	})
}

// ResetSessionHandler resets a session
// @Summary      Reset a session
// @Description  Cancels the in-flight request of a session, clears its messages and stops its job polling
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  handlers.SessionResetResponse
// @Router       /api/sessions/{id} [delete]
func (h *APIHandlers) ResetSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithComponent(r.Context(), logger.ComponentNames.Handler)
	sessionID := strings.TrimSpace(r.PathValue("id"))
	if sessionID == "" {
		errors.HandleErrorCtx(ctx, w, errors.NewValidationError("session id is required"), 0)
		return
	}

	if h.Sessions != nil {
		h.Sessions.Reset(logger.WithSessionID(ctx, sessionID), sessionID)
	}
	writeJSON(ctx, w, http.StatusOK, SessionResetResponse{Success: true, SessionID: sessionID})
}

// ModelsHandler handles the models endpoint
// @Summary      List available models
// @Description  Returns the model catalog with resolution details: whether an identifier is accepted as-is and what it falls back to
// @Tags         models
// @Produce      json
// @Param        provider  query     string  false  "Optional provider filter (claude, openai, google or an alias such as anthropic, gemini)"
// @Param        tier      query     string  false  "Optional tier filter (flagship, balanced, fast, legacy)"
// @Success      200       {object}  types.ModelsResponse
// @Failure      400       {object}  errors.ErrorResponse  "Unknown provider or tier"
// @Router       /v1/models [get]
func (h *APIHandlers) ModelsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithComponent(r.Context(), logger.ComponentNames.Handler)

	providerFilter := r.URL.Query().Get("provider")
	entries, ok := filter.EntriesByProvider(models.Catalog(""), providerFilter)
	if !ok {
		errors.HandleErrorCtx(ctx, w, errors.NewValidationError(
			fmt.Sprintf("unknown provider: %s", providerFilter)), 0)
		return
	}

	tierFilter := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("tier")))
	if tierFilter != "" {
		tier, ok := parseTier(tierFilter)
		if !ok {
			errors.HandleErrorCtx(ctx, w, errors.NewValidationError(
				fmt.Sprintf("unknown tier: %s", tierFilter)), 0)
			return
		}
		entries = filter.EntriesByTier(entries, tier)
	}

	response := types.ModelsResponse{Object: "list", Data: make([]types.ModelInfo, 0, len(entries))}
	for _, e := range entries {
		response.Data = append(response.Data, ModelInfoFor(e))
	}

	logger.Debug(ctx, "Models list generated",
		"provider_filter", providerFilter,
		"tier_filter", tierFilter,
		"response_count", len(response.Data))

	writeJSON(ctx, w, http.StatusOK, response)
}

// ModelInfoFor describes how a catalog entry resolves.
func ModelInfoFor(e types.CatalogEntry) types.ModelInfo {
	info := types.ModelInfo{
		ID:      e.ID,
		Object:  "model",
		Name:    e.Name,
		OwnedBy: e.Provider,
		Tier:    e.Tier,
		Valid:   models.IsValid(e.Provider, e.ID),
	}
	if target, ok := models.Fallback(e.ID); ok {
		info.FallbackTo = target
	} else if !info.Valid {
		info.FallbackTo = models.ProviderDefault(e.Provider)
	}
	if d, ok := models.Describe(e.ID); ok {
		info.Capabilities = d.Capabilities
	}
	return info
}

func parseTier(s string) (types.ModelTier, bool) {
	switch types.ModelTier(s) {
	case types.TierFlagship, types.TierBalanced, types.TierFast, types.TierLegacy:
		return types.ModelTier(s), true
	}
	return "", false
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error(ctx, "Failed to marshal response", err)
		errors.HandleErrorCtx(ctx, w, errors.NewInternalError("Failed to generate response"), 0)
		return
	}
	w.Header().Set(utils.HeaderContentType, utils.ContentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.Error(ctx, "Failed to write response", err, "response_size", len(body))
	}
}
