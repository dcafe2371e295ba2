package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIError(t *testing.T) {
	err := NewAPIError(ErrorTypeValidation, "test message")

	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "test message", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Empty(t, err.Code)
	assert.Empty(t, err.Details)
}

func TestAPIErrorImplementsError(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := NewConnectionRefusedError().WithCause(cause)

	var _ error = err
	assert.Contains(t, err.Error(), "dial tcp: refused")
	assert.ErrorIs(t, err, cause)
}

func TestGatewayConstructors(t *testing.T) {
	tests := []struct {
		name           string
		err            *APIError
		expectedCode   string
		expectedStatus int
		expectedType   ErrorType
	}{
		{"invalid json", NewInvalidJSONError(nil), CodeInvalidJSON, 400, ErrorTypeInvalidInput},
		{"validation", NewValidationError("bad"), CodeValidation, 400, ErrorTypeValidation},
		{"file size", NewFileSizeExceededError("60 MB", "50 MB"), CodeFileSizeExceeded, 413, ErrorTypeInvalidInput},
		{"timeout", NewTimeoutError("video", 180*time.Second), CodeTimeout, 504, ErrorTypeTimeout},
		{"connection refused", NewConnectionRefusedError(), CodeConnectionRefused, 502, ErrorTypeExternal},
		{"host not found", NewHostNotFoundError(), CodeHostNotFound, 502, ErrorTypeExternal},
		{"read error", NewReadError("claude"), CodeReadError, 502, ErrorTypeExternal},
		{"gateway error", NewGatewayError(""), CodeGatewayError, 502, ErrorTypeExternal},
		{"empty response", NewEmptyResponseError("openai"), CodeEmptyResponse, 502, ErrorTypeExternal},
		{"invalid json from ai", NewInvalidJSONFromAIError("google", "<html>"), CodeInvalidJSONFromAI, 502, ErrorTypeExternal},
		{"cancelled", NewRequestCancelledError(), CodeRequestCancelled, 409, ErrorTypeConflict},
		{"not found", NewNotFoundError("job not found"), CodeNotFound, 404, ErrorTypeNotFound},
		{"internal", NewInternalError("boom"), CodeInternal, 500, ErrorTypeInternal},
	}

	codes := make(map[string]bool)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedCode, tt.err.Code)
			assert.Equal(t, tt.expectedStatus, tt.err.Status)
			assert.Equal(t, tt.expectedType, tt.err.Type)
			assert.NotEmpty(t, tt.err.Message)
		})
		assert.False(t, codes[tt.expectedCode], "codes must be distinct: %s", tt.expectedCode)
		codes[tt.expectedCode] = true
	}
}

func TestEmptyResponseMessageNamesProvider(t *testing.T) {
	assert.Equal(t, "Empty response from OPENAI", NewEmptyResponseError("openai").Message)
	assert.Equal(t, "Empty response from AI backend", NewEmptyResponseError("").Message)
}

func TestEnvelope(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 123_000_000, time.UTC)
	env := NewInvalidJSONFromAIError("claude", "not json").Envelope(now)

	assert.False(t, env.Success)
	assert.Equal(t, "INVALID_JSON_FROM_AI", env.Error["code"])
	assert.Equal(t, 502, env.Error["status"])
	assert.Equal(t, "claude", env.Error["provider"])
	assert.Equal(t, "not json", env.Error["details"])
	assert.Equal(t, "2025-03-01T12:00:00.123Z", env.Error["timestamp"])
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		statusCode     int
		expectedCode   string
		expectedStatus int
	}{
		{
			name:           "api error uses its own status",
			err:            NewFileSizeExceededError("51 MB", "50 MB"),
			statusCode:     0,
			expectedCode:   CodeFileSizeExceeded,
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:           "wrapped api error",
			err:            fmt.Errorf("dispatch: %w", NewTimeoutError("chat", time.Minute)),
			statusCode:     0,
			expectedCode:   CodeTimeout,
			expectedStatus: http.StatusGatewayTimeout,
		},
		{
			name:           "regular error 400",
			err:            fmt.Errorf("bad request"),
			statusCode:     http.StatusBadRequest,
			expectedCode:   CodeValidation,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "regular error without status",
			err:            fmt.Errorf("unexpected"),
			statusCode:     0,
			expectedCode:   CodeInternal,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			HandleError(w, tt.err, tt.statusCode)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, "true", w.Header().Get("x-gateway-error"))

			var response struct {
				Success bool                   `json:"success"`
				Error   map[string]interface{} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

			assert.False(t, response.Success)
			assert.Equal(t, tt.expectedCode, response.Error["code"])
			assert.Equal(t, float64(tt.expectedStatus), response.Error["status"])
			assert.NotEmpty(t, response.Error["message"])
			assert.NotEmpty(t, response.Error["timestamp"])
		})
	}
}

func TestInferErrorType(t *testing.T) {
	tests := []struct {
		statusCode   int
		expectedType ErrorType
	}{
		{http.StatusBadRequest, ErrorTypeValidation},
		{http.StatusNotFound, ErrorTypeNotFound},
		{http.StatusConflict, ErrorTypeConflict},
		{http.StatusInternalServerError, ErrorTypeInternal},
		{http.StatusBadGateway, ErrorTypeExternal},
		{http.StatusServiceUnavailable, ErrorTypeExternal},
		{http.StatusGatewayTimeout, ErrorTypeTimeout},
		{http.StatusTeapot, ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			apiErr := inferErrorType(fmt.Errorf("test error"), tt.statusCode)

			assert.Equal(t, tt.expectedType, apiErr.Type)
			assert.Equal(t, "test error", apiErr.Message)
			assert.Equal(t, "test error", apiErr.Error())
			assert.Equal(t, tt.statusCode, apiErr.Status)
		})
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewHostNotFoundError())
	assert.True(t, IsCode(err, CodeHostNotFound))
	assert.False(t, IsCode(err, CodeTimeout))
	assert.False(t, IsCode(fmt.Errorf("plain"), CodeTimeout))
}
