package errors

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/utils"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation_error"
	ErrorTypeInvalidInput  ErrorType = "invalid_request_error"
	ErrorTypeNotFound      ErrorType = "not_found_error"
	ErrorTypeConflict      ErrorType = "conflict_error"
	ErrorTypeInternal      ErrorType = "internal_error"
	ErrorTypeExternal      ErrorType = "external_error"
	ErrorTypeTimeout       ErrorType = "timeout_error"
	ErrorTypeConfiguration ErrorType = "configuration_error"
)

// Stable machine-readable codes carried by every gateway-local failure.
const (
	CodeInvalidJSON       = "INVALID_JSON"
	CodeValidation        = "VALIDATION_ERROR"
	CodeFileSizeExceeded  = "FILE_SIZE_EXCEEDED"
	CodeTimeout           = "TIMEOUT"
	CodeConnectionRefused = "CONNECTION_REFUSED"
	CodeHostNotFound      = "HOST_NOT_FOUND"
	CodeReadError         = "READ_ERROR"
	CodeGatewayError      = "GATEWAY_ERROR"
	CodeEmptyResponse     = "EMPTY_RESPONSE"
	CodeInvalidJSONFromAI = "INVALID_JSON_FROM_AI"
	CodeAIError           = "AI_ERROR"
	CodeRequestCancelled  = "REQUEST_CANCELLED"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL_ERROR"
)

// APIError represents a structured API error
type APIError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
	Status  int       `json:"status"`
	Details string    `json:"details,omitempty"`

	// Extra holds additional fields flattened into the error object (provider, totalSize, ...).
	Extra map[string]interface{} `json:"-"`

	cause error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.cause != nil && e.cause.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// WithCause attaches the error that triggered this one.
func (e *APIError) WithCause(err error) *APIError {
	e.cause = err
	return e
}

// WithExtra adds a field to the serialized error object.
func (e *APIError) WithExtra(key string, value interface{}) *APIError {
	if e.Extra == nil {
		e.Extra = make(map[string]interface{})
	}
	e.Extra[key] = value
	return e
}

// WithDetails sets the diagnostic details field.
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}

// ErrorResponse represents the JSON error response format
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Error   map[string]interface{} `json:"error"`
}

// Envelope builds the client-facing error envelope for e.
func (e *APIError) Envelope(now time.Time) ErrorResponse {
	body := make(map[string]interface{}, 6+len(e.Extra))
	for k, v := range e.Extra {
		body[k] = v
	}
	body["message"] = e.Message
	body["code"] = e.Code
	body["status"] = e.Status
	body["type"] = string(e.Type)
	body["timestamp"] = now.UTC().Format(utils.TimestampFormat)
	if e.Details != "" {
		body["details"] = e.Details
	}
	return ErrorResponse{Success: false, Error: body}
}

// NewAPIError creates a new APIError
func NewAPIError(errorType ErrorType, message string) *APIError {
	return &APIError{
		Type:    errorType,
		Message: message,
		Status:  statusForType(errorType),
	}
}

// NewAPIErrorWithCode creates a new APIError with a code and HTTP status
func NewAPIErrorWithCode(errorType ErrorType, message, code string, status int) *APIError {
	return &APIError{
		Type:    errorType,
		Message: message,
		Code:    code,
		Status:  status,
	}
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if stdErrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given gateway code.
func IsCode(err error, code string) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Code == code
}

// HandleError writes a standardized error response to the HTTP response writer.
// A zero statusCode uses the status carried by the error.
func HandleError(w http.ResponseWriter, err error, statusCode int) {
	HandleErrorCtx(context.Background(), w, err, statusCode)
}

// HandleErrorCtx is HandleError with request-scoped logging.
func HandleErrorCtx(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	apiError, ok := AsAPIError(err)
	if !ok {
		if statusCode == 0 {
			statusCode = http.StatusInternalServerError
		}
		apiError = inferErrorType(err, statusCode)
	}
	if statusCode == 0 {
		statusCode = apiError.Status
	}
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	apiError.Status = statusCode

	w.Header().Set(utils.HeaderContentType, utils.ContentTypeJSON)
	w.Header().Set(utils.HeaderGatewayError, "true")
	w.WriteHeader(statusCode)

	if jsonBytes, jsonErr := json.Marshal(apiError.Envelope(time.Now())); jsonErr == nil {
		_, _ = w.Write(jsonBytes)
	} else {
		logger.Error(ctx, "Error marshaling error response", jsonErr)
		_, _ = w.Write([]byte(`{"success":false,"error":{"type":"internal_error","code":"INTERNAL_ERROR","message":"Internal server error"}}`))
	}

	logger.Warn(logger.WithStage(ctx, logger.LogStages.Error), "Gateway error response",
		"response_status_code", statusCode,
		"error_type", string(apiError.Type),
		"error_code", apiError.Code,
		"error_message", apiError.Message,
	)
}

func statusForType(t ErrorType) int {
	switch t {
	case ErrorTypeValidation, ErrorTypeInvalidInput:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeExternal:
		return http.StatusBadGateway
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// inferErrorType attempts to infer the error type based on the status code
func inferErrorType(err error, statusCode int) *APIError {
	message := err.Error()

	var apiErr *APIError
	switch statusCode {
	case http.StatusBadRequest:
		apiErr = NewAPIError(ErrorTypeValidation, message)
		apiErr.Code = CodeValidation
	case http.StatusNotFound:
		apiErr = NewAPIError(ErrorTypeNotFound, message)
		apiErr.Code = CodeNotFound
	case http.StatusConflict:
		apiErr = NewAPIError(ErrorTypeConflict, message)
		apiErr.Code = CodeRequestCancelled
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		apiErr = NewAPIError(ErrorTypeExternal, message)
		apiErr.Code = CodeGatewayError
	case http.StatusGatewayTimeout:
		apiErr = NewAPIError(ErrorTypeTimeout, message)
		apiErr.Code = CodeTimeout
	default:
		apiErr = NewAPIError(ErrorTypeInternal, message)
		apiErr.Code = CodeInternal
	}
	apiErr.Status = statusCode
	return apiErr.WithCause(err)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *APIError {
	return NewAPIErrorWithCode(ErrorTypeValidation, message, CodeValidation, http.StatusBadRequest)
}

// NewInvalidJSONError reports an inbound body that is not valid JSON.
func NewInvalidJSONError(cause error) *APIError {
	return NewAPIErrorWithCode(ErrorTypeInvalidInput, "Invalid JSON format", CodeInvalidJSON, http.StatusBadRequest).
		WithCause(cause)
}

// NewFileSizeExceededError reports that the summed attachment size is over the ceiling.
func NewFileSizeExceededError(totalSize, limit string) *APIError {
	return NewAPIErrorWithCode(ErrorTypeInvalidInput,
		fmt.Sprintf("Total file size exceeds the %s limit", limit),
		CodeFileSizeExceeded, http.StatusRequestEntityTooLarge).
		WithExtra("totalSize", totalSize)
}

// NewTimeoutError reports a backend call that did not complete before its deadline.
func NewTimeoutError(mode string, timeout time.Duration) *APIError {
	return NewAPIErrorWithCode(ErrorTypeTimeout,
		fmt.Sprintf("AI backend timed out after %s (%s mode)", timeout, mode),
		CodeTimeout, http.StatusGatewayTimeout)
}

// NewConnectionRefusedError reports an unreachable backend.
func NewConnectionRefusedError() *APIError {
	return NewAPIErrorWithCode(ErrorTypeExternal,
		"Cannot connect to the AI backend. Is the orchestration service running?",
		CodeConnectionRefused, http.StatusBadGateway)
}

// NewHostNotFoundError reports a DNS failure for the backend host.
func NewHostNotFoundError() *APIError {
	return NewAPIErrorWithCode(ErrorTypeExternal,
		"AI backend host not found. Is the webhook URL correct?",
		CodeHostNotFound, http.StatusBadGateway)
}

// NewReadError reports a backend reply whose body could not be read.
func NewReadError(provider string) *APIError {
	return NewAPIErrorWithCode(ErrorTypeExternal, "AI backend reply could not be read",
		CodeReadError, http.StatusBadGateway).
		WithExtra("provider", provider)
}

// NewGatewayError reports any other transport failure.
func NewGatewayError(message string) *APIError {
	if message == "" {
		message = "Generative gateway error"
	}
	return NewAPIErrorWithCode(ErrorTypeExternal, message, CodeGatewayError, http.StatusBadGateway)
}

// NewEmptyResponseError reports a backend reply with an empty body.
func NewEmptyResponseError(provider string) *APIError {
	return NewAPIErrorWithCode(ErrorTypeExternal,
		fmt.Sprintf("Empty response from %s", upper(provider)),
		CodeEmptyResponse, http.StatusBadGateway).
		WithExtra("provider", provider)
}

// NewInvalidJSONFromAIError reports a backend reply declared as JSON that failed to parse.
func NewInvalidJSONFromAIError(provider, excerpt string) *APIError {
	return NewAPIErrorWithCode(ErrorTypeExternal,
		fmt.Sprintf("%s returned invalid JSON", upper(provider)),
		CodeInvalidJSONFromAI, http.StatusBadGateway).
		WithExtra("provider", provider).
		WithDetails(excerpt)
}

// NewRequestCancelledError reports a request superseded by a newer one in the same session.
func NewRequestCancelledError() *APIError {
	return NewAPIErrorWithCode(ErrorTypeConflict,
		"Request cancelled by a newer request in the same session",
		CodeRequestCancelled, http.StatusConflict)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *APIError {
	return NewAPIErrorWithCode(ErrorTypeNotFound, message, CodeNotFound, http.StatusNotFound)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *APIError {
	return NewAPIErrorWithCode(ErrorTypeInternal, message, CodeInternal, http.StatusInternalServerError)
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(message string) *APIError {
	return NewAPIError(ErrorTypeConfiguration, message)
}

func upper(provider string) string {
	if provider == "" {
		return "AI backend"
	}
	return strings.ToUpper(provider)
}
