// Package validator decodes and validates inbound gateway requests.
package validator

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aashari/go-generative-gateway/internal/errors"
	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/go-playground/validator/v10"
)

// interpretedFields are the client keys the gateway reads. Everything else is
// forwarded to the backend untouched, except files which are only sent transcoded.
var interpretedFields = map[string]struct{}{
	"model":                {},
	"prompt":               {},
	"mode":                 {},
	"session_id":           {},
	"files":                {},
	"conversation_history": {},
	"max_tokens":           {},
	"temperature":          {},
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeRequest parses body into an InboundRequest. Malformed JSON yields
// INVALID_JSON; well-formed bodies with wrongly typed or out-of-range fields
// yield VALIDATION_ERROR.
func DecodeRequest(body []byte) (*types.InboundRequest, error) {
	// 1. Must be a JSON object
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.NewInvalidJSONError(stdErrors.New("empty request body"))
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.NewInvalidJSONError(err)
	}
	if fields == nil {
		return nil, errors.NewInvalidJSONError(stdErrors.New("request body must be a JSON object"))
	}

	// 2. Decode the fields the gateway interprets. The model is taken raw:
	// a missing or non-string model resolves to the default, never an error.
	var req types.InboundRequest
	decoded := struct {
		*types.InboundRequest
		Model json.RawMessage `json:"model"`
	}{InboundRequest: &req}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, formatDecodeError(err)
	}
	req.Model = modelString(decoded.Model)

	// 3. Collect passthrough fields
	req.Passthrough = make(map[string]json.RawMessage)
	for key, raw := range fields {
		if _, known := interpretedFields[key]; !known {
			req.Passthrough[key] = raw
		}
	}

	// 4. Struct validation
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func modelString(raw json.RawMessage) string {
	var model string
	if err := json.Unmarshal(raw, &model); err != nil {
		return ""
	}
	return model
}

func validateRequest(req *types.InboundRequest) *errors.APIError {
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if len(req.ConversationHistory) > 0 && !json.Valid(req.ConversationHistory) {
		return errors.NewValidationError("field 'conversation_history' is not valid JSON")
	}
	return nil
}

func formatDecodeError(err error) *errors.APIError {
	var typeErr *json.UnmarshalTypeError
	if stdErrors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return errors.NewValidationError(fmt.Sprintf("field '%s' must be of type %s, got %s", field, typeErr.Type.String(), typeErr.Value)).
			WithCause(err)
	}
	return errors.NewInvalidJSONError(err)
}

// formatValidationError formats validator errors into APIError
func formatValidationError(err error) *errors.APIError {
	var validationErrors validator.ValidationErrors
	if stdErrors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			messages = append(messages, formatFieldError(e))
		}
		return errors.NewValidationError(fmt.Sprintf("Request validation failed: %s", strings.Join(messages, "; ")))
	}
	return errors.NewValidationError(fmt.Sprintf("Request validation failed: %s", err.Error()))
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := fieldPath(e)
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", field)
	case "max":
		return fmt.Sprintf("field '%s' must be at most %s characters", field, e.Param())
	case "gt":
		return fmt.Sprintf("field '%s' must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("field '%s' must be at least %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("field '%s' must be at most %s", field, e.Param())
	default:
		return fmt.Sprintf("field '%s' failed validation: %s", field, e.Tag())
	}
}

// fieldPath drops the root struct name from the namespace: files[0].size.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}
