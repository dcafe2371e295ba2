package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aashari/go-generative-gateway/internal/errors"
	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks a loaded configuration and reports every failing field.
func Validate(cfg *Config) *errors.APIError {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	if cfg.Server.WriteTimeout < cfg.Backend.VideoTimeout {
		return errors.NewConfigurationError(fmt.Sprintf(
			"Configuration validation failed: field 'server.write_timeout' (%s) must not be shorter than 'backend.video_timeout' (%s)",
			cfg.Server.WriteTimeout, cfg.Backend.VideoTimeout))
	}
	return nil
}

// formatValidationError formats validator errors into APIError
func formatValidationError(err error) *errors.APIError {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			messages = append(messages, formatFieldError(e))
		}
		return errors.NewConfigurationError(fmt.Sprintf("Configuration validation failed: %s", strings.Join(messages, "; ")))
	}
	return errors.NewConfigurationError(fmt.Sprintf("Configuration validation failed: %s", err.Error()))
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := fieldPath(e)
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", field)
	case "url":
		return fmt.Sprintf("field '%s' must be an absolute URL, got %q", field, e.Value())
	case "hostname_port":
		return fmt.Sprintf("field '%s' must be host:port, got %q", field, e.Value())
	case "startswith":
		return fmt.Sprintf("field '%s' must start with %q", field, e.Param())
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("field '%s' must have at least %s items", field, e.Param())
		}
		return fmt.Sprintf("field '%s' must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("field '%s' must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("field '%s' must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("field '%s' must not be negative", field)
	case "gtefield":
		return fmt.Sprintf("field '%s' must not be less than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("field '%s' failed validation: %s", field, e.Tag())
	}
}

// fieldPath turns "Config.backend.webhook_url" into "backend.webhook_url".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
