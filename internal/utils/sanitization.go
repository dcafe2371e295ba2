package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// SensitiveDataMasker handles masking of sensitive information in logs
type SensitiveDataMasker struct {
	patterns   []SensitivePattern
	fieldNames []string
}

// SensitivePattern defines a pattern for detecting and masking sensitive data
type SensitivePattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

const maskedValue = "***MASKED***"

// NewSensitiveDataMasker creates a new data masker with default patterns
func NewSensitiveDataMasker() *SensitiveDataMasker {
	return &SensitiveDataMasker{
		patterns: []SensitivePattern{
			{
				Name:        "Bearer Token",
				Regex:       regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`),
				Replacement: "Bearer " + maskedValue,
			},
			{
				Name:        "API Key",
				Regex:       regexp.MustCompile(`sk-(ant-)?[a-zA-Z0-9_-]{20,}`),
				Replacement: "sk-" + maskedValue,
			},
		},
		fieldNames: []string{
			"authorization", "api_key", "apikey", "api-key",
			"secret", "password", "token", "cookie",
		},
	}
}

// MaskHeaders masks sensitive headers (like Authorization)
func (m *SensitiveDataMasker) MaskHeaders(headers map[string][]string) map[string][]string {
	if headers == nil {
		return nil
	}

	masked := make(map[string][]string, len(headers))
	for key, values := range headers {
		if m.isSensitiveField(key) {
			masked[key] = []string{maskedValue}
			continue
		}
		out := make([]string, len(values))
		for i, value := range values {
			out[i] = m.MaskString(value)
		}
		masked[key] = out
	}
	return masked
}

// MaskString applies the regex patterns to s.
func (m *SensitiveDataMasker) MaskString(s string) string {
	for _, pattern := range m.patterns {
		s = pattern.Regex.ReplaceAllString(s, pattern.Replacement)
	}
	return s
}

func (m *SensitiveDataMasker) isSensitiveField(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, name := range m.fieldNames {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

var (
	dataURLRegex    = regexp.MustCompile(`(?i)(data:[^;]+;base64,)([A-Za-z0-9+/]{100,}={0,2})`)
	quotedB64Regex  = regexp.MustCompile(`"([A-Za-z0-9+/]{100,}={0,2})"`)
	bareBase64Regex = regexp.MustCompile(`^[A-Za-z0-9+/]{100,}={0,2}$`)
)

// TruncateBase64InData truncates base64 payloads (data URLs, quoted JSON values
// and bare attachment content) anywhere inside data, for logging.
func TruncateBase64InData(data interface{}) interface{} {
	if data == nil {
		return nil
	}
	return truncateBase64Value(reflect.ValueOf(data)).Interface()
}

func truncateBase64Value(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.String:
		out := reflect.New(v.Type()).Elem()
		out.SetString(truncateBase64String(v.String()))
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		newMap := reflect.MakeMapWithSize(v.Type(), v.Len())
		for _, key := range v.MapKeys() {
			newMap.SetMapIndex(key, assignable(truncateBase64Value(v.MapIndex(key)), v.Type().Elem()))
		}
		return newMap

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		// []byte bodies are logged as strings elsewhere; leave them alone here.
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		newSlice := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			newSlice.Index(i).Set(assignable(truncateBase64Value(v.Index(i)), v.Type().Elem()))
		}
		return newSlice

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		return truncateBase64Value(v.Elem())

	default:
		return v
	}
}

// assignable wraps a truncated value so it can be stored in a container of type t.
func assignable(v reflect.Value, t reflect.Type) reflect.Value {
	if !v.IsValid() {
		return reflect.Zero(t)
	}
	if v.Type().AssignableTo(t) {
		return v
	}
	if v.Type().ConvertibleTo(t) {
		return v.Convert(t)
	}
	return reflect.Zero(t)
}

func truncateBase64String(s string) string {
	if len(s) < 100 {
		return s
	}

	if bareBase64Regex.MatchString(s) {
		return truncatePayload(s)
	}

	s = dataURLRegex.ReplaceAllStringFunc(s, func(match string) string {
		sub := dataURLRegex.FindStringSubmatch(match)
		if len(sub) != 3 {
			return match
		}
		return sub[1] + truncatePayload(sub[2])
	})

	return quotedB64Regex.ReplaceAllStringFunc(s, func(match string) string {
		return `"` + truncatePayload(match[1:len(match)-1]) + `"`
	})
}

func truncatePayload(payload string) string {
	if len(payload) <= 100 {
		return payload
	}
	return payload[:50] + fmt.Sprintf("...[%d chars truncated]...", len(payload)-100) + payload[len(payload)-50:]
}
