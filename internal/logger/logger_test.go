package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func captureLogger(t *testing.T, level string) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	originalLogger := Logger
	originalService := ServiceName
	originalEnvironment := Environment
	t.Cleanup(func() {
		Logger = originalLogger
		ServiceName = originalService
		Environment = originalEnvironment
	})

	InitWithWriter(&buf, Config{
		Level:       ParseLevel(level),
		Format:      "json",
		TimeFormat:  time.RFC3339,
		ServiceName: "test-service",
		Environment: "test",
	})
	return &buf
}

func decodeEntries(t *testing.T, buf *bytes.Buffer) []StructuredLogEntry {
	t.Helper()

	var entries []StructuredLogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry StructuredLogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Log output is not valid JSON: %v\n%s", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestStructuredJSONHandler_BasicFields(t *testing.T) {
	buf := captureLogger(t, "debug")

	Info(context.Background(), "Test message", "key", "value")

	entries := decodeEntries(t, buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Message != "Test message" {
		t.Errorf("Expected message 'Test message', got %q", entry.Message)
	}
	if entry.Level != "INFO" {
		t.Errorf("Expected level INFO, got %q", entry.Level)
	}
	if entry.Service != "test-service" || entry.Environment != "test" {
		t.Errorf("Unexpected service/environment: %q/%q", entry.Service, entry.Environment)
	}
	if entry.Attributes["key"] != "value" {
		t.Errorf("Expected attributes.key = value, got %v", entry.Attributes["key"])
	}
}

func TestStructuredJSONHandler_ContextValues(t *testing.T) {
	buf := captureLogger(t, "debug")

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithCorrelationID(ctx, "corr-456")
	ctx = WithSessionID(ctx, "sess-1")
	ctx = WithComponent(ctx, ComponentNames.Dispatcher)
	ctx = WithStage(ctx, LogStages.Dispatch)

	Info(ctx, "Dispatching", "provider", "claude")

	entry := decodeEntries(t, buf)[0]
	if entry.Component != "Dispatcher" {
		t.Errorf("Expected component Dispatcher, got %q", entry.Component)
	}
	if entry.Stage != "Dispatch" {
		t.Errorf("Expected stage Dispatch, got %q", entry.Stage)
	}
	if entry.Request["request_id"] != "req-123" {
		t.Errorf("Expected request.request_id, got %v", entry.Request)
	}
	if entry.Request["correlation_id"] != "corr-456" {
		t.Errorf("Expected request.correlation_id, got %v", entry.Request)
	}
	if entry.Attributes["session_id"] != "sess-1" {
		t.Errorf("Expected attributes.session_id, got %v", entry.Attributes)
	}
	if entry.Attributes["provider"] != "claude" {
		t.Errorf("Expected attributes.provider, got %v", entry.Attributes)
	}
}

func TestStructuredJSONHandler_SectionRouting(t *testing.T) {
	buf := captureLogger(t, "debug")

	Info(context.Background(), "Routed",
		"request_method", "POST",
		"response_status_code", 502,
		"error_code", "EMPTY_RESPONSE",
		"duration", 1500*time.Millisecond,
	)

	entry := decodeEntries(t, buf)[0]
	if entry.Request["method"] != "POST" {
		t.Errorf("Expected request.method, got %v", entry.Request)
	}
	if entry.Response["status_code"] != float64(502) {
		t.Errorf("Expected response.status_code, got %v", entry.Response)
	}
	if entry.Error["code"] != "EMPTY_RESPONSE" {
		t.Errorf("Expected error.code, got %v", entry.Error)
	}
	if entry.Attributes["duration"] != float64(1500) {
		t.Errorf("Expected duration in milliseconds, got %v", entry.Attributes["duration"])
	}
}

func TestError_RoutesErrorValue(t *testing.T) {
	buf := captureLogger(t, "debug")

	Error(context.Background(), "Dispatch failed", errors.New("connection refused"), "provider", "openai")

	entry := decodeEntries(t, buf)[0]
	if entry.Level != "ERROR" {
		t.Errorf("Expected ERROR level, got %q", entry.Level)
	}
	if entry.Error["message"] != "connection refused" {
		t.Errorf("Expected error.message, got %v", entry.Error)
	}
	if entry.Error["type"] != "*errors.errorString" {
		t.Errorf("Expected error.type, got %v", entry.Error["type"])
	}
}

func TestStructuredJSONHandler_LevelFiltering(t *testing.T) {
	buf := captureLogger(t, "warn")

	ctx := context.Background()
	Debug(ctx, "hidden debug")
	Info(ctx, "hidden info")
	Warn(ctx, "visible warn")
	Error(ctx, "visible error", nil)

	entries := decodeEntries(t, buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries at warn level, got %d: %s", len(entries), buf.String())
	}
	if entries[0].Message != "visible warn" || entries[1].Message != "visible error" {
		t.Errorf("Unexpected messages: %q, %q", entries[0].Message, entries[1].Message)
	}
	if entries[1].Error != nil {
		t.Errorf("Expected no error section for nil error, got %v", entries[1].Error)
	}
}

func TestStructuredJSONHandler_TruncatesBase64(t *testing.T) {
	buf := captureLogger(t, "debug")

	payload := strings.Repeat("QUJD", 100)
	Info(context.Background(), "Attachment", "data", payload)

	entry := decodeEntries(t, buf)[0]
	data, _ := entry.Attributes["data"].(string)
	if !strings.Contains(data, "chars truncated") {
		t.Errorf("Expected base64 payload to be truncated, got %d chars", len(data))
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"INFO":    "INFO",
		"warning": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for input, expected := range tests {
		if got := ParseLevel(input).String(); got != expected {
			t.Errorf("ParseLevel(%q) = %s, want %s", input, got, expected)
		}
	}
}
