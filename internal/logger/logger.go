package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aashari/go-generative-gateway/internal/utils"
)

// Logger levels
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Context keys
type contextKey string

const (
	RequestIDKey     contextKey = "request_id"
	CorrelationIDKey contextKey = "correlation_id"
	SessionIDKey     contextKey = "session_id"
	ComponentKey     contextKey = "component"
	StageKey         contextKey = "stage"
)

// Global logger instance
var Logger *slog.Logger

// Service configuration
var (
	ServiceName = utils.ServiceName
	Environment = "development"
)

// Configuration for logger
type Config struct {
	Level       slog.Level
	Format      string // "json" or "text"
	Output      string // "stdout", "stderr", or file path
	TimeFormat  string
	ServiceName string
	Environment string
}

// Default configuration
var DefaultConfig = Config{
	Level:       LevelInfo,
	Format:      "json",
	Output:      "stdout",
	TimeFormat:  time.RFC3339,
	ServiceName: utils.ServiceName,
	Environment: "development",
}

// StructuredLogEntry is the shape of every JSON log line.
type StructuredLogEntry struct {
	Timestamp   string                 `json:"timestamp"`
	Level       string                 `json:"level"`
	Message     string                 `json:"message"`
	Service     string                 `json:"service"`
	Environment string                 `json:"environment"`
	Component   string                 `json:"component,omitempty"`
	Stage       string                 `json:"stage,omitempty"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	Request     map[string]interface{} `json:"request,omitempty"`
	Response    map[string]interface{} `json:"response,omitempty"`
	Error       map[string]interface{} `json:"error,omitempty"`
}

// Init initializes the global logger
func Init(config Config) error {
	var output io.Writer

	ServiceName = config.ServiceName
	Environment = config.Environment

	switch config.Output {
	case "stdout", "":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		f, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", config.Output, err)
		}
		output = f
	}

	Logger = slog.New(newHandler(output, config))
	return nil
}

// InitWithWriter initializes the global logger writing to w. Used by tests and the CLI.
func InitWithWriter(w io.Writer, config Config) {
	ServiceName = config.ServiceName
	Environment = config.Environment
	Logger = slog.New(newHandler(w, config))
}

func newHandler(w io.Writer, config Config) slog.Handler {
	if config.Format == "json" {
		return NewStructuredJSONHandler(w, config)
	}
	timeFormat := config.TimeFormat
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: config.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && timeFormat != "" {
				return slog.String("timestamp", a.Value.Time().Format(timeFormat))
			}
			return a
		},
	})
}

// StructuredJSONHandler implements a custom JSON handler for our structured format
type StructuredJSONHandler struct {
	mu          *sync.Mutex
	writer      io.Writer
	level       slog.Leveler
	timeFormat  string
	serviceName string
	environment string
	attrs       []slog.Attr
}

// NewStructuredJSONHandler creates a handler writing one JSON object per line to w.
func NewStructuredJSONHandler(w io.Writer, config Config) *StructuredJSONHandler {
	timeFormat := config.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	return &StructuredJSONHandler{
		mu:          &sync.Mutex{},
		writer:      w,
		level:       config.Level,
		timeFormat:  timeFormat,
		serviceName: config.ServiceName,
		environment: config.Environment,
	}
}

func (h *StructuredJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *StructuredJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup is not supported; groups are flattened into attributes.
func (h *StructuredJSONHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *StructuredJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := StructuredLogEntry{
		Timestamp:   r.Time.UTC().Format(h.timeFormat),
		Level:       r.Level.String(),
		Message:     r.Message,
		Service:     h.serviceName,
		Environment: h.environment,
	}

	if ctx != nil {
		if component, ok := ctx.Value(ComponentKey).(string); ok {
			entry.Component = component
		}
		if stage, ok := ctx.Value(StageKey).(string); ok {
			entry.Stage = stage
		}
		if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
			entry.Request = map[string]interface{}{"request_id": requestID}
		}
		if correlationID, ok := ctx.Value(CorrelationIDKey).(string); ok && correlationID != "" {
			section(&entry.Request)["correlation_id"] = correlationID
		}
		if sessionID, ok := ctx.Value(SessionIDKey).(string); ok && sessionID != "" {
			section(&entry.Attributes)["session_id"] = sessionID
		}
	}

	route := func(a slog.Attr) bool {
		key := a.Key
		value := serializeValue(a.Value.Any())

		switch {
		case strings.HasPrefix(key, "request_"):
			section(&entry.Request)[strings.TrimPrefix(key, "request_")] = value
		case strings.HasPrefix(key, "response_"):
			section(&entry.Response)[strings.TrimPrefix(key, "response_")] = value
		case strings.HasPrefix(key, "error_"):
			section(&entry.Error)[strings.TrimPrefix(key, "error_")] = value
		case key == "error":
			errSection := section(&entry.Error)
			if err, ok := value.(error); ok {
				errSection["message"] = err.Error()
				errSection["type"] = fmt.Sprintf("%T", err)
			} else {
				errSection["message"] = fmt.Sprintf("%v", value)
			}
		default:
			section(&entry.Attributes)[key] = value
		}
		return true
	}

	for _, a := range h.attrs {
		route(a)
	}
	r.Attrs(route)

	entry.Attributes = truncateSection(entry.Attributes)
	entry.Request = truncateSection(entry.Request)
	entry.Response = truncateSection(entry.Response)
	entry.Error = truncateSection(entry.Error)

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.writer.Write(append(data, '\n'))
	return err
}

func section(m *map[string]interface{}) map[string]interface{} {
	if *m == nil {
		*m = make(map[string]interface{})
	}
	return *m
}

func truncateSection(m map[string]interface{}) map[string]interface{} {
	if len(m) == 0 {
		return nil
	}
	if out, ok := utils.TruncateBase64InData(m).(map[string]interface{}); ok {
		return out
	}
	return m
}

// serializeValue converts values that do not marshal cleanly.
func serializeValue(val interface{}) interface{} {
	switch v := val.(type) {
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case time.Duration:
		return v.Milliseconds()
	case []byte:
		return string(v)
	default:
		return val
	}
}

// WithContext returns the global logger, initializing a default one if needed.
func WithContext(_ context.Context) *slog.Logger {
	if Logger == nil {
		if err := Init(DefaultConfig); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize default logger: %v\n", err)
			return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: LevelDebug}))
		}
	}
	return Logger
}

// WithComponent tags every log line emitted with ctx with the component name.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, ComponentKey, component)
}

// WithStage tags every log line emitted with ctx with the processing stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, StageKey, stage)
}

// WithRequestID stores the request id used for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithCorrelationID stores the correlation id used for log correlation.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

// WithSessionID stores the chat session id.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// RequestIDFromContext returns the request id stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func Debug(ctx context.Context, msg string, args ...any) {
	log(ctx, LevelDebug, msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	log(ctx, LevelInfo, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	log(ctx, LevelWarn, msg, args...)
}

// Error logs msg at error level with err routed to the error section.
func Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err)
	}
	log(ctx, LevelError, msg, args...)
}

func log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	l := WithContext(ctx)
	if !l.Enabled(ctx, level) {
		return
	}
	l.Log(ctx, level, msg, args...)
}

// ParseLevel converts a level name into a slog level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}
