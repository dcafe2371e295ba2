// Package middleware holds the HTTP middleware shared by every route.
package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/utils"
)

// errorBodyExcerpt bounds how much of a failed response is kept for the log line.
const errorBodyExcerpt = 2048

// Header constants
const (
	RequestIDHeader     = utils.HeaderRequestID
	CorrelationIDHeader = utils.HeaderCorrelationID
)

// TrackingIDSources contains information about where tracking IDs came from
type TrackingIDSources struct {
	RequestIDSource     string `json:"request_id_source"`
	CorrelationIDSource string `json:"correlation_id_source"`
}

var headerMasker = utils.NewSensitiveDataMasker()

// RequestCorrelationMiddleware assigns request and correlation ids, echoes them
// as response headers, stores them on the request context and logs the
// request lifecycle. Responses are streamed through untouched.
func RequestCorrelationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, correlationID, sources := extractTrackingIDs(r)

		w.Header().Set(RequestIDHeader, requestID)
		w.Header().Set(CorrelationIDHeader, correlationID)

		ctx := logger.WithRequestID(r.Context(), requestID)
		ctx = logger.WithCorrelationID(ctx, correlationID)
		ctx = logger.WithComponent(ctx, logger.ComponentNames.Middleware)
		if sessionID := r.Header.Get(utils.HeaderSessionID); sessionID != "" {
			ctx = logger.WithSessionID(ctx, sessionID)
		}

		logger.Debug(ctx, "Generated tracking IDs",
			"request_id_source", sources.RequestIDSource,
			"correlation_id_source", sources.CorrelationIDSource,
		)

		start := time.Now()
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		quiet := r.URL.Path == "/health" || r.URL.Path == "/metrics"
		if !quiet {
			logRequest(ctx, r)
		}

		next.ServeHTTP(wrapper, r.WithContext(ctx))

		duration := time.Since(start)
		if quiet && wrapper.statusCode < http.StatusBadRequest {
			return
		}
		logResponse(ctx, r, wrapper, duration)
	})
}

// extractTrackingIDs prefers client-supplied ids and generates the rest.
func extractTrackingIDs(r *http.Request) (requestID, correlationID string, sources TrackingIDSources) {
	if clientRequestID := strings.TrimSpace(r.Header.Get(utils.HeaderRequestID)); clientRequestID != "" {
		requestID = clientRequestID
		sources.RequestIDSource = "client-x-request-id"
	} else {
		requestID = utils.GenerateRequestID()
		sources.RequestIDSource = "generated"
	}

	if clientCorrelationID := strings.TrimSpace(r.Header.Get(utils.HeaderCorrelationID)); clientCorrelationID != "" {
		correlationID = clientCorrelationID
		sources.CorrelationIDSource = "client-x-correlation-id"
	} else {
		correlationID = requestID
		sources.CorrelationIDSource = "request-id-fallback"
	}
	return requestID, correlationID, sources
}

// logRequest logs request metadata. The body is left to the handler, which
// enforces the size limit.
func logRequest(ctx context.Context, r *http.Request) {
	logger.Info(logger.WithStage(ctx, logger.LogStages.RequestReceived),
		"Incoming request",
		"request", map[string]interface{}{
			"method":         r.Method,
			"endpoint":       r.URL.Path,
			"query":          r.URL.RawQuery,
			"user_agent":     r.Header.Get(utils.HeaderUserAgent),
			"client_ip":      getClientIP(r),
			"content_length": r.ContentLength,
			"headers":        headerMasker.MaskHeaders(r.Header),
		},
	)
}

func logResponse(ctx context.Context, r *http.Request, w *responseWriterWrapper, duration time.Duration) {
	responseData := map[string]interface{}{
		"method":      r.Method,
		"endpoint":    r.URL.Path,
		"status_code": w.statusCode,
		"duration_ms": duration.Milliseconds(),
		"bytes":       w.written,
	}

	if w.statusCode >= http.StatusBadRequest {
		if w.excerpt.Len() > 0 {
			responseData["body"] = w.excerpt.String()
		}
		stage := logger.LogStages.RequestFailed
		if r.URL.Path == "/health" {
			stage = logger.LogStages.HealthCheckFailed
		}
		logger.Warn(logger.WithStage(ctx, stage), "Request failed",
			"response", responseData,
			"error_status", fmt.Sprintf("%d %s", w.statusCode, http.StatusText(w.statusCode)),
		)
		return
	}

	logger.Info(logger.WithStage(ctx, logger.LogStages.RequestCompleted),
		"Request completed",
		"response", responseData,
	)
}

// getClientIP extracts client IP with priority cascade
func getClientIP(r *http.Request) string {
	if forwardedFor := r.Header.Get(utils.HeaderXForwardedFor); forwardedFor != "" {
		return strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
	}
	if realIP := r.Header.Get(utils.HeaderXRealIP); realIP != "" {
		return realIP
	}
	if cfIP := r.Header.Get(utils.HeaderCFConnectingIP); cfIP != "" {
		return cfIP
	}
	return r.RemoteAddr
}

// responseWriterWrapper records the status and size of a response and keeps
// the head of error bodies for logging.
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
	written       int64
	excerpt       bytes.Buffer
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.headerWritten {
		w.statusCode = statusCode
		w.headerWritten = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(data []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	if w.statusCode >= http.StatusBadRequest && w.excerpt.Len() < errorBodyExcerpt {
		room := errorBodyExcerpt - w.excerpt.Len()
		if room > len(data) {
			room = len(data)
		}
		w.excerpt.Write(data[:room])
	}
	n, err := w.ResponseWriter.Write(data)
	w.written += int64(n)
	return n, err
}

// Flush implements http.Flusher interface for streaming support
func (w *responseWriterWrapper) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *responseWriterWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
