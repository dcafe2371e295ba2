package proxy

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/utils"
)

// maxLoggedTextBody bounds non-JSON bodies copied into debug logs.
const maxLoggedTextBody = 1024

// HTTPLogger writes debug-level records of backend exchanges with sensitive
// headers masked and base64 payloads truncated.
type HTTPLogger struct {
	component string
	masker    *utils.SensitiveDataMasker
}

// NewHTTPLogger creates a new HTTP logger
func NewHTTPLogger(component string) *HTTPLogger {
	return &HTTPLogger{
		component: component,
		masker:    utils.NewSensitiveDataMasker(),
	}
}

// LogRequest logs an outgoing backend request and its body.
func (h *HTTPLogger) LogRequest(ctx context.Context, req *http.Request, body []byte) {
	ctx = logger.WithComponent(ctx, h.component)
	ctx = logger.WithStage(ctx, logger.LogStages.Dispatch)

	logger.Debug(ctx, "Backend request payload",
		"request_method", req.Method,
		"request_url", req.URL.String(),
		"request_headers", h.masker.MaskHeaders(req.Header),
		"request_body", loggableBody(body),
	)
}

// LogResponse logs a fully read backend reply.
func (h *HTTPLogger) LogResponse(ctx context.Context, reply *BackendReply) {
	ctx = logger.WithComponent(ctx, h.component)
	ctx = logger.WithStage(ctx, logger.LogStages.BackendReply)

	message := "Backend reply payload"
	if !isSuccessStatus(reply.StatusCode) {
		message = "Backend error reply payload"
	}
	logger.Debug(ctx, message,
		"response_status_code", reply.StatusCode,
		"response_headers", h.masker.MaskHeaders(reply.Header),
		"response_body", loggableBody(reply.Body),
	)
}

// LogError logs a transport failure of one attempt.
func (h *HTTPLogger) LogError(ctx context.Context, req *http.Request, err error) {
	ctx = logger.WithComponent(ctx, h.component)
	ctx = logger.WithStage(ctx, logger.LogStages.Error)

	logger.Warn(ctx, "Backend request attempt failed",
		"request_method", req.Method,
		"request_url", req.URL.String(),
		"error", err.Error(),
	)
}

func loggableBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var parsed interface{}
	if json.Unmarshal(body, &parsed) == nil {
		return utils.TruncateBase64InData(parsed)
	}
	return excerpt(string(body), maxLoggedTextBody)
}
