package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	apierrors "github.com/aashari/go-generative-gateway/internal/errors"
	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/reliability"
	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/aashari/go-generative-gateway/internal/utils"
)

// DefaultWebhookURL is used when N8N_WEBHOOK_URL is not set.
const DefaultWebhookURL = "http://localhost:5678/webhook/ai-gateway"

// Timeouts are the per-mode deadlines of one backend exchange.
type Timeouts struct {
	Chat  time.Duration
	Image time.Duration
	Video time.Duration
}

// DefaultTimeouts returns 120s for chat and image, 180s for video.
func DefaultTimeouts() Timeouts {
	return Timeouts{Chat: 120 * time.Second, Image: 120 * time.Second, Video: 180 * time.Second}
}

// For returns the deadline of mode; unknown modes use the chat deadline.
func (t Timeouts) For(mode types.Mode) time.Duration {
	switch mode {
	case types.ModeImage:
		return t.Image
	case types.ModeVideo:
		return t.Video
	default:
		return t.Chat
	}
}

// BackendReply is the raw backend answer, fully read.
type BackendReply struct {
	StatusCode  int
	ContentType string
	Header      http.Header
	Body        []byte
	Duration    time.Duration
}

// APIClientInterface defines the interface for dispatching envelopes to the backend
type APIClientInterface interface {
	Dispatch(ctx context.Context, env *types.OutboundEnvelope) (*BackendReply, error)
}

// ClientConfig configures the dispatcher.
type ClientConfig struct {
	WebhookURL string
	Timeouts   Timeouts
	Retry      reliability.RetryConfig
}

// APIClient POSTs normalized envelopes to the orchestration webhook.
type APIClient struct {
	webhookURL string
	httpClient *http.Client
	timeouts   Timeouts
	retry      *reliability.RetryExecutor
	httpLog    *HTTPLogger
}

// NewAPIClient creates a dispatcher. Only refused connections are retried,
// whatever predicate cfg.Retry carries.
func NewAPIClient(cfg ClientConfig, httpClient *http.Client) *APIClient {
	if cfg.WebhookURL == "" {
		cfg.WebhookURL = DefaultWebhookURL
	}
	defaults := DefaultTimeouts()
	if cfg.Timeouts.Chat <= 0 {
		cfg.Timeouts.Chat = defaults.Chat
	}
	if cfg.Timeouts.Image <= 0 {
		cfg.Timeouts.Image = defaults.Image
	}
	if cfg.Timeouts.Video <= 0 {
		cfg.Timeouts.Video = defaults.Video
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	cfg.Retry.Retryable = IsConnectionRefused

	logger.Info(logger.WithComponent(context.Background(), logger.ComponentNames.Dispatcher), "API client initialized",
		"webhook_url", cfg.WebhookURL,
		"chat_timeout", cfg.Timeouts.Chat,
		"image_timeout", cfg.Timeouts.Image,
		"video_timeout", cfg.Timeouts.Video,
		"retry_attempts", cfg.Retry.MaxAttempts,
	)

	return &APIClient{
		webhookURL: cfg.WebhookURL,
		httpClient: httpClient,
		timeouts:   cfg.Timeouts,
		retry:      reliability.NewRetryExecutor(cfg.Retry),
		httpLog:    NewHTTPLogger(logger.ComponentNames.Dispatcher),
	}
}

// WebhookURL returns the dispatch target.
func (c *APIClient) WebhookURL() string {
	return c.webhookURL
}

// Dispatch sends env to the backend under the mode's deadline and returns the
// fully read reply. Transport failures come back as classified *APIError values.
func (c *APIClient) Dispatch(ctx context.Context, env *types.OutboundEnvelope) (*BackendReply, error) {
	ctx = logger.WithComponent(ctx, logger.ComponentNames.Dispatcher)

	body, err := EncodeEnvelope(env)
	if err != nil {
		return nil, apierrors.NewInternalError("failed to encode backend request").WithCause(err)
	}

	timeout := c.timeouts.For(env.Mode)
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info(logger.WithStage(ctx, logger.LogStages.Dispatch), "Dispatching request to backend",
		"webhook_url", c.webhookURL,
		"provider", string(env.Provider),
		"model", env.Model,
		"mode", string(env.Mode),
		"is_fallback", env.IsFallback,
		"files_count", env.FilesCount,
		"timeout", timeout,
		"request_body_bytes", len(body),
	)

	var reply *BackendReply
	start := time.Now()
	err = c.retry.ExecuteWithRetry(attemptCtx, func(ctx context.Context) error {
		r, sendErr := c.send(ctx, env, body)
		if sendErr != nil {
			return sendErr
		}
		reply = r
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		classified := ClassifyTransportError(ctx, err, env.Mode, timeout)
		logger.Error(ctx, "Backend dispatch failed", err,
			"provider", string(env.Provider),
			"mode", string(env.Mode),
			"error_code", classified.Code,
			"duration_ms", duration.Milliseconds(),
		)
		return nil, classified
	}
	reply.Duration = duration

	logger.Info(logger.WithStage(ctx, logger.LogStages.BackendReply), "Backend reply received",
		"response_status_code", reply.StatusCode,
		"response_content_type", reply.ContentType,
		"response_body_bytes", len(reply.Body),
		"duration_ms", duration.Milliseconds(),
	)
	return reply, nil
}

func (c *APIClient) send(ctx context.Context, env *types.OutboundEnvelope, body []byte) (*BackendReply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, apierrors.NewGatewayError(fmt.Sprintf("invalid webhook URL: %v", err)).WithCause(err)
	}
	setDispatchHeaders(req.Header, env)
	c.httpLog.LogRequest(ctx, req, body)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.httpLog.LogError(ctx, req, err)
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			// deadline hit mid-body: report it as a timeout, not a read failure
			return nil, fmt.Errorf("read backend reply: %w", ctx.Err())
		}
		return nil, apierrors.NewReadError(string(env.Provider)).WithCause(err)
	}

	reply := &BackendReply{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get(utils.HeaderContentType),
		Header:      resp.Header.Clone(),
		Body:        data,
	}
	c.httpLog.LogResponse(ctx, reply)
	return reply, nil
}

func setDispatchHeaders(h http.Header, env *types.OutboundEnvelope) {
	original := utils.UnknownModel
	if env.OriginalModel != nil && *env.OriginalModel != "" {
		original = *env.OriginalModel
	}
	h.Set(utils.HeaderContentType, utils.ContentTypeJSON)
	h.Set(utils.HeaderUserAgent, utils.UserAgent)
	h.Set(utils.HeaderAIProvider, string(env.Provider))
	h.Set(utils.HeaderOriginalModel, original)
	h.Set(utils.HeaderValidatedModel, env.Model)
	h.Set(utils.HeaderIsFallback, strconv.FormatBool(env.IsFallback))
	h.Set(utils.HeaderFilesCount, strconv.Itoa(env.FilesCount))
	h.Set(utils.HeaderRequestMode, string(env.Mode))
	if env.RequestID != "" {
		h.Set(utils.HeaderRequestID, env.RequestID)
	}
}
