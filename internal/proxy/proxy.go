package proxy

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/aashari/go-generative-gateway/internal/errors"
	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/selector"
	"github.com/aashari/go-generative-gateway/internal/types"
)

// Dispatch outcomes reported to metrics and the usage log.
const (
	OutcomeSuccess      = "success"
	OutcomeBackendError = "backend_error"
	OutcomeJobSubmitted = "job_submitted"
)

// JobStarter begins tracking an asynchronous backend job.
type JobStarter interface {
	Start(ctx context.Context, record *types.JobRecord) bool
}

// MetricsRecorder receives per-dispatch metrics.
type MetricsRecorder interface {
	RecordDispatch(provider types.Provider, mode types.Mode, outcome string, duration time.Duration)
	RecordFallback(provider types.Provider, requested string)
}

// UsageRecorder stores one usage record per dispatch.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, record types.UsageRecord)
}

// GatewayDeps wires the gateway pipeline. Jobs, Metrics and Usage are optional.
type GatewayDeps struct {
	Resolver  selector.Selector
	Builder   *PayloadBuilder
	Client    APIClientInterface
	Responses *ResponseProcessor
	Sessions  *SessionManager
	Jobs      JobStarter
	Metrics   MetricsRecorder
	Usage     UsageRecorder
}

// Gateway runs one client request through resolution, normalization,
// dispatch and response normalization.
type Gateway struct {
	resolver  selector.Selector
	builder   *PayloadBuilder
	client    APIClientInterface
	responses *ResponseProcessor
	sessions  *SessionManager
	jobs      JobStarter
	metrics   MetricsRecorder
	usage     UsageRecorder
	now       func() time.Time
}

// NewGateway creates a gateway. Missing core components get their defaults.
func NewGateway(deps GatewayDeps) *Gateway {
	if deps.Resolver == nil {
		deps.Resolver = selector.NewRegistryResolver()
	}
	if deps.Builder == nil {
		deps.Builder = NewPayloadBuilder(NewFileProcessor(), DefaultMaxAttachmentBytes, DefaultHistoryTurns)
	}
	if deps.Responses == nil {
		deps.Responses = NewResponseProcessor()
	}
	if deps.Sessions == nil {
		deps.Sessions = NewSessionManager(nil)
	}
	return &Gateway{
		resolver:  deps.Resolver,
		builder:   deps.Builder,
		client:    deps.Client,
		responses: deps.Responses,
		sessions:  deps.Sessions,
		jobs:      deps.Jobs,
		metrics:   deps.Metrics,
		usage:     deps.Usage,
		now:       time.Now,
	}
}

// Sessions returns the session manager.
func (g *Gateway) Sessions() *SessionManager {
	return g.sessions
}

// Process handles one inbound request. Failures are returned as *APIError;
// a request superseded in its session fails with REQUEST_CANCELLED.
func (g *Gateway) Process(ctx context.Context, req *types.InboundRequest) (*NormalizedResponse, error) {
	ctx = logger.WithComponent(ctx, logger.ComponentNames.Gateway)
	if req.SessionID != "" {
		ctx = logger.WithSessionID(ctx, req.SessionID)
	}

	reqCtx, token, release := g.sessions.Begin(ctx, req.SessionID)
	defer release()

	// 1. Resolve provider, model and mode
	sel := g.resolver.Resolve(req.Model, req.Mode)
	g.logSelection(ctx, sel)

	// 2. Record the user turn
	g.sessions.Append(req.SessionID, types.SessionMessage{Role: "user", Content: req.Prompt})

	// 3. Build the outbound envelope
	env, err := g.builder.BuildEnvelope(reqCtx, req, sel, g.now())
	if err != nil {
		g.recordFailure(ctx, req.SessionID, token, sel, err)
		return nil, err
	}

	// 4. Dispatch
	start := g.now()
	reply, err := g.client.Dispatch(reqCtx, env)
	if err != nil {
		g.finish(ctx, env, sel, 0, "", g.now().Sub(start), err)
		g.recordFailure(ctx, req.SessionID, token, sel, err)
		return nil, err
	}
	if superseded(reqCtx) {
		err := apierrors.NewRequestCancelledError()
		g.finish(ctx, env, sel, reply.StatusCode, "", reply.Duration, err)
		return nil, err
	}

	// 5. Normalize the reply
	resp, err := g.responses.Normalize(ctx, reply, sel, env.FilesCount)
	if err != nil {
		g.finish(ctx, env, sel, reply.StatusCode, "", reply.Duration, err)
		g.recordFailure(ctx, req.SessionID, token, sel, err)
		return nil, err
	}

	g.finish(ctx, env, sel, resp.StatusCode, resp.JobID, reply.Duration, nil)

	// 6. Record the assistant turn
	msg := types.SessionMessage{
		Role:     "assistant",
		Model:    sel.ResolvedModel,
		Provider: sel.Provider,
		JobID:    resp.JobID,
	}
	if resp.Success {
		msg.Content = resp.Content
	} else {
		msg.Content = ErrorMessage(resp.ErrorMessage)
	}
	if req.SessionID != "" && !g.sessions.AppendIfCurrent(req.SessionID, token, msg) {
		logger.Info(logger.WithStage(ctx, logger.LogStages.RequestCancelled), "Dropped reply of superseded request",
			"model_used", sel.ResolvedModel)
	}

	// 7. Hand asynchronous jobs to the poller once the message carrying the
	// job id exists, so a fast completion always finds it
	if resp.JobID != "" {
		g.startJob(ctx, req, env, sel, resp)
	}
	return resp, nil
}

func (g *Gateway) logSelection(ctx context.Context, sel types.Selection) {
	logger.Info(logger.WithStage(ctx, logger.LogStages.Resolution), "Model resolved",
		"requested_model", sel.RequestedModel,
		"resolved_model", sel.ResolvedModel,
		"provider", string(sel.Provider),
		"mode", string(sel.Mode),
		"is_fallback", sel.IsFallback)

	if sel.IsFallback {
		logger.Warn(logger.WithStage(ctx, logger.LogStages.Fallback), "Using fallback model",
			"requested_model", sel.RequestedModel,
			"resolved_model", sel.ResolvedModel)
		if g.metrics != nil {
			g.metrics.RecordFallback(sel.Provider, sel.RequestedModel)
		}
	}
}

func (g *Gateway) startJob(ctx context.Context, req *types.InboundRequest, env *types.OutboundEnvelope, sel types.Selection, resp *NormalizedResponse) {
	logger.Info(logger.WithStage(ctx, logger.LogStages.JobDetected), "Backend returned a job handle",
		"job_id", resp.JobID,
		"mode", string(sel.Mode))
	if g.jobs == nil {
		return
	}
	record := &types.JobRecord{
		JobID:     resp.JobID,
		SessionID: req.SessionID,
		RequestID: env.RequestID,
		Provider:  sel.Provider,
		Model:     sel.ResolvedModel,
		Mode:      sel.Mode,
		Status:    types.JobPending,
		Content:   resp.Content,
	}
	if !g.jobs.Start(context.WithoutCancel(ctx), record) {
		logger.Debug(ctx, "Job already tracked", "job_id", resp.JobID)
	}
}

// finish reports one dispatch to metrics and the usage log.
func (g *Gateway) finish(ctx context.Context, env *types.OutboundEnvelope, sel types.Selection, status int, jobID string, duration time.Duration, err error) {
	outcome := OutcomeSuccess
	var code string
	switch {
	case err != nil:
		code = apierrors.CodeInternal
		if apiErr, ok := apierrors.AsAPIError(err); ok {
			code = apiErr.Code
			status = apiErr.Status
		}
		outcome = strings.ToLower(code)
	case jobID != "":
		outcome = OutcomeJobSubmitted
	case !isSuccessStatus(status):
		outcome = OutcomeBackendError
	}
	if status == 0 {
		status = http.StatusBadGateway
	}

	if g.metrics != nil {
		g.metrics.RecordDispatch(sel.Provider, sel.Mode, outcome, duration)
	}
	if g.usage != nil {
		g.usage.RecordUsage(context.WithoutCancel(ctx), types.UsageRecord{
			RequestID:      env.RequestID,
			SessionID:      env.SessionID,
			Provider:       sel.Provider,
			RequestedModel: sel.RequestedModel,
			ResolvedModel:  sel.ResolvedModel,
			Mode:           sel.Mode,
			IsFallback:     sel.IsFallback,
			FilesCount:     env.FilesCount,
			StatusCode:     status,
			Outcome:        outcome,
			ErrorCode:      code,
			JobID:          jobID,
			DurationMs:     duration.Milliseconds(),
			Timestamp:      g.now().UTC(),
		})
	}
}

// recordFailure appends the error turn unless the request was superseded.
func (g *Gateway) recordFailure(ctx context.Context, sessionID string, token uint64, sel types.Selection, err error) {
	if sessionID == "" || apierrors.IsCode(err, apierrors.CodeRequestCancelled) {
		return
	}
	message := err.Error()
	if apiErr, ok := apierrors.AsAPIError(err); ok {
		message = apiErr.Message
	}
	g.sessions.AppendIfCurrent(sessionID, token, types.SessionMessage{
		Role:     "assistant",
		Content:  ErrorMessage(message),
		Model:    sel.ResolvedModel,
		Provider: sel.Provider,
	})
}

func superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrSuperseded)
}
