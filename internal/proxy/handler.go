package proxy

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	apierrors "github.com/aashari/go-generative-gateway/internal/errors"
	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/validator"
)

// bodyOverhead covers base64 expansion and JSON framing on top of the
// attachment ceiling when bounding the raw request body.
const bodyOverhead = 2

// ProxyHandler exposes the gateway over HTTP.
type ProxyHandler struct {
	gateway      *Gateway
	maxBodyBytes int64
}

// NewProxyHandler creates the HTTP handler of the gateway endpoint.
// maxAttachmentBytes bounds the request body; non-positive uses the default ceiling.
func NewProxyHandler(gateway *Gateway, maxAttachmentBytes int64) *ProxyHandler {
	if maxAttachmentBytes <= 0 {
		maxAttachmentBytes = DefaultMaxAttachmentBytes
	}
	return &ProxyHandler{
		gateway:      gateway,
		maxBodyBytes: maxAttachmentBytes * bodyOverhead,
	}
}

// HandleGateway handles POST /api/ai-gateway
// @Summary      Dispatch a generation request
// @Description  Resolves model and provider, transcodes attachments, dispatches to the orchestration backend and returns one normalized envelope
// @Tags         gateway
// @Accept       json
// @Produce      json
// @Param        request  body      types.InboundRequest  true  "Gateway request"
// @Success      200      {object}  types.ResponseEnvelope
// @Failure      400      {object}  errors.ErrorResponse  "INVALID_JSON or VALIDATION_ERROR"
// @Failure      409      {object}  errors.ErrorResponse  "REQUEST_CANCELLED"
// @Failure      413      {object}  errors.ErrorResponse  "FILE_SIZE_EXCEEDED"
// @Failure      502      {object}  errors.ErrorResponse  "Backend failure"
// @Failure      504      {object}  errors.ErrorResponse  "TIMEOUT"
// @Router       /api/ai-gateway [post]
func (ph *ProxyHandler) HandleGateway(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithComponent(r.Context(), logger.ComponentNames.Handler)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, ph.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.HandleErrorCtx(ctx, w, apierrors.NewAPIErrorWithCode(apierrors.ErrorTypeInvalidInput,
				fmt.Sprintf("Request body exceeds the %s limit", FormatFileSize(tooLarge.Limit)),
				apierrors.CodeFileSizeExceeded, http.StatusRequestEntityTooLarge), 0)
			return
		}
		apierrors.HandleErrorCtx(ctx, w, apierrors.NewInvalidJSONError(err), 0)
		return
	}

	req, err := validator.DecodeRequest(body)
	if err != nil {
		apierrors.HandleErrorCtx(ctx, w, err, 0)
		return
	}
	logger.Info(logger.WithStage(ctx, logger.LogStages.RequestValidated), "Gateway request accepted",
		"request_model", req.Model,
		"request_mode", req.Mode,
		"request_files", len(req.Files),
		"request_body_bytes", len(body))

	resp, err := ph.gateway.Process(ctx, req)
	if err != nil {
		apierrors.HandleErrorCtx(ctx, w, err, 0)
		return
	}

	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		logger.Warn(ctx, "Failed to write gateway response", "error", err.Error())
		return
	}

	logger.Info(logger.WithStage(ctx, logger.LogStages.ResponseSent), "Gateway response sent",
		"response_status_code", resp.StatusCode,
		"response_success", resp.Success,
		"job_id", resp.JobID)
}
