package proxy

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/aashari/go-generative-gateway/internal/errors"
	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/aashari/go-generative-gateway/internal/utils"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// invalidJSONExcerptLen bounds the raw backend text echoed in INVALID_JSON_FROM_AI.
const invalidJSONExcerptLen = 200

// NormalizedResponse is the single client-facing reply built from a backend answer.
type NormalizedResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// Summary of Body for session recording and job detection.
	Success      bool
	Content      string
	ErrorMessage string
	JobID        string
}

// ResponseProcessor converts backend replies into response envelopes.
type ResponseProcessor struct {
	now func() time.Time
}

// NewResponseProcessor creates a new response processor
func NewResponseProcessor() *ResponseProcessor {
	return &ResponseProcessor{now: time.Now}
}

// BuildMetadata returns the gateway-owned metadata of a reply.
func BuildMetadata(sel types.Selection, filesProcessed int, now time.Time) types.ResponseMetadata {
	return types.ResponseMetadata{
		Provider:       sel.Provider,
		ModelUsed:      sel.ResolvedModel,
		IsFallback:     sel.IsFallback,
		FilesProcessed: filesProcessed,
		Mode:           sel.Mode,
		ResponseTime:   now.UTC().Format(utils.TimestampFormat),
	}
}

// Normalize maps a backend reply onto exactly one envelope. Gateway-local
// failures (EMPTY_RESPONSE, INVALID_JSON_FROM_AI) are returned as *APIError.
func (p *ResponseProcessor) Normalize(ctx context.Context, reply *BackendReply, sel types.Selection, filesProcessed int) (*NormalizedResponse, error) {
	ctx = logger.WithComponent(ctx, logger.ComponentNames.ResponseProcessor)
	meta := BuildMetadata(sel, filesProcessed, p.now())
	provider := string(sel.Provider)

	// 1. Handle gzip the transport did not already undo
	body, err := decompressResponse(reply.Body, reply.Header.Get("Content-Encoding"))
	if err != nil {
		logger.Warn(ctx, "Backend reply could not be decompressed", "error_message", err.Error())
		return nil, apierrors.NewReadError(provider).WithCause(err)
	}

	// 2. Empty body is an error whatever the status
	if len(bytes.TrimSpace(body)) == 0 {
		logger.Warn(ctx, "Backend returned an empty body",
			"response_status_code", reply.StatusCode,
			"provider", provider)
		return nil, apierrors.NewEmptyResponseError(provider)
	}

	// 3. JSON replies keep their shape and gain metadata
	if strings.Contains(strings.ToLower(reply.ContentType), "json") {
		return p.normalizeJSON(ctx, reply.StatusCode, body, meta)
	}

	// 4. Plain text is wrapped
	return p.normalizeText(reply.StatusCode, body, meta)
}

func (p *ResponseProcessor) normalizeJSON(ctx context.Context, status int, body []byte, meta types.ResponseMetadata) (*NormalizedResponse, error) {
	provider := string(meta.Provider)
	trimmed := bytes.TrimSpace(body)
	if !gjson.ValidBytes(trimmed) {
		logger.Warn(ctx, "Backend declared JSON but sent invalid JSON",
			"response_status_code", status,
			"provider", provider)
		return nil, apierrors.NewInvalidJSONFromAIError(provider, excerpt(string(body), invalidJSONExcerptLen))
	}

	parsed := gjson.ParseBytes(trimmed)
	if !parsed.IsObject() {
		envelope := types.ResponseEnvelope{
			Success:          isSuccessStatus(status),
			Content:          json.RawMessage(parsed.Raw),
			ResponseMetadata: meta,
		}
		return p.marshalEnvelope(status, envelope, parsed.Raw)
	}

	merged, overwritten, err := mergeMetadata(trimmed, meta)
	if err != nil {
		return nil, apierrors.NewInternalError("failed to attach response metadata").WithCause(err)
	}
	if len(overwritten) > 0 {
		logger.Warn(logger.WithStage(ctx, logger.LogStages.MetadataMerged), "Backend reply set gateway-owned keys; overwritten",
			"overwritten_keys", overwritten)
	}

	// The backend's own success flag wins; the body is never given one.
	doc := gjson.ParseBytes(merged)
	success := isSuccessStatus(status)
	if flag := doc.Get("success"); flag.IsBool() {
		success = flag.Bool()
	}
	out := &NormalizedResponse{
		StatusCode: status,
		Header:     metadataHeaders(meta),
		Body:       merged,
		Success:    success,
		Content:    contentText(doc.Get("content")),
	}
	if !out.Success {
		out.ErrorMessage = errorText(doc.Get("error"))
	}
	out.JobID, _ = DetectJob(merged)
	return out, nil
}

func (p *ResponseProcessor) normalizeText(status int, body []byte, meta types.ResponseMetadata) (*NormalizedResponse, error) {
	text := string(body)
	if isSuccessStatus(status) {
		return p.marshalEnvelope(http.StatusOK, types.ResponseEnvelope{
			Success:          true,
			Content:          text,
			ResponseMetadata: meta,
		}, text)
	}
	return p.marshalEnvelope(status, types.ResponseEnvelope{
		Success: false,
		Error: &types.ResponseError{
			Message:  text,
			Code:     apierrors.CodeAIError,
			Status:   status,
			Provider: meta.Provider,
		},
		ResponseMetadata: meta,
	}, "")
}

func (p *ResponseProcessor) marshalEnvelope(status int, envelope types.ResponseEnvelope, content string) (*NormalizedResponse, error) {
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, apierrors.NewInternalError("failed to encode response").WithCause(err)
	}
	out := &NormalizedResponse{
		StatusCode: status,
		Header:     metadataHeaders(envelope.ResponseMetadata),
		Body:       data,
		Success:    envelope.Success,
		Content:    content,
	}
	if envelope.Error != nil {
		out.ErrorMessage = envelope.Error.Message
	}
	return out, nil
}

// mergeMetadata writes the six gateway-owned keys into a JSON object and
// reports which of them the backend had already set.
func mergeMetadata(body []byte, meta types.ResponseMetadata) ([]byte, []string, error) {
	fields := []struct {
		key   string
		value interface{}
	}{
		{"provider", meta.Provider},
		{"model_used", meta.ModelUsed},
		{"is_fallback", meta.IsFallback},
		{"files_processed", meta.FilesProcessed},
		{"mode", meta.Mode},
		{"response_time", meta.ResponseTime},
	}

	var overwritten []string
	out := body
	for _, f := range fields {
		if gjson.GetBytes(body, f.key).Exists() {
			overwritten = append(overwritten, f.key)
		}
		var err error
		if out, err = sjson.SetBytes(out, f.key, f.value); err != nil {
			return nil, nil, fmt.Errorf("set %s: %w", f.key, err)
		}
	}
	return out, overwritten, nil
}

func metadataHeaders(meta types.ResponseMetadata) http.Header {
	h := make(http.Header)
	h.Set(utils.HeaderContentType, utils.ContentTypeJSON)
	h.Set(utils.HeaderAIProvider, string(meta.Provider))
	h.Set(utils.HeaderModelUsed, meta.ModelUsed)
	h.Set(utils.HeaderIsFallback, strconv.FormatBool(meta.IsFallback))
	h.Set(utils.HeaderFilesProcessed, strconv.Itoa(meta.FilesProcessed))
	return h
}

// DetectJob returns the async job id carried by a JSON object reply under
// job_id or jobId.
func DetectJob(body []byte) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return "", false
	}
	for _, key := range []string{"job_id", "jobId"} {
		if v := doc.Get(key); v.Exists() {
			if id := strings.TrimSpace(v.String()); id != "" && v.Type != gjson.JSON {
				return id, true
			}
		}
	}
	return "", false
}

func contentText(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.String()
	case gjson.Null:
		return ""
	default:
		return v.Raw
	}
}

func errorText(v gjson.Result) string {
	if msg := v.Get("message"); msg.Type == gjson.String {
		return msg.String()
	}
	if v.Type == gjson.String {
		return v.String()
	}
	return ""
}

// decompressResponse handles gzip content encoding
func decompressResponse(body []byte, contentEncoding string) ([]byte, error) {
	if !strings.EqualFold(strings.TrimSpace(contentEncoding), "gzip") {
		return body, nil
	}
	reader, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	defer reader.Close()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decompress gzip reply: %w", err)
	}
	return decompressed, nil
}
