package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	apierrors "github.com/aashari/go-generative-gateway/internal/errors"
	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/models"
	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/aashari/go-generative-gateway/internal/utils"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	// DefaultMaxAttachmentBytes is the aggregate attachment ceiling (50 MiB).
	DefaultMaxAttachmentBytes int64 = 50 * 1024 * 1024
	// DefaultHistoryTurns is how many trailing history turns are forwarded.
	DefaultHistoryTurns = 15
)

// PayloadBuilder turns a validated inbound request and its Selection into the
// envelope POSTed to the backend.
type PayloadBuilder struct {
	files              *FileProcessor
	maxAttachmentBytes int64
	historyTurns       int
}

// NewPayloadBuilder creates a builder; non-positive limits use the defaults.
func NewPayloadBuilder(files *FileProcessor, maxAttachmentBytes int64, historyTurns int) *PayloadBuilder {
	if files == nil {
		files = NewFileProcessor()
	}
	if maxAttachmentBytes <= 0 {
		maxAttachmentBytes = DefaultMaxAttachmentBytes
	}
	if historyTurns <= 0 {
		historyTurns = DefaultHistoryTurns
	}
	return &PayloadBuilder{files: files, maxAttachmentBytes: maxAttachmentBytes, historyTurns: historyTurns}
}

// BuildEnvelope validates the attachment ceiling, transcodes attachments for
// the resolved provider, trims history and fills capability defaults.
// The only failure is FILE_SIZE_EXCEEDED, checked before any transcoding.
func (b *PayloadBuilder) BuildEnvelope(ctx context.Context, req *types.InboundRequest, sel types.Selection, now time.Time) (*types.OutboundEnvelope, error) {
	ctx = logger.WithComponent(ctx, logger.ComponentNames.Normalizer)

	totalSize := attachmentTotal(req.Files)
	if totalSize > b.maxAttachmentBytes {
		logger.Warn(ctx, "Attachment ceiling exceeded",
			"total_size", totalSize,
			"limit", b.maxAttachmentBytes,
			"files_count", len(req.Files))
		return nil, apierrors.NewFileSizeExceededError(FormatFileSize(totalSize), FormatFileSize(b.maxAttachmentBytes))
	}

	processed := b.files.TranscodeAll(req.Files, sel.Provider)
	if len(processed) > 0 {
		logger.Debug(logger.WithStage(ctx, logger.LogStages.Transcoding), "Attachments transcoded",
			"files_count", len(processed),
			"provider", string(sel.Provider))
	}

	history := ParseHistory(req.ConversationHistory, b.historyTurns)

	env := &types.OutboundEnvelope{
		Model:               sel.ResolvedModel,
		Provider:            sel.Provider,
		Mode:                sel.Mode,
		IsFallback:          sel.IsFallback,
		Timestamp:           now.UTC().Format(utils.TimestampFormat),
		Prompt:              req.Prompt,
		SessionID:           req.SessionID,
		RequestID:           logger.RequestIDFromContext(ctx),
		ProcessedFiles:      processed,
		FilesCount:          len(processed),
		ConversationHistory: history,
		Passthrough:         req.Passthrough,
	}
	if req.Model != "" {
		original := req.Model
		env.OriginalModel = &original
	}

	if req.MaxTokens != nil {
		env.MaxTokens = *req.MaxTokens
	} else {
		env.MaxTokens = models.DefaultMaxTokens(sel.ResolvedModel)
	}
	if req.Temperature != nil {
		env.Temperature = *req.Temperature
	} else {
		env.Temperature = models.DefaultTemperature(sel.ResolvedModel)
	}

	logger.Debug(logger.WithStage(ctx, logger.LogStages.Normalization), "Envelope built",
		"model", env.Model,
		"provider", string(env.Provider),
		"mode", string(env.Mode),
		"history_turns", len(history),
		"max_tokens", env.MaxTokens)
	return env, nil
}

// attachmentTotal sums the declared sizes, saturating at math.MaxInt64.
func attachmentTotal(files []types.Attachment) int64 {
	var total int64
	for _, f := range files {
		if f.Size <= 0 {
			continue
		}
		if f.Size > math.MaxInt64-total {
			return math.MaxInt64
		}
		total += f.Size
	}
	return total
}

// ParseHistory keeps the last limit well-formed turns of a raw history value.
// Anything that is not an array yields an empty history; items that are not
// objects with a string role are skipped. Non-string content is kept as raw JSON.
func ParseHistory(raw json.RawMessage, limit int) []types.HistoryTurn {
	turns := []types.HistoryTurn{}
	if len(raw) == 0 {
		return turns
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return turns
	}
	parsed.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		role := item.Get("role")
		if role.Type != gjson.String {
			return true
		}
		content := item.Get("content")
		text := content.String()
		if content.Type == gjson.JSON {
			text = content.Raw
		}
		turns = append(turns, types.HistoryTurn{Role: role.String(), Content: text})
		return true
	})
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns
}

// EncodeEnvelope serializes env with client passthrough fields first and the
// gateway fields on top, so a client can never override a gateway field.
func EncodeEnvelope(env *types.OutboundEnvelope) ([]byte, error) {
	body := []byte(`{}`)
	var err error
	for _, key := range sortedKeys(env.Passthrough) {
		raw := env.Passthrough[key]
		// an empty key has no sjson path
		if key == "" || !gjson.ValidBytes(raw) {
			continue
		}
		if body, err = sjson.SetRawBytes(body, escapeJSONKey(key), raw); err != nil {
			return nil, fmt.Errorf("set passthrough field %q: %w", key, err)
		}
	}

	gateway, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	var setErr error
	gjson.ParseBytes(gateway).ForEach(func(key, value gjson.Result) bool {
		body, setErr = sjson.SetRawBytes(body, escapeJSONKey(key.String()), []byte(value.Raw))
		return setErr == nil
	})
	if setErr != nil {
		return nil, fmt.Errorf("set gateway field: %w", setErr)
	}
	return body, nil
}
