package types

import (
	"encoding/json"
	"time"
)

// Attachment is a client-uploaded file. Data holds the base64 encoded bytes;
// some clients send the same payload under "content".
type Attachment struct {
	ID       string `json:"id,omitempty" example:"f1a2b3"`
	Name     string `json:"name" validate:"max=512" example:"notes.txt"`
	Type     string `json:"type,omitempty" example:"text"`
	Size     int64  `json:"size" validate:"gte=0" example:"1024"`
	MimeType string `json:"mimeType" validate:"max=255" example:"text/plain"`
	Data     string `json:"data,omitempty"`
	Content  string `json:"content,omitempty"`
}

// EncodedContent returns the base64 payload regardless of which field carried it.
func (a Attachment) EncodedContent() string {
	if a.Data != "" {
		return a.Data
	}
	return a.Content
}

// ContentKind discriminates TranscodedAttachment variants.
type ContentKind string

const (
	ContentKindImage    ContentKind = "image"
	ContentKindText     ContentKind = "text"
	ContentKindDocument ContentKind = "document"
)

// InlineData is the nested image shape expected by the google backend.
type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// TranscodedAttachment is the provider-specific encoding of an Attachment.
// Exactly one of Data, InlineData, TextContent or Summary is meaningful,
// selected by ContentType.
type TranscodedAttachment struct {
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name"`
	Type        string      `json:"type,omitempty"`
	Size        int64       `json:"size"`
	MimeType    string      `json:"mimeType"`
	ContentType ContentKind `json:"content_type"`
	Data        string      `json:"data,omitempty"`
	InlineData  *InlineData `json:"inline_data,omitempty"`
	TextContent string      `json:"text_content,omitempty"`
	Summary     string      `json:"summary,omitempty"`
}

// HistoryTurn is one prior conversation turn.
type HistoryTurn struct {
	Role    string `json:"role" example:"user"`
	Content string `json:"content" example:"Hello"`
}

// InboundRequest is the client-facing request body.
type InboundRequest struct {
	Model               string          `json:"model" example:"claude-3-5-sonnet-20241022"`
	Prompt              string          `json:"prompt" example:"Summarize the attached file"`
	Mode                string          `json:"mode,omitempty" example:"chat"`
	SessionID           string          `json:"session_id,omitempty" validate:"omitempty,max=128" example:"sess_123"`
	Files               []Attachment    `json:"files,omitempty" validate:"omitempty,dive"`
	ConversationHistory json.RawMessage `json:"conversation_history,omitempty" swaggertype:"array,object"`
	MaxTokens           *int            `json:"max_tokens,omitempty" validate:"omitempty,gt=0" example:"4096"`
	Temperature         *float64        `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2" example:"0.7"`

	// Passthrough holds client fields the gateway does not interpret; they are forwarded untouched.
	Passthrough map[string]json.RawMessage `json:"-"`
}

// OutboundEnvelope is the normalized body POSTed to the backend webhook.
type OutboundEnvelope struct {
	Model               string                 `json:"model"`
	Provider            Provider               `json:"provider"`
	Mode                Mode                   `json:"mode"`
	OriginalModel       *string                `json:"original_model"`
	IsFallback          bool                   `json:"is_fallback"`
	Timestamp           string                 `json:"timestamp"`
	Prompt              string                 `json:"prompt"`
	SessionID           string                 `json:"session_id,omitempty"`
	RequestID           string                 `json:"request_id,omitempty"`
	ProcessedFiles      []TranscodedAttachment `json:"processed_files"`
	FilesCount          int                    `json:"files_count"`
	ConversationHistory []HistoryTurn          `json:"conversation_history"`
	MaxTokens           int                    `json:"max_tokens"`
	Temperature         float64                `json:"temperature"`

	Passthrough map[string]json.RawMessage `json:"-"`
}

// ResponseMetadata is the resolution metadata the gateway owns on every reply.
type ResponseMetadata struct {
	Provider       Provider `json:"provider"`
	ModelUsed      string   `json:"model_used"`
	IsFallback     bool     `json:"is_fallback"`
	FilesProcessed int      `json:"files_processed"`
	Mode           Mode     `json:"mode"`
	ResponseTime   string   `json:"response_time"`
}

// ResponseError is the error object of a non-2xx plain-text backend reply.
type ResponseError struct {
	Message  string   `json:"message"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Provider Provider `json:"provider,omitempty"`
}

// ResponseEnvelope is the uniform client-facing reply shape.
type ResponseEnvelope struct {
	Success bool           `json:"success"`
	Content interface{}    `json:"content,omitempty"`
	Error   *ResponseError `json:"error,omitempty"`
	ResponseMetadata
}

// SessionMessage is one entry of a session's message list.
type SessionMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Model     string    `json:"model,omitempty"`
	Provider  Provider  `json:"provider,omitempty"`
	JobID     string    `json:"job_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionMessagesResponse is returned by the session messages endpoint.
type SessionMessagesResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []SessionMessage `json:"messages"`
}

// ModelsResponse represents the response from the models endpoint
type ModelsResponse struct {
	Object string      `json:"object" example:"list"`
	Data   []ModelInfo `json:"data"`
}

// ModelInfo is one catalog entry with resolution details.
type ModelInfo struct {
	ID           string        `json:"id" example:"gpt-4o"`
	Object       string        `json:"object" example:"model"`
	Name         string        `json:"name" example:"GPT-4o"`
	OwnedBy      Provider      `json:"owned_by" example:"openai"`
	Tier         ModelTier     `json:"tier" example:"flagship"`
	Valid        bool          `json:"valid"`
	FallbackTo   string        `json:"fallback_to,omitempty" example:"gpt-4o"`
	Capabilities *Capabilities `json:"capabilities,omitempty"`
}
