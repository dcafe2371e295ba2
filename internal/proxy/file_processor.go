package proxy

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/aashari/go-generative-gateway/internal/utils"
	"github.com/gabriel-vasile/mimetype"
)

// UnreadableContent replaces text attachments whose payload is not valid base64.
const UnreadableContent = "[file content could not be read]"

var textMimePrefixes = []string{
	"text/",
	"application/json",
	"application/javascript",
	"application/xml",
	"application/csv",
}

// FileProcessor transcodes client attachments into the per-provider shape
// the backend expects. It performs no I/O and never fails.
type FileProcessor struct {
	sniffUntyped bool
}

// NewFileProcessor creates a new file processor that sniffs the type of
// attachments sent without a usable MIME type.
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{sniffUntyped: true}
}

// TranscodeAll returns exactly one transcoded attachment per input, in order.
func (f *FileProcessor) TranscodeAll(files []types.Attachment, provider types.Provider) []types.TranscodedAttachment {
	out := make([]types.TranscodedAttachment, 0, len(files))
	for _, file := range files {
		out = append(out, f.Transcode(file, provider))
	}
	return out
}

// Transcode classifies one attachment as image, text or document and encodes
// it for provider.
func (f *FileProcessor) Transcode(file types.Attachment, provider types.Provider) types.TranscodedAttachment {
	mimeType := file.MimeType
	if f.sniffUntyped && isUntyped(mimeType) {
		mimeType = sniffMimeType(file.EncodedContent(), mimeType)
	}

	out := types.TranscodedAttachment{
		ID:       file.ID,
		Name:     file.Name,
		Type:     file.Type,
		Size:     file.Size,
		MimeType: mimeType,
	}
	payload := file.EncodedContent()

	switch {
	case isImage(mimeType, provider):
		out.ContentType = types.ContentKindImage
		if provider == types.ProviderGoogle {
			out.InlineData = &types.InlineData{MimeType: mimeType, Data: payload}
		} else {
			out.Data = payload
		}
	case isTextFile(mimeType):
		out.ContentType = types.ContentKindText
		out.TextContent = decodeBase64Text(payload)
	default:
		out.ContentType = types.ContentKindDocument
		out.Summary = documentSummary(file.Name, file.Size, mimeType, provider)
	}
	return out
}

func isImage(mimeType string, provider types.Provider) bool {
	if !strings.HasPrefix(mimeType, "image/") {
		return false
	}
	// openai vision rejects svg
	return provider != types.ProviderOpenAI || mimeType != "image/svg+xml"
}

func isTextFile(mimeType string) bool {
	for _, prefix := range textMimePrefixes {
		if strings.Contains(mimeType, prefix) {
			return true
		}
	}
	return false
}

func isUntyped(mimeType string) bool {
	m := strings.TrimSpace(mimeType)
	return m == "" || m == utils.ContentTypeOctetStream
}

// sniffMimeType detects the type from the decoded payload; fallback is
// returned when the payload cannot be decoded or is unrecognized.
func sniffMimeType(encoded, fallback string) string {
	raw, err := decodeBase64(encoded)
	if err != nil || len(raw) == 0 {
		return fallback
	}
	detected := mimetype.Detect(raw).String()
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	if detected == "" {
		return fallback
	}
	return detected
}

func decodeBase64(encoded string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			return -1
		}
		return r
	}, encoded)

	raw, err := base64.StdEncoding.DecodeString(cleaned)
	if err == nil {
		return raw, nil
	}
	// tolerate missing padding
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(cleaned, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}

func decodeBase64Text(encoded string) string {
	raw, err := decodeBase64(encoded)
	if err != nil {
		return UnreadableContent
	}
	return string(raw)
}

func documentSummary(name string, size int64, mimeType string, provider types.Provider) string {
	switch provider {
	case types.ProviderOpenAI:
		return fmt.Sprintf("File uploaded: %s (%d bytes, %s)", name, size, mimeType)
	case types.ProviderGoogle:
		return fmt.Sprintf("File: %s (%s)", name, FormatFileSize(size))
	default:
		return fmt.Sprintf("File: %s (%d bytes, %s)", name, size, mimeType)
	}
}

// FormatFileSize renders a byte count as B, KB or MB with at most one decimal.
// MB is the largest unit.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB"}
	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	return trimDecimal(value) + " " + units[i]
}

func trimDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}
