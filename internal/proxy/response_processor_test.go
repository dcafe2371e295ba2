package proxy

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	apierrors "github.com/aashari/go-generative-gateway/internal/errors"
	"github.com/aashari/go-generative-gateway/internal/selector"
	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestProcessor() *ResponseProcessor {
	p := NewResponseProcessor()
	p.now = func() time.Time { return fixedNow }
	return p
}

func reply(status int, contentType, body string) *BackendReply {
	h := make(http.Header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &BackendReply{StatusCode: status, ContentType: contentType, Header: h, Body: []byte(body)}
}

func TestNormalize_EmptyBody(t *testing.T) {
	p := newTestProcessor()
	sel := selector.Resolve("gpt-4o", "")

	for _, status := range []int{200, 500} {
		for _, body := range []string{"", "   \n\t"} {
			_, err := p.Normalize(context.Background(), reply(status, "application/json", body), sel, 0)
			require.Error(t, err)
			apiErr, ok := apierrors.AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, apierrors.CodeEmptyResponse, apiErr.Code)
			assert.Equal(t, http.StatusBadGateway, apiErr.Status)
			assert.Equal(t, "Empty response from OPENAI", apiErr.Message)
		}
	}
}

func TestNormalize_InvalidJSON(t *testing.T) {
	p := newTestProcessor()
	body := "{not json" + strings.Repeat("x", 300)

	_, err := p.Normalize(context.Background(), reply(200, "application/json; charset=utf-8", body), selector.Resolve("", ""), 0)
	apiErr, ok := apierrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.CodeInvalidJSONFromAI, apiErr.Code)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Len(t, apiErr.Details, 200)
	assert.Equal(t, body[:200], apiErr.Details)
}

func TestNormalize_JSONObject(t *testing.T) {
	p := newTestProcessor()
	sel := selector.Resolve("gpt-5", "")

	backend := `{"content":"hi there","usage":{"tokens":12},"provider":"spoofed","model_used":"x"}`
	out, err := p.Normalize(context.Background(), reply(201, "application/json", backend), sel, 2)
	require.NoError(t, err)

	assert.Equal(t, 201, out.StatusCode)
	doc := gjson.ParseBytes(out.Body)
	assert.Equal(t, "openai", doc.Get("provider").String())
	assert.Equal(t, "gpt-4o", doc.Get("model_used").String())
	assert.True(t, doc.Get("is_fallback").Bool())
	assert.Equal(t, int64(2), doc.Get("files_processed").Int())
	assert.Equal(t, "chat", doc.Get("mode").String())
	assert.Equal(t, "2026-03-01T12:30:45.123Z", doc.Get("response_time").String())
	assert.False(t, doc.Get("success").Exists())
	assert.Equal(t, int64(12), doc.Get("usage.tokens").Int())

	var keys []string
	doc.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	assert.ElementsMatch(t, []string{"content", "usage", "provider", "model_used", "is_fallback", "files_processed", "mode", "response_time"}, keys)
	assert.Equal(t, "hi there", doc.Get("content").String())

	assert.True(t, out.Success)
	assert.Equal(t, "hi there", out.Content)

	assert.Equal(t, "application/json", out.Header.Get("Content-Type"))
	assert.Equal(t, "openai", out.Header.Get("x-ai-provider"))
	assert.Equal(t, "gpt-4o", out.Header.Get("x-model-used"))
	assert.Equal(t, "true", out.Header.Get("x-is-fallback"))
	assert.Equal(t, "2", out.Header.Get("x-files-processed"))
}

func TestNormalize_JSONObjectKeepsBackendSuccess(t *testing.T) {
	p := newTestProcessor()
	backend := `{"success":false,"error":{"message":"quota exhausted"}}`

	out, err := p.Normalize(context.Background(), reply(200, "application/json", backend), selector.Resolve("", ""), 0)
	require.NoError(t, err)
	assert.False(t, gjson.GetBytes(out.Body, "success").Bool())
	assert.False(t, out.Success)
	assert.Equal(t, "quota exhausted", out.ErrorMessage)
}

func TestNormalize_JSONObjectNonSuccessStatus(t *testing.T) {
	p := newTestProcessor()
	out, err := p.Normalize(context.Background(), reply(503, "application/json", `{"message":"down"}`), selector.Resolve("", ""), 0)
	require.NoError(t, err)
	assert.Equal(t, 503, out.StatusCode)
	assert.False(t, gjson.GetBytes(out.Body, "success").Exists())
	assert.False(t, out.Success)
	assert.Equal(t, "down", gjson.GetBytes(out.Body, "message").String())
}

func TestNormalize_JSONNonObject(t *testing.T) {
	p := newTestProcessor()
	sel := selector.Resolve("gemini-1.5-pro", "")

	tests := []struct {
		body        string
		wantContent string
	}{
		{`["a","b"]`, `["a","b"]`},
		{`"just a string"`, `"just a string"`},
		{`42`, `42`},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			out, err := p.Normalize(context.Background(), reply(200, "application/json", tt.body), sel, 0)
			require.NoError(t, err)
			doc := gjson.ParseBytes(out.Body)
			assert.True(t, doc.Get("success").Bool())
			assert.JSONEq(t, tt.wantContent, doc.Get("content").Raw)
			assert.Equal(t, "google", doc.Get("provider").String())
			assert.Equal(t, "gemini-1.5-pro", doc.Get("model_used").String())
		})
	}
}

func TestNormalize_PlainText(t *testing.T) {
	p := newTestProcessor()
	sel := selector.Resolve("claude-3-haiku-20240307", "")

	out, err := p.Normalize(context.Background(), reply(202, "text/plain", "Hello from the model"), sel, 1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, out.StatusCode)
	doc := gjson.ParseBytes(out.Body)
	assert.True(t, doc.Get("success").Bool())
	assert.Equal(t, "Hello from the model", doc.Get("content").String())
	assert.Equal(t, "claude", doc.Get("provider").String())
	assert.Equal(t, int64(1), doc.Get("files_processed").Int())
	assert.False(t, doc.Get("error").Exists())
	assert.Equal(t, "Hello from the model", out.Content)

	out, err = p.Normalize(context.Background(), reply(429, "", "slow down"), sel, 0)
	require.NoError(t, err)
	assert.Equal(t, 429, out.StatusCode)
	doc = gjson.ParseBytes(out.Body)
	assert.False(t, doc.Get("success").Bool())
	assert.Equal(t, "slow down", doc.Get("error.message").String())
	assert.Equal(t, "AI_ERROR", doc.Get("error.code").String())
	assert.Equal(t, int64(429), doc.Get("error.status").Int())
	assert.Equal(t, "claude", doc.Get("error.provider").String())
	assert.Equal(t, "slow down", out.ErrorMessage)
}

func TestNormalize_GzipBody(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(`{"content":"zipped"}`))
	require.NoError(t, zw.Close())

	r := reply(200, "application/json", buf.String())
	r.Header.Set("Content-Encoding", "gzip")

	out, err := newTestProcessor().Normalize(context.Background(), r, selector.Resolve("", ""), 0)
	require.NoError(t, err)
	assert.Equal(t, "zipped", out.Content)
}

func TestNormalize_DetectsJob(t *testing.T) {
	out, err := newTestProcessor().Normalize(context.Background(),
		reply(202, "application/json", `{"jobId":"job-42","status":"pending"}`), selector.Resolve("veo-3", ""), 0)
	require.NoError(t, err)
	assert.Equal(t, "job-42", out.JobID)
	assert.Equal(t, string(types.ModeVideo), gjson.GetBytes(out.Body, "mode").String())
}

func TestDetectJob(t *testing.T) {
	tests := []struct {
		body   string
		wantID string
		wantOK bool
	}{
		{`{"job_id":"abc"}`, "abc", true},
		{`{"jobId":"def"}`, "def", true},
		{`{"job_id":"","jobId":"ghi"}`, "ghi", true},
		{`{"job_id":123}`, "123", true},
		{`{"job_id":""}`, "", false},
		{`{"job_id":{"nested":1}}`, "", false},
		{`{"content":"no job"}`, "", false},
		{`["job_id"]`, "", false},
		{`not json`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			id, ok := DetectJob([]byte(tt.body))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
