// Package httpclient builds the outbound HTTP clients used to reach the
// orchestration backend.
package httpclient

import (
	"net/http"
	"time"

	"github.com/aashari/go-generative-gateway/internal/utils"
)

// Options holds HTTP client configuration options
type Options struct {
	// Timeout is the whole-exchange limit. Zero leaves timing to the request context.
	Timeout   time.Duration
	UserAgent string
}

// Factory creates configured HTTP clients that share one transport.
type Factory struct {
	defaultOptions Options
	transport      http.RoundTripper
}

// NewFactory creates a new HTTP client factory with default options
func NewFactory(defaultOptions Options) *Factory {
	if defaultOptions.UserAgent == "" {
		defaultOptions.UserAgent = utils.UserAgent
	}
	return &Factory{
		defaultOptions: defaultOptions,
		transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}

// CreateClient creates a new HTTP client with the specified options
func (f *Factory) CreateClient(options Options) *http.Client {
	if options.Timeout == 0 {
		options.Timeout = f.defaultOptions.Timeout
	}
	if options.UserAgent == "" {
		options.UserAgent = f.defaultOptions.UserAgent
	}
	return &http.Client{
		Timeout:   options.Timeout,
		Transport: &userAgentTransport{base: f.transport, userAgent: options.UserAgent},
	}
}

// CreateDefaultClient creates a client with default options
func (f *Factory) CreateDefaultClient() *http.Client {
	return f.CreateClient(Options{})
}

// userAgentTransport fills User-Agent on requests that do not set one.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(utils.HeaderUserAgent) != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set(utils.HeaderUserAgent, t.userAgent)
	return t.base.RoundTrip(clone)
}
