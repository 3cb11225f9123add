// Package codeapi is a client for a remote code-execution API exposing
// POST /execute and GET /health.
package codeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jmylchreest/execprobe/internal/observability"
	"github.com/jmylchreest/execprobe/internal/urlutil"
	"github.com/jmylchreest/execprobe/pkg/httpclient"
)

// Header names sent with every request.
const (
	HeaderAPIKey      = "X-API-Key"
	HeaderOrigin      = "Origin"
	HeaderContentType = "Content-Type"
)

// HealthSegment replaces the last path segment of the execute URL to form
// the health URL.
const HealthSegment = "health"

// ClientOptions configures a Client.
type ClientOptions struct {
	ExecuteURL string
	// HealthURL overrides the URL derived from ExecuteURL.
	HealthURL  string
	APIKey     string
	Origin     string
	HTTPClient *httpclient.Client
	Logger     *slog.Logger
}

// Client talks to one code-execution API.
type Client struct {
	http       *httpclient.Client
	executeURL string
	healthURL  string
	apiKey     string
	origin     string
	logger     *slog.Logger
}

// NewClient creates a Client. The health URL is derived from the execute URL
// unless given explicitly.
func NewClient(opts ClientOptions) (*Client, error) {
	healthURL := opts.HealthURL
	if healthURL == "" {
		var err error
		healthURL, err = urlutil.SiblingEndpoint(opts.ExecuteURL, HealthSegment)
		if err != nil {
			return nil, fmt.Errorf("deriving health url: %w", err)
		}
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = httpclient.NewWithDefaults()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		http:       hc,
		executeURL: opts.ExecuteURL,
		healthURL:  healthURL,
		apiKey:     opts.APIKey,
		origin:     opts.Origin,
		logger:     observability.WithComponent(logger, "codeapi"),
	}, nil
}

// ExecuteURL returns the endpoint code is submitted to.
func (c *Client) ExecuteURL() string { return c.executeURL }

// HealthURL returns the endpoint used for the health check.
func (c *Client) HealthURL() string { return c.healthURL }

// Health fetches the service health. Non-2xx responses yield a *StatusError.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating health request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return decodeHealthStatus(body)
}

// Execute submits code for execution. Non-2xx responses yield a *StatusError;
// bodies missing required fields yield ErrMalformedResponse.
func (c *Client) Execute(ctx context.Context, payload ExecuteRequest) (*ExecutionResult, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.executeURL, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("creating execute request: %w", err)
	}
	req.Header.Set(HeaderContentType, "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return decodeExecutionResult(body)
}

// do sends req with the auth headers and returns the body of a 2xx response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	requestID := uuid.NewString()
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set(HeaderOrigin, c.origin)
	req.Header.Set(httpclient.HeaderRequestID, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observability.WithRequestID(c.logger, requestID).Debug("non-success response",
			slog.String("url", req.URL.Redacted()),
			slog.Int("status", resp.StatusCode),
		)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
