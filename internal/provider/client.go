// Package provider issues streaming chat-completion requests to the
// third-party inference endpoint and hands the raw response body back to the
// relay. It persists nothing and injects no message content of its own.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"beet-chat/backend/internal/models"
	"beet-chat/backend/pkg/config"
	"beet-chat/backend/pkg/errors"
)

// completionRequest is the provider's chat-completion request body.
type completionRequest struct {
	Model     string           `json:"model"`
	Messages  []models.Message `json:"messages"`
	Stream    bool             `json:"stream"`
	MaxTokens int              `json:"max_tokens"`
}

// Client talks to one inference endpoint.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewClient builds a client from the application config.
func NewClient() *Client {
	cfg := config.Get()
	return &Client{
		url:        cfg.Provider.URL,
		token:      cfg.Provider.Token,
		httpClient: newStreamingHTTPClient(cfg.Provider.Timeout),
	}
}

// newStreamingHTTPClient bounds connection establishment and the wait for
// response headers, never body reads: a healthy generation may stream for
// longer than any fixed deadline. An in-flight read is stopped by cancelling
// the request context.
func newStreamingHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
		},
	}
}

// NewClientWithOptions builds a client with explicit settings, used by tests
// and by hosts that manage their own transport.
func NewClientWithOptions(url, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{url: url, token: token, httpClient: httpClient}
}

// Complete issues one streaming chat-completion request and returns the raw
// response body. The caller owns the body and must close it; cancelling ctx
// aborts both the dial and any in-flight read. The message list must already
// carry the system message first.
func (c *Client) Complete(ctx context.Context, upstreamID string, messages []models.Message, maxTokens int) (io.ReadCloser, error) {
	body := completionRequest{
		Model:     upstreamID,
		Messages:  messages,
		Stream:    true,
		MaxTokens: maxTokens,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpstreamUnavailableError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, errors.NewUpstreamRejectedError(resp.StatusCode)
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, errors.NewUpstreamEmptyBodyError()
	}

	return resp.Body, nil
}
