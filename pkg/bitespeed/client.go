// Package bitespeed is a thin client for a contact identification service
// exposing /health and /identify over HTTP/JSON.
package bitespeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Aryanshaw/bitespeed-client/pkg/httpclient"
)

const (
	healthPath   = "/health"
	identifyPath = "/identify"

	defaultTimeout = 15 * time.Second
)

// StatusError reports an identify response with a non-2xx HTTP status.
type StatusError struct {
	Code    int
	Snippet string
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("identify returned status %d", e.Code)
	}
	return fmt.Sprintf("identify returned status %d: %s", e.Code, e.Snippet)
}

// Client performs health and identify calls against a fixed base URL.
// It holds no mutable state; concurrent calls are independent.
type Client struct {
	baseURL string
	http    httpclient.Client
	log     Logger
}

// New constructs a Client for the given base URL. A nil http client falls
// back to a resty transport with a default timeout; a nil logger disables
// the client's diagnostic logging.
func New(baseURL string, hc httpclient.Client, log Logger) *Client {
	if hc == nil {
		hc = httpclient.NewRestyClient(defaultTimeout)
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    hc,
		log:     ensureLogger(log),
	}
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// CheckHealth reports whether the service is reachable and healthy.
// Only statuses 200 and 201 count as healthy; identify accepts the full 2xx
// range instead, and that asymmetry is part of the contract. All failures,
// transport or protocol, collapse to false: the cause is logged at debug
// level and never returned.
func (c *Client) CheckHealth(ctx context.Context) bool {
	resp, err := c.http.Get(ctx, c.baseURL+healthPath, nil)
	if err != nil {
		c.log.DebugObj("health check transport failure", "health_error", map[string]any{
			"base_url": c.baseURL,
			"error":    err.Error(),
		})
		return false
	}

	code := resp.StatusCode()
	if code == http.StatusOK || code == http.StatusCreated {
		return true
	}
	c.log.DebugObj("health check returned unhealthy status", "health_status", map[string]any{
		"base_url": c.baseURL,
		"status":   code,
	})
	return false
}

// Identify submits the request to the identify endpoint and returns the
// parsed response. The payload passes through as-is: no field validation is
// performed here. A non-2xx status yields a *StatusError; transport and
// body-decode failures are returned wrapped. Nothing is recovered locally
// and no retries are attempted.
func (c *Client) Identify(ctx context.Context, req IdentifyRequest) (*ContactResponse, error) {
	resp, err := c.http.Post(ctx, c.baseURL+identifyPath, nil, req)
	if err != nil {
		return nil, fmt.Errorf("identify request: %w", err)
	}

	code := resp.StatusCode()
	if code < http.StatusOK || code > 299 {
		return nil, &StatusError{Code: code, Snippet: bodySnippet(resp.Body())}
	}

	var out ContactResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode identify response: %w", err)
	}
	return &out, nil
}

// bodySnippet trims the response body for inclusion in error messages.
func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
