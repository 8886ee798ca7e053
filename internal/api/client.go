/**
 * API Client for the opiniowanie document service
 *
 * Single typed client over the backend's REST surface. Consolidates the
 * request handling every controller used to duplicate:
 * - JSON bodies decoded into caller structs, everything else returned raw
 * - non-2xx statuses turned into structured HTTP errors
 * - url-encoded form posts for the update/summarize endpoints
 * - an explicit retry helper with exponential backoff (base 1s, doubling)
 *
 * The client never retries on its own; callers opt in via RequestWithRetry.
 */

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stachuman/opiniowanie-serwis/internal/errors"
	"github.com/stachuman/opiniowanie-serwis/internal/logging"
)

// Client handles communication with the opiniowanie backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger

	maxRetries     int
	retryBaseDelay time.Duration
}

// Options configures a Client beyond its base URL.
type Options struct {
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	Logger         *logging.Logger
}

// NewClient creates a new API client
func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryBaseDelay == 0 {
		opts.RetryBaseDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger("ApiClient")
	}

	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: opts.Timeout},
		logger:         opts.Logger,
		maxRetries:     opts.MaxRetries,
		retryBaseDelay: opts.RetryBaseDelay,
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs an HTTP request against the backend. When out is non-nil
// and the response carries application/json, the body is decoded into out.
// The raw body is always returned so text responses stay accessible.
func (c *Client) Request(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Request failed", "method", method, "path", path, "error", err)
		return nil, errors.NewNetworkError("", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkError("", fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Backend returned error status",
			"method", method, "path", path, "status", resp.StatusCode)
		return respBody, errors.NewHTTPStatusError("", resp.StatusCode, string(respBody))
	}

	if out != nil && strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(respBody, out); err != nil {
			return respBody, fmt.Errorf("failed to parse response: %w (raw response: %s)", err, truncate(respBody, 200))
		}
	}

	return respBody, nil
}

// RequestWithRetry retries failed requests with exponential backoff.
// Attempts = maxRetries + 1; delays are base, 2*base, 4*base, ...
func (c *Client) RequestWithRetry(ctx context.Context, method, path string, makeBody func() (io.Reader, string), out interface{}) ([]byte, error) {
	var lastErr error
	var lastBody []byte

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var body io.Reader
		var contentType string
		if makeBody != nil {
			body, contentType = mustBody(makeBody)
		}

		respBody, err := c.Request(ctx, method, path, body, contentType, out)
		if err == nil {
			return respBody, nil
		}
		lastErr = err
		lastBody = respBody

		if attempt < c.maxRetries {
			delay := c.retryBaseDelay * (1 << attempt)
			c.logger.Warn("Request failed, retrying",
				"path", path, "attempt", attempt+1, "delay", delay, "error", err)
			select {
			case <-ctx.Done():
				return lastBody, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return lastBody, lastErr
}

// getJSON issues a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	_, err := c.Request(ctx, http.MethodGet, path, nil, "", out)
	return err
}

// postJSON issues a POST with a JSON body and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	_, err = c.Request(ctx, http.MethodPost, path, bytes.NewReader(reqBody), "application/json", out)
	return err
}

// postForm issues a POST with url-encoded form fields and decodes the
// response into out.
func (c *Client) postForm(ctx context.Context, path string, fields url.Values, out interface{}) error {
	_, err := c.Request(ctx, http.MethodPost, path,
		strings.NewReader(fields.Encode()), "application/x-www-form-urlencoded", out)
	return err
}

func mustBody(makeBody func() (io.Reader, string)) (io.Reader, string) {
	return makeBody()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
