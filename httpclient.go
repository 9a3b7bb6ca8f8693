package quizforge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBase     = 1 * time.Second
	retryMultiplier      = 2
	defaultCacheTTL      = 5 * time.Minute
)

// TokenFunc supplies the bearer token attached to authenticated calls,
// typically the current session id. An empty return means no auth header.
type TokenFunc func() string

// Client wraps an HTTP API collaborator. It joins paths onto a base URL,
// injects auth and extra headers, extracts server-provided error messages
// from non-2xx responses, retries transport-level failures with exponential
// backoff, and serves GET reads from a short-TTL cache. Non-2xx responses
// are never retried.
type Client struct {
	baseURL  string
	httpc    *http.Client
	token    TokenFunc
	headers  map[string]string
	cache    Cache
	cacheTTL time.Duration
	attempts int
	baseWait time.Duration
	rec      *DebugRecorder
	log      *zap.SugaredLogger
}

type ClientOption func(*Client)

// WithToken sets the bearer token provider.
func WithToken(token TokenFunc) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithHeader adds a static header to every request.
func WithHeader(name, value string) ClientOption {
	return func(c *Client) { c.headers[name] = value }
}

// WithCache enables response caching for GET requests.
func WithCache(cache Cache, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = cache
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithRetry overrides the transport retry budget.
func WithRetry(attempts int, baseWait time.Duration) ClientOption {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if baseWait > 0 {
			c.baseWait = baseWait
		}
	}
}

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) { c.httpc = httpc }
}

// WithDebugRecorder captures raw request/response payloads for diagnosis.
func WithDebugRecorder(rec *DebugRecorder) ClientOption {
	return func(c *Client) { c.rec = rec }
}

// WithClientLogger sets the client logger.
func WithClientLogger(log *zap.SugaredLogger) ClientOption {
	return func(c *Client) { c.log = log }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpc:    &http.Client{},
		headers:  make(map[string]string),
		cacheTTL: defaultCacheTTL,
		attempts: defaultRetryAttempts,
		baseWait: defaultRetryBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, nil, false)
	if err != nil {
		return err
	}
	return decodeJSON(body, out)
}

// GetJSONCached is GetJSON for read endpoints that tolerate short-TTL
// staleness; successful responses are served from cache within the TTL
// window.
func (c *Client) GetJSONCached(ctx context.Context, path string, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return err
	}
	return decodeJSON(body, out)
}

// PostJSON issues a POST with a JSON body and decodes the response into out.
// Writes are never cached.
func (c *Client) PostJSON(ctx context.Context, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = encoded
	}
	respBody, err := c.do(ctx, http.MethodPost, path, body, false)
	if err != nil {
		return err
	}
	return decodeJSON(respBody, out)
}

// Delete issues a DELETE and discards the response body.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, false)
	return err
}

// do performs one logical request. Transport failures (dial errors, resets)
// are retried up to the attempt budget with exponential backoff; a non-2xx
// response fails immediately with the server's message. Writes are never
// cached regardless of useCache.
func (c *Client) do(ctx context.Context, method, path string, body []byte, useCache bool) ([]byte, error) {
	cacheable := useCache && c.cache != nil && method == http.MethodGet
	key := ""
	if cacheable {
		key = cacheKey(method, path, body)
		if cached, ok := c.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	if c.rec != nil {
		c.rec.RecordRequest(method+" "+path, json.RawMessage(body))
	}

	var lastErr error
	wait := c.baseWait
	for attempt := 1; attempt <= c.attempts; attempt++ {
		respBody, retryable, err := c.send(ctx, method, path, body)
		if err == nil {
			if cacheable {
				c.cache.Set(ctx, key, respBody, c.cacheTTL)
			}
			return respBody, nil
		}
		if !retryable {
			return nil, err
		}

		lastErr = err
		if attempt == c.attempts {
			break
		}
		if c.log != nil {
			c.log.Warnw("transport failure, retrying",
				"method", method, "path", path, "attempt", attempt, "wait", wait, "error", err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= retryMultiplier
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.attempts, lastErr)
}

// send performs a single attempt. The second return value reports whether the
// failure was transport-level and therefore retryable.
func (c *Client) send(ctx context.Context, method, path string, body []byte) ([]byte, bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for name, value := range c.headers {
		req.Header.Set(name, value)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		// A cancelled context is a caller decision, not a flaky network.
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	if c.rec != nil {
		c.rec.RecordResponse(fmt.Sprintf("%s %s (%d)", method, path, resp.StatusCode), json.RawMessage(respBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, &HTTPError{
			Status:  resp.StatusCode,
			Message: apiErrorMessage(respBody, resp.Status),
		}
	}
	return respBody, false, nil
}

// apiErrorMessage pulls a human message out of an error body. The upstream
// services expose either "message" or "error"; the HTTP status text is the
// fallback.
func apiErrorMessage(body []byte, statusText string) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return statusText
}

func decodeJSON(body []byte, out any) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// IsTransportError reports whether err originated at the transport level.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}
