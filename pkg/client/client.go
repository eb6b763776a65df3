// Package client is the HTTP client for the hospital scheduling API.
//
// The client attaches the current access token as a bearer credential to
// every request and transparently refreshes it on a 401: concurrent 401s
// share a single refresh call, and the failed request is replayed exactly
// once with the new token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds every request unless overridden.
const DefaultTimeout = 30 * time.Second

// refreshKey coalesces concurrent refresh attempts into one call.
const refreshKey = "token-refresh"

// TokenSource supplies the current access token. An empty string means
// the request is sent unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// RefreshFunc exchanges the stored refresh token for a new access token.
// It returns the new token, or an empty string when the session cannot
// be refreshed.
type RefreshFunc func(ctx context.Context) (string, error)

// Client talks to the scheduling backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tokens     TokenSource

	refreshFn RefreshFunc
	refresh   singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the API at baseURL. tokens may be nil for a
// client that never authenticates.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetRefreshFunc registers the callback invoked on a 401. Passing nil
// disables transparent refresh.
func (c *Client) SetRefreshFunc(fn RefreshFunc) {
	c.refreshFn = fn
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Detail)
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken()
}

// get issues a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out, true)
}

// post issues a POST request with a JSON body.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out, true)
}

// put issues a PUT request with a JSON body.
func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out, true)
}

// do sends one request. When canRefresh is set, a 401 triggers the
// registered refresh callback (coalesced across callers) and a single
// replay with the new token; the replayed request can never trigger a
// second refresh.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, canRefresh bool) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	resp, err := c.roundTrip(ctx, method, path, query, payload, canRefresh)
	if err != nil {
		return err
	}
	return c.finish(resp, out)
}

// roundTrip sends the request and, when canRefresh is set, runs the
// refresh-and-replay dance on a 401. Callers own the returned response
// body; the response may still carry an error status.
func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, payload []byte, canRefresh bool) (*http.Response, error) {
	resp, err := c.send(ctx, method, path, query, payload, c.token())
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && canRefresh && c.refreshFn != nil {
		origErr := readAPIError(resp)
		newToken := c.runRefresh(ctx)
		if newToken == "" {
			// Refresh failed: the caller sees the original 401.
			return nil, origErr
		}
		c.logger.Debug("retrying request with refreshed token", "method", method, "path", path)
		retryResp, retryErr := c.send(ctx, method, path, query, payload, newToken)
		if retryErr != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, retryErr)
		}
		return retryResp, nil
	}

	return resp, nil
}

// runRefresh invokes the refresh callback at most once across all
// concurrent 401s; every caller observes the same resolved token or the
// same failure. Callback errors are swallowed here so the original
// request's rejection keeps its own error.
func (c *Client) runRefresh(ctx context.Context) string {
	v, err, _ := c.refresh.Do(refreshKey, func() (any, error) {
		return c.refreshFn(ctx)
	})
	if err != nil {
		c.logger.Debug("token refresh failed", "error", err)
		return ""
	}
	token, _ := v.(string)
	return token
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

// finish consumes the response: error statuses become *APIError, success
// bodies are decoded into out when requested.
func (c *Client) finish(resp *http.Response, out any) error {
	if resp.StatusCode >= 400 {
		return readAPIError(resp)
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readAPIError drains the response into an *APIError. The backend sends
// {"detail": "..."} (or {"error": "..."}) on failures.
func readAPIError(resp *http.Response) *APIError {
	defer resp.Body.Close()
	apiErr := &APIError{Status: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}
	var body struct {
		Detail string `json:"detail"`
		Err    string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Detail = body.Detail
		if apiErr.Detail == "" {
			apiErr.Detail = body.Err
		}
	}
	return apiErr
}
