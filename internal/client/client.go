// Package client wraps the cookbooks backend REST API. Each method performs
// one round trip and reports failures as *Error values.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/cookbooks/dashboard/internal/session"
)

// ItemsPerPage is the backend's fixed recipe page size
const ItemsPerPage = 30

// maxErrorBody caps how much of an error response is read for logging
const maxErrorBody = 4 << 10

// Client talks to the cookbooks backend
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// New creates a Client for the backend rooted at baseURL
func New(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q: must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.Named("backend"),
	}, nil
}

// BuildAuthorizationHeaders returns a copy of base with the bearer token of
// the session in ctx. Without a session token base is returned unchanged.
func (c *Client) BuildAuthorizationHeaders(ctx context.Context, base http.Header) http.Header {
	token := session.AccessToken(ctx)
	if token == "" {
		return base
	}
	headers := base.Clone()
	if headers == nil {
		headers = make(http.Header)
	}
	headers.Set("Authorization", "Bearer "+token)
	return headers
}

// call describes one backend round trip
type call struct {
	op      string
	message string
	method  string
	path    string
	params  url.Values
	body    any
	auth    bool
}

// endpoint resolves an escaped relative path against the base URL
func (c *Client) endpoint(path string, params url.Values) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	u := c.baseURL.ResolveReference(ref)
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String(), nil
}

// do executes the call and decodes a 2xx JSON body into out. An empty body
// leaves out untouched.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	fail := func(kind Kind, status int, err error) error {
		message := cl.message
		if kind == KindUnauthorized {
			message = ErrUnauthorized.Message
		}
		e := &Error{Kind: kind, Op: cl.op, Message: message, Status: status, Err: err}
		fields := []zap.Field{zap.String("op", cl.op), zap.Int("status", status), zap.Error(err)}
		if kind == KindFetch {
			c.logger.Error("backend request failed", fields...)
		} else {
			c.logger.Warn("backend request rejected", fields...)
		}
		return e
	}

	var body io.Reader
	headers := http.Header{"Accept": []string{"application/json"}}
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return fail(KindFetch, 0, fmt.Errorf("failed to marshal request: %w", err))
		}
		body = bytes.NewReader(data)
		headers.Set("Content-Type", "application/json")
	}
	if cl.auth {
		headers = c.BuildAuthorizationHeaders(ctx, headers)
	}

	target, err := c.endpoint(cl.path, cl.params)
	if err != nil {
		return fail(KindFetch, 0, fmt.Errorf("invalid path: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return fail(KindFetch, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header = headers

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fail(KindFetch, 0, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		zap.String("op", cl.op),
		zap.String("method", cl.method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fail(KindUnauthorized, resp.StatusCode, errorBody(resp))
	case resp.StatusCode == http.StatusNotFound:
		return fail(KindNotFound, resp.StatusCode, errorBody(resp))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fail(KindFetch, resp.StatusCode, errorBody(resp))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fail(KindFetch, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// errorBody summarises a non-2xx response, preferring the backend's "msg" field
func errorBody(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Msg != "" {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, payload.Msg)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
