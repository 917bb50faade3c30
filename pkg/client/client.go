// Package client is the HTTP client of the Mini Cloud REST API. Every call
// except login and register carries the session's bearer token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"minicloud/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource supplies the current bearer token; "" means signed out.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Config holds client configuration.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Tokens     TokenSource
	Metrics    *metrics.ClientMetrics
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// Client talks to the backend under <BaseURL>/api.
type Client struct {
	apiURL     string
	httpClient *http.Client
	tokens     TokenSource
	metrics    *metrics.ClientMetrics
	logger     *zap.Logger
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Tokens == nil {
		cfg.Tokens = StaticToken("")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}

	return &Client{
		apiURL:     apiURL(cfg.BaseURL),
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

func apiURL(base string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, "/api") {
		return base
	}
	return base + "/api"
}

// APIError is any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}

// AsAPIError checks if an error is an APIError and returns it.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Message returns the server-provided message of err, or fallback when the
// server sent none or the request never got a response.
func Message(err error, fallback string) string {
	if ae, ok := AsAPIError(err); ok && ae.Message != "" {
		return ae.Message
	}
	return fallback
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	ae, ok := AsAPIError(err)
	return ok && ae.StatusCode == status
}

// errorBody covers the error shapes the backend and its proxies produce.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func parseError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		if !strings.Contains(resp.Header.Get("Content-Type"), "json") {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	switch {
	case len(body.Detail) > 0:
		apiErr.Message = detailMessage(body.Detail)
	case body.Error != "":
		apiErr.Message = body.Error
	default:
		apiErr.Message = body.Message
	}
	return apiErr
}

// detailMessage flattens "detail", which is either a string or a list of
// validation issues with a "msg" field each.
func detailMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var issues []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if issue.Msg != "" {
				msgs = append(msgs, issue.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// request describes one API call. route is the templated path used as
// the metrics label; path is the concrete one.
type request struct {
	method      string
	route       string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	anonymous   bool
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return bytes.NewReader(data), nil
}

// send performs r and returns the response when it is 2xx. The caller
// closes the body.
func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	target := c.apiURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if !r.anonymous {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(r.method, r.route, 0, elapsed)
		c.logger.Debug("Request failed",
			zap.String("method", r.method),
			zap.String("route", r.route),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", r.method, r.route, err)
	}

	c.metrics.ObserveRequest(r.method, r.route, resp.StatusCode, elapsed)
	c.logger.Debug("Request completed",
		zap.String("method", r.method),
		zap.String("route", r.route),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseError(resp)
	}
	return resp, nil
}

// do performs r and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", r.route, err)
	}
	return nil
}

// doJSON sends payload as a JSON body.
func (c *Client) doJSON(ctx context.Context, r request, payload, out any) error {
	body, err := jsonBody(payload)
	if err != nil {
		return err
	}
	r.body = body
	r.contentType = "application/json"
	return c.do(ctx, r, out)
}

// MessageResponse is the acknowledgement most mutating endpoints return.
type MessageResponse struct {
	Message string `json:"message"`
}
