// Package api is the storefront HTTP client: bearer authentication, JSON
// encoding, error classification, and retry of idempotent reads.
package api

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

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/storefront-hq/storectl/internal/session"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
	"github.com/storefront-hq/storectl/internal/storefront/httpclient"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultBackoff = 200 * time.Millisecond

	contentTypeJSON = "application/json"
)

var errRequestTimeout = errors.New("storefront request timeout")

// Doer abstracts the ability to execute HTTP requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result represents a simplified HTTP response payload.
type Result struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Decode unmarshals the body into v.
func (r *Result) Decode(v any) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return &Error{Kind: KindDecode, Err: errors.New("empty response body")}
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &Error{Kind: KindDecode, StatusCode: r.StatusCode, Err: err}
	}
	return nil
}

// Record decodes the body as a single JSON object.
func (r *Result) Record() (entity.Record, error) {
	if r == nil {
		return nil, &Error{Kind: KindDecode, Err: errors.New("empty response body")}
	}
	rec, err := entity.Decode(r.Body)
	if err != nil {
		return nil, &Error{Kind: KindDecode, StatusCode: r.StatusCode, Err: err}
	}
	return rec, nil
}

// Collection decodes the body as a list, bare or wrapped under envelope.
func (r *Result) Collection(envelope string) (entity.Collection, error) {
	if r == nil {
		return nil, &Error{Kind: KindDecode, Err: errors.New("empty response body")}
	}
	list, err := entity.DecodeCollection(r.Body, envelope)
	if err != nil {
		return nil, &Error{Kind: KindDecode, StatusCode: r.StatusCode, Err: err}
	}
	return list, nil
}

// Config holds the client settings resolved from configuration.
type Config struct {
	BaseURL string
	// Timeout bounds each attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// Retries is the number of additional attempts for GET requests.
	Retries uint64
	// Backoff is the base of the exponential retry delay. Zero means
	// DefaultBackoff.
	Backoff   time.Duration
	UserAgent string
}

// Client issues authenticated storefront calls.
type Client struct {
	cfg          Config
	doer         Doer
	tokens       session.TokenSource
	newRequestID func() string
}

// NewClient builds a Client. A nil doer uses http.DefaultClient.
func NewClient(cfg Config, doer Doer, tokens session.TokenSource) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	if doer == nil {
		doer = http.DefaultClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	return &Client{
		cfg:          cfg,
		doer:         doer,
		tokens:       tokens,
		newRequestID: uuid.NewString,
	}, nil
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Token returns the bearer token the client authenticates with.
func (c *Client) Token(ctx context.Context) (string, error) {
	return c.tokens.Token(ctx)
}

// Request sends method to path with body encoded as JSON. A nil body sends
// no payload.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*Result, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}
	return c.send(ctx, method, path, payload, contentTypeJSON)
}

// Get sends a GET to path.
func (c *Client) Get(ctx context.Context, path string) (*Result, error) {
	return c.send(ctx, http.MethodGet, path, nil, "")
}

// GetRecord fetches path and decodes a single object.
func (c *Client) GetRecord(ctx context.Context, path string) (entity.Record, error) {
	res, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	rec, err := res.Record()
	return rec, withTarget(err, http.MethodGet, path)
}

// GetCollection fetches path and decodes a list.
func (c *Client) GetCollection(ctx context.Context, path, envelope string) (entity.Collection, error) {
	res, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	list, err := res.Collection(envelope)
	return list, withTarget(err, http.MethodGet, path)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, contentType string) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint, err := resolveEndpoint(c.cfg.BaseURL, path)
	if err != nil {
		return nil, err
	}

	if method != http.MethodGet || c.cfg.Retries == 0 {
		return c.attempt(ctx, method, endpoint, path, token, payload, contentType)
	}

	var result *Result
	backoff := retry.WithMaxRetries(c.cfg.Retries, retry.NewExponential(c.cfg.Backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := c.attempt(ctx, method, endpoint, path, token, payload, contentType)
		if err != nil {
			if shouldRetry(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) attempt(
	ctx context.Context,
	method, endpoint, path, token string,
	payload []byte,
	contentType string,
) (*Result, error) {
	reqCtx, cancel := context.WithTimeoutCause(ctx, c.cfg.Timeout, errRequestTimeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(httpclient.RequestIDHeader, c.newRequestID())
	if payload != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, transportError(ctx, reqCtx, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, reqCtx, method, path, err)
	}

	result := &Result{
		StatusCode: resp.StatusCode,
		Body:       data,
		Header:     resp.Header.Clone(),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:          statusKind(resp.StatusCode),
			Method:        method,
			Path:          path,
			StatusCode:    resp.StatusCode,
			ServerMessage: ServerMessage(data),
		}
	}

	return result, nil
}

// transportError classifies a failed round trip. Cancellation by the caller
// is returned as the context error so superseded requests are recognizable.
func transportError(parent, reqCtx context.Context, method, path string, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("%s %s: %w", method, path, parent.Err())
	}
	if errors.Is(context.Cause(reqCtx), errRequestTimeout) {
		return &Error{Kind: KindTimeout, Method: method, Path: path, Err: err}
	}
	return &Error{Kind: KindNetwork, Method: method, Path: path, Err: err}
}

func shouldRetry(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Kind {
	case KindNetwork:
		return isTransient(apiErr.Err)
	case KindHTTP:
		return retryableStatus(apiErr.StatusCode)
	}
	return false
}

func withTarget(err error, method, path string) error {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Path == "" {
		apiErr.Method = method
		apiErr.Path = path
	}
	return err
}

func resolveEndpoint(baseURL, path string) (string, error) {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return "", fmt.Errorf("endpoint path cannot be empty")
	}

	if strings.HasPrefix(trimmedPath, "http://") || strings.HasPrefix(trimmedPath, "https://") {
		return trimmedPath, nil
	}

	return baseURL + "/" + strings.TrimLeft(trimmedPath, "/"), nil
}
