package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/storefront-hq/storectl/internal/log"
)

const (
	logTypeRequest  = "http_request"
	logTypeResponse = "http_response"
	logTypeFailure  = "http_failure"

	redactedValue = "[REDACTED]"
	maxBodyLog    = 2048
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-Id"

var sensitiveKeys = []string{"authorization", "token", "password", "secret", "api_key", "cookie"}

// LoggingHTTPClient wraps an HTTP client to add debug and trace logging
type LoggingHTTPClient struct {
	wrapped *http.Client
	logger  *slog.Logger
}

// NewLoggingHTTPClient creates a new logging HTTP client. Timeouts are
// applied per request by the caller's context, so the wrapped client has none.
func NewLoggingHTTPClient(logger *slog.Logger) *LoggingHTTPClient {
	return NewLoggingHTTPClientWithClient(&http.Client{}, logger)
}

// NewLoggingHTTPClientWithClient wraps an existing HTTP client
func NewLoggingHTTPClientWithClient(client *http.Client, logger *slog.Logger) *LoggingHTTPClient {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LoggingHTTPClient{
		wrapped: client,
		logger:  logger,
	}
}

// Do implements the api.Doer interface with logging
func (c *LoggingHTTPClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return c.wrapped.Do(req)
	}

	trace := c.logger.Enabled(ctx, log.LevelTrace)
	start := time.Now()

	c.logRequest(req, trace)

	resp, err := c.wrapped.Do(req)
	duration := time.Since(start)
	if err != nil {
		attrs := c.baseAttrs(req, logTypeFailure)
		attrs = append(attrs,
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		c.logger.LogAttrs(ctx, slog.LevelDebug, "HTTP request failed", attrs...)
		return nil, err
	}

	c.logResponse(req, resp, duration, trace)
	return resp, nil
}

func (c *LoggingHTTPClient) baseAttrs(req *http.Request, logType string) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("log_type", logType),
		slog.String("method", req.Method),
		slog.String("route", req.URL.Path),
	}
	if id := req.Header.Get(RequestIDHeader); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	return append(attrs, log.RequestLogContextAttrs(req.Context())...)
}

func (c *LoggingHTTPClient) logRequest(req *http.Request, trace bool) {
	attrs := c.baseAttrs(req, logTypeRequest)

	if query := req.URL.Query(); len(query) > 0 {
		params := make(map[string]string, len(query))
		for k, v := range query {
			if isSensitive(k) {
				params[k] = redactedValue
				continue
			}
			params[k] = strings.Join(v, ",")
		}
		attrs = append(attrs, slog.Any("query_params", params))
	}

	if trace {
		attrs = append(attrs, slog.Any("headers", redactHeaders(req.Header)))
		if req.GetBody != nil {
			if body, err := req.GetBody(); err == nil {
				data, _ := io.ReadAll(io.LimitReader(body, maxBodyLog+1))
				_ = body.Close()
				if len(data) > 0 {
					attrs = append(attrs, slog.String("request_body", redactBody(data)))
				}
			}
		}
	}

	c.logger.LogAttrs(req.Context(), slog.LevelDebug, "HTTP request", attrs...)
}

func (c *LoggingHTTPClient) logResponse(req *http.Request, resp *http.Response, duration time.Duration, trace bool) {
	attrs := c.baseAttrs(req, logTypeResponse)
	attrs = append(attrs,
		slog.Int("status_code", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	if trace || resp.StatusCode >= 400 {
		if body, err := peekResponseBody(resp); err == nil && len(body) > 0 {
			attrs = append(attrs, slog.String("response_body", redactBody(body)))
		}
	}
	if trace {
		attrs = append(attrs, slog.Any("headers", redactHeaders(resp.Header)))
	}

	c.logger.LogAttrs(req.Context(), slog.LevelDebug, "HTTP response", attrs...)
}

// peekResponseBody reads the response body without consuming it
func peekResponseBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if isSensitive(k) || strings.EqualFold(k, "set-cookie") {
			out[k] = redactedValue
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

func redactBody(data []byte) string {
	var payload any
	if err := json.Unmarshal(data, &payload); err == nil {
		if encoded, err := json.Marshal(redactValue(payload)); err == nil {
			data = encoded
		}
	}
	if len(data) > maxBodyLog {
		return fmt.Sprintf("%s... [truncated, total %d bytes]", data[:maxBodyLog], len(data))
	}
	return string(data)
}

func redactValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		for k, inner := range value {
			if isSensitive(k) {
				value[k] = redactedValue
				continue
			}
			value[k] = redactValue(inner)
		}
		return value
	case []any:
		for i := range value {
			value[i] = redactValue(value[i])
		}
		return value
	default:
		return value
	}
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
