package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"

	"github.com/tidwall/gjson"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindNetwork means the request never reached the server.
	KindNetwork Kind = iota + 1
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP
	// KindDecode means a success body was not the expected JSON.
	KindDecode
	// KindTimeout means the client-imposed request timeout elapsed.
	KindTimeout
	// KindAuthExpired means the server rejected the bearer token (401/403).
	KindAuthExpired
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	case KindTimeout:
		return "timeout"
	case KindAuthExpired:
		return "auth_expired"
	default:
		return "unknown"
	}
}

// Error is returned for every failed storefront call.
type Error struct {
	Kind       Kind
	Method     string
	Path       string
	StatusCode int
	// ServerMessage is the error text extracted from the response body.
	ServerMessage string
	Err           error
}

func (e *Error) Error() string {
	if e == nil {
		return "storefront request failed"
	}
	target := strings.TrimSpace(e.Method + " " + e.Path)
	switch e.Kind {
	case KindHTTP, KindAuthExpired:
		if e.ServerMessage != "" {
			return fmt.Sprintf("%s: status %d: %s", target, e.StatusCode, e.ServerMessage)
		}
		return fmt.Sprintf("%s: status %d", target, e.StatusCode)
	case KindTimeout:
		return fmt.Sprintf("%s: request timed out", target)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s failure: %v", target, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s failure", target, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsAuthExpired reports whether err means the session must be renewed.
func IsAuthExpired(err error) bool {
	return KindOf(err) == KindAuthExpired
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// UserMessage renders err for display. The server supplied message is
// preferred; otherwise fallback (for example "error fetching orders") is used.
// Decode failures read the same as network failures.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.Canceled) {
			return "request cancelled"
		}
		if fallback != "" {
			return fallback
		}
		return err.Error()
	}
	switch apiErr.Kind {
	case KindHTTP, KindAuthExpired:
		if apiErr.ServerMessage != "" {
			return apiErr.ServerMessage
		}
		if apiErr.Kind == KindAuthExpired {
			return "session expired, log in again"
		}
	case KindTimeout:
		if fallback != "" {
			return fallback + " (request timed out)"
		}
		return "request timed out"
	}
	if fallback != "" {
		return fallback
	}
	return apiErr.Error()
}

// ServerMessage extracts the displayable error from a failure body. It
// looks at "error", then "errors" (string, list, or field map), then
// "message".
func ServerMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return ""
	}

	if msg := flattenMessage(doc.Get("error")); msg != "" {
		return msg
	}
	if msg := flattenMessage(doc.Get("errors")); msg != "" {
		return msg
	}
	return flattenMessage(doc.Get("message"))
}

func flattenMessage(v gjson.Result) string {
	switch {
	case !v.Exists():
		return ""
	case v.IsArray():
		parts := make([]string, 0, len(v.Array()))
		for _, item := range v.Array() {
			if msg := flattenMessage(item); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	case v.IsObject():
		var parts []string
		v.ForEach(func(key, value gjson.Result) bool {
			msg := flattenMessage(value)
			if msg == "" {
				return true
			}
			if key.String() == "message" || key.String() == "error" {
				parts = append(parts, msg)
			} else {
				parts = append(parts, key.String()+" "+msg)
			}
			return true
		})
		return strings.Join(parts, "; ")
	case v.Type == gjson.Null:
		return ""
	default:
		return strings.TrimSpace(v.String())
	}
}

func statusKind(code int) Kind {
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return KindAuthExpired
	}
	return KindHTTP
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// isTransient reports transport failures worth retrying on idempotent calls.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EPIPE):
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout() || isTransient(urlErr.Err)
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
