package log

import (
	"context"
	"log/slog"
	"strings"
)

type requestLogContextKey struct{}

// RequestLogContext contains contextual metadata emitted with storefront HTTP logs.
type RequestLogContext struct {
	CommandPath string
	CommandVerb string

	Role     string
	Resource string
	Action   string
	EntityID string

	// View names the interactive surface (list, detail, feed) issuing the call.
	View string
}

var RequestLogContextKey = requestLogContextKey{}

// WithRequestLogContext merges non-empty fields from update into ctx.
func WithRequestLogContext(ctx context.Context, update RequestLogContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	current := RequestLogContextFromContext(ctx)
	mergeStringField(&current.CommandPath, update.CommandPath)
	mergeStringField(&current.CommandVerb, update.CommandVerb)
	mergeStringField(&current.Role, update.Role)
	mergeStringField(&current.Resource, update.Resource)
	mergeStringField(&current.Action, update.Action)
	mergeStringField(&current.EntityID, update.EntityID)
	mergeStringField(&current.View, update.View)

	return context.WithValue(ctx, RequestLogContextKey, current)
}

// RequestLogContextFromContext extracts request logging metadata from ctx.
func RequestLogContextFromContext(ctx context.Context) RequestLogContext {
	if ctx == nil {
		return RequestLogContext{}
	}

	switch value := ctx.Value(RequestLogContextKey).(type) {
	case RequestLogContext:
		return value
	case *RequestLogContext:
		if value != nil {
			return *value
		}
	}

	return RequestLogContext{}
}

// RequestLogContextAttrs converts context metadata to slog attributes.
func RequestLogContextAttrs(ctx context.Context) []slog.Attr {
	meta := RequestLogContextFromContext(ctx)
	attrs := make([]slog.Attr, 0, 7)

	appendStringAttr(&attrs, "command_path", meta.CommandPath)
	appendStringAttr(&attrs, "command_verb", meta.CommandVerb)
	appendStringAttr(&attrs, "role", meta.Role)
	appendStringAttr(&attrs, "resource", meta.Resource)
	appendStringAttr(&attrs, "action", meta.Action)
	appendStringAttr(&attrs, "entity_id", meta.EntityID)
	appendStringAttr(&attrs, "view", meta.View)

	return attrs
}

func mergeStringField(target *string, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}
	*target = trimmed
}

func appendStringAttr(attrs *[]slog.Attr, key, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}
	*attrs = append(*attrs, slog.String(key, trimmed))
}
