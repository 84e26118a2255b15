package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
)

// Keys with a fixed place in the terminal rendering of an error.
const (
	keyError      = "error"
	keyKind       = "kind"
	keyStatus     = "status"
	keySuggestion = "suggestion"
)

// requestContextKeys are logged to the file only; on the terminal they repeat
// what the user just typed.
var requestContextKeys = []string{"command_path", "command_verb", "view"}

// NewFriendlyErrorHandler returns a handler that renders error records for a
// terminal:
//
//	Error: buyer 7 not found
//	  status: 404 (http)
//	  suggestion: run `storectl login`
//	  role: admin
func NewFriendlyErrorHandler(w io.Writer) slog.Handler {
	return &friendlyHandler{w: w}
}

type friendlyHandler struct {
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

type attrEntry struct {
	key   string
	value string
}

func (h *friendlyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *friendlyHandler) Handle(_ context.Context, record slog.Record) error {
	entries := h.collectEntries(record)
	lookup := func(key string) string {
		for _, e := range entries {
			if e.key == key {
				return e.value
			}
		}
		return ""
	}

	summary := strings.TrimSpace(record.Message)
	if summary == "" {
		summary = lookup(keyError)
	}
	if summary == "" {
		summary = "an unknown error occurred while talking to the storefront"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", summary)

	status, kind := lookup(keyStatus), lookup(keyKind)
	switch {
	case status != "" && kind != "":
		fmt.Fprintf(&sb, "  status: %s (%s)\n", status, kind)
	case status != "":
		fmt.Fprintf(&sb, "  status: %s\n", status)
	case kind != "":
		fmt.Fprintf(&sb, "  kind: %s\n", kind)
	}
	if suggestion := lookup(keySuggestion); suggestion != "" {
		fmt.Fprintf(&sb, "  suggestion: %s\n", suggestion)
	}

	rest := make([]attrEntry, 0, len(entries))
	for _, e := range entries {
		switch {
		case e.value == "",
			e.key == keyError, e.key == keyKind, e.key == keyStatus, e.key == keySuggestion,
			slices.Contains(requestContextKeys, e.key):
			continue
		}
		rest = append(rest, e)
	}
	slices.SortStableFunc(rest, func(a, b attrEntry) int { return strings.Compare(a.key, b.key) })
	for _, e := range rest {
		writeEntry(&sb, e)
	}

	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *friendlyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.fullKey(a.Key), Value: a.Value})
	}
	return clone
}

func (h *friendlyHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *friendlyHandler) clone() *friendlyHandler {
	return &friendlyHandler{
		w:      h.w,
		attrs:  slices.Clone(h.attrs),
		groups: slices.Clone(h.groups),
	}
}

func (h *friendlyHandler) collectEntries(record slog.Record) []attrEntry {
	entries := make([]attrEntry, 0, len(h.attrs)+record.NumAttrs())
	for _, a := range h.attrs {
		entries = append(entries, attrEntry{key: a.Key, value: valueString(a.Value)})
	}
	record.Attrs(func(a slog.Attr) bool {
		entries = append(entries, attrEntry{key: h.fullKey(a.Key), value: valueString(a.Value)})
		return true
	})
	return entries
}

func (h *friendlyHandler) fullKey(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(append(slices.Clone(h.groups), key), ".")
}

func valueString(val slog.Value) string {
	val = val.Resolve()
	switch val.Kind() {
	case slog.KindGroup:
		parts := make([]string, 0, len(val.Group()))
		for _, a := range val.Group() {
			parts = append(parts, a.Key+"="+valueString(a.Value))
		}
		return strings.Join(parts, ", ")
	case slog.KindAny:
		if err, ok := val.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(val.Any())
	default:
		return val.String()
	}
}

// writeEntry prints one attribute; multi-line values continue indented.
func writeEntry(sb *strings.Builder, entry attrEntry) {
	lines := strings.Split(strings.TrimSpace(entry.value), "\n")
	fmt.Fprintf(sb, "  %s: %s\n", entry.key, strings.TrimSpace(lines[0]))
	for _, line := range lines[1:] {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			fmt.Fprintf(sb, "    %s\n", trimmed)
		}
	}
}
