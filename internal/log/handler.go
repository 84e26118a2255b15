package log

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// mirrorErrors gates copying error records to the terminal. The TUI turns it
// off while it owns the screen.
var mirrorErrors atomic.Bool

func init() {
	mirrorErrors.Store(true)
}

// EnableErrorMirroring restores copying error records to the terminal.
func EnableErrorMirroring() {
	mirrorErrors.Store(true)
}

// DisableErrorMirroring stops copying error records to the terminal until
// EnableErrorMirroring is called.
func DisableErrorMirroring() {
	mirrorErrors.Store(false)
}

// NewDualHandler returns a handler that writes every enabled record to file
// and copies error records to mirror. Either side may be nil.
//
// Records written to file carry the storefront request context found in the
// record's context (role, resource, entity id, ...) unless the record already
// set those keys itself. The mirror gets the record as logged.
func NewDualHandler(file slog.Handler, mirror slog.Handler) slog.Handler {
	return &dualHandler{file: file, mirror: mirror}
}

type dualHandler struct {
	file   slog.Handler
	mirror slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.file != nil && h.file.Enabled(ctx, level) {
		return true
	}
	return h.mirrors(level) && h.mirror.Enabled(ctx, level)
}

func (h *dualHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.file != nil && h.file.Enabled(ctx, record.Level) {
		if err := h.file.Handle(ctx, withRequestContext(ctx, record)); err != nil {
			return err
		}
	}
	if h.mirrors(record.Level) && h.mirror.Enabled(ctx, record.Level) {
		return h.mirror.Handle(ctx, record.Clone())
	}
	return nil
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h *dualHandler) derive(apply func(slog.Handler) slog.Handler) slog.Handler {
	next := &dualHandler{}
	if h.file != nil {
		next.file = apply(h.file)
	}
	if h.mirror != nil {
		next.mirror = apply(h.mirror)
	}
	return next
}

func (h *dualHandler) mirrors(level slog.Level) bool {
	return h.mirror != nil && level >= slog.LevelError && mirrorErrors.Load()
}

// withRequestContext returns record plus the request context attrs it does
// not already carry.
func withRequestContext(ctx context.Context, record slog.Record) slog.Record {
	extra := RequestLogContextAttrs(ctx)
	if len(extra) == 0 {
		return record
	}

	present := make(map[string]bool, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		present[a.Key] = true
		return true
	})

	out := record.Clone()
	for _, a := range extra {
		if !present[a.Key] {
			out.AddAttrs(a)
		}
	}
	return out
}
