package log

import (
	"context"
	"log/slog"
)

// ContextHandler is a slog.Handler that adds the run ID and step name to every log record.
type ContextHandler struct {
	slog.Handler
}

// Handle adds the run ID and step name to the log record before passing it to the underlying handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if runID := RunIDFromContext(ctx); runID != "" {
		r.AddAttrs(slog.String("run_id", runID))
	}
	if step := StepFromContext(ctx); step != "" {
		r.AddAttrs(slog.String("step", step))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
