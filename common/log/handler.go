package log

import (
	"io"
	"log/slog"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// ParseLevel parses debug, info, warn or error, case-insensitive. Empty input is info.
func ParseLevel(lvl string) (slog.Level, error) {
	level := slog.LevelInfo
	if lvl == "" {
		return level, nil
	}
	err := level.UnmarshalText([]byte(strings.ToUpper(lvl)))
	return level, err
}

// NewHandler builds a json or text handler (anything but "json" is text) wrapped in a ContextHandler.
func NewHandler(w io.Writer, format string, opt *slog.HandlerOptions) slog.Handler {
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opt)
	default:
		handler = slog.NewTextHandler(w, opt)
	}
	return &ContextHandler{Handler: handler}
}

// NewLogger writes every record to all writers, each with the same format and options.
func NewLogger(format string, opt *slog.HandlerOptions, writers ...io.Writer) *slog.Logger {
	if len(writers) == 1 {
		return slog.New(NewHandler(writers[0], format, opt))
	}
	handlers := make([]slog.Handler, 0, len(writers))
	for _, w := range writers {
		handlers = append(handlers, NewHandler(w, format, opt))
	}
	return slog.New(slogmulti.Fanout(handlers...))
}
