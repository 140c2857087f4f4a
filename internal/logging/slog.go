package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// String is shorthand for slog.String in diagnostics calls.
func String(key, value string) slog.Attr { return slog.String(key, value) }

// Error attaches err under the "error" key.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }

// NewNop returns a diagnostics logger that drops everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewDiagnostics builds the text logger used for conlog's own diagnostics.
func NewDiagnostics(w io.Writer, level string) *slog.Logger {
	if w == nil {
		return NewNop()
	}
	opts := slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey && attr.Value.Kind() == slog.KindTime && len(groups) == 0 {
				attr.Value = slog.StringValue(FormatTimestamp(attr.Value.Time()))
			}
			return attr
		},
	}
	return slog.New(slog.NewTextHandler(w, &opts))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type slogBridge struct {
	logger *Logger
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewSlogHandler routes slog records into l. The record's "component"
// attribute, or its level, becomes the subject; other attributes are
// appended as key=value pairs and error values are passed as items.
func NewSlogHandler(l *Logger, level slog.Leveler) slog.Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &slogBridge{logger: l, level: level}
}

func (h *slogBridge) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level() && h.logger.ShouldLog()
}

func (h *slogBridge) Handle(_ context.Context, record slog.Record) error {
	subject := ""
	var pairs []string
	var errs []any
	visit := func(attr slog.Attr) {
		key := strings.TrimSpace(attr.Key)
		if key == "" {
			return
		}
		if key == "component" && subject == "" {
			subject = attrString(attr.Value)
			return
		}
		if v := attr.Value.Resolve(); v.Kind() == slog.KindAny {
			if err, ok := v.Any().(error); ok {
				errs = append(errs, err)
				return
			}
		}
		if len(h.groups) > 0 {
			key = strings.Join(h.groups, ".") + "." + key
		}
		pairs = append(pairs, key+"="+formatValue(attr.Value))
	}
	for _, attr := range h.attrs {
		visit(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		visit(attr)
		return true
	})
	if subject == "" {
		lvl := record.Level.String()
		subject = lvl[:1] + strings.ToLower(lvl[1:])
	}

	items := []any{subject, strings.TrimSpace(record.Message)}
	if len(pairs) > 0 {
		items = append(items, strings.Join(pairs, " "))
	}
	items = append(items, errs...)
	h.logger.Log(items...)
	return nil
}

func (h *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

func (h *slogBridge) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}
