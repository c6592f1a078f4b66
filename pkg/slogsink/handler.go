package slogsink

import (
	"context"
	"log/slog"
	"strings"
)

// Appender is the sink surface the handler writes to. *sink.Sink satisfies it.
type Appender interface {
	Append(level, message string, meta map[string]any) bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithMinLevel sets the lowest level the handler forwards. Defaults to the
// appender's own MinLevel when it exposes one, else info.
func WithMinLevel(level slog.Level) Option {
	return func(h *Handler) { h.min = level }
}

// Handler is a slog.Handler that forwards records to a sink. Handoff is a
// buffer append; the handler never waits on store I/O.
type Handler struct {
	appender Appender
	min      slog.Level
	attrs    []slog.Attr
	groups   []string
}

var _ slog.Handler = (*Handler)(nil)

// New builds a Handler over appender.
func New(appender Appender, opts ...Option) *Handler {
	h := &Handler{appender: appender, min: slog.LevelInfo}
	if lv, ok := appender.(interface{ MinLevel() slog.Level }); ok {
		h.min = lv.MinLevel()
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled gates by the configured minimum level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min
}

// Handle converts the record's attributes into sink metadata and appends it.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	meta := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		// Stored attrs carry their group prefix from WithAttrs time.
		meta[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		meta[h.key(a.Key)] = a.Value.Resolve().Any()
		return true
	})
	if len(meta) == 0 {
		meta = nil
	}
	h.appender.Append(levelName(r.Level), r.Message, meta)
	return nil
}

// WithAttrs returns a handler that includes attrs on every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := h.clone()
	for _, a := range attrs {
		c.attrs = append(c.attrs, slog.Attr{Key: h.key(a.Key), Value: a.Value})
	}
	return c
}

// WithGroup returns a handler that prefixes subsequent attribute keys with
// the group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.groups = append(c.groups, name)
	return c
}

func (h *Handler) clone() *Handler {
	return &Handler{
		appender: h.appender,
		min:      h.min,
		attrs:    append([]slog.Attr(nil), h.attrs...),
		groups:   append([]string(nil), h.groups...),
	}
}

func (h *Handler) key(k string) string {
	if len(h.groups) == 0 {
		return k
	}
	return strings.Join(h.groups, ".") + "." + k
}

func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "debug"
	case l < slog.LevelWarn:
		return "info"
	case l < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}
