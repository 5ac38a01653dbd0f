package logging

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Entry is the flattened form of a log record handed to subscribers.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   []Attr
}

// Attr is a resolved key/value pair; group names are joined with dots.
type Attr struct {
	Key   string
	Value string
}

// Get returns the value for key and whether it was present.
func (e Entry) Get(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Sink receives log entries, e.g. an interactive frontend.
type Sink interface {
	Publish(Entry)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Entry)

// Publish calls f(e).
func (f SinkFunc) Publish(e Entry) { f(e) }

// SinkHandler forwards records to an optional next handler and to sinks.
type SinkHandler struct {
	next   slog.Handler
	level  slog.Leveler
	sinks  []Sink
	attrs  []Attr
	prefix string
}

var _ slog.Handler = (*SinkHandler)(nil)

// NewSinkHandler wraps next, which may be nil.
func NewSinkHandler(next slog.Handler, level slog.Leveler, sinks ...Sink) *SinkHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &SinkHandler{next: next, level: level, sinks: sinks}
}

func (h *SinkHandler) Enabled(ctx context.Context, l slog.Level) bool {
	if l >= h.level.Level() {
		return true
	}
	return h.next != nil && h.next.Enabled(ctx, l)
}

func (h *SinkHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if h.next != nil && h.next.Enabled(ctx, r.Level) {
		err = h.next.Handle(ctx, r)
	}
	if r.Level < h.level.Level() || len(h.sinks) == 0 {
		return err
	}

	entry := Entry{Time: r.Time, Level: r.Level, Message: r.Message}
	entry.Attrs = append(entry.Attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		entry.Attrs = appendAttr(entry.Attrs, h.prefix, a)
		return true
	})
	for _, s := range h.sinks {
		s.Publish(entry)
	}
	return err
}

func (h *SinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	if h.next != nil {
		clone.next = h.next.WithAttrs(attrs)
	}
	clone.attrs = append([]Attr(nil), h.attrs...)
	for _, a := range attrs {
		clone.attrs = appendAttr(clone.attrs, h.prefix, a)
	}
	return &clone
}

func (h *SinkHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.next != nil {
		clone.next = h.next.WithGroup(name)
	}
	clone.prefix = h.prefix + name + "."
	return &clone
}

func appendAttr(dst []Attr, prefix string, a slog.Attr) []Attr {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			dst = appendAttr(dst, p, ga)
		}
		return dst
	}
	return append(dst, Attr{Key: prefix + a.Key, Value: fmt.Sprint(a.Value.Any())})
}
