package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/unosat-hdx-etl/internal/config"
)

// Notifier delivers an alert message, typically by mail.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// notifyTimeout bounds how long an error log line may block on the mail relay.
const notifyTimeout = 30 * time.Second

// NewLogger builds the process logger from cfg. When notifier is non-nil,
// records at ERROR level are also sent through it.
func NewLogger(cfg *config.Config, notifier Notifier) *slog.Logger {
	return newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat, notifier)
}

func newLogger(w io.Writer, level, format string, notifier Notifier) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	if notifier != nil {
		h = &mailHandler{next: h, notifier: notifier, timeout: notifyTimeout}
	}
	return slog.New(h)
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// mailHandler forwards ERROR records to a Notifier after passing every record
// to the wrapped handler.
type mailHandler struct {
	next     slog.Handler
	notifier Notifier
	timeout  time.Duration
	attrs    []slog.Attr
	group    string
}

func (h *mailHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *mailHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.next.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level < slog.LevelError {
		return nil
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()
	if err := h.notifier.Notify(nctx, "", h.body(r)); err != nil {
		warn := slog.NewRecord(time.Now(), slog.LevelWarn, "failure mail not sent", r.PC)
		warn.AddAttrs(slog.String("error", err.Error()))
		return h.next.Handle(ctx, warn)
	}
	return nil
}

func (h *mailHandler) body(r slog.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", r.Time.UTC().Format(time.RFC3339), r.Level, r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, "%s=%v\n", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, "%s=%v\n", h.key(a.Key), a.Value)
		return true
	})
	return b.String()
}

func (h *mailHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

func (h *mailHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	qualified := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	qualified = append(qualified, h.attrs...)
	for _, a := range attrs {
		qualified = append(qualified, slog.Attr{Key: h.key(a.Key), Value: a.Value})
	}
	return &mailHandler{next: h.next.WithAttrs(attrs), notifier: h.notifier, timeout: h.timeout, attrs: qualified, group: h.group}
}

func (h *mailHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &mailHandler{next: h.next.WithGroup(name), notifier: h.notifier, timeout: h.timeout, attrs: h.attrs, group: h.key(name)}
}
