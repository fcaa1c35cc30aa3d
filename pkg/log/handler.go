package log

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// ErrFmtHandler wraps another slog handler and expands error attributes.
// When a record carries an error under ErrAttrKey, the wrapped handler
// receives two extra attributes: the error message as a plain string and,
// when the error carries one, its stack trace. JSON handlers render most
// error types as empty objects, so the flat message keeps failures readable
// in structured output.
type ErrFmtHandler struct {
	next slog.Handler
}

// WrapByErrFmtHandler returns h wrapped with error-attribute expansion.
func WrapByErrFmtHandler(h slog.Handler) slog.Handler {
	return &ErrFmtHandler{next: h}
}

func (h *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var logged error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		if err, ok := attr.Value.Any().(error); ok {
			logged = err
		}
		return false
	})
	if logged != nil {
		r.AddAttrs(slog.String(ErrMessageAttrKey, logged.Error()))
		if trace := stacktraceOf(logged); trace != "" {
			r.AddAttrs(slog.String(StacktraceAttrKey, trace))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ErrFmtHandler) WithGroup(name string) slog.Handler {
	return &ErrFmtHandler{next: h.next.WithGroup(name)}
}

// stacktraceOf pulls the recorded stack trace out of a cockroachdb error.
// Errors built elsewhere fall back to their verbose %+v rendering when it
// adds anything beyond the message.
func stacktraceOf(err error) string {
	if details := errors.GetSafeDetails(err).SafeDetails; len(details) > 0 {
		return details[0]
	}
	if verbose := fmt.Sprintf("%+v", err); verbose != err.Error() {
		return verbose
	}
	return ""
}
