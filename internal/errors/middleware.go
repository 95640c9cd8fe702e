package errors

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RunIDHeader carries the run a response belongs to.
const RunIDHeader = "X-Run-ID"

// ErrorMiddleware turns panics into problem responses and writes one access
// log line per request.
type ErrorMiddleware struct {
	handler *ErrorHandler
	logger  *slog.Logger
}

func NewErrorMiddleware(handler *ErrorHandler, logger *slog.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorMiddleware{
		handler: handler,
		logger:  logger.With(slog.String("component", "http")),
	}
}

// Handler wraps next.
func (m *ErrorMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				m.handler.HandlePanic(ww, r, rec)
			}
			m.access(r, ww, time.Since(start))
		}()

		next.ServeHTTP(ww, r)
	})
}

// levelFor maps a response status to a log level. Upgrades and successes
// are info, client errors warn.
func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

func (m *ErrorMiddleware) access(r *http.Request, ww middleware.WrapResponseWriter, took time.Duration) {
	status := ww.Status()
	if status == 0 {
		status = http.StatusOK
	}

	attrs := make([]slog.Attr, 0, 10)
	attrs = append(attrs,
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Int64("duration_ms", took.Milliseconds()),
		slog.Int("response_bytes", ww.BytesWritten()),
		slog.String("client", r.RemoteAddr),
	)
	if q := r.URL.RawQuery; q != "" {
		attrs = append(attrs, slog.String("query", q))
	}
	if r.ContentLength > 0 {
		attrs = append(attrs, slog.Int64("upload_bytes", r.ContentLength))
	}
	if id := ww.Header().Get(RunIDHeader); id != "" {
		attrs = append(attrs, slog.String("run_id", id))
	}

	m.logger.LogAttrs(r.Context(), levelFor(status), "request handled", attrs...)
}
