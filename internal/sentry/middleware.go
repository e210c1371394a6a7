package sentry

import (
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
)

// HTTPMiddleware puts a request-scoped hub on the context, so errors captured
// by handlers carry the request, and turns handler panics into a captured
// event plus a 500.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
		}
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetRequest(r)
			scope.SetTag("http.method", r.Method)
			scope.SetTransaction(r.Method + " " + r.URL.Path)
		})

		sw := &statusWriter{ResponseWriter: w}
		ctx := sentry.SetHubOnContext(r.Context(), hub)

		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				hub.RecoverWithContext(ctx, err)
				slog.ErrorContext(ctx, "Panic in HTTP handler", "panic", err, "method", r.Method, "path", r.URL.Path)
				if sw.status == 0 {
					sw.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(sw, r.WithContext(ctx))
	})
}

// statusWriter remembers whether a status line has been sent.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
