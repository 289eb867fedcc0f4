package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// tenantRecorder lets the auth layer, which runs inside this middleware,
// report the resolved tenant back out to the access log line.
type tenantRecorder struct {
	tenantID string
}

type tenantRecorderKey struct{}

// LoggingMiddleware logs one line per admin request after the handler has
// run. Requests that never authenticate (401s, /version) log without a
// tenant attribute.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		capturingWriter := ExtendResponseWriter(w)
		recorder := &tenantRecorder{}
		r = r.WithContext(context.WithValue(r.Context(), tenantRecorderKey{}, recorder))

		next.ServeHTTP(capturingWriter, r)

		attrs := []any{
			slog.String("method", r.Method),
			slog.String("host", r.Host),
			slog.String("path", r.RequestURI),
			slog.Int("status", capturingWriter.StatusCode),
			slog.Int64("bytes", capturingWriter.BytesWritten),
			slog.Duration("latency", capturingWriter.WriteBegin.Sub(start)),
			slog.Duration("duration", time.Since(start)),
		}
		if recorder.tenantID != "" {
			attrs = append(attrs, slog.String("tenant_id", recorder.tenantID))
		}

		log(r.Context()).Info(fmt.Sprintf("Request %s %s %d %s", r.Method, r.RequestURI, capturingWriter.StatusCode, http.StatusText(capturingWriter.StatusCode)),
			attrs...,
		)
	})
}
