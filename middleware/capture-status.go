package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"
)

// CapturingResponseWriter records the status code, response size, and the
// moment the first byte went out, for the access log.
type CapturingResponseWriter struct {
	responseWriter http.ResponseWriter
	StatusCode     int
	BytesWritten   int64
	WriteBegin     time.Time
}

func ExtendResponseWriter(w http.ResponseWriter) *CapturingResponseWriter {
	return &CapturingResponseWriter{responseWriter: w}
}

func (w *CapturingResponseWriter) Write(b []byte) (int, error) {
	if w.WriteBegin.IsZero() {
		w.WriteBegin = time.Now()
	}

	if w.StatusCode == 0 {
		w.StatusCode = http.StatusOK
	}
	n, err := w.responseWriter.Write(b)
	w.BytesWritten += int64(n)
	return n, err
}

func (w *CapturingResponseWriter) Header() http.Header {
	return w.responseWriter.Header()
}

func (w *CapturingResponseWriter) WriteHeader(statusCode int) {
	if w.WriteBegin.IsZero() {
		w.WriteBegin = time.Now()
	}

	w.StatusCode = statusCode
	w.responseWriter.WriteHeader(statusCode)
}

// Flush passes through so live attempt streams can push events as they
// happen.
func (w *CapturingResponseWriter) Flush() {
	flusher, ok := w.responseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *CapturingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.responseWriter.(http.Hijacker)
	if ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("the ResponseWriter doesn't support hijacking")
}
