package middleware

import (
	"net/http"
)

// AllStandardMiddleware is the outer chain for the admin server: a
// per-request logger in the context, then access logging. Token auth is
// composed separately because it needs the application.
func AllStandardMiddleware(next http.Handler) http.Handler {
	return ContextLoggerMiddleware(LoggingMiddleware(next))
}
