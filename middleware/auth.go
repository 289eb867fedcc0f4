package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sweater-ventures/courier/app"
	"golang.org/x/crypto/bcrypt"
)

type tenantContextKey struct{}

// BearerAuthMiddleware authenticates admin API requests with an
// "Authorization: Bearer <token-id>.<secret>" header. The token row is cached
// by ID (negative lookups included) so the database is only consulted once
// per token; the bcrypt comparison still runs on every request. Exempt
// routes: GET /version. On success the token's tenant id is injected into the
// request context.
func BearerAuthMiddleware(courier *app.Application) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/version" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			bearer, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				unauthorized(w)
				return
			}
			tokenIDStr, secret, ok := strings.Cut(bearer, ".")
			if !ok || secret == "" {
				unauthorized(w)
				return
			}
			tokenID, err := uuid.Parse(tokenIDStr)
			if err != nil {
				unauthorized(w)
				return
			}

			token, found, inCache := courier.TokenCache.Get([16]byte(tokenID))
			if !inCache {
				token, err = app.ValidateTokenByID(r.Context(), courier.DB, tokenID, secret)
				found = err == nil
				courier.TokenCache.Set([16]byte(tokenID), token, found)
			} else if found {
				if bcrypt.CompareHashAndPassword([]byte(token.TokenHash), []byte(secret)) != nil {
					found = false
				}
			}
			if !found {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), token.TenantID)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"success":false,"error":"Invalid or missing API token"}`))
}

// WithTenant returns a context carrying the given tenant id, as if the
// request had authenticated with one of the tenant's tokens. If the request
// passed through LoggingMiddleware first, its recorder is filled so the
// access log line can name the tenant.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	if rec, ok := ctx.Value(tenantRecorderKey{}).(*tenantRecorder); ok {
		rec.tenantID = tenantID
	}
	return context.WithValue(ctx, tenantContextKey{}, tenantID)
}

// TenantFromContext returns the authenticated tenant id, or "" if the request
// did not pass through BearerAuthMiddleware.
func TenantFromContext(ctx context.Context) string {
	tenantID, ok := ctx.Value(tenantContextKey{}).(string)
	if !ok {
		return ""
	}
	return tenantID
}
