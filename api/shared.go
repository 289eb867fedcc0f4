package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sweater-ventures/courier/app"
	"github.com/sweater-ventures/courier/config"
)

type routeRegistrationFunc func(courier *app.Application, router *http.ServeMux)

var routes []routeRegistrationFunc

func registerRoute(r routeRegistrationFunc) {
	routes = append(routes, r)
}

func AddApis(courier *app.Application, router *http.ServeMux) {
	slog.Debug("Registering all API Endpoints", "count", len(routes))
	for _, r := range routes {
		r(courier, router)
	}
}

func log(ctx context.Context) *slog.Logger {
	log := ctx.Value(config.LoggerContextKey)
	if log == nil {
		return slog.Default()
	} else {
		return log.(*slog.Logger)
	}
}

type appHandler func(courier *app.Application, w http.ResponseWriter, r *http.Request)

func routeHandler(courier *app.Application, handler appHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(courier, w, r)
	})
}

func writeJsonResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJsonResponse(w, statusCode, errorResponse{Success: false, Error: message})
}

// writeAppError maps domain errors to status codes. A cross-tenant hit is
// indistinguishable from a missing row so subscription ids don't leak across
// tenants.
func writeAppError(ctx context.Context, w http.ResponseWriter, err error) {
	var validationErr *app.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, app.ErrNotFound), errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusNotFound, "webhook subscription not found")
	default:
		log(ctx).Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
