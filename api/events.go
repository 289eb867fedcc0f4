package api

import (
	"encoding/json"
	"net/http"

	"github.com/sweater-ventures/courier/app"
	"github.com/sweater-ventures/courier/middleware"
)

func init() {
	registerRoute(func(courier *app.Application, router *http.ServeMux) {
		router.Handle("POST /events", routeHandler(courier, emitEventHandler))
	})
}

type EmitEventResponse struct {
	Success    bool `json:"success"`
	Deliveries int  `json:"deliveries"`
}

// emitEventHandler ingests one SMS lifecycle event. The tenant always comes
// from the API token, never the body, so an event cannot be emitted into
// another tenant's subscriptions.
func emitEventHandler(courier *app.Application, w http.ResponseWriter, r *http.Request) {
	var event app.SMSEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	event.TenantID = middleware.TenantFromContext(r.Context())

	created, err := app.EmitEvent(r.Context(), courier, event)
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}

	writeJsonResponse(w, http.StatusAccepted, EmitEventResponse{Success: true, Deliveries: created})
}
