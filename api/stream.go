package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sweater-ventures/courier/app"
	"github.com/sweater-ventures/courier/middleware"
)

func init() {
	registerRoute(func(courier *app.Application, router *http.ServeMux) {
		router.Handle("GET /webhooks/{id}/stream", routeHandler(courier, streamWebhookHandler))
	})
}

// streamWebhookHandler pushes delivery attempt updates for one subscription
// to the client as server-sent events. The stream ends when the client
// disconnects.
func streamWebhookHandler(courier *app.Application, w http.ResponseWriter, r *http.Request) {
	id, ok := pathSubscriptionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	sub, err := app.GetSubscription(r.Context(), courier, middleware.TenantFromContext(r.Context()), id)
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	messages, unsubscribe := courier.EventBus.Subscribe()
	defer unsubscribe()

	subscriptionID := app.UuidToString(sub.ID)
	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-messages:
			if msg.SubscriptionID != subscriptionID {
				continue
			}
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", msg.ID, msg.Type, data)
			flusher.Flush()
		}
	}
}
