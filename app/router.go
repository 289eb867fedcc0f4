package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sweater-ventures/courier/db"
)

// EmitEvent fans an SMS lifecycle event out to every active subscription of
// the tenant whose event mask matches. One durable delivery row is created per
// match before any network attempt happens; the rows are then handed to the
// dispatcher on a non-blocking send, so a saturated queue never stalls the
// caller. Deliveries that miss the handoff sit in the outbox until the retry
// scheduler picks them up.
func EmitEvent(ctx context.Context, courier *Application, event SMSEvent) (int, error) {
	if event.TenantID == "" {
		return 0, validationError("tenant_id", "is required")
	}
	if _, ok := KnownEventTypes[event.EventType]; !ok {
		return 0, validationError("event_type", "unknown event type: "+event.EventType)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("serializing event payload: %w", err)
	}

	subs, err := courier.DB.ListMatchingWebhookSubscriptions(ctx, db.ListMatchingWebhookSubscriptionsParams{
		TenantID:  event.TenantID,
		EventType: event.EventType,
	})
	if err != nil {
		return 0, fmt.Errorf("matching subscriptions: %w", err)
	}

	var sourceEventID pgtype.Text
	if event.SourceEventID != "" {
		sourceEventID = pgtype.Text{String: event.SourceEventID, Valid: true}
	}

	created := 0
	for _, sub := range subs {
		delivery, err := courier.DB.InsertWebhookDelivery(ctx, db.InsertWebhookDeliveryParams{
			ID:             NewUuid(),
			SubscriptionID: sub.ID,
			TenantID:       event.TenantID,
			SourceEventID:  sourceEventID,
			EventType:      event.EventType,
			Payload:        payload,
			MaxAttempts:    sub.MaxAttempts,
			CreatedAt:      pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
		})
		if err != nil {
			// One bad insert must not starve the remaining subscribers.
			log(ctx).Error("Failed to persist webhook delivery",
				"subscription_id", UuidToString(sub.ID),
				"event_type", event.EventType,
				"error", err,
			)
			continue
		}
		created++

		select {
		case courier.DeliveryChan <- delivery:
		default:
			log(ctx).Debug("Delivery queue full, deferring to scheduler",
				"delivery_id", UuidToString(delivery.ID),
			)
		}
	}

	log(ctx).Debug("Event routed",
		"tenant_id", event.TenantID,
		"event_type", event.EventType,
		"deliveries", created,
	)
	return created, nil
}
