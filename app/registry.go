package app

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sweater-ventures/courier/db"
)

// Subscription field bounds.
const (
	MinAttempts       = 1
	MaxAttempts       = 10
	MinBackoffBaseMs  = 1_000
	MaxBackoffBaseMs  = 3_600_000
	MinPayloadBytes   = 10 * 1024
	MaxPayloadBytes   = 10 * 1024 * 1024
	DefaultAttempts   = 3
	DefaultBackoffMs  = 60_000
	DefaultPayloadMax = 256 * 1024
)

// SubscriptionSpec carries the caller-supplied fields for Create.
type SubscriptionSpec struct {
	URL             string
	Name            string
	Description     string
	Events          []string
	MaxAttempts     *int32
	BackoffBaseMs   *int32
	MaxPayloadBytes *int32
	RetryEnabled    *bool
	NotifyOnFailure *bool
}

// SubscriptionPatch carries the updatable fields for Update. Nil means
// "leave unchanged". Secret and stats are not patchable.
type SubscriptionPatch struct {
	URL             *string
	Name            *string
	Description     *string
	Events          []string
	Active          *bool
	RetryEnabled    *bool
	NotifyOnFailure *bool
	MaxAttempts     *int32
	BackoffBaseMs   *int32
	MaxPayloadBytes *int32
}

// CreateSubscription validates the requested settings, generates a fresh
// secret, and persists a new subscription for the tenant.
func CreateSubscription(ctx context.Context, courier *Application, tenantID string, spec SubscriptionSpec) (db.WebhookSubscription, error) {
	if err := validateURL(spec.URL); err != nil {
		return db.WebhookSubscription{}, err
	}
	if spec.Name == "" {
		return db.WebhookSubscription{}, validationError("name", "is required")
	}
	if err := validateEventMask(spec.Events); err != nil {
		return db.WebhookSubscription{}, err
	}

	maxAttempts := int32(DefaultAttempts)
	if spec.MaxAttempts != nil {
		maxAttempts = *spec.MaxAttempts
	}
	backoffBaseMs := int32(DefaultBackoffMs)
	if spec.BackoffBaseMs != nil {
		backoffBaseMs = *spec.BackoffBaseMs
	}
	maxPayloadBytes := int32(DefaultPayloadMax)
	if spec.MaxPayloadBytes != nil {
		maxPayloadBytes = *spec.MaxPayloadBytes
	}
	if err := validateBounds(maxAttempts, backoffBaseMs, maxPayloadBytes); err != nil {
		return db.WebhookSubscription{}, err
	}

	retryEnabled := true
	if spec.RetryEnabled != nil {
		retryEnabled = *spec.RetryEnabled
	}
	notifyOnFailure := false
	if spec.NotifyOnFailure != nil {
		notifyOnFailure = *spec.NotifyOnFailure
	}

	secret, err := GenerateWebhookSecret()
	if err != nil {
		return db.WebhookSubscription{}, err
	}

	now := pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
	sub, err := courier.DB.CreateWebhookSubscription(ctx, db.CreateWebhookSubscriptionParams{
		ID:              NewUuid(),
		TenantID:        tenantID,
		Url:             spec.URL,
		Name:            spec.Name,
		Description:     spec.Description,
		EventMask:       spec.Events,
		Secret:          secret,
		Active:          true,
		RetryEnabled:    retryEnabled,
		MaxAttempts:     maxAttempts,
		BackoffBaseMs:   backoffBaseMs,
		MaxPayloadBytes: maxPayloadBytes,
		NotifyOnFailure: notifyOnFailure,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return db.WebhookSubscription{}, err
	}

	log(ctx).Info("Webhook subscription created",
		"subscription_id", UuidToString(sub.ID),
		"tenant_id", tenantID,
		"url", sub.Url,
		"events", sub.EventMask,
	)
	return sub, nil
}

// GetSubscription returns a subscription owned by the tenant, including the
// secret. A subscription owned by another tenant yields ErrForbidden.
func GetSubscription(ctx context.Context, courier *Application, tenantID string, id pgtype.UUID) (db.WebhookSubscription, error) {
	sub, err := courier.DB.GetWebhookSubscription(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return db.WebhookSubscription{}, ErrNotFound
		}
		return db.WebhookSubscription{}, err
	}
	if sub.TenantID != tenantID {
		return db.WebhookSubscription{}, ErrForbidden
	}
	return sub, nil
}

// ListSubscriptions returns one page of the tenant's subscriptions, newest
// first. The extra hasMore result is derived by over-fetching one row.
func ListSubscriptions(ctx context.Context, courier *Application, tenantID string, active *bool, limit, offset int32) ([]db.WebhookSubscription, bool, error) {
	var subs []db.WebhookSubscription
	var err error
	if active != nil {
		subs, err = courier.DB.ListWebhookSubscriptionsByActive(ctx, db.ListWebhookSubscriptionsByActiveParams{
			TenantID: tenantID,
			Active:   *active,
			Limit:    limit + 1,
			Offset:   offset,
		})
	} else {
		subs, err = courier.DB.ListWebhookSubscriptions(ctx, db.ListWebhookSubscriptionsParams{
			TenantID: tenantID,
			Limit:    limit + 1,
			Offset:   offset,
		})
	}
	if err != nil {
		return nil, false, err
	}

	hasMore := false
	if int32(len(subs)) > limit {
		hasMore = true
		subs = subs[:limit]
	}
	return subs, hasMore, nil
}

// UpdateSubscription applies a patch to a tenant's subscription. Unset patch
// fields keep their current values; all constraints are re-validated.
func UpdateSubscription(ctx context.Context, courier *Application, tenantID string, id pgtype.UUID, patch SubscriptionPatch) (db.WebhookSubscription, error) {
	sub, err := GetSubscription(ctx, courier, tenantID, id)
	if err != nil {
		return db.WebhookSubscription{}, err
	}

	if patch.URL != nil {
		sub.Url = *patch.URL
	}
	if patch.Name != nil {
		sub.Name = *patch.Name
	}
	if patch.Description != nil {
		sub.Description = *patch.Description
	}
	if patch.Events != nil {
		sub.EventMask = patch.Events
	}
	if patch.Active != nil {
		sub.Active = *patch.Active
	}
	if patch.RetryEnabled != nil {
		sub.RetryEnabled = *patch.RetryEnabled
	}
	if patch.NotifyOnFailure != nil {
		sub.NotifyOnFailure = *patch.NotifyOnFailure
	}
	if patch.MaxAttempts != nil {
		sub.MaxAttempts = *patch.MaxAttempts
	}
	if patch.BackoffBaseMs != nil {
		sub.BackoffBaseMs = *patch.BackoffBaseMs
	}
	if patch.MaxPayloadBytes != nil {
		sub.MaxPayloadBytes = *patch.MaxPayloadBytes
	}

	if err := validateURL(sub.Url); err != nil {
		return db.WebhookSubscription{}, err
	}
	if sub.Name == "" {
		return db.WebhookSubscription{}, validationError("name", "is required")
	}
	if err := validateEventMask(sub.EventMask); err != nil {
		return db.WebhookSubscription{}, err
	}
	if err := validateBounds(sub.MaxAttempts, sub.BackoffBaseMs, sub.MaxPayloadBytes); err != nil {
		return db.WebhookSubscription{}, err
	}

	updated, err := courier.DB.UpdateWebhookSubscription(ctx, db.UpdateWebhookSubscriptionParams{
		ID:              sub.ID,
		Url:             sub.Url,
		Name:            sub.Name,
		Description:     sub.Description,
		EventMask:       sub.EventMask,
		Active:          sub.Active,
		RetryEnabled:    sub.RetryEnabled,
		MaxAttempts:     sub.MaxAttempts,
		BackoffBaseMs:   sub.BackoffBaseMs,
		MaxPayloadBytes: sub.MaxPayloadBytes,
		NotifyOnFailure: sub.NotifyOnFailure,
		UpdatedAt:       pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	})
	if err != nil {
		return db.WebhookSubscription{}, err
	}
	return updated, nil
}

// DeleteSubscription hard-deletes a tenant's subscription. Its delivery rows
// cascade in the store.
func DeleteSubscription(ctx context.Context, courier *Application, tenantID string, id pgtype.UUID) error {
	if _, err := GetSubscription(ctx, courier, tenantID, id); err != nil {
		return err
	}
	if err := courier.DB.DeleteWebhookSubscription(ctx, id); err != nil {
		return err
	}
	log(ctx).Info("Webhook subscription deleted",
		"subscription_id", UuidToString(id),
		"tenant_id", tenantID,
	)
	return nil
}

// RotateSecret atomically replaces a subscription's signing secret. Deliveries
// are signed immediately before each attempt, so any retry after rotation
// carries the new secret.
func RotateSecret(ctx context.Context, courier *Application, tenantID string, id pgtype.UUID) (db.WebhookSubscription, error) {
	sub, err := GetSubscription(ctx, courier, tenantID, id)
	if err != nil {
		return db.WebhookSubscription{}, err
	}

	secret, err := GenerateWebhookSecret()
	if err != nil {
		return db.WebhookSubscription{}, err
	}

	rotated, err := courier.DB.RotateWebhookSubscriptionSecret(ctx, db.RotateWebhookSubscriptionSecretParams{
		ID:        sub.ID,
		Secret:    secret,
		UpdatedAt: pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	})
	if err != nil {
		return db.WebhookSubscription{}, err
	}

	log(ctx).Info("Webhook secret rotated",
		"subscription_id", UuidToString(id),
		"tenant_id", tenantID,
	)
	courier.EventBus.Publish(BusMessage{
		Type:           BusMessageSecretRotated,
		SubscriptionID: UuidToString(id),
		TenantID:       tenantID,
	})
	return rotated, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return validationError("url", "is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return validationError("url", "must be a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return validationError("url", "scheme must be http or https")
	}
	if parsed.Host == "" {
		return validationError("url", "must include a host")
	}
	return nil
}

func validateEventMask(events []string) error {
	if len(events) == 0 {
		return validationError("events", "must contain at least one event type")
	}
	for _, e := range events {
		if _, ok := KnownEventTypes[e]; !ok {
			return validationError("events", "unknown event type: "+e)
		}
	}
	return nil
}

func validateBounds(maxAttempts, backoffBaseMs, maxPayloadBytes int32) error {
	if maxAttempts < MinAttempts || maxAttempts > MaxAttempts {
		return validationError("max_attempts", "must be between 1 and 10")
	}
	if backoffBaseMs < MinBackoffBaseMs || backoffBaseMs > MaxBackoffBaseMs {
		return validationError("backoff_base_ms", "must be between 1000 and 3600000")
	}
	if maxPayloadBytes < MinPayloadBytes || maxPayloadBytes > MaxPayloadBytes {
		return validationError("max_payload_bytes", "must be between 10240 and 10485760")
	}
	return nil
}
