package testutil

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sweater-ventures/courier/app"
	"github.com/sweater-ventures/courier/config"
	"github.com/sweater-ventures/courier/db"
)

// NewUUID returns a pgtype.UUID with a new random UUID.
func NewUUID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.Must(uuid.NewV7()), Valid: true}
}

// NewTimestamp returns a pgtype.Timestamptz set to now.
func NewTimestamp() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
}

// SubscriptionOpt is a functional option for building test WebhookSubscriptions.
type SubscriptionOpt func(*db.WebhookSubscription)

// NewSubscription creates a db.WebhookSubscription with sensible defaults.
// Use options to override.
func NewSubscription(opts ...SubscriptionOpt) db.WebhookSubscription {
	s := db.WebhookSubscription{
		ID:              NewUUID(),
		TenantID:        "tenant-a",
		Url:             "https://example.com/webhook",
		Name:            "test-webhook",
		EventMask:       []string{"sms.sent", "sms.delivered"},
		Secret:          "746573742d7365637265742d746573742d7365637265742d746573742d736563",
		Active:          true,
		RetryEnabled:    true,
		MaxAttempts:     3,
		BackoffBaseMs:   1000,
		MaxPayloadBytes: 262144,
		CreatedAt:       NewTimestamp(),
		UpdatedAt:       NewTimestamp(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// DeliveryOpt is a functional option for building test WebhookDeliveries.
type DeliveryOpt func(*db.WebhookDelivery)

// NewDelivery creates a db.WebhookDelivery with sensible defaults. The
// delivery references the given subscription and starts pending.
func NewDelivery(sub db.WebhookSubscription, opts ...DeliveryOpt) db.WebhookDelivery {
	d := db.WebhookDelivery{
		ID:             NewUUID(),
		SubscriptionID: sub.ID,
		TenantID:       sub.TenantID,
		EventType:      "sms.delivered",
		Payload:        json.RawMessage(`{"tenant_id":"tenant-a","event_type":"sms.delivered","recipient":"+15555550100"}`),
		Status:         "pending",
		AttemptsMade:   0,
		MaxAttempts:    sub.MaxAttempts,
		CreatedAt:      NewTimestamp(),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// ApiTokenOpt is a functional option for building test ApiTokens.
type ApiTokenOpt func(*db.ApiToken)

// NewApiToken creates a db.ApiToken with a real bcrypt hash of the given
// plaintext. This is useful for testing token validation.
func NewApiToken(plaintext string, opts ...ApiTokenOpt) db.ApiToken {
	hash, err := app.HashToken(plaintext)
	if err != nil {
		panic("testutil: failed to hash token: " + err.Error())
	}
	t := db.ApiToken{
		ID:        NewUUID(),
		TenantID:  "tenant-a",
		Name:      "test-token",
		TokenHash: hash,
		CreatedAt: NewTimestamp(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// AppOpt is a functional option for building test Applications.
type AppOpt func(*app.Application)

// NewTestApp creates an app.Application suitable for testing.
// It uses the provided mock Querier and sensible config defaults.
func NewTestApp(mockDB *MockQuerier, opts ...AppOpt) *app.Application {
	a := &app.Application{
		Config: config.AppConfig{
			Port:              8010,
			DeliveryWorkers:   2,
			DeliveryQueueSize: 100,
			DeliveryTimeout:   2 * time.Second,
			SchedulerInterval: time.Minute,
			ClaimBatchSize:    200,
			DrainGrace:        time.Second,
			RetentionDays:     90,
		},
		DB:           mockDB,
		DeliveryChan: make(chan db.WebhookDelivery, 100),
		EventBus:     app.NewEventBus(),
		TokenCache:   app.NewCache[[16]byte, db.ApiToken](),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
