package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/mock"
	"github.com/sweater-ventures/courier/config"
	"github.com/sweater-ventures/courier/db"
)

// --- local test helpers (avoid importing testutil to prevent import cycle) ---

// appMockQuerier is a testify mock implementation of db.Querier for app tests.
type appMockQuerier struct {
	mock.Mock
}

var _ db.Querier = (*appMockQuerier)(nil)

func (m *appMockQuerier) ClaimDueWebhookDeliveries(ctx context.Context, arg db.ClaimDueWebhookDeliveriesParams) ([]db.WebhookDelivery, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]db.WebhookDelivery), args.Error(1)
}
func (m *appMockQuerier) ClaimWebhookDelivery(ctx context.Context, arg db.ClaimWebhookDeliveryParams) (db.WebhookDelivery, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.WebhookDelivery), args.Error(1)
}
func (m *appMockQuerier) CountWebhookDeliveriesByEventType(ctx context.Context, subscriptionID pgtype.UUID) ([]db.CountWebhookDeliveriesByEventTypeRow, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).([]db.CountWebhookDeliveriesByEventTypeRow), args.Error(1)
}
func (m *appMockQuerier) CountWebhookDeliveriesByStatus(ctx context.Context, subscriptionID pgtype.UUID) ([]db.CountWebhookDeliveriesByStatusRow, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).([]db.CountWebhookDeliveriesByStatusRow), args.Error(1)
}
func (m *appMockQuerier) CreateWebhookSubscription(ctx context.Context, arg db.CreateWebhookSubscriptionParams) (db.WebhookSubscription, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.WebhookSubscription), args.Error(1)
}
func (m *appMockQuerier) DeleteApiToken(ctx context.Context, id pgtype.UUID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *appMockQuerier) DeleteExpiredWebhookDeliveries(ctx context.Context, cutoff pgtype.Timestamptz) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
func (m *appMockQuerier) DeleteWebhookSubscription(ctx context.Context, id pgtype.UUID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *appMockQuerier) GetApiToken(ctx context.Context, id pgtype.UUID) (db.ApiToken, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.ApiToken), args.Error(1)
}
func (m *appMockQuerier) GetWebhookDelivery(ctx context.Context, id pgtype.UUID) (db.WebhookDelivery, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.WebhookDelivery), args.Error(1)
}
func (m *appMockQuerier) GetWebhookSubscription(ctx context.Context, id pgtype.UUID) (db.WebhookSubscription, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.WebhookSubscription), args.Error(1)
}
func (m *appMockQuerier) IncrementWebhookSubscriptionStats(ctx context.Context, arg db.IncrementWebhookSubscriptionStatsParams) error {
	return m.Called(ctx, arg).Error(0)
}
func (m *appMockQuerier) InsertApiToken(ctx context.Context, arg db.InsertApiTokenParams) (db.ApiToken, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.ApiToken), args.Error(1)
}
func (m *appMockQuerier) InsertWebhookDelivery(ctx context.Context, arg db.InsertWebhookDeliveryParams) (db.WebhookDelivery, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.WebhookDelivery), args.Error(1)
}
func (m *appMockQuerier) ListMatchingWebhookSubscriptions(ctx context.Context, arg db.ListMatchingWebhookSubscriptionsParams) ([]db.WebhookSubscription, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]db.WebhookSubscription), args.Error(1)
}
func (m *appMockQuerier) ListRecentWebhookDeliveries(ctx context.Context, arg db.ListRecentWebhookDeliveriesParams) ([]db.WebhookDelivery, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]db.WebhookDelivery), args.Error(1)
}
func (m *appMockQuerier) ListWebhookDeliveriesForSubscription(ctx context.Context, arg db.ListWebhookDeliveriesForSubscriptionParams) ([]db.WebhookDelivery, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]db.WebhookDelivery), args.Error(1)
}
func (m *appMockQuerier) ListWebhookSubscriptions(ctx context.Context, arg db.ListWebhookSubscriptionsParams) ([]db.WebhookSubscription, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]db.WebhookSubscription), args.Error(1)
}
func (m *appMockQuerier) ListWebhookSubscriptionsByActive(ctx context.Context, arg db.ListWebhookSubscriptionsByActiveParams) ([]db.WebhookSubscription, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]db.WebhookSubscription), args.Error(1)
}
func (m *appMockQuerier) MarkWebhookDeliveryFailed(ctx context.Context, arg db.MarkWebhookDeliveryFailedParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}
func (m *appMockQuerier) MarkWebhookDeliverySucceeded(ctx context.Context, arg db.MarkWebhookDeliverySucceededParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}
func (m *appMockQuerier) ReclaimStuckWebhookDeliveries(ctx context.Context, cutoff pgtype.Timestamptz) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
func (m *appMockQuerier) RotateWebhookSubscriptionSecret(ctx context.Context, arg db.RotateWebhookSubscriptionSecretParams) (db.WebhookSubscription, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.WebhookSubscription), args.Error(1)
}
func (m *appMockQuerier) ScheduleWebhookDeliveryRetry(ctx context.Context, arg db.ScheduleWebhookDeliveryRetryParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}
func (m *appMockQuerier) UpdateWebhookSubscription(ctx context.Context, arg db.UpdateWebhookSubscriptionParams) (db.WebhookSubscription, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.WebhookSubscription), args.Error(1)
}

func newTestUUID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.Must(uuid.NewV7()), Valid: true}
}

func newTestTimestamp() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
}

func newTestSubscription(opts ...func(*db.WebhookSubscription)) db.WebhookSubscription {
	s := db.WebhookSubscription{
		ID:              newTestUUID(),
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
		CreatedAt:       newTestTimestamp(),
		UpdatedAt:       newTestTimestamp(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func newTestDelivery(sub db.WebhookSubscription, opts ...func(*db.WebhookDelivery)) db.WebhookDelivery {
	d := db.WebhookDelivery{
		ID:             newTestUUID(),
		SubscriptionID: sub.ID,
		TenantID:       sub.TenantID,
		EventType:      "sms.delivered",
		Payload:        json.RawMessage(`{"tenant_id":"tenant-a","event_type":"sms.delivered","recipient":"+15555550100"}`),
		Status:         "in_flight",
		AttemptsMade:   0,
		MaxAttempts:    sub.MaxAttempts,
		LastAttemptAt:  newTestTimestamp(),
		CreatedAt:      newTestTimestamp(),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func newDeliveryTestApp(mockDB *appMockQuerier) *Application {
	return &Application{
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
		EventBus:     NewEventBus(),
		TokenCache:   NewCache[[16]byte, db.ApiToken](),
		stopDelivery: func() {},
	}
}
