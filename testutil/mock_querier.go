package testutil

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/mock"
	"github.com/sweater-ventures/courier/db"
)

// MockQuerier is a testify mock implementation of db.Querier.
type MockQuerier struct {
	mock.Mock
}

var _ db.Querier = (*MockQuerier)(nil)

func (m *MockQuerier) ClaimDueWebhookDeliveries(ctx context.Context, arg db.ClaimDueWebhookDeliveriesParams) ([]db.WebhookDelivery, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]db.WebhookDelivery), args.Error(1)
}

func (m *MockQuerier) ClaimWebhookDelivery(ctx context.Context, arg db.ClaimWebhookDeliveryParams) (db.WebhookDelivery, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.WebhookDelivery), args.Error(1)
}

func (m *MockQuerier) CountWebhookDeliveriesByEventType(ctx context.Context, subscriptionID pgtype.UUID) ([]db.CountWebhookDeliveriesByEventTypeRow, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).([]db.CountWebhookDeliveriesByEventTypeRow), args.Error(1)
}

func (m *MockQuerier) CountWebhookDeliveriesByStatus(ctx context.Context, subscriptionID pgtype.UUID) ([]db.CountWebhookDeliveriesByStatusRow, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).([]db.CountWebhookDeliveriesByStatusRow), args.Error(1)
}

func (m *MockQuerier) CreateWebhookSubscription(ctx context.Context, arg db.CreateWebhookSubscriptionParams) (db.WebhookSubscription, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.WebhookSubscription), args.Error(1)
}

func (m *MockQuerier) DeleteApiToken(ctx context.Context, id pgtype.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuerier) DeleteExpiredWebhookDeliveries(ctx context.Context, cutoff pgtype.Timestamptz) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuerier) DeleteWebhookSubscription(ctx context.Context, id pgtype.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuerier) GetApiToken(ctx context.Context, id pgtype.UUID) (db.ApiToken, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.ApiToken), args.Error(1)
}

func (m *MockQuerier) GetWebhookDelivery(ctx context.Context, id pgtype.UUID) (db.WebhookDelivery, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.WebhookDelivery), args.Error(1)
}

func (m *MockQuerier) GetWebhookSubscription(ctx context.Context, id pgtype.UUID) (db.WebhookSubscription, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.WebhookSubscription), args.Error(1)
}

func (m *MockQuerier) IncrementWebhookSubscriptionStats(ctx context.Context, arg db.IncrementWebhookSubscriptionStatsParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

func (m *MockQuerier) InsertApiToken(ctx context.Context, arg db.InsertApiTokenParams) (db.ApiToken, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.ApiToken), args.Error(1)
}

func (m *MockQuerier) InsertWebhookDelivery(ctx context.Context, arg db.InsertWebhookDeliveryParams) (db.WebhookDelivery, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.WebhookDelivery), args.Error(1)
}

func (m *MockQuerier) ListMatchingWebhookSubscriptions(ctx context.Context, arg db.ListMatchingWebhookSubscriptionsParams) ([]db.WebhookSubscription, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]db.WebhookSubscription), args.Error(1)
}

func (m *MockQuerier) ListRecentWebhookDeliveries(ctx context.Context, arg db.ListRecentWebhookDeliveriesParams) ([]db.WebhookDelivery, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]db.WebhookDelivery), args.Error(1)
}

func (m *MockQuerier) ListWebhookDeliveriesForSubscription(ctx context.Context, arg db.ListWebhookDeliveriesForSubscriptionParams) ([]db.WebhookDelivery, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]db.WebhookDelivery), args.Error(1)
}

func (m *MockQuerier) ListWebhookSubscriptions(ctx context.Context, arg db.ListWebhookSubscriptionsParams) ([]db.WebhookSubscription, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]db.WebhookSubscription), args.Error(1)
}

func (m *MockQuerier) ListWebhookSubscriptionsByActive(ctx context.Context, arg db.ListWebhookSubscriptionsByActiveParams) ([]db.WebhookSubscription, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]db.WebhookSubscription), args.Error(1)
}

func (m *MockQuerier) MarkWebhookDeliveryFailed(ctx context.Context, arg db.MarkWebhookDeliveryFailedParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuerier) MarkWebhookDeliverySucceeded(ctx context.Context, arg db.MarkWebhookDeliverySucceededParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuerier) ReclaimStuckWebhookDeliveries(ctx context.Context, cutoff pgtype.Timestamptz) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuerier) RotateWebhookSubscriptionSecret(ctx context.Context, arg db.RotateWebhookSubscriptionSecretParams) (db.WebhookSubscription, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.WebhookSubscription), args.Error(1)
}

func (m *MockQuerier) ScheduleWebhookDeliveryRetry(ctx context.Context, arg db.ScheduleWebhookDeliveryRetryParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuerier) UpdateWebhookSubscription(ctx context.Context, arg db.UpdateWebhookSubscriptionParams) (db.WebhookSubscription, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.WebhookSubscription), args.Error(1)
}
