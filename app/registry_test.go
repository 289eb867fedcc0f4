package app

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sweater-ventures/courier/db"
)

func TestCreateSubscription_Defaults(t *testing.T) {
	mockDB := new(appMockQuerier)
	courier := newDeliveryTestApp(mockDB)

	var captured db.CreateWebhookSubscriptionParams
	mockDB.On("CreateWebhookSubscription", mock.Anything, mock.AnythingOfType("db.CreateWebhookSubscriptionParams")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(db.CreateWebhookSubscriptionParams)
		}).
		Return(newTestSubscription(), nil)

	_, err := CreateSubscription(context.Background(), courier, "tenant-a", SubscriptionSpec{
		URL:    "https://example.com/hook",
		Name:   "orders",
		Events: []string{"sms.delivered"},
	})
	require.NoError(t, err)

	assert.Equal(t, "tenant-a", captured.TenantID)
	assert.True(t, captured.Active)
	assert.True(t, captured.RetryEnabled)
	assert.False(t, captured.NotifyOnFailure)
	assert.Equal(t, int32(DefaultAttempts), captured.MaxAttempts)
	assert.Equal(t, int32(DefaultBackoffMs), captured.BackoffBaseMs)
	assert.Equal(t, int32(DefaultPayloadMax), captured.MaxPayloadBytes)
	assert.Len(t, captured.Secret, 64)
	mockDB.AssertExpectations(t)
}

func TestCreateSubscription_Validation(t *testing.T) {
	i32 := func(v int32) *int32 { return &v }

	tests := []struct {
		name  string
		spec  SubscriptionSpec
		field string
	}{
		{"missing url", SubscriptionSpec{Name: "n", Events: []string{"sms.sent"}}, "url"},
		{"ftp scheme", SubscriptionSpec{URL: "ftp://example.com", Name: "n", Events: []string{"sms.sent"}}, "url"},
		{"no host", SubscriptionSpec{URL: "https://", Name: "n", Events: []string{"sms.sent"}}, "url"},
		{"missing name", SubscriptionSpec{URL: "https://example.com", Events: []string{"sms.sent"}}, "name"},
		{"empty events", SubscriptionSpec{URL: "https://example.com", Name: "n"}, "events"},
		{"unknown event", SubscriptionSpec{URL: "https://example.com", Name: "n", Events: []string{"email.sent"}}, "events"},
		{"attempts too low", SubscriptionSpec{URL: "https://example.com", Name: "n", Events: []string{"sms.sent"}, MaxAttempts: i32(0)}, "max_attempts"},
		{"attempts too high", SubscriptionSpec{URL: "https://example.com", Name: "n", Events: []string{"sms.sent"}, MaxAttempts: i32(11)}, "max_attempts"},
		{"backoff too low", SubscriptionSpec{URL: "https://example.com", Name: "n", Events: []string{"sms.sent"}, BackoffBaseMs: i32(999)}, "backoff_base_ms"},
		{"backoff too high", SubscriptionSpec{URL: "https://example.com", Name: "n", Events: []string{"sms.sent"}, BackoffBaseMs: i32(3600001)}, "backoff_base_ms"},
		{"payload too small", SubscriptionSpec{URL: "https://example.com", Name: "n", Events: []string{"sms.sent"}, MaxPayloadBytes: i32(100)}, "max_payload_bytes"},
		{"payload too large", SubscriptionSpec{URL: "https://example.com", Name: "n", Events: []string{"sms.sent"}, MaxPayloadBytes: i32(20 * 1024 * 1024)}, "max_payload_bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := new(appMockQuerier)
			courier := newDeliveryTestApp(mockDB)

			_, err := CreateSubscription(context.Background(), courier, "tenant-a", tt.spec)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
			mockDB.AssertNotCalled(t, "CreateWebhookSubscription", mock.Anything, mock.Anything)
		})
	}
}

func TestGetSubscription_TenantIsolation(t *testing.T) {
	mockDB := new(appMockQuerier)
	courier := newDeliveryTestApp(mockDB)
	sub := newTestSubscription(func(s *db.WebhookSubscription) { s.TenantID = "tenant-b" })

	mockDB.On("GetWebhookSubscription", mock.Anything, sub.ID).Return(sub, nil)

	_, err := GetSubscription(context.Background(), courier, "tenant-a", sub.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetSubscription_NotFound(t *testing.T) {
	mockDB := new(appMockQuerier)
	courier := newDeliveryTestApp(mockDB)
	id := newTestUUID()

	mockDB.On("GetWebhookSubscription", mock.Anything, id).Return(db.WebhookSubscription{}, pgx.ErrNoRows)

	_, err := GetSubscription(context.Background(), courier, "tenant-a", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSubscription_PartialPatchKeepsOtherFields(t *testing.T) {
	mockDB := new(appMockQuerier)
	courier := newDeliveryTestApp(mockDB)
	sub := newTestSubscription()

	var captured db.UpdateWebhookSubscriptionParams
	mockDB.On("GetWebhookSubscription", mock.Anything, sub.ID).Return(sub, nil)
	mockDB.On("UpdateWebhookSubscription", mock.Anything, mock.AnythingOfType("db.UpdateWebhookSubscriptionParams")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(db.UpdateWebhookSubscriptionParams)
		}).
		Return(sub, nil)

	newURL := "https://example.net/other"
	_, err := UpdateSubscription(context.Background(), courier, sub.TenantID, sub.ID, SubscriptionPatch{
		URL: &newURL,
	})
	require.NoError(t, err)

	assert.Equal(t, newURL, captured.Url)
	assert.Equal(t, sub.Name, captured.Name)
	assert.Equal(t, sub.EventMask, captured.EventMask)
	assert.Equal(t, sub.MaxAttempts, captured.MaxAttempts)
	mockDB.AssertExpectations(t)
}

func TestUpdateSubscription_RevalidatesPatchedFields(t *testing.T) {
	mockDB := new(appMockQuerier)
	courier := newDeliveryTestApp(mockDB)
	sub := newTestSubscription()

	mockDB.On("GetWebhookSubscription", mock.Anything, sub.ID).Return(sub, nil)

	bad := int32(99)
	_, err := UpdateSubscription(context.Background(), courier, sub.TenantID, sub.ID, SubscriptionPatch{
		MaxAttempts: &bad,
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	mockDB.AssertNotCalled(t, "UpdateWebhookSubscription", mock.Anything, mock.Anything)
}

func TestRotateSecret_GeneratesNewSecretAndNotifies(t *testing.T) {
	mockDB := new(appMockQuerier)
	courier := newDeliveryTestApp(mockDB)
	sub := newTestSubscription()

	messages, unsubscribe := courier.EventBus.Subscribe()
	defer unsubscribe()

	var captured db.RotateWebhookSubscriptionSecretParams
	mockDB.On("GetWebhookSubscription", mock.Anything, sub.ID).Return(sub, nil)
	mockDB.On("RotateWebhookSubscriptionSecret", mock.Anything, mock.AnythingOfType("db.RotateWebhookSubscriptionSecretParams")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(db.RotateWebhookSubscriptionSecretParams)
		}).
		Return(sub, nil)

	_, err := RotateSecret(context.Background(), courier, sub.TenantID, sub.ID)
	require.NoError(t, err)

	assert.Len(t, captured.Secret, 64)
	assert.NotEqual(t, sub.Secret, captured.Secret)

	msg := <-messages
	assert.Equal(t, BusMessageSecretRotated, msg.Type)
	assert.Equal(t, UuidToString(sub.ID), msg.SubscriptionID)
	mockDB.AssertExpectations(t)
}

func TestDeleteSubscription_OtherTenantLooksMissing(t *testing.T) {
	mockDB := new(appMockQuerier)
	courier := newDeliveryTestApp(mockDB)
	sub := newTestSubscription(func(s *db.WebhookSubscription) { s.TenantID = "tenant-b" })

	mockDB.On("GetWebhookSubscription", mock.Anything, sub.ID).Return(sub, nil)

	err := DeleteSubscription(context.Background(), courier, "tenant-a", sub.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	mockDB.AssertNotCalled(t, "DeleteWebhookSubscription", mock.Anything, mock.Anything)
}

func TestListSubscriptions_HasMore(t *testing.T) {
	mockDB := new(appMockQuerier)
	courier := newDeliveryTestApp(mockDB)

	rows := []db.WebhookSubscription{newTestSubscription(), newTestSubscription(), newTestSubscription()}
	mockDB.On("ListWebhookSubscriptions", mock.Anything, db.ListWebhookSubscriptionsParams{
		TenantID: "tenant-a",
		Limit:    3,
		Offset:   0,
	}).Return(rows, nil)

	subs, hasMore, err := ListSubscriptions(context.Background(), courier, "tenant-a", nil, 2, 0)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
	assert.True(t, hasMore)
}
