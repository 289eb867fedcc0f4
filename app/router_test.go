package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sweater-ventures/courier/db"
)

func TestEmitEvent_FansOutToMatchingSubscriptions(t *testing.T) {
	mockDB := new(appMockQuerier)
	courier := newDeliveryTestApp(mockDB)

	subs := []db.WebhookSubscription{newTestSubscription(), newTestSubscription(), newTestSubscription()}
	mockDB.On("ListMatchingWebhookSubscriptions", mock.Anything, db.ListMatchingWebhookSubscriptionsParams{
		TenantID:  "tenant-a",
		EventType: "sms.delivered",
	}).Return(subs, nil)

	var inserted []db.InsertWebhookDeliveryParams
	mockDB.On("InsertWebhookDelivery", mock.Anything, mock.AnythingOfType("db.InsertWebhookDeliveryParams")).
		Run(func(args mock.Arguments) {
			inserted = append(inserted, args.Get(1).(db.InsertWebhookDeliveryParams))
		}).
		Return(newTestDelivery(subs[0]), nil)

	created, err := EmitEvent(context.Background(), courier, SMSEvent{
		TenantID:  "tenant-a",
		EventType: "sms.delivered",
		Recipient: "+15555550100",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, created)
	require.Len(t, inserted, 3)
	for i, params := range inserted {
		assert.Equal(t, subs[i].ID, params.SubscriptionID)
		assert.Equal(t, "tenant-a", params.TenantID)
		assert.Equal(t, "sms.delivered", params.EventType)
		assert.Equal(t, subs[i].MaxAttempts, params.MaxAttempts)
		assert.JSONEq(t,
			`{"tenant_id":"tenant-a","event_type":"sms.delivered","recipient":"+15555550100"}`,
			string(params.Payload))
	}
	assert.Len(t, courier.DeliveryChan, 3)
	mockDB.AssertExpectations(t)
}

func TestEmitEvent_NoMatchingSubscriptions(t *testing.T) {
	mockDB := new(appMockQuerier)
	courier := newDeliveryTestApp(mockDB)

	mockDB.On("ListMatchingWebhookSubscriptions", mock.Anything, mock.AnythingOfType("db.ListMatchingWebhookSubscriptionsParams")).
		Return([]db.WebhookSubscription{}, nil)

	created, err := EmitEvent(context.Background(), courier, SMSEvent{
		TenantID:  "tenant-a",
		EventType: "sms.read",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	mockDB.AssertNotCalled(t, "InsertWebhookDelivery", mock.Anything, mock.Anything)
}

func TestEmitEvent_RejectsUnknownEventType(t *testing.T) {
	mockDB := new(appMockQuerier)
	courier := newDeliveryTestApp(mockDB)

	_, err := EmitEvent(context.Background(), courier, SMSEvent{
		TenantID:  "tenant-a",
		EventType: "email.delivered",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "event_type", validationErr.Field)
}

func TestEmitEvent_InsertFailureDoesNotStarveOtherSubscribers(t *testing.T) {
	mockDB := new(appMockQuerier)
	courier := newDeliveryTestApp(mockDB)

	good := newTestSubscription()
	bad := newTestSubscription()
	mockDB.On("ListMatchingWebhookSubscriptions", mock.Anything, mock.AnythingOfType("db.ListMatchingWebhookSubscriptionsParams")).
		Return([]db.WebhookSubscription{bad, good}, nil)

	mockDB.On("InsertWebhookDelivery", mock.Anything, mock.MatchedBy(func(p db.InsertWebhookDeliveryParams) bool {
		return p.SubscriptionID == bad.ID
	})).Return(db.WebhookDelivery{}, errors.New("constraint violation"))
	mockDB.On("InsertWebhookDelivery", mock.Anything, mock.MatchedBy(func(p db.InsertWebhookDeliveryParams) bool {
		return p.SubscriptionID == good.ID
	})).Return(newTestDelivery(good), nil)

	created, err := EmitEvent(context.Background(), courier, SMSEvent{
		TenantID:  "tenant-a",
		EventType: "sms.delivered",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	mockDB.AssertExpectations(t)
}

func TestEmitEvent_FullQueueDoesNotBlock(t *testing.T) {
	mockDB := new(appMockQuerier)
	courier := newDeliveryTestApp(mockDB)
	courier.DeliveryChan = make(chan db.WebhookDelivery, 1)

	subs := []db.WebhookSubscription{newTestSubscription(), newTestSubscription()}
	mockDB.On("ListMatchingWebhookSubscriptions", mock.Anything, mock.AnythingOfType("db.ListMatchingWebhookSubscriptionsParams")).
		Return(subs, nil)
	mockDB.On("InsertWebhookDelivery", mock.Anything, mock.AnythingOfType("db.InsertWebhookDeliveryParams")).
		Return(newTestDelivery(subs[0]), nil)

	// Both rows are persisted even though only one fits the handoff queue;
	// the other waits for the scheduler.
	created, err := EmitEvent(context.Background(), courier, SMSEvent{
		TenantID:  "tenant-a",
		EventType: "sms.delivered",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Len(t, courier.DeliveryChan, 1)
}
