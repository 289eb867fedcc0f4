package app

import "time"

// SMS lifecycle event types a subscription can register for.
const (
	EventSMSSent      = "sms.sent"
	EventSMSDelivered = "sms.delivered"
	EventSMSFailed    = "sms.failed"
	EventSMSBounced   = "sms.bounced"
	EventSMSRead      = "sms.read"
)

// KnownEventTypes is the set of event types accepted in a subscription's
// event mask.
var KnownEventTypes = map[string]struct{}{
	EventSMSSent:      {},
	EventSMSDelivered: {},
	EventSMSFailed:    {},
	EventSMSBounced:   {},
	EventSMSRead:      {},
}

// SMSEvent is the lifecycle transition reported by an SMS provider adapter.
// Its serialized form is the webhook wire body, verbatim; receivers own the
// interpretation of the fields.
type SMSEvent struct {
	TenantID          string     `json:"tenant_id"`
	SourceEventID     string     `json:"source_event_id,omitempty"`
	EventType         string     `json:"event_type"`
	Recipient         string     `json:"recipient,omitempty"`
	Provider          string     `json:"provider,omitempty"`
	ProviderMessageID string     `json:"provider_message_id,omitempty"`
	Cost              float64    `json:"cost,omitempty"`
	Currency          string     `json:"currency,omitempty"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`
	ErrorReason       string     `json:"error_reason,omitempty"`
	ErrorCode         string     `json:"error_code,omitempty"`
}
