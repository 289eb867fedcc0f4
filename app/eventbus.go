package app

import (
	"sync"
	"sync/atomic"
	"time"
)

// BusMessageType represents the type of event bus message.
type BusMessageType string

const (
	BusMessageAttempt       BusMessageType = "attempt"
	BusMessageExhausted     BusMessageType = "exhausted"
	BusMessageSecretRotated BusMessageType = "secret_rotated"
)

// BusMessage is a message published to the EventBus. The dispatcher publishes
// one per completed delivery attempt; SSE clients watching a subscription
// receive them live.
type BusMessage struct {
	ID             uint64         `json:"id"`
	Type           BusMessageType `json:"type"`
	SubscriptionID string         `json:"subscription_id"`
	DeliveryID     string         `json:"delivery_id,omitempty"`
	TenantID       string         `json:"tenant_id"`
	EventType      string         `json:"event_type,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`

	// Attempt fields (only set for attempt/exhausted messages)
	AttemptNumber   int32  `json:"attempt_number,omitempty"`
	Outcome         string `json:"outcome,omitempty"`
	HTTPCode        int    `json:"http_code,omitempty"`
	DurationMs      int64  `json:"duration_ms,omitempty"`
	Error           string `json:"error,omitempty"`
	NotifyOnFailure bool   `json:"notify_on_failure,omitempty"`
}

const subscriberBufferSize = 64

// EventBus is an in-memory pub/sub bus for broadcasting delivery attempt
// updates to SSE clients.
type EventBus struct {
	nextID      atomic.Uint64
	mu          sync.RWMutex
	subscribers map[chan BusMessage]struct{}
}

// NewEventBus creates a new EventBus.
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[chan BusMessage]struct{}),
	}
}

// Subscribe returns a buffered channel that receives bus messages and an
// unsubscribe function. The caller must call unsubscribe when done.
func (b *EventBus) Subscribe() (<-chan BusMessage, func()) {
	ch := make(chan BusMessage, subscriberBufferSize)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		delete(b.subscribers, ch)
		b.mu.Unlock()
	}

	return ch, unsubscribe
}

// Publish sends a message to all subscribers with a non-blocking send.
// Slow consumers that have full buffers will miss messages.
func (b *EventBus) Publish(msg BusMessage) {
	msg.ID = b.nextID.Add(1)
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			// Drop message for slow consumer
		}
	}
}
