package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := NewEventBus()

	ch1, unsub1 := bus.Subscribe()
	defer unsub1()
	ch2, unsub2 := bus.Subscribe()
	defer unsub2()

	bus.Publish(BusMessage{Type: BusMessageAttempt, SubscriptionID: "s1"})

	msg1 := <-ch1
	msg2 := <-ch2
	assert.Equal(t, "s1", msg1.SubscriptionID)
	assert.Equal(t, msg1.ID, msg2.ID)
	assert.False(t, msg1.Timestamp.IsZero())
}

func TestEventBus_MonotonicIDs(t *testing.T) {
	bus := NewEventBus()
	ch, unsub := bus.Subscribe()
	defer unsub()

	bus.Publish(BusMessage{Type: BusMessageAttempt})
	bus.Publish(BusMessage{Type: BusMessageAttempt})

	first := <-ch
	second := <-ch
	assert.Greater(t, second.ID, first.ID)
}

func TestEventBus_UnsubscribedChannelStopsReceiving(t *testing.T) {
	bus := NewEventBus()
	ch, unsub := bus.Subscribe()
	unsub()

	bus.Publish(BusMessage{Type: BusMessageAttempt})
	assert.Empty(t, ch)
}

func TestEventBus_SlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	bus := NewEventBus()
	_, unsub := bus.Subscribe()
	defer unsub()

	// Overflow the subscriber buffer; Publish must never block.
	for range subscriberBufferSize * 2 {
		bus.Publish(BusMessage{Type: BusMessageAttempt})
	}
}

func TestCache_NegativeLookups(t *testing.T) {
	c := NewCache[string, int]()

	_, found, inCache := c.Get("missing")
	assert.False(t, inCache)
	assert.False(t, found)

	c.Set("hit", 42, true)
	v, found, inCache := c.Get("hit")
	assert.True(t, inCache)
	assert.True(t, found)
	assert.Equal(t, 42, v)

	c.Set("miss", 0, false)
	_, found, inCache = c.Get("miss")
	assert.True(t, inCache, "negative lookups are cached")
	assert.False(t, found)

	c.Delete("hit")
	_, _, inCache = c.Get("hit")
	assert.False(t, inCache)

	c.Set("a", 1, true)
	c.Flush()
	_, _, inCache = c.Get("a")
	assert.False(t, inCache)
}
