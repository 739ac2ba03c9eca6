package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()
	a, cancelA := bus.Subscribe(4)
	b, cancelB := bus.Subscribe(4)
	defer cancelA()
	defer cancelB()

	bus.Publish(Event{Kind: KindEffectAdded, Entity: 7, Identity: "poison"})

	gotA := <-a
	gotB := <-b
	assert.Equal(t, KindEffectAdded, gotA.Kind)
	assert.Equal(t, uint32(7), gotA.Entity)
	assert.Equal(t, gotA, gotB)
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	_, cancel := bus.Subscribe(1)
	defer cancel()

	// Second publish overflows the buffer and is dropped, not blocked on.
	bus.Publish(Event{Kind: KindEffectAdded, Entity: 1})
	bus.Publish(Event{Kind: KindEffectAdded, Entity: 2})

	assert.Equal(t, uint64(1), bus.Dropped())
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)

	require.Equal(t, 1, bus.Subscribers())
	cancel()
	assert.Equal(t, 0, bus.Subscribers())

	_, open := <-ch
	assert.False(t, open)

	// Cancel is idempotent and publishing to nobody is fine.
	cancel()
	bus.Publish(Event{Kind: KindBoundsBreached})
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Publish(Event{Kind: KindEffectRemoved, Entity: 3})
	assert.Equal(t, uint64(0), bus.Dropped())
}
