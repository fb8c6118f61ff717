package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_MultiTopicSubscribe(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("emp-1", "hr")
	defer cleanup()

	assert.Equal(t, 1, h.SubscriberCount("emp-1"))
	assert.Equal(t, 1, h.SubscriberCount("hr"))
	assert.Equal(t, 1, h.TotalSubscribers())

	h.Publish("hr", Event{Event: "notification", Data: "a"})
	h.Publish("emp-2", Event{Event: "notification", Data: "ignored"})
	h.Publish("emp-1", Event{Event: "notification", Data: "b"})

	first := <-ch
	second := <-ch
	assert.Equal(t, "hr", first.Topic)
	assert.Equal(t, "a", first.Data)
	assert.Equal(t, "emp-1", second.Topic)
	assert.Empty(t, ch)
}

func TestHub_CleanupClosesOnce(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("hr")
	cleanup()
	cleanup()

	_, ok := <-ch
	require.False(t, ok)
	assert.Zero(t, h.TotalSubscribers())

	h.Publish("hr", Event{Event: "notification"})
}

func TestHub_FullBufferDropsEvents(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("hr")
	defer cleanup()

	for i := 0; i < h.bufferSize+5; i++ {
		h.Publish("hr", Event{Data: i})
	}
	assert.Len(t, ch, h.bufferSize)
}
