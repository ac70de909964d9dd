package sse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightPassAPI/internal/sse"
)

func TestRegistryPublishToSubscriber(t *testing.T) {
	r := sse.NewRegistry()

	ch, cancel := r.Subscribe("ticket_abc")
	defer cancel()

	ev := sse.Event{Type: "status_update", Data: map[string]any{"status": "APPROVED"}}
	delivered := r.Publish("ticket_abc", ev)
	assert.Equal(t, 1, delivered)

	got := <-ch
	assert.Equal(t, ev, got)
}

func TestRegistryIsolatesReferences(t *testing.T) {
	r := sse.NewRegistry()

	chA, cancelA := r.Subscribe("ticket_a")
	defer cancelA()
	_, cancelB := r.Subscribe("ticket_b")
	defer cancelB()

	delivered := r.Publish("ticket_a", sse.Event{Type: "status_update"})
	assert.Equal(t, 1, delivered)

	select {
	case <-chA:
	default:
		t.Fatal("subscriber for ticket_a should have received the event")
	}
}

func TestRegistryCancelStopsDelivery(t *testing.T) {
	r := sse.NewRegistry()

	_, cancel := r.Subscribe("ticket_abc")
	require.Equal(t, 1, r.Subscribers("ticket_abc"))

	cancel()
	cancel() // idempotent
	assert.Equal(t, 0, r.Subscribers("ticket_abc"))

	delivered := r.Publish("ticket_abc", sse.Event{Type: "status_update"})
	assert.Equal(t, 0, delivered)
}

func TestRegistrySlowSubscriberDoesNotBlock(t *testing.T) {
	r := sse.NewRegistry()

	_, cancel := r.Subscribe("ticket_abc")
	defer cancel()

	// Fill the buffer and keep publishing; delivery just stops counting,
	// nothing deadlocks.
	for i := 0; i < 20; i++ {
		r.Publish("ticket_abc", sse.Event{Type: "ping"})
	}
	assert.Equal(t, 1, r.Subscribers("ticket_abc"))
}
