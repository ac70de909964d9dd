package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightPassAPI/internal/sse"
	"nightPassAPI/services"
)

type fakeStatus map[string]string

func (f fakeStatus) StatusByReference(_ context.Context, ref string) (string, error) {
	s, ok := f[ref]
	if !ok {
		return "", services.ErrNotFound
	}
	return s, nil
}

func TestStreamTransactionUnknownReference(t *testing.T) {
	h := NewSSEHandler(sse.NewRegistry(), fakeStatus{})

	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodGet, "/transactions/ticket_nope/events", nil),
		map[string]string{"reference": "ticket_nope"},
	)
	rr := httptest.NewRecorder()
	h.StreamTransaction(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStreamTransactionPushesEvents(t *testing.T) {
	registry := sse.NewRegistry()
	h := NewSSEHandler(registry, fakeStatus{"ticket_abc": "PENDING"})
	h.pingInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodGet, "/transactions/ticket_abc/events", nil).WithContext(ctx),
		map[string]string{"reference": "ticket_abc"},
	)
	rr := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.StreamTransaction(rr, req)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return registry.Subscribers("ticket_abc") == 1
	}, time.Second, 5*time.Millisecond)

	registry.Publish("ticket_abc", sse.Event{
		Type: "status_update",
		Data: map[string]any{"reference": "ticket_abc", "status": "APPROVED"},
	})

	// Give the handler a moment to drain the channel, then hang up.
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := rr.Body.String()
	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, `"status":"PENDING"`)
	assert.Contains(t, body, "event: status_update")
	assert.Contains(t, body, `"status":"APPROVED"`)
	assert.Contains(t, body, "event: ping")

	// Subscription cleaned up on disconnect.
	assert.Equal(t, 0, registry.Subscribers("ticket_abc"))
}
