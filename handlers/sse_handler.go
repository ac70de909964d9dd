package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"nightPassAPI/internal/sse"
	"nightPassAPI/services"
)

// statusSource is what the stream needs from the transaction service: the
// current status at handshake time, so a webhook that landed before the
// stream opened is not lost.
type statusSource interface {
	StatusByReference(ctx context.Context, ref string) (string, error)
}

type SSEHandler struct {
	registry     *sse.Registry
	status       statusSource
	pingInterval time.Duration
}

func NewSSEHandler(registry *sse.Registry, status statusSource) *SSEHandler {
	return &SSEHandler{
		registry:     registry,
		status:       status,
		pingInterval: 30 * time.Second,
	}
}

// StreamTransaction holds the connection open and pushes status updates for
// one payment reference. The buyer's browser subscribes right after checkout
// and closes once it sees a terminal status.
func (h *SSEHandler) StreamTransaction(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["reference"]

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	current, err := h.status.StatusByReference(r.Context(), ref)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	events, cancel := h.registry.Subscribe(ref)
	defer cancel()

	writeEvent(w, sse.Event{
		Type: "connected",
		Data: map[string]any{"reference": ref, "status": current},
	})
	flusher.Flush()

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			writeEvent(w, ev)
			flusher.Flush()
		case <-ping.C:
			writeEvent(w, sse.Event{Type: "ping"})
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev sse.Event) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("failed to marshal sse event")
		fmt.Fprint(w, "event: error\ndata: {\"reason\":\"encoding failure\"}\n\n")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
}
