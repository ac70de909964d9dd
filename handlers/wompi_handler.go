package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"nightPassAPI/internal/wompi"
	"nightPassAPI/middleware"
	"nightPassAPI/services"
)

// webhookApplier is what the handler needs from the transaction service.
type webhookApplier interface {
	ApplyWebhook(ctx context.Context, ev *wompi.Event) (bool, error)
}

type WompiHandler struct {
	applier webhookApplier
	secret  string
	strict  bool
}

// NewWompiHandler wires the payment webhook endpoint. In strict mode a bad
// checksum gets a 403; otherwise it gets a 200 and is dropped, which keeps
// the provider from retrying garbage forever while we investigate.
func NewWompiHandler(applier webhookApplier, secret string, strict bool) *WompiHandler {
	return &WompiHandler{
		applier: applier,
		secret:  secret,
		strict:  strict,
	}
}

func (h *WompiHandler) HandleWompiWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		middleware.RecordWebhookEvent("unknown", "bad_body")
		http.Error(w, "Error reading body", http.StatusBadRequest)
		return
	}

	ev, err := wompi.ParseEvent(body)
	if err != nil {
		log.Warn().Err(err).Msg("unparseable wompi event")
		middleware.RecordWebhookEvent("unknown", "bad_payload")
		h.reject(w, "Invalid payload")
		return
	}

	if !wompi.Verify(ev, h.secret) {
		log.Warn().Str("event", ev.Event).Str("reference", ev.Data.Transaction.Reference).Msg("wompi checksum mismatch")
		middleware.RecordWebhookEvent(ev.Status(), "bad_checksum")
		h.reject(w, "Invalid signature")
		return
	}

	applied, err := h.applier.ApplyWebhook(ctx, ev)
	switch {
	case errors.Is(err, services.ErrNotFound):
		// Events for references we never issued. Acknowledge so Wompi
		// stops retrying.
		log.Warn().Str("reference", ev.Data.Transaction.Reference).Msg("wompi event for unknown reference")
		middleware.RecordWebhookEvent(ev.Status(), "unknown_reference")
	case err != nil:
		// Database trouble: acknowledged anyway, the next retry or a
		// manual reconciliation picks it up.
		log.Error().Err(err).Str("reference", ev.Data.Transaction.Reference).Msg("failed to apply wompi event")
		middleware.RecordWebhookEvent(ev.Status(), "apply_error")
	case applied:
		middleware.RecordWebhookEvent(ev.Status(), "applied")
	default:
		middleware.RecordWebhookEvent(ev.Status(), "replay")
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

func (h *WompiHandler) reject(w http.ResponseWriter, message string) {
	if h.strict {
		respondWithError(w, http.StatusForbidden, message)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
}
