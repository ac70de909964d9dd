package handlers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightPassAPI/internal/wompi"
	"nightPassAPI/services"
)

const webhookSecret = "events_secret"

type fakeApplier struct {
	calls   []*wompi.Event
	applied bool
	err     error
}

func (f *fakeApplier) ApplyWebhook(_ context.Context, ev *wompi.Event) (bool, error) {
	f.calls = append(f.calls, ev)
	return f.applied, f.err
}

func wompiBody(t *testing.T, reference, status string) []byte {
	t.Helper()
	sum := sha256.Sum256([]byte("prov-1" + status + "1700000000" + webhookSecret))
	return []byte(fmt.Sprintf(`{
		"event": "transaction.updated",
		"timestamp": 1700000000,
		"signature": {
			"checksum": %q,
			"properties": ["transaction.id", "transaction.status"]
		},
		"data": {"transaction": {"id": "prov-1", "status": %q, "reference": %q}}
	}`, hex.EncodeToString(sum[:]), status, reference))
}

func postWebhook(h *WompiHandler, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/wompi", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.HandleWompiWebhook(rr, req)
	return rr
}

func TestWompiWebhookApplied(t *testing.T) {
	applier := &fakeApplier{applied: true}
	h := NewWompiHandler(applier, webhookSecret, false)

	rr := postWebhook(h, wompiBody(t, "ticket_abc", "APPROVED"))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, applier.calls, 1)
	assert.Equal(t, "ticket_abc", applier.calls[0].Data.Transaction.Reference)
	assert.Equal(t, "APPROVED", applier.calls[0].Status())
}

func TestWompiWebhookBadChecksumLenient(t *testing.T) {
	applier := &fakeApplier{applied: true}
	h := NewWompiHandler(applier, "a_different_secret", false)

	rr := postWebhook(h, wompiBody(t, "ticket_abc", "APPROVED"))

	// Acknowledged but dropped: nothing reaches the applier.
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, applier.calls)
	assert.Contains(t, rr.Body.String(), "ignored")
}

func TestWompiWebhookBadChecksumStrict(t *testing.T) {
	applier := &fakeApplier{applied: true}
	h := NewWompiHandler(applier, "a_different_secret", true)

	rr := postWebhook(h, wompiBody(t, "ticket_abc", "APPROVED"))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, applier.calls)
}

func TestWompiWebhookUnparseableBody(t *testing.T) {
	applier := &fakeApplier{}
	h := NewWompiHandler(applier, webhookSecret, false)

	rr := postWebhook(h, []byte(`{not json`))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, applier.calls)
}

func TestWompiWebhookUnknownReferenceAcknowledged(t *testing.T) {
	applier := &fakeApplier{err: fmt.Errorf("lookup: %w", services.ErrNotFound)}
	h := NewWompiHandler(applier, webhookSecret, false)

	rr := postWebhook(h, wompiBody(t, "ticket_nope", "APPROVED"))

	// Wompi must stop retrying events we can never apply.
	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, applier.calls, 1)
}

func TestWompiWebhookApplyErrorStillAcknowledged(t *testing.T) {
	applier := &fakeApplier{err: fmt.Errorf("db is down")}
	h := NewWompiHandler(applier, webhookSecret, false)

	rr := postWebhook(h, wompiBody(t, "menu_abc", "DECLINED"))

	assert.Equal(t, http.StatusOK, rr.Code)
}
