package wompi_test

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightPassAPI/internal/wompi"
)

const testSecret = "test_events_secret"

func signedBody(t *testing.T, status string) []byte {
	t.Helper()
	sum := sha256.Sum256([]byte("id-123" + status + "4990" + "1530291411" + testSecret))
	return []byte(fmt.Sprintf(`{
		"event": "transaction.updated",
		"timestamp": 1530291411,
		"signature": {
			"checksum": %q,
			"properties": ["transaction.id", "transaction.status", "transaction.amount_in_cents"]
		},
		"data": {
			"transaction": {
				"id": "id-123",
				"status": %q,
				"reference": "ticket_abc",
				"amount_in_cents": 4990
			}
		}
	}`, hex.EncodeToString(sum[:]), status))
}

func TestVerifyValidChecksum(t *testing.T) {
	ev, err := wompi.ParseEvent(signedBody(t, "APPROVED"))
	require.NoError(t, err)

	assert.True(t, wompi.Verify(ev, testSecret))
	assert.Equal(t, "APPROVED", ev.Status())
	assert.Equal(t, "ticket_abc", ev.Data.Transaction.Reference)
}

func TestVerifyNumberFormatting(t *testing.T) {
	// amount_in_cents must feed the hash as "4990", not "4.99e+03". The
	// expected checksum above is computed from the literal digits, so a
	// formatting drift fails verification.
	ev, err := wompi.ParseEvent(signedBody(t, "DECLINED"))
	require.NoError(t, err)
	assert.True(t, wompi.Verify(ev, testSecret))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	ev, err := wompi.ParseEvent(signedBody(t, "APPROVED"))
	require.NoError(t, err)
	assert.False(t, wompi.Verify(ev, "another_secret"))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	body := signedBody(t, "APPROVED")
	tampered := strings.Replace(string(body), `"amount_in_cents": 4990`, `"amount_in_cents": 100`, 1)

	ev, err := wompi.ParseEvent([]byte(tampered))
	require.NoError(t, err)
	assert.False(t, wompi.Verify(ev, testSecret))
}

func TestVerifyRejectsMissingSignatureParts(t *testing.T) {
	ev, err := wompi.ParseEvent([]byte(`{
		"event": "transaction.updated",
		"timestamp": 0,
		"signature": {"checksum": "", "properties": []},
		"data": {"transaction": {"id": "id-1", "status": "APPROVED", "reference": "ticket_x"}}
	}`))
	require.NoError(t, err)
	assert.False(t, wompi.Verify(ev, testSecret))
}

func TestChecksumMissingPropertyIsEmptyString(t *testing.T) {
	body := []byte(`{
		"event": "transaction.updated",
		"timestamp": 42,
		"signature": {"checksum": "x", "properties": ["transaction.id", "transaction.payment_method.type"]},
		"data": {"transaction": {"id": "id-1", "status": "APPROVED", "reference": "ticket_x"}}
	}`)
	ev, err := wompi.ParseEvent(body)
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("id-1" + "" + "42" + testSecret))
	assert.Equal(t, hex.EncodeToString(sum[:]), wompi.Checksum(ev, testSecret))
}

func TestStatusAndClamp(t *testing.T) {
	ev, err := wompi.ParseEvent([]byte(`{
		"event": "transaction.updated",
		"timestamp": 1,
		"signature": {"checksum": "x", "properties": ["transaction.id"]},
		"data": {"transaction": {"id": "id-1", "status": "approved", "reference": "menu_x"}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", ev.Status())

	assert.Equal(t, wompi.StatusApproved, wompi.ClampStatus("APPROVED"))
	assert.Equal(t, wompi.StatusVoided, wompi.ClampStatus("VOIDED"))
	assert.Equal(t, wompi.StatusPending, wompi.ClampStatus("UNKNOWN"))
	assert.Equal(t, wompi.StatusPending, wompi.ClampStatus("REFUNDED"))
	assert.Equal(t, wompi.StatusPending, wompi.ClampStatus(""))
}
