package qr_test

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightPassAPI/internal/qr"
)

func testCodec(t *testing.T) *qr.Codec {
	t.Helper()
	c, err := qr.NewCodec(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)
	return c
}

func TestCodecRoundTrip(t *testing.T) {
	c := testCodec(t)

	in := qr.Payload{Type: qr.TypeTicket, ClubID: "club-1", ID: "purchase-1"}
	token, err := c.Encrypt(in)
	require.NoError(t, err)

	out, err := c.Decrypt(token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCodecBundledPayloadRoundTrip(t *testing.T) {
	c := testCodec(t)

	in := qr.Payload{Type: qr.TypeMenuFromTicket, ClubID: "club-1", TicketPurchaseID: "purchase-1"}
	token, err := c.Encrypt(in)
	require.NoError(t, err)

	out, err := c.Decrypt(token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCodecFreshIVPerEncryption(t *testing.T) {
	c := testCodec(t)
	in := qr.Payload{Type: qr.TypeMenu, ClubID: "club-1", ID: "tx-1"}

	a, err := c.Encrypt(in)
	require.NoError(t, err)
	b, err := c.Encrypt(in)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	outA, err := c.Decrypt(a)
	require.NoError(t, err)
	outB, err := c.Decrypt(b)
	require.NoError(t, err)
	assert.Equal(t, outA, outB)
}

func TestCodecRoundTripAllPaddingLengths(t *testing.T) {
	c := testCodec(t)

	// Sweep payload sizes so every PKCS7 padding length, the full extra
	// block included, goes through pad and unpad.
	for i := 0; i < 32; i++ {
		in := qr.Payload{Type: qr.TypeTicket, ClubID: "club-1", ID: strings.Repeat("x", i)}
		token, err := c.Encrypt(in)
		require.NoError(t, err)

		out, err := c.Decrypt(token)
		require.NoError(t, err, "payload size %d", i)
		assert.Equal(t, in, out)
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	c := testCodec(t)

	cases := []string{
		"",
		"not base64 !!!",
		base64.StdEncoding.EncodeToString([]byte("short")),
		base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x01}, 33)), // not block-aligned
		base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x01}, 48)), // random blocks
	}
	for _, token := range cases {
		_, err := c.Decrypt(token)
		assert.ErrorIs(t, err, qr.ErrInvalidToken, "token %q", token)
	}
}

func TestCodecTamperedCiphertext(t *testing.T) {
	c := testCodec(t)

	token, err := c.Encrypt(qr.Payload{Type: qr.TypeTicket, ClubID: "club-1", ID: "p-1"})
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(token)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString(raw))
	assert.ErrorIs(t, err, qr.ErrInvalidToken)
}

func TestCodecWrongKey(t *testing.T) {
	c := testCodec(t)
	other, err := qr.NewCodec(bytes.Repeat([]byte{0x99}, 32))
	require.NoError(t, err)

	token, err := c.Encrypt(qr.Payload{Type: qr.TypeTicket, ClubID: "club-1", ID: "p-1"})
	require.NoError(t, err)

	_, err = other.Decrypt(token)
	assert.ErrorIs(t, err, qr.ErrInvalidToken)
}

func TestCodecRequiresTypeAndClub(t *testing.T) {
	c := testCodec(t)

	token, err := c.Encrypt(qr.Payload{ClubID: "club-1", ID: "p-1"})
	require.NoError(t, err)
	_, err = c.Decrypt(token)
	assert.ErrorIs(t, err, qr.ErrInvalidToken)

	token, err = c.Encrypt(qr.Payload{Type: qr.TypeTicket, ID: "p-1"})
	require.NoError(t, err)
	_, err = c.Decrypt(token)
	assert.ErrorIs(t, err, qr.ErrInvalidToken)
}

func TestCodecKeyLength(t *testing.T) {
	_, err := qr.NewCodec([]byte("too short"))
	assert.Error(t, err)
}
