package wompi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Checksum recomputes the event signature the way Wompi builds it: the named
// property values concatenated in order (missing properties contribute ""),
// then the timestamp, then the events secret, all through SHA-256.
func Checksum(e *Event, secret string) string {
	h := sha256.New()
	for _, prop := range e.Signature.Properties {
		h.Write([]byte(e.property(prop)))
	}
	h.Write([]byte(strconv.FormatInt(e.Timestamp, 10)))
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify checks the supplied checksum against a fresh computation. The
// comparison is constant-time; case differences in the hex encoding are not
// signal, so both sides are lowercased first.
func Verify(e *Event, secret string) bool {
	if e.Signature.Checksum == "" || len(e.Signature.Properties) == 0 || e.Timestamp == 0 {
		return false
	}
	want := Checksum(e, secret)
	got := strings.ToLower(e.Signature.Checksum)
	return hmac.Equal([]byte(want), []byte(got))
}
