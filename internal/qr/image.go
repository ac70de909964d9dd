package qr

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// Image renders a token as a scannable PNG, base64-encoded for embedding
// straight into a JSON response.
func Image(token string, size int) (string, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(token, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
