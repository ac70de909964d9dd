package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidToken is the only decode error callers ever see. Malformed
// base64, a ragged IV split, bad padding, and unparseable JSON all collapse
// into it so a scanner cannot probe which stage rejected the token.
var ErrInvalidToken = errors.New("invalid qr token")

const (
	TypeTicket         = "ticket"
	TypeMenu           = "menu"
	TypeMenuFromTicket = "menu_from_ticket"
)

// Payload is the decrypted contents of a scanned code. It is never persisted;
// every validation call reconstructs it from the encrypted input.
type Payload struct {
	Type             string
	ClubID           string
	ID               string
	TicketPurchaseID string
}

// wirePayload keeps tokens short. The codec expands the field names back
// before anything downstream sees them.
type wirePayload struct {
	T  string `json:"t"`
	C  string `json:"c"`
	I  string `json:"i,omitempty"`
	TP string `json:"tp,omitempty"`
}

// Codec does symmetric encryption of QR payloads: AES-256-CBC with a fresh
// random IV per encryption, token = base64(IV || ciphertext). Two tokens for
// the same payload never match.
type Codec struct {
	key []byte
}

func NewCodec(key []byte) (*Codec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("qr codec key must be 32 bytes, got %d", len(key))
	}
	return &Codec{key: key}, nil
}

func (c *Codec) Encrypt(p Payload) (string, error) {
	plain, err := json.Marshal(wirePayload{T: p.Type, C: p.ClubID, I: p.ID, TP: p.TicketPurchaseID})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	padded := pad(plain, aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))
	iv := out[:aes.BlockSize]
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("read iv: %w", err)
	}
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

func (c *Codec) Decrypt(token string) (Payload, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Payload{}, ErrInvalidToken
	}
	if len(raw) < aes.BlockSize*2 || len(raw)%aes.BlockSize != 0 {
		return Payload{}, ErrInvalidToken
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return Payload{}, ErrInvalidToken
	}

	iv, ct := raw[:aes.BlockSize], raw[aes.BlockSize:]
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)

	plain, ok := unpad(plain, aes.BlockSize)
	if !ok {
		return Payload{}, ErrInvalidToken
	}

	var wp wirePayload
	if err := json.Unmarshal(plain, &wp); err != nil {
		return Payload{}, ErrInvalidToken
	}
	if wp.T == "" || wp.C == "" {
		return Payload{}, ErrInvalidToken
	}

	return Payload{Type: wp.T, ClubID: wp.C, ID: wp.I, TicketPurchaseID: wp.TP}, nil
}

func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(b []byte, size int) ([]byte, bool) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, false
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
