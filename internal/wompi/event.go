package wompi

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Transaction statuses Wompi reports. Anything else is clamped to PENDING
// before it touches the database.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusDeclined = "DECLINED"
	StatusVoided   = "VOIDED"
	StatusError    = "ERROR"
)

// Reference prefixes route an event to the right transaction table.
const (
	RefPrefixTicket = "ticket_"
	RefPrefixMenu   = "menu_"
)

type Signature struct {
	Checksum   string   `json:"checksum"`
	Properties []string `json:"properties"`
}

type Transaction struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

// Event is an inbound payment webhook. Data is kept raw as well as parsed:
// the checksum covers property values exactly as Wompi sent them, so lookup
// walks the original JSON instead of trusting our struct mapping.
type Event struct {
	Event     string `json:"event"`
	Timestamp int64  `json:"timestamp"`
	Signature Signature `json:"signature"`
	Data      struct {
		Transaction Transaction `json:"transaction"`
	} `json:"data"`

	rawData map[string]any
}

// ParseEvent decodes a webhook body. Numbers are kept as json.Number so
// amount_in_cents formats back byte-for-byte when the checksum is recomputed.
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&envelope); err != nil {
		return nil, err
	}
	ev.rawData = envelope.Data

	return &ev, nil
}

// Status returns the transaction status uppercased, UNKNOWN when absent.
func (e *Event) Status() string {
	s := strings.ToUpper(e.Data.Transaction.Status)
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

// ClampStatus maps any unrecognized status onto PENDING.
func ClampStatus(status string) string {
	switch status {
	case StatusPending, StatusApproved, StatusDeclined, StatusVoided, StatusError:
		return status
	default:
		return StatusPending
	}
}

// property resolves a dotted signature property ("transaction.id") against
// the raw data object. A missing property contributes the empty string, per
// the provider's checksum contract.
func (e *Event) property(path string) string {
	var cur any = e.rawData
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur, ok = m[seg]
		if !ok {
			return ""
		}
	}

	switch v := cur.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
