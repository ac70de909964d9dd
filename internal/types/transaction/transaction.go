package transaction

import "time"

// Kind selects which transaction table a record lives in. The webhook routes
// on the reference prefix.
type Kind string

const (
	KindTicket Kind = "ticket"
	KindMenu   Kind = "menu"
)

// Transaction is the financial envelope for one checkout: one or more
// purchases paid together. Created PENDING, mutated only by webhook
// reconciliation, never deleted.
type Transaction struct {
	ID                    string  `db:"id"                      json:"id"`
	Reference             string  `db:"reference"               json:"reference"`
	ProviderTransactionID *string `db:"provider_transaction_id" json:"provider_transaction_id,omitempty"`
	Status                string  `db:"status"                  json:"status"`
	ClubID                string  `db:"club_id"                 json:"club_id"`
	Email                 string  `db:"email"                   json:"email"`
	AmountCents           int64   `db:"amount_cents"            json:"amount_cents"`

	// QRPayload is the opaque encrypted token for standalone menu-only
	// redemption. Ticket transactions leave it null; each ticket purchase
	// carries its own code.
	QRPayload *string `db:"qr_payload" json:"qr_payload,omitempty"`

	Used   bool       `db:"used"    json:"used"`
	UsedAt *time.Time `db:"used_at" json:"used_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Item is one menu line inside a transaction.
type Item struct {
	ID            string `db:"id"             json:"id"`
	TransactionID string `db:"transaction_id" json:"transaction_id"`
	MenuItemID    string `db:"menu_item_id"   json:"menu_item_id"`
	Name          string `db:"name"           json:"name"`
	VariantName   string `db:"variant_name"   json:"variant_name"`
	Quantity      int    `db:"quantity"       json:"quantity"`
	UnitPrice     int64  `db:"unit_price"     json:"unit_price"`
}
