package purchase

import "time"

// TicketPurchase is one admitted head. The two usage flags are independent:
// the ticket itself, and the optional menu item bundled with it. Once set, a
// flag is never cleared by normal flow; rows are soft-deleted only.
type TicketPurchase struct {
	ID         string  `db:"id"          json:"id"`
	UserID     *string `db:"user_id"     json:"user_id,omitempty"`
	SessionID  *string `db:"session_id"  json:"session_id,omitempty"`
	Email      string  `db:"email"       json:"email"`
	ClubID     string  `db:"club_id"     json:"club_id"`
	EventID    *string `db:"event_id"    json:"event_id,omitempty"`
	TicketName string  `db:"ticket_name" json:"ticket_name"`

	Date      time.Time `db:"date"       json:"date"`
	PricePaid int64     `db:"price_paid" json:"price_paid"`

	TicketUsed   bool       `db:"ticket_used"    json:"ticket_used"`
	TicketUsedAt *time.Time `db:"ticket_used_at" json:"ticket_used_at,omitempty"`

	MenuItemID     *string    `db:"menu_item_id"      json:"menu_item_id,omitempty"`
	MenuItemUsed   bool       `db:"menu_item_used"    json:"menu_item_used"`
	MenuItemUsedAt *time.Time `db:"menu_item_used_at" json:"menu_item_used_at,omitempty"`

	TransactionID string     `db:"transaction_id" json:"transaction_id"`
	CreatedAt     time.Time  `db:"created_at"     json:"created_at"`
	DeletedAt     *time.Time `db:"deleted_at"     json:"deleted_at,omitempty"`
}

// RedeemedItem is one line of the manifest handed to staff after a
// successful scan. Manifests are recomputed from line items at redemption
// time, never persisted.
type RedeemedItem struct {
	Name     string `json:"name"`
	Variant  string `json:"variant,omitempty"`
	Quantity int    `json:"quantity"`
}

// ValidationResult is what every scan endpoint returns: a validity flag plus
// a reason string the staff UI can show as-is.
type ValidationResult struct {
	Valid    bool           `json:"valid"`
	Reason   string         `json:"reason,omitempty"`
	Preview  bool           `json:"preview,omitempty"`
	IsFuture bool           `json:"is_future,omitempty"`
	UsedAt   *time.Time     `json:"used_at,omitempty"`
	Items    []RedeemedItem `json:"items,omitempty"`
}
