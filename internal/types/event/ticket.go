package event

import "nightPassAPI/internal/schedule"

// Ticket is a purchasable admission type, tied to a club and optionally to a
// specific event. IncludedMenuItemID bundles a menu item that gets its own
// usage flag on the purchase.
type Ticket struct {
	ID                 string  `db:"id"                    json:"id"`
	ClubID             string  `db:"club_id"               json:"club_id"`
	EventID            *string `db:"event_id"              json:"event_id,omitempty"`
	Name               string  `db:"name"                  json:"name"`
	BasePrice          int64   `db:"base_price"            json:"base_price"`
	IncludedMenuItemID *string `db:"included_menu_item_id" json:"included_menu_item_id,omitempty"`
	IsActive           bool    `db:"is_active"             json:"is_active"`

	// DynamicPrice is attached at read time for a target date, never stored.
	DynamicPrice *schedule.PriceResult `db:"-" json:"dynamic_price,omitempty"`
}
