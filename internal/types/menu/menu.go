package menu

import (
	"time"

	"nightPassAPI/internal/schedule"
)

type Item struct {
	ID          string    `db:"id"          json:"id"`
	ClubID      string    `db:"club_id"     json:"club_id"`
	Name        string    `db:"name"        json:"name"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category"    json:"category"`
	BasePrice   int64     `db:"base_price"  json:"base_price"`
	ImageURL    string    `db:"image_url"   json:"image_url"`
	IsActive    bool      `db:"is_active"   json:"is_active"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`

	Variants []Variant `db:"-" json:"variants,omitempty"`

	// DynamicPrice is attached at read time, never stored.
	DynamicPrice *schedule.PriceResult `db:"-" json:"dynamic_price,omitempty"`
}

type Variant struct {
	ID         string `db:"id"          json:"id"`
	ItemID     string `db:"item_id"     json:"item_id"`
	Name       string `db:"name"        json:"name"`
	PriceDelta int64  `db:"price_delta" json:"price_delta"`
}
