package event

import "time"

// Event is a dated party at a club. OpenMins/CloseMins, when set, override
// the club's weekly schedule for tickets tied to this event.
type Event struct {
	ID          string    `db:"id"          json:"id"`
	ClubID      string    `db:"club_id"     json:"club_id"`
	Name        string    `db:"name"        json:"name"`
	Description string    `db:"description" json:"description"`
	Date        time.Time `db:"date"        json:"date"`
	OpenMins    *int      `db:"open_mins"   json:"open_mins,omitempty"`
	CloseMins   *int      `db:"close_mins"  json:"close_mins,omitempty"`
	ImageURL    string    `db:"image_url"   json:"image_url"`
	IsActive    bool      `db:"is_active"   json:"is_active"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
}

// HasHours reports whether the event carries its own open/close override.
func (e *Event) HasHours() bool {
	return e.OpenMins != nil && e.CloseMins != nil
}
