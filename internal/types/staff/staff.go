package staff

import "time"

// User is a staff account: bouncer, waiter, club owner, or admin. Customers
// never log in here; they check out anonymously or through the storefront.
type User struct {
	ID           string    `db:"id"            json:"id"`
	Email        string    `db:"email"         json:"email"`
	Username     string    `db:"username"      json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role"          json:"role"`
	ClubID       *string   `db:"club_id"       json:"club_id,omitempty"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	ClubID   string `json:"club_id,omitempty"`
	Username string `json:"username"`
}

// DeviceToken is a registered push target for a staff device.
type DeviceToken struct {
	Token    string `db:"token"    json:"token"`
	Platform string `db:"platform" json:"platform"`
}
