package club

import (
	"time"

	"nightPassAPI/internal/schedule"
)

type Club struct {
	ID          string    `db:"id"            json:"id"`
	Name        string    `db:"name"          json:"name"`
	OwnerUserID string    `db:"owner_user_id" json:"owner_user_id"`
	Address     string    `db:"address"       json:"address"`
	City        string    `db:"city"          json:"city"`
	Description string    `db:"description"   json:"description"`
	ImageURL    string    `db:"image_url"     json:"image_url"`
	IsActive    bool      `db:"is_active"     json:"is_active"`
	CreatedAt   time.Time `db:"created_at"    json:"created_at"`

	Schedule []ScheduleRow `db:"-" json:"schedule,omitempty"`
}

// ScheduleRow is one open interval on one weekday. Minutes since local
// midnight; close smaller than open means the interval wraps past midnight.
type ScheduleRow struct {
	Weekday   int `db:"weekday"    json:"weekday"`
	OpenMins  int `db:"open_mins"  json:"open_mins"`
	CloseMins int `db:"close_mins" json:"close_mins"`
}

// Week folds schedule rows into the form the admission and pricing rules
// consume.
func Week(rows []ScheduleRow) schedule.Week {
	w := make(schedule.Week)
	for _, r := range rows {
		wd := time.Weekday(r.Weekday)
		w[wd] = append(w[wd], schedule.Interval{Open: r.OpenMins, Close: r.CloseMins})
	}
	return w
}
