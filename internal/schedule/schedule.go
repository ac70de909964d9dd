package schedule

import (
	"errors"
	"time"
)

// VenueTZ is the clock every club runs on. The platform is single-region
// (Colombia, no DST), so a fixed offset stands in for a tzdata lookup.
var VenueTZ = time.FixedZone("COT", -5*60*60)

const (
	minutesPerDay = 24 * 60

	// graceMinutes keeps a purchase dated "today" redeemable past local
	// midnight, so people already inside the club don't get bounced at 00:01.
	graceMinutes = 60

	// staleMinutes is the hard cutoff for hour-gated purchases. Inside it a
	// miss reads as "outside hours"; beyond it the purchase is just expired.
	staleMinutes = 48 * 60
)

var (
	ErrClosedToday  = errors.New("club is closed on this day")
	ErrOutsideHours = errors.New("outside club operating hours")
	ErrNotStarted   = errors.New("not valid yet")
	ErrExpired      = errors.New("no longer valid")
)

// Interval is an open/close pair in minutes since local midnight. Close may
// be numerically smaller than Open for intervals that wrap past midnight
// (22:00-02:00).
type Interval struct {
	Open  int `json:"open"`
	Close int `json:"close"`
}

// Week maps an open weekday to its intervals. A weekday with no entry is a
// closed day.
type Week map[time.Weekday][]Interval

// Override carries event hours that replace the weekly schedule for one
// calendar date.
type Override struct {
	Date  time.Time
	Hours Interval
}

// Gate bundles everything that can gate a redemption besides the date itself.
type Gate struct {
	Week     Week
	Override *Override

	// Event tickets skip the weekly open-day check entirely; without an
	// override they are bounded by the date window alone.
	IsEvent bool
}

// businessMidnight returns local midnight of the purchase date. All window
// math is relative to this instant, so a 01:30 scan during an overnight
// interval still counts against the previous business day.
func businessMidnight(purchaseDate time.Time) time.Time {
	d := purchaseDate.In(VenueTZ)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, VenueTZ)
}

// elapsedMinutes is how far "now" sits past the purchase date's local
// midnight. Negative means the purchase date is still in the future.
func elapsedMinutes(purchaseDate, now time.Time) int {
	return int(now.In(VenueTZ).Sub(businessMidnight(purchaseDate)).Minutes())
}

// absolute converts an interval to minutes-from-business-midnight, unwrapping
// closes that fall past midnight.
func (iv Interval) absolute() (lo, hi int) {
	lo, hi = iv.Open, iv.Close
	if hi <= lo {
		hi += minutesPerDay
	}
	return lo, hi
}

func (iv Interval) contains(elapsed int) bool {
	lo, hi := iv.absolute()
	return elapsed >= lo && elapsed <= hi
}

// IsFuture reports whether the purchase date has not begun yet in venue time.
// Preview responses surface this so staff see "event hasn't started" on early
// scans without blocking the lookup.
func IsFuture(purchaseDate, now time.Time) bool {
	return now.In(VenueTZ).Before(businessMidnight(purchaseDate))
}
