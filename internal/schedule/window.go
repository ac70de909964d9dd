package schedule

import "time"

// CheckAdmission decides whether a purchase dated purchaseDate may be
// redeemed at "now". It returns nil when admissible, or one of the sentinel
// errors describing exactly why not.
//
// The outer bound is the date window: local midnight of the purchase date
// through 01:00 the next day. Within it, event override hours gate admission
// when present; otherwise the weekly schedule must list the business day and
// the current clock must fall inside one of its intervals. Overnight
// intervals extend admission past the grace hour, which is why a Friday
// 22:00-02:00 club still admits a Friday ticket at Saturday 01:30.
func CheckAdmission(purchaseDate time.Time, g Gate, now time.Time) error {
	elapsed := elapsedMinutes(purchaseDate, now)
	if elapsed < 0 {
		return ErrNotStarted
	}

	if g.Override != nil {
		return checkIntervals(elapsed, []Interval{g.Override.Hours})
	}

	if g.IsEvent {
		// Date window only.
		if elapsed >= minutesPerDay+graceMinutes {
			return ErrExpired
		}
		return nil
	}

	ivs := g.Week[businessMidnight(purchaseDate).Weekday()]
	if len(ivs) == 0 {
		if elapsed >= staleMinutes {
			return ErrExpired
		}
		return ErrClosedToday
	}
	return checkIntervals(elapsed, ivs)
}

func checkIntervals(elapsed int, ivs []Interval) error {
	for _, iv := range ivs {
		if iv.contains(elapsed) {
			return nil
		}
	}
	if elapsed >= staleMinutes {
		return ErrExpired
	}
	// Inside the date window but outside hours. The grace hour stretches the
	// date bound, it does not override configured hours.
	return ErrOutsideHours
}
