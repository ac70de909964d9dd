package schedule

import "time"

// earlyBirdPercent is knocked off the base price while the club hasn't
// opened yet for the target date.
const earlyBirdPercent = 15

// PriceResult is the outcome of a dynamic price quote. Unavailable results
// carry a reason so the UI can show a disabled state instead of a price.
type PriceResult struct {
	Available bool   `json:"available"`
	Price     int64  `json:"price"`
	Reason    string `json:"reason,omitempty"`
}

func unavailable(reason string) PriceResult {
	return PriceResult{Available: false, Reason: reason}
}

// Quote computes the display/checkout price for a purchase targeting
// targetDate. Pure function: same inputs, same output. No demand feedback,
// only day-of-week and time-of-day relative to the target date.
//
// Expired date window and closed days quote as Unavailable; callers render
// those as non-purchasable rather than erroring.
func Quote(basePrice int64, g Gate, targetDate, now time.Time) PriceResult {
	elapsed := elapsedMinutes(targetDate, now)

	if elapsed >= minutesPerDay+graceMinutes {
		return unavailable("expired")
	}

	var ivs []Interval
	switch {
	case g.Override != nil:
		ivs = []Interval{g.Override.Hours}
	case g.IsEvent:
		// Event without override hours: purchasable at base price until the
		// date window runs out.
		return PriceResult{Available: true, Price: basePrice}
	default:
		ivs = g.Week[businessMidnight(targetDate).Weekday()]
		if len(ivs) == 0 {
			return unavailable("closed")
		}
	}

	if elapsed < earliestOpen(ivs) {
		discounted := basePrice * (100 - earlyBirdPercent) / 100
		return PriceResult{Available: true, Price: discounted}
	}
	return PriceResult{Available: true, Price: basePrice}
}

func earliestOpen(ivs []Interval) int {
	open := minutesPerDay
	for _, iv := range ivs {
		if iv.Open < open {
			open = iv.Open
		}
	}
	return open
}
