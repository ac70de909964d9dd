package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nightPassAPI/internal/schedule"
)

func TestQuoteEarlyBird(t *testing.T) {
	target, gate := fridayNight()

	// Friday afternoon, doors not open yet.
	res := schedule.Quote(10000, gate, target, at(5, 15, 0))
	assert.True(t, res.Available)
	assert.Equal(t, int64(8500), res.Price)
}

func TestQuoteBasePriceDuringHours(t *testing.T) {
	target, gate := fridayNight()

	res := schedule.Quote(10000, gate, target, at(5, 23, 0))
	assert.True(t, res.Available)
	assert.Equal(t, int64(10000), res.Price)
}

func TestQuoteClosedDay(t *testing.T) {
	target := time.Date(2026, 6, 7, 0, 0, 0, 0, schedule.VenueTZ) // Sunday
	_, gate := fridayNight()

	res := schedule.Quote(10000, gate, target, at(7, 15, 0))
	assert.False(t, res.Available)
	assert.Equal(t, "closed", res.Reason)
}

func TestQuoteExpiredWindow(t *testing.T) {
	target, gate := fridayNight()

	res := schedule.Quote(10000, gate, target, at(8, 15, 0))
	assert.False(t, res.Available)
	assert.Equal(t, "expired", res.Reason)
}

func TestQuoteEventWithoutHours(t *testing.T) {
	target := time.Date(2026, 6, 5, 0, 0, 0, 0, schedule.VenueTZ)
	gate := schedule.Gate{IsEvent: true}

	// No configured hours means no early-bird reference point; base price
	// holds for the whole date window.
	res := schedule.Quote(10000, gate, target, at(5, 10, 0))
	assert.True(t, res.Available)
	assert.Equal(t, int64(10000), res.Price)
}

func TestQuoteOverrideHoursEarlyBird(t *testing.T) {
	target := time.Date(2026, 6, 5, 0, 0, 0, 0, schedule.VenueTZ)
	gate := schedule.Gate{
		IsEvent:  true,
		Override: &schedule.Override{Date: target, Hours: schedule.Interval{Open: 20 * 60, Close: 2 * 60}},
	}

	res := schedule.Quote(10000, gate, target, at(5, 12, 0))
	assert.True(t, res.Available)
	assert.Equal(t, int64(8500), res.Price)

	res = schedule.Quote(10000, gate, target, at(5, 21, 0))
	assert.Equal(t, int64(10000), res.Price)
}
