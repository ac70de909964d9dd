package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightPassAPI/internal/schedule"
)

// 2026-06-05 is a Friday.
func fridayNight() (time.Time, schedule.Gate) {
	purchase := time.Date(2026, 6, 5, 0, 0, 0, 0, schedule.VenueTZ)
	gate := schedule.Gate{Week: schedule.Week{
		time.Friday: {{Open: 22 * 60, Close: 2 * 60}},
	}}
	return purchase, gate
}

func at(day, hour, min int) time.Time {
	return time.Date(2026, 6, day, hour, min, 0, 0, schedule.VenueTZ)
}

func TestCheckAdmissionInsideHours(t *testing.T) {
	purchase, gate := fridayNight()

	err := schedule.CheckAdmission(purchase, gate, at(5, 23, 0))
	assert.NoError(t, err)
}

func TestCheckAdmissionOvernightSpillover(t *testing.T) {
	purchase, gate := fridayNight()

	// Saturday 01:30 still belongs to Friday's 22:00-02:00 window.
	err := schedule.CheckAdmission(purchase, gate, at(6, 1, 30))
	assert.NoError(t, err)

	// Saturday 03:00 is past close.
	err = schedule.CheckAdmission(purchase, gate, at(6, 3, 0))
	assert.ErrorIs(t, err, schedule.ErrOutsideHours)
}

func TestCheckAdmissionBeforeOpen(t *testing.T) {
	purchase, gate := fridayNight()

	err := schedule.CheckAdmission(purchase, gate, at(5, 12, 0))
	assert.ErrorIs(t, err, schedule.ErrOutsideHours)
}

func TestCheckAdmissionFuturePurchase(t *testing.T) {
	purchase, gate := fridayNight()

	err := schedule.CheckAdmission(purchase, gate, at(4, 23, 0))
	assert.ErrorIs(t, err, schedule.ErrNotStarted)

	assert.True(t, schedule.IsFuture(purchase, at(4, 23, 0)))
	assert.False(t, schedule.IsFuture(purchase, at(5, 0, 1)))
}

func TestCheckAdmissionStalePurchaseExpires(t *testing.T) {
	purchase, gate := fridayNight()

	err := schedule.CheckAdmission(purchase, gate, at(8, 23, 0))
	assert.ErrorIs(t, err, schedule.ErrExpired)
}

func TestCheckAdmissionClosedDay(t *testing.T) {
	// Purchase dated Sunday against a Friday-only schedule.
	purchase := time.Date(2026, 6, 7, 0, 0, 0, 0, schedule.VenueTZ)
	_, gate := fridayNight()

	err := schedule.CheckAdmission(purchase, gate, at(7, 23, 0))
	assert.ErrorIs(t, err, schedule.ErrClosedToday)

	// Days later the same scan reads as expired, not closed.
	err = schedule.CheckAdmission(purchase, gate, at(10, 23, 0))
	assert.ErrorIs(t, err, schedule.ErrExpired)
}

func TestCheckAdmissionEventDateWindow(t *testing.T) {
	purchase := time.Date(2026, 6, 5, 0, 0, 0, 0, schedule.VenueTZ)
	gate := schedule.Gate{IsEvent: true}

	// Any time on the date works, hours are not gated.
	require.NoError(t, schedule.CheckAdmission(purchase, gate, at(5, 14, 0)))

	// Grace hour past midnight.
	require.NoError(t, schedule.CheckAdmission(purchase, gate, at(6, 0, 30)))

	// Past the grace hour the window is gone.
	err := schedule.CheckAdmission(purchase, gate, at(6, 1, 30))
	assert.ErrorIs(t, err, schedule.ErrExpired)
}

func TestCheckAdmissionEventOverrideHours(t *testing.T) {
	purchase := time.Date(2026, 6, 5, 0, 0, 0, 0, schedule.VenueTZ)
	gate := schedule.Gate{
		IsEvent: true,
		Override: &schedule.Override{
			Date:  purchase,
			Hours: schedule.Interval{Open: 20 * 60, Close: 1 * 60},
		},
	}

	require.NoError(t, schedule.CheckAdmission(purchase, gate, at(5, 20, 30)))
	require.NoError(t, schedule.CheckAdmission(purchase, gate, at(6, 0, 30)))

	err := schedule.CheckAdmission(purchase, gate, at(6, 2, 0))
	assert.ErrorIs(t, err, schedule.ErrOutsideHours)

	err = schedule.CheckAdmission(purchase, gate, at(5, 14, 0))
	assert.ErrorIs(t, err, schedule.ErrOutsideHours)
}
