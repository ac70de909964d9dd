package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightPassAPI/internal/schedule"
	"nightPassAPI/internal/types/purchase"
)

func TestReplayErrorCarriesTimestamp(t *testing.T) {
	at := time.Date(2026, 6, 5, 23, 30, 0, 0, time.UTC)
	err := replayError(&at)

	var used *AlreadyUsedError
	require.ErrorAs(t, err, &used)
	assert.Equal(t, at, used.UsedAt)
}

func TestReplayErrorNilTimestamp(t *testing.T) {
	// A set used flag with a missing timestamp must still read as a replay,
	// not dereference anything.
	err := replayError(nil)

	var used *AlreadyUsedError
	require.ErrorAs(t, err, &used)
	assert.True(t, used.UsedAt.IsZero())
}

func TestPreviewResultUnpaidStillInspects(t *testing.T) {
	s := &ValidationService{}
	at := time.Date(2026, 6, 5, 23, 30, 0, 0, time.UTC)
	items := []purchase.RedeemedItem{{Name: "VIP entry", Quantity: 1}}

	// Preview carries no payment gate; a used purchase previews with its
	// redemption info instead of erroring.
	res := s.previewResult(true, &at, at, items)
	assert.True(t, res.Valid)
	assert.True(t, res.Preview)
	assert.Equal(t, "already redeemed", res.Reason)
	assert.Equal(t, &at, res.UsedAt)
	assert.Equal(t, items, res.Items)

	res = s.previewResult(false, nil, at, items)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Reason)
	assert.Nil(t, res.UsedAt)
}

func TestWindowResultReasons(t *testing.T) {
	res := windowResult(schedule.ErrNotStarted)
	assert.False(t, res.Valid)
	assert.Equal(t, "event has not started yet", res.Reason)

	res = windowResult(schedule.ErrOutsideHours)
	assert.False(t, res.Valid)
	assert.Equal(t, schedule.ErrOutsideHours.Error(), res.Reason)
}

func TestAlreadyUsedErrorMessage(t *testing.T) {
	at := time.Date(2026, 6, 5, 23, 30, 0, 0, time.UTC)
	err := &AlreadyUsedError{UsedAt: at}
	assert.Contains(t, err.Error(), "2026-06-05T23:30:00Z")
	assert.False(t, errors.Is(err, ErrNotFound))
}
