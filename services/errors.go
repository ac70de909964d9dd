package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidQR covers every undecryptable or malformed token uniformly.
	ErrInvalidQR = errors.New("invalid or unreadable code")

	// ErrAccessDenied means the staff member has no authority over the
	// purchase's club.
	ErrAccessDenied = errors.New("staff not authorized for this club")

	ErrNotFound = errors.New("not found")

	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNotPayable rejects redemption of transactions that never reached
	// APPROVED.
	ErrNotPayable = errors.New("transaction is not approved")
)

// AlreadyUsedError is the replay case: the purchase was redeemed before, and
// the original timestamp travels back so staff can see when.
type AlreadyUsedError struct {
	UsedAt time.Time
}

func (e *AlreadyUsedError) Error() string {
	return fmt.Sprintf("already redeemed at %s", e.UsedAt.Format(time.RFC3339))
}
