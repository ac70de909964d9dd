package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"nightPassAPI/internal/access"
	"nightPassAPI/internal/qr"
	"nightPassAPI/internal/schedule"
	"nightPassAPI/internal/types/purchase"
	"nightPassAPI/internal/wompi"
)

// ValidationService runs the door flow: decrypt the scanned code, confirm
// the staff member may act on the club, replay-check, gate on the admission
// window, then mark used. The used flip is a single conditional UPDATE so
// two simultaneous scans can't both win.
type ValidationService struct {
	db     *pgxpool.Pool
	codec  *qr.Codec
	policy *access.Policy
	clubs  *ClubService
	events *EventService
}

func NewValidationService(db *pgxpool.Pool, codec *qr.Codec, policy *access.Policy, clubs *ClubService, events *EventService) *ValidationService {
	return &ValidationService{db: db, codec: codec, policy: policy, clubs: clubs, events: events}
}

// ValidateTicket redeems a door ticket scan. Preview inspects without
// mutating.
func (s *ValidationService) ValidateTicket(ctx context.Context, st access.Staff, token string, preview bool) (*purchase.ValidationResult, error) {
	p, err := s.decode(ctx, st, token, qr.TypeTicket)
	if err != nil {
		return nil, err
	}

	tp, txStatus, err := s.loadTicketPurchase(ctx, p.ID, p.ClubID)
	if err != nil {
		return nil, err
	}

	if preview {
		return s.previewResult(tp.TicketUsed, tp.TicketUsedAt, tp.Date, s.ticketManifest(tp)), nil
	}

	if txStatus != wompi.StatusApproved {
		return nil, ErrNotPayable
	}
	if tp.TicketUsed {
		return nil, replayError(tp.TicketUsedAt)
	}

	if err := s.checkWindow(ctx, tp); err != nil {
		return windowResult(err), nil
	}

	usedAt, err := s.flipFlag(ctx, `
		UPDATE ticket_purchases
		SET ticket_used = true, ticket_used_at = NOW()
		WHERE id = $1 AND ticket_used = false
		RETURNING ticket_used_at
	`, `SELECT ticket_used_at FROM ticket_purchases WHERE id = $1`, tp.ID)
	if err != nil {
		return nil, err
	}

	log.Info().Str("purchase_id", tp.ID).Str("club_id", tp.ClubID).Str("staff_id", st.ID).Msg("ticket redeemed")
	return &purchase.ValidationResult{Valid: true, UsedAt: &usedAt, Items: s.ticketManifest(tp)}, nil
}

// ValidateMenu redeems a menu scan: either a standalone menu transaction or
// the menu item bundled into a ticket.
func (s *ValidationService) ValidateMenu(ctx context.Context, st access.Staff, token string, preview bool) (*purchase.ValidationResult, error) {
	p, err := s.decode(ctx, st, token, qr.TypeMenu, qr.TypeMenuFromTicket)
	if err != nil {
		return nil, err
	}

	if p.Type == qr.TypeMenuFromTicket {
		return s.validateBundledMenu(ctx, st, p, preview)
	}
	return s.validateMenuTransaction(ctx, st, p, preview)
}

func (s *ValidationService) validateMenuTransaction(ctx context.Context, st access.Staff, p qr.Payload, preview bool) (*purchase.ValidationResult, error) {
	var status string
	var used bool
	var usedAt *time.Time
	err := s.db.QueryRow(ctx, `
		SELECT status, used, used_at
		FROM menu_transactions
		WHERE id = $1 AND club_id = $2
	`, p.ID, p.ClubID).Scan(&status, &used, &usedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load menu transaction: %w", err)
	}

	items, err := s.menuManifest(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if preview {
		return s.previewResult(used, usedAt, time.Now(), items), nil
	}

	if status != wompi.StatusApproved {
		return nil, ErrNotPayable
	}
	if used {
		return nil, replayError(usedAt)
	}

	// Standalone menu orders are same-night goods; gate on the club's
	// current hours.
	week, err := s.clubs.Week(ctx, p.ClubID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := schedule.CheckAdmission(now, schedule.Gate{Week: week}, now); err != nil {
		return windowResult(err), nil
	}

	at, err := s.flipFlag(ctx, `
		UPDATE menu_transactions
		SET used = true, used_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND used = false
		RETURNING used_at
	`, `SELECT used_at FROM menu_transactions WHERE id = $1`, p.ID)
	if err != nil {
		return nil, err
	}

	log.Info().Str("transaction_id", p.ID).Str("club_id", p.ClubID).Str("staff_id", st.ID).Msg("menu order redeemed")
	return &purchase.ValidationResult{Valid: true, UsedAt: &at, Items: items}, nil
}

func (s *ValidationService) validateBundledMenu(ctx context.Context, st access.Staff, p qr.Payload, preview bool) (*purchase.ValidationResult, error) {
	tp, txStatus, err := s.loadTicketPurchase(ctx, p.TicketPurchaseID, p.ClubID)
	if err != nil {
		return nil, err
	}
	if tp.MenuItemID == nil {
		return nil, ErrNotFound
	}

	items, err := s.bundledManifest(ctx, *tp.MenuItemID)
	if err != nil {
		return nil, err
	}

	if preview {
		return s.previewResult(tp.MenuItemUsed, tp.MenuItemUsedAt, tp.Date, items), nil
	}

	if txStatus != wompi.StatusApproved {
		return nil, ErrNotPayable
	}
	if tp.MenuItemUsed {
		return nil, replayError(tp.MenuItemUsedAt)
	}

	if err := s.checkWindow(ctx, tp); err != nil {
		return windowResult(err), nil
	}

	at, err := s.flipFlag(ctx, `
		UPDATE ticket_purchases
		SET menu_item_used = true, menu_item_used_at = NOW()
		WHERE id = $1 AND menu_item_used = false
		RETURNING menu_item_used_at
	`, `SELECT menu_item_used_at FROM ticket_purchases WHERE id = $1`, tp.ID)
	if err != nil {
		return nil, err
	}

	log.Info().Str("purchase_id", tp.ID).Str("club_id", tp.ClubID).Str("staff_id", st.ID).Msg("bundled menu item redeemed")
	return &purchase.ValidationResult{Valid: true, UsedAt: &at, Items: items}, nil
}

// decode decrypts the token, checks the payload type, and runs the access
// policy. Every decode failure surfaces as the same ErrInvalidQR.
func (s *ValidationService) decode(ctx context.Context, st access.Staff, token string, allowed ...string) (qr.Payload, error) {
	p, err := s.codec.Decrypt(token)
	if err != nil {
		return qr.Payload{}, ErrInvalidQR
	}

	ok := false
	for _, t := range allowed {
		if p.Type == t {
			ok = true
			break
		}
	}
	if !ok {
		return qr.Payload{}, ErrInvalidQR
	}

	can, err := s.policy.CanAct(ctx, st, p.ClubID)
	if err != nil {
		return qr.Payload{}, fmt.Errorf("access check failed: %w", err)
	}
	if !can {
		return qr.Payload{}, ErrAccessDenied
	}
	return p, nil
}

// loadTicketPurchase returns the purchase plus its transaction status.
// Callers decide what an unpaid status means; preview inspects regardless.
func (s *ValidationService) loadTicketPurchase(ctx context.Context, id, clubID string) (*purchase.TicketPurchase, string, error) {
	var tp purchase.TicketPurchase
	var txStatus string
	err := s.db.QueryRow(ctx, `
		SELECT p.id, p.email, p.club_id, p.event_id, p.ticket_name, p.date, p.price_paid,
			p.ticket_used, p.ticket_used_at, p.menu_item_id, p.menu_item_used, p.menu_item_used_at,
			p.transaction_id, t.status
		FROM ticket_purchases p
		JOIN ticket_transactions t ON t.id = p.transaction_id
		WHERE p.id = $1 AND p.club_id = $2 AND p.deleted_at IS NULL
	`, id, clubID).Scan(
		&tp.ID, &tp.Email, &tp.ClubID, &tp.EventID, &tp.TicketName, &tp.Date, &tp.PricePaid,
		&tp.TicketUsed, &tp.TicketUsedAt, &tp.MenuItemID, &tp.MenuItemUsed, &tp.MenuItemUsedAt,
		&tp.TransactionID, &txStatus,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to load ticket purchase: %w", err)
	}
	return &tp, txStatus, nil
}

func (s *ValidationService) checkWindow(ctx context.Context, tp *purchase.TicketPurchase) error {
	gate := schedule.Gate{IsEvent: tp.EventID != nil}
	if tp.EventID != nil {
		ov, err := s.events.OverrideFor(ctx, tp.ClubID, tp.Date)
		if err != nil {
			return err
		}
		gate.Override = ov
	} else {
		week, err := s.clubs.Week(ctx, tp.ClubID)
		if err != nil {
			return err
		}
		gate.Week = week
	}
	return schedule.CheckAdmission(tp.Date, gate, time.Now())
}

// flipFlag performs the at-most-once mark. Zero rows back means another scan
// won the race between our read and this write; the lookup recovers the
// winner's timestamp for the replay error.
func (s *ValidationService) flipFlag(ctx context.Context, flipQuery, lookupQuery, id string) (time.Time, error) {
	var at time.Time
	err := s.db.QueryRow(ctx, flipQuery, id).Scan(&at)
	if err == pgx.ErrNoRows {
		var usedAt *time.Time
		if err := s.db.QueryRow(ctx, lookupQuery, id).Scan(&usedAt); err != nil {
			return time.Time{}, fmt.Errorf("failed to load redemption timestamp: %w", err)
		}
		return time.Time{}, replayError(usedAt)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to mark used: %w", err)
	}
	return at, nil
}

// replayError reports a prior redemption. A set flag with no timestamp (data
// drift, manual resets) still reads as a replay, just with a zero time, not
// a panic.
func replayError(usedAt *time.Time) error {
	if usedAt == nil {
		return &AlreadyUsedError{}
	}
	return &AlreadyUsedError{UsedAt: *usedAt}
}

func (s *ValidationService) previewResult(used bool, usedAt *time.Time, date time.Time, items []purchase.RedeemedItem) *purchase.ValidationResult {
	res := &purchase.ValidationResult{
		Valid:    true,
		Preview:  true,
		IsFuture: schedule.IsFuture(date, time.Now()),
		Items:    items,
	}
	if used {
		res.UsedAt = usedAt
		res.Reason = "already redeemed"
	}
	return res
}

func (s *ValidationService) ticketManifest(tp *purchase.TicketPurchase) []purchase.RedeemedItem {
	items := []purchase.RedeemedItem{{Name: tp.TicketName, Quantity: 1}}
	return items
}

func (s *ValidationService) bundledManifest(ctx context.Context, menuItemID string) ([]purchase.RedeemedItem, error) {
	var name string
	err := s.db.QueryRow(ctx, `SELECT name FROM menu_items WHERE id = $1`, menuItemID).Scan(&name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load menu item: %w", err)
	}
	return []purchase.RedeemedItem{{Name: name, Quantity: 1}}, nil
}

func (s *ValidationService) menuManifest(ctx context.Context, txID string) ([]purchase.RedeemedItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT name, variant_name, quantity
		FROM menu_transaction_items
		WHERE transaction_id = $1
	`, txID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction items: %w", err)
	}
	defer rows.Close()

	var items []purchase.RedeemedItem
	for rows.Next() {
		var it purchase.RedeemedItem
		if err := rows.Scan(&it.Name, &it.Variant, &it.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// windowResult turns an admission failure into the structured answer the
// staff UI renders; window misses are expected outcomes, not errors.
func windowResult(err error) *purchase.ValidationResult {
	reason := err.Error()
	if errors.Is(err, schedule.ErrNotStarted) {
		reason = "event has not started yet"
	}
	return &purchase.ValidationResult{Valid: false, Reason: reason}
}
