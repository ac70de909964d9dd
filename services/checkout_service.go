package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"nightPassAPI/internal/qr"
	"nightPassAPI/internal/schedule"
	"nightPassAPI/internal/types/event"
	"nightPassAPI/internal/wompi"
)

// ErrUnavailable rejects checkout lines whose dynamic price quotes as
// unavailable (closed day, expired window).
var ErrUnavailable = errors.New("item is not currently purchasable")

type CheckoutService struct {
	db     *pgxpool.Pool
	codec  *qr.Codec
	events *EventService
	clubs  *ClubService
}

func NewCheckoutService(db *pgxpool.Pool, codec *qr.Codec, clubs *ClubService, events *EventService) *CheckoutService {
	return &CheckoutService{db: db, codec: codec, clubs: clubs, events: events}
}

type TicketCheckoutRequest struct {
	Email     string    `json:"email"`
	UserID    *string   `json:"user_id,omitempty"`
	SessionID *string   `json:"session_id,omitempty"`
	ClubID    string    `json:"club_id"`
	TicketID  string    `json:"ticket_id"`
	Date      time.Time `json:"date"`
	Quantity  int       `json:"quantity"`
}

type MenuCheckoutLine struct {
	MenuItemID string  `json:"menu_item_id"`
	VariantID  *string `json:"variant_id,omitempty"`
	Quantity   int     `json:"quantity"`
}

type MenuCheckoutRequest struct {
	Email  string             `json:"email"`
	ClubID string             `json:"club_id"`
	Lines  []MenuCheckoutLine `json:"lines"`
}

// CheckoutResponse is what the storefront hands to the Wompi widget: the
// reference ties the eventual webhook back to this transaction.
type CheckoutResponse struct {
	TransactionID string `json:"transaction_id"`
	Reference     string `json:"reference"`
	AmountCents   int64  `json:"amount_cents"`
	Status        string `json:"status"`
}

// ListTickets returns a club's active tickets with each one's dynamic price
// for targetDate attached.
func (s *CheckoutService) ListTickets(ctx context.Context, clubID string, targetDate time.Time) ([]event.Ticket, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, club_id, event_id, name, base_price, included_menu_item_id, is_active
		FROM tickets
		WHERE club_id = $1 AND is_active = true
		ORDER BY name
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []event.Ticket
	for rows.Next() {
		var tk event.Ticket
		if err := rows.Scan(&tk.ID, &tk.ClubID, &tk.EventID, &tk.Name, &tk.BasePrice, &tk.IncludedMenuItemID, &tk.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan ticket row: %w", err)
		}
		tickets = append(tickets, tk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	now := time.Now()
	for i := range tickets {
		gate, err := s.gateFor(ctx, clubID, tickets[i].EventID, targetDate)
		if err != nil {
			return nil, err
		}
		quote := schedule.Quote(tickets[i].BasePrice, gate, targetDate, now)
		tickets[i].DynamicPrice = &quote
	}
	return tickets, nil
}

// CheckoutTicket prices the ticket for the requested date, then creates the
// PENDING transaction and one purchase row per head in a single database
// transaction.
func (s *CheckoutService) CheckoutTicket(ctx context.Context, req *TicketCheckoutRequest) (*CheckoutResponse, error) {
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var tk event.Ticket
	err := s.db.QueryRow(ctx, `
		SELECT id, club_id, event_id, name, base_price, included_menu_item_id, is_active
		FROM tickets
		WHERE id = $1
	`, req.TicketID).Scan(&tk.ID, &tk.ClubID, &tk.EventID, &tk.Name, &tk.BasePrice, &tk.IncludedMenuItemID, &tk.IsActive)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	if !tk.IsActive || tk.ClubID != req.ClubID {
		return nil, ErrNotFound
	}

	gate, err := s.gateFor(ctx, req.ClubID, tk.EventID, req.Date)
	if err != nil {
		return nil, err
	}

	quote := schedule.Quote(tk.BasePrice, gate, req.Date, time.Now())
	if !quote.Available {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, quote.Reason)
	}
	amount := quote.Price * int64(req.Quantity)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	txID := uuid.New().String()
	reference := wompi.RefPrefixTicket + uuid.New().String()

	_, err = tx.Exec(ctx, `
		INSERT INTO ticket_transactions (id, reference, status, club_id, email, amount_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`, txID, reference, wompi.StatusPending, req.ClubID, req.Email, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout transaction: %w", err)
	}

	for i := 0; i < req.Quantity; i++ {
		_, err = tx.Exec(ctx, `
			INSERT INTO ticket_purchases (
				id, user_id, session_id, email, club_id, event_id, ticket_name,
				date, price_paid, menu_item_id, transaction_id, created_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		`, uuid.New().String(), req.UserID, req.SessionID, req.Email, req.ClubID,
			tk.EventID, tk.Name, req.Date, quote.Price, tk.IncludedMenuItemID, txID)
		if err != nil {
			return nil, fmt.Errorf("failed to create ticket purchase: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	log.Info().Str("reference", reference).Int64("amount", amount).Int("heads", req.Quantity).Msg("ticket checkout created")
	return &CheckoutResponse{TransactionID: txID, Reference: reference, AmountCents: amount, Status: wompi.StatusPending}, nil
}

// CheckoutMenu creates a standalone menu order: a PENDING transaction, its
// line items, and the encrypted QR payload the buyer presents to a waiter
// once the payment clears.
func (s *CheckoutService) CheckoutMenu(ctx context.Context, req *MenuCheckoutRequest) (*CheckoutResponse, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("checkout requires at least one line")
	}

	week, err := s.clubs.Week(ctx, req.ClubID)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	type pricedLine struct {
		MenuCheckoutLine
		name      string
		variant   string
		unitPrice int64
	}
	var lines []pricedLine
	var amount int64

	for _, l := range req.Lines {
		if l.Quantity < 1 {
			l.Quantity = 1
		}

		var name string
		var basePrice int64
		err := s.db.QueryRow(ctx, `
			SELECT name, base_price FROM menu_items
			WHERE id = $1 AND club_id = $2 AND is_active = true
		`, l.MenuItemID, req.ClubID).Scan(&name, &basePrice)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to load menu item: %w", err)
		}

		variantName := ""
		if l.VariantID != nil {
			var delta int64
			err := s.db.QueryRow(ctx, `
				SELECT name, price_delta FROM menu_item_variants
				WHERE id = $1 AND item_id = $2
			`, *l.VariantID, l.MenuItemID).Scan(&variantName, &delta)
			if err != nil {
				if err == pgx.ErrNoRows {
					return nil, ErrNotFound
				}
				return nil, fmt.Errorf("failed to load variant: %w", err)
			}
			basePrice += delta
		}

		quote := schedule.Quote(basePrice, schedule.Gate{Week: week}, now, now)
		if !quote.Available {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, quote.Reason)
		}

		amount += quote.Price * int64(l.Quantity)
		lines = append(lines, pricedLine{MenuCheckoutLine: l, name: name, variant: variantName, unitPrice: quote.Price})
	}

	txID := uuid.New().String()
	reference := wompi.RefPrefixMenu + uuid.New().String()

	token, err := s.codec.Encrypt(qr.Payload{Type: qr.TypeMenu, ClubID: req.ClubID, ID: txID})
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt menu QR payload: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO menu_transactions (id, reference, status, club_id, email, amount_cents, qr_payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`, txID, reference, wompi.StatusPending, req.ClubID, req.Email, amount, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create menu transaction: %w", err)
	}

	for _, l := range lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO menu_transaction_items (id, transaction_id, menu_item_id, name, variant_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New().String(), txID, l.MenuItemID, l.name, l.variant, l.Quantity, l.unitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to create transaction item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	log.Info().Str("reference", reference).Int64("amount", amount).Int("lines", len(lines)).Msg("menu checkout created")
	return &CheckoutResponse{TransactionID: txID, Reference: reference, AmountCents: amount, Status: wompi.StatusPending}, nil
}

// TicketQRResponse carries the encrypted token plus a ready-to-render PNG.
type TicketQRResponse struct {
	Token        string `json:"token"`
	QrCodeBase64 string `json:"qr_code_base64"`
}

// TicketQR issues the door code for a paid ticket purchase. Each call
// produces a fresh token (fresh IV) but all of them decrypt to the same
// purchase.
func (s *CheckoutService) TicketQR(ctx context.Context, purchaseID string) (*TicketQRResponse, error) {
	var clubID, status string
	err := s.db.QueryRow(ctx, `
		SELECT p.club_id, t.status
		FROM ticket_purchases p
		JOIN ticket_transactions t ON t.id = p.transaction_id
		WHERE p.id = $1 AND p.deleted_at IS NULL
	`, purchaseID).Scan(&clubID, &status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load purchase: %w", err)
	}
	if status != wompi.StatusApproved {
		return nil, ErrNotPayable
	}

	token, err := s.codec.Encrypt(qr.Payload{Type: qr.TypeTicket, ClubID: clubID, ID: purchaseID})
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt ticket payload: %w", err)
	}
	img, err := qr.Image(token, 256)
	if err != nil {
		return nil, err
	}
	return &TicketQRResponse{Token: token, QrCodeBase64: img}, nil
}

// MenuQR re-renders the stored order code for a paid menu transaction.
func (s *CheckoutService) MenuQR(ctx context.Context, txID string) (*TicketQRResponse, error) {
	var token, status string
	err := s.db.QueryRow(ctx, `
		SELECT qr_payload, status FROM menu_transactions WHERE id = $1
	`, txID).Scan(&token, &status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load menu transaction: %w", err)
	}
	if status != wompi.StatusApproved {
		return nil, ErrNotPayable
	}

	img, err := qr.Image(token, 256)
	if err != nil {
		return nil, err
	}
	return &TicketQRResponse{Token: token, QrCodeBase64: img}, nil
}

// BundledMenuQR issues the code for the menu item included with a ticket.
// It redeems separately from the door scan, at the bar instead of the door.
func (s *CheckoutService) BundledMenuQR(ctx context.Context, purchaseID string) (*TicketQRResponse, error) {
	var clubID, status string
	var menuItemID *string
	err := s.db.QueryRow(ctx, `
		SELECT p.club_id, p.menu_item_id, t.status
		FROM ticket_purchases p
		JOIN ticket_transactions t ON t.id = p.transaction_id
		WHERE p.id = $1 AND p.deleted_at IS NULL
	`, purchaseID).Scan(&clubID, &menuItemID, &status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load purchase: %w", err)
	}
	if menuItemID == nil {
		return nil, ErrNotFound
	}
	if status != wompi.StatusApproved {
		return nil, ErrNotPayable
	}

	token, err := s.codec.Encrypt(qr.Payload{Type: qr.TypeMenuFromTicket, ClubID: clubID, TicketPurchaseID: purchaseID})
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt bundled menu payload: %w", err)
	}
	img, err := qr.Image(token, 256)
	if err != nil {
		return nil, err
	}
	return &TicketQRResponse{Token: token, QrCodeBase64: img}, nil
}

func (s *CheckoutService) gateFor(ctx context.Context, clubID string, eventID *string, date time.Time) (schedule.Gate, error) {
	if eventID != nil {
		ov, err := s.events.OverrideFor(ctx, clubID, date)
		if err != nil {
			return schedule.Gate{}, err
		}
		return schedule.Gate{Override: ov, IsEvent: true}, nil
	}
	week, err := s.clubs.Week(ctx, clubID)
	if err != nil {
		return schedule.Gate{}, err
	}
	return schedule.Gate{Week: week}, nil
}
