package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"nightPassAPI/internal/notification"
	"nightPassAPI/internal/sse"
	"nightPassAPI/internal/types/transaction"
	"nightPassAPI/internal/wompi"
)

// TransactionService applies payment webhook events to transaction records
// and fans the resulting status out to SSE subscribers and staff devices.
type TransactionService struct {
	db       *pgxpool.Pool
	registry *sse.Registry
	notifier *notification.Service
}

func NewTransactionService(db *pgxpool.Pool, registry *sse.Registry, notifier *notification.Service) *TransactionService {
	return &TransactionService{db: db, registry: registry, notifier: notifier}
}

// ApplyWebhook reconciles one authenticated event. Idempotent: when the
// stored provider id and status already match the incoming pair, nothing is
// written and the skip is only logged. Statuses outside the known enum are
// clamped to PENDING before persisting.
//
// Returns whether a write happened. Database errors bubble up so the handler
// can log them, but the provider still gets its 200; nothing here retries.
func (s *TransactionService) ApplyWebhook(ctx context.Context, ev *wompi.Event) (bool, error) {
	ref := ev.Data.Transaction.Reference
	providerID := ev.Data.Transaction.ID
	status := wompi.ClampStatus(ev.Status())

	var table string
	switch {
	case strings.HasPrefix(ref, wompi.RefPrefixTicket):
		table = "ticket_transactions"
	case strings.HasPrefix(ref, wompi.RefPrefixMenu):
		table = "menu_transactions"
	default:
		return false, fmt.Errorf("%w: unroutable reference %q", ErrNotFound, ref)
	}

	var txID, curStatus string
	var curProviderID *string
	var clubID string
	err := s.db.QueryRow(ctx,
		`SELECT id, provider_transaction_id, status, club_id FROM `+table+` WHERE reference = $1`,
		ref,
	).Scan(&txID, &curProviderID, &curStatus, &clubID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, fmt.Errorf("%w: no transaction for reference %q", ErrNotFound, ref)
		}
		return false, fmt.Errorf("failed to load transaction: %w", err)
	}

	if curProviderID != nil && *curProviderID == providerID && curStatus == status {
		log.Info().Str("reference", ref).Str("status", status).Msg("webhook replay, skipping write")
		return false, nil
	}

	_, err = s.db.Exec(ctx,
		`UPDATE `+table+` SET provider_transaction_id = $1, status = $2, updated_at = NOW() WHERE id = $3`,
		providerID, status, txID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to persist status: %w", err)
	}

	log.Info().Str("reference", ref).Str("from", curStatus).Str("to", status).Msg("transaction status applied")

	s.registry.Publish(ref, sse.Event{
		Type: "status_update",
		Data: map[string]any{"reference": ref, "status": status},
	})

	if status == wompi.StatusApproved && s.notifier != nil {
		s.notifier.NotifyClubStaff(ctx, clubID, "Pago aprobado",
			fmt.Sprintf("Nueva venta confirmada (%s)", ref),
			map[string]any{"reference": ref})
	}

	return true, nil
}

// StatusByReference backs the SSE handshake: the first event a subscriber
// sees is the current status, so a webhook that landed before the stream
// opened is not lost.
func (s *TransactionService) StatusByReference(ctx context.Context, ref string) (string, error) {
	tx, err := s.GetByReference(ctx, ref)
	if err != nil {
		return "", err
	}
	return tx.Status, nil
}

// GetByReference loads the full transaction record, the polling fallback for
// clients that lose the event stream.
func (s *TransactionService) GetByReference(ctx context.Context, ref string) (*transaction.Transaction, error) {
	var query string
	switch {
	case strings.HasPrefix(ref, wompi.RefPrefixTicket):
		// Ticket transactions have no transaction-level used flag; each
		// purchase row redeems on its own.
		query = `
			SELECT id, reference, provider_transaction_id, status, club_id, email,
				amount_cents, false, NULL::timestamptz, created_at, updated_at
			FROM ticket_transactions WHERE reference = $1`
	case strings.HasPrefix(ref, wompi.RefPrefixMenu):
		query = `
			SELECT id, reference, provider_transaction_id, status, club_id, email,
				amount_cents, used, used_at, created_at, updated_at
			FROM menu_transactions WHERE reference = $1`
	default:
		return nil, ErrNotFound
	}

	var tx transaction.Transaction
	err := s.db.QueryRow(ctx, query, ref).Scan(
		&tx.ID, &tx.Reference, &tx.ProviderTransactionID, &tx.Status, &tx.ClubID,
		&tx.Email, &tx.AmountCents, &tx.Used, &tx.UsedAt, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return &tx, nil
}

// ItemsByTransaction lists the menu lines of a menu transaction. Ticket
// transactions have none.
func (s *TransactionService) ItemsByTransaction(ctx context.Context, txID string) ([]transaction.Item, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, transaction_id, menu_item_id, name, variant_name, quantity, unit_price
		FROM menu_transaction_items
		WHERE transaction_id = $1
	`, txID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction items: %w", err)
	}
	defer rows.Close()

	var items []transaction.Item
	for rows.Next() {
		var it transaction.Item
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.MenuItemID, &it.Name, &it.VariantName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
