package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nightPassAPI/internal/schedule"
	"nightPassAPI/internal/types/event"
)

type EventService struct {
	db *pgxpool.Pool
}

func NewEventService(db *pgxpool.Pool) *EventService {
	return &EventService{db: db}
}

func (s *EventService) GetClubEvents(ctx context.Context, clubID string) ([]event.Event, error) {
	query := `
		SELECT id, club_id, name, COALESCE(description, ''), date,
			open_mins, close_mins, COALESCE(image_url, ''), is_active, created_at
		FROM events
		WHERE club_id = $1 AND is_active = true
		ORDER BY date
	`
	rows, err := s.db.Query(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var e event.Event
		err := rows.Scan(
			&e.ID,
			&e.ClubID,
			&e.Name,
			&e.Description,
			&e.Date,
			&e.OpenMins,
			&e.CloseMins,
			&e.ImageURL,
			&e.IsActive,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *EventService) GetEvent(ctx context.Context, eventID string) (*event.Event, error) {
	var e event.Event
	query := `
		SELECT id, club_id, name, COALESCE(description, ''), date,
			open_mins, close_mins, COALESCE(image_url, ''), is_active, created_at
		FROM events
		WHERE id = $1
	`
	err := s.db.QueryRow(ctx, query, eventID).Scan(
		&e.ID,
		&e.ClubID,
		&e.Name,
		&e.Description,
		&e.Date,
		&e.OpenMins,
		&e.CloseMins,
		&e.ImageURL,
		&e.IsActive,
		&e.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return &e, nil
}

// OverrideFor returns the event hours that supersede the weekly schedule for
// a club on one calendar date, or nil when no event with its own hours runs
// that night.
func (s *EventService) OverrideFor(ctx context.Context, clubID string, date time.Time) (*schedule.Override, error) {
	var openMins, closeMins *int
	var evDate time.Time
	query := `
		SELECT date, open_mins, close_mins
		FROM events
		WHERE club_id = $1 AND date::date = $2::date AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := s.db.QueryRow(ctx, query, clubID, date).Scan(&evDate, &openMins, &closeMins)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up event override: %w", err)
	}
	if openMins == nil || closeMins == nil {
		return nil, nil
	}
	return &schedule.Override{
		Date:  evDate,
		Hours: schedule.Interval{Open: *openMins, Close: *closeMins},
	}, nil
}
