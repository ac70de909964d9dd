package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nightPassAPI/internal/schedule"
	"nightPassAPI/internal/types/club"
)

type ClubService struct {
	db *pgxpool.Pool
}

func NewClubService(db *pgxpool.Pool) *ClubService {
	return &ClubService{db: db}
}

func (s *ClubService) GetClubs(ctx context.Context) ([]club.Club, error) {
	query := `
		SELECT
			c.id,
			c.name,
			c.owner_user_id,
			c.address,
			c.city,
			COALESCE(c.description, '') AS description,
			COALESCE(c.image_url, '') AS image_url,
			c.is_active,
			c.created_at
		FROM clubs c
		WHERE c.is_active = true
		ORDER BY c.name
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clubs: %w", err)
	}
	defer rows.Close()

	var clubs []club.Club
	for rows.Next() {
		var c club.Club
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.OwnerUserID,
			&c.Address,
			&c.City,
			&c.Description,
			&c.ImageURL,
			&c.IsActive,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan club row: %w", err)
		}
		clubs = append(clubs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range clubs {
		sched, err := s.scheduleRows(ctx, clubs[i].ID)
		if err != nil {
			return nil, err
		}
		clubs[i].Schedule = sched
	}

	return clubs, nil
}

func (s *ClubService) GetClub(ctx context.Context, clubID string) (*club.Club, error) {
	var c club.Club
	query := `
		SELECT id, name, owner_user_id, address, city,
			COALESCE(description, ''), COALESCE(image_url, ''), is_active, created_at
		FROM clubs
		WHERE id = $1
	`
	err := s.db.QueryRow(ctx, query, clubID).Scan(
		&c.ID,
		&c.Name,
		&c.OwnerUserID,
		&c.Address,
		&c.City,
		&c.Description,
		&c.ImageURL,
		&c.IsActive,
		&c.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load club: %w", err)
	}

	c.Schedule, err = s.scheduleRows(ctx, clubID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ClubService) scheduleRows(ctx context.Context, clubID string) ([]club.ScheduleRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT weekday, open_mins, close_mins
		FROM club_schedules
		WHERE club_id = $1
		ORDER BY weekday, open_mins
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer rows.Close()

	var out []club.ScheduleRow
	for rows.Next() {
		var r club.ScheduleRow
		if err := rows.Scan(&r.Weekday, &r.OpenMins, &r.CloseMins); err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Week loads a club's weekly schedule in the form the admission and pricing
// rules consume.
func (s *ClubService) Week(ctx context.Context, clubID string) (schedule.Week, error) {
	rows, err := s.scheduleRows(ctx, clubID)
	if err != nil {
		return nil, err
	}
	return club.Week(rows), nil
}

// ClubOwner implements access.OwnerLookup. Always a fresh read.
func (s *ClubService) ClubOwner(ctx context.Context, clubID string) (string, error) {
	var owner string
	err := s.db.QueryRow(ctx, `SELECT owner_user_id FROM clubs WHERE id = $1`, clubID).Scan(&owner)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up club owner: %w", err)
	}
	return owner, nil
}
