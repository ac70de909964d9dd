package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"nightPassAPI/internal/schedule"
	"nightPassAPI/internal/types/club"
	"nightPassAPI/internal/types/menu"
)

type MenuService struct {
	db *pgxpool.Pool
}

func NewMenuService(db *pgxpool.Pool) *MenuService {
	return &MenuService{db: db}
}

// GetMenu returns a club's active menu with variants, each item carrying its
// dynamic price for targetDate. Pricing is display-time only; nothing is
// written.
func (s *MenuService) GetMenu(ctx context.Context, clubID string, targetDate time.Time) ([]menu.Item, error) {
	query := `
		SELECT
			m.id,
			m.club_id,
			m.name,
			COALESCE(m.description, '') AS description,
			COALESCE(m.category, '') AS category,
			m.base_price,
			COALESCE(m.image_url, '') AS image_url,
			m.is_active,
			m.created_at
		FROM menu_items m
		WHERE m.club_id = $1 AND m.is_active = true
		ORDER BY m.category, m.name
	`
	rows, err := s.db.Query(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu: %w", err)
	}
	defer rows.Close()

	var items []menu.Item
	for rows.Next() {
		var it menu.Item
		err := rows.Scan(
			&it.ID,
			&it.ClubID,
			&it.Name,
			&it.Description,
			&it.Category,
			&it.BasePrice,
			&it.ImageURL,
			&it.IsActive,
			&it.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	week, err := s.clubWeek(ctx, clubID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range items {
		variants, err := s.itemVariants(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Variants = variants

		quote := schedule.Quote(items[i].BasePrice, schedule.Gate{Week: week}, targetDate, now)
		items[i].DynamicPrice = &quote
	}

	return items, nil
}

func (s *MenuService) itemVariants(ctx context.Context, itemID string) ([]menu.Variant, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, item_id, name, price_delta
		FROM menu_item_variants
		WHERE item_id = $1
		ORDER BY price_delta
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	var out []menu.Variant
	for rows.Next() {
		var v menu.Variant
		if err := rows.Scan(&v.ID, &v.ItemID, &v.Name, &v.PriceDelta); err != nil {
			return nil, fmt.Errorf("failed to scan variant row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *MenuService) clubWeek(ctx context.Context, clubID string) (schedule.Week, error) {
	rows, err := s.db.Query(ctx, `
		SELECT weekday, open_mins, close_mins
		FROM club_schedules
		WHERE club_id = $1
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer rows.Close()

	var sched []club.ScheduleRow
	for rows.Next() {
		var r club.ScheduleRow
		if err := rows.Scan(&r.Weekday, &r.OpenMins, &r.CloseMins); err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		sched = append(sched, r)
	}
	return club.Week(sched), rows.Err()
}
