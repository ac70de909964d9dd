package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"nightPassAPI/internal/types/staff"
)

// PushProvider abstracts the transport so the service wires up with or
// without FCM credentials present.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []staff.DeviceToken, title, body string, data map[string]any) error
}

type Service struct {
	db       *pgxpool.Pool
	provider PushProvider
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) SetPushProvider(p PushProvider) {
	s.provider = p
}

// RegisterDevice upserts a push token for a staff account.
func (s *Service) RegisterDevice(ctx context.Context, staffID, token, platform string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO staff_devices (staff_id, token, platform, registered_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (token) DO UPDATE SET staff_id = $1, platform = $3, registered_at = NOW()
	`, staffID, token, platform)
	return err
}

// NotifyClubStaff pushes to every registered device of the club's staff.
// Failures are logged and swallowed; notification is best-effort.
func (s *Service) NotifyClubStaff(ctx context.Context, clubID, title, body string, data map[string]any) {
	if s.provider == nil {
		return
	}

	rows, err := s.db.Query(ctx, `
		SELECT d.token, d.platform
		FROM staff_devices d
		JOIN staff_users u ON u.id = d.staff_id
		WHERE u.club_id = $1 OR u.id = (SELECT owner_user_id FROM clubs WHERE id = $1)
	`, clubID)
	if err != nil {
		log.Warn().Err(err).Str("club_id", clubID).Msg("device token lookup failed")
		return
	}
	defer rows.Close()

	var tokens []staff.DeviceToken
	for rows.Next() {
		var t staff.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			continue
		}
		tokens = append(tokens, t)
	}

	if err := s.provider.SendPush(ctx, tokens, title, body, data); err != nil {
		log.Warn().Err(err).Str("club_id", clubID).Msg("staff push failed")
	}
}
