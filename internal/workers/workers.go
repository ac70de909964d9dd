package workers

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// StartCartCleanup runs a background sweep that voids checkout transactions
// stuck in PENDING longer than ttl. Abandoned carts otherwise pile up
// forever, since transactions are never deleted. The returned stop func
// halts the ticker.
func StartCartCleanup(db *pgxpool.Pool, ttl, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				sweepStalePending(db, ttl)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}

func sweepStalePending(db *pgxpool.Pool, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-ttl)
	total := int64(0)

	for _, table := range []string{"ticket_transactions", "menu_transactions"} {
		tag, err := db.Exec(ctx, `
			UPDATE `+table+`
			SET status = 'VOIDED', updated_at = NOW()
			WHERE status = 'PENDING' AND created_at < $1
		`, cutoff)
		if err != nil {
			log.Error().Err(err).Str("table", table).Msg("cart cleanup sweep failed")
			continue
		}
		total += tag.RowsAffected()
	}

	if total > 0 {
		log.Info().Int64("voided", total).Msg("cart cleanup voided stale pending transactions")
	}
}
