package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartStatusCleaner deletes status checks older than retention every
// interval until ctx is done.
func StartStatusCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention).UTC()
				res, err := db.ExecContext(ctx, `
                    DELETE FROM status_checks
                     WHERE created_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to clean status checks", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned status checks", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
