package service

import (
	"context"
	"time"

	"github.com/punchaudit/punchaudit-backend/pkg/logger"
)

// Purger removes expired reports.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// RunPurger calls p.Purge every interval until ctx is done.
func RunPurger(ctx context.Context, p Purger, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := p.Purge(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("report purge failed")
				continue
			}
			if removed > 0 {
				log.Info().Int("removed", removed).Msg("purged expired reports")
			}
		}
	}
}
