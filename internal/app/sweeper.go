package app

import (
	"context"
	"time"

	"github.com/hushcall/hush/internal/core"
	"github.com/rs/zerolog/log"
)

// Sweeper is the one background task touching the room table. It goes through
// the same registry lock as foreground calls and does bounded work per cycle.
type Sweeper struct {
	Registry core.RoomRegistry
	Period   time.Duration
}

// Run blocks until ctx is canceled. Meant to run for the process lifetime.
func (s *Sweeper) Run(ctx context.Context) {
	period := s.Period
	if period <= 0 {
		period = core.DefaultSweepPeriod
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	log.Info().Str("module", "app.sweeper").Dur("period", period).Msg("sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.sweeper").Msg("sweeper stopped")
			return
		case now := <-ticker.C:
			if n := s.Registry.SweepExpired(now); n > 0 {
				log.Info().Str("module", "app.sweeper").Int("evicted", n).Msg("sweep cycle done")
			}
		}
	}
}
