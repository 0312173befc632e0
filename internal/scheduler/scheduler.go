package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"oap_import/internal/domain"
)

// Syncer defines the interface for sync operations.
type Syncer interface {
	Sync(ctx context.Context) (*domain.RunStats, error)
}

type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	logger   zerolog.Logger
}

func NewScheduler(syncer Syncer, interval time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start runs one sync right away and then one per interval until ctx is done.
// A failed run is logged; the next tick starts a fresh run.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")

	s.runSync(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runSync(ctx)
		}
	}
}

func (s *Scheduler) runSync(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.syncer.Sync(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error().Err(err).Msg("sync failed")
	}
}
