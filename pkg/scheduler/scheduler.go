// Package scheduler drives the periodic maintenance sweeps: flipping lapsed
// confirmed signups to NO_SHOW and expiring survey assignments whose token
// window has closed. One sweep failure is logged and the loop keeps going.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/signup"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/survey"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

const (
	// DefaultInterval is how often the sweeps run.
	DefaultInterval = 15 * time.Minute

	// DefaultNoShowGrace is how long after a shift ends a confirmed signup
	// may still be amended before it counts as a no-show.
	DefaultNoShowGrace = 8 * time.Hour
)

// Scheduler owns the sweep loop.
type Scheduler struct {
	store       db.Store
	clock       *civiltime.Clock
	logger      *zap.Logger
	interval    time.Duration
	noShowGrace time.Duration
}

// New builds a scheduler. Non-positive interval or grace fall back to the
// defaults.
func New(store db.Store, clock *civiltime.Clock, logger *zap.Logger, interval, noShowGrace time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if noShowGrace <= 0 {
		noShowGrace = DefaultNoShowGrace
	}
	return &Scheduler{
		store:       store,
		clock:       clock,
		logger:      logger,
		interval:    interval,
		noShowGrace: noShowGrace,
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Scheduler started",
		zap.Duration("interval", s.interval),
		zap.Duration("no_show_grace", s.noShowGrace))

	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs both maintenance passes once.
func (s *Scheduler) Sweep(ctx context.Context) {
	if _, err := signup.MarkNoShows(ctx, s.store, s.clock, s.logger, s.noShowGrace); err != nil {
		s.logger.Error("No-show sweep failed", zap.Error(err))
	}
	if _, err := survey.ExpireLapsed(ctx, s.store, s.clock, s.logger); err != nil {
		s.logger.Error("Assignment expiry sweep failed", zap.Error(err))
	}
}
