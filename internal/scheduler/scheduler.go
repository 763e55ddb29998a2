// Package scheduler runs the periodic full sync in the background.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/formhub/backend/internal/model"
)

// Trigger is the slice of the sync service the scheduler drives.
type Trigger interface {
	SyncAllSites(ctx context.Context) ([]model.SyncResult, error)
}

// Scheduler fires a full sync on a fixed interval until its context is
// cancelled. Overlapping runs are prevented by the per-site sync locks,
// not here.
type Scheduler struct {
	trigger  Trigger
	interval time.Duration
	log      *slog.Logger
}

// New creates a Scheduler. A non-positive interval disables it; Run
// returns immediately.
func New(trigger Trigger, interval time.Duration) *Scheduler {
	return &Scheduler{
		trigger:  trigger,
		interval: interval,
		log:      slog.Default().With("component", "scheduler"),
	}
}

// Run blocks until ctx is cancelled, firing a full sync every interval.
// The first sync fires after one full interval, not at startup.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info("scheduler disabled")
		return
	}
	s.log.Info("scheduler started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	results, err := s.trigger.SyncAllSites(ctx)
	if err != nil {
		s.log.Error("scheduled sync failed", "error", err)
		return
	}

	var completed, failed int
	for _, r := range results {
		switch r.Status {
		case model.SyncStatusFailed:
			failed++
		case model.SyncStatusCompleted, model.SyncStatusPartialFailure:
			completed++
		}
	}
	s.log.Info("scheduled sync finished",
		"sites", len(results),
		"completed", completed,
		"failed", failed,
	)
}
