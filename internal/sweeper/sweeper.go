// Package sweeper marks stale agents Offline on a fixed cadence.
package sweeper

import (
	"context"
	"log/slog"
	"time"
)

// AgentMarker flips agents unseen since the cutoff to Offline.
type AgentMarker interface {
	MarkAgentsOffline(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically demotes agents that stopped heartbeating. An agent's
// status otherwise only ever moves to Online, so without the sweep a dead
// agent stays Online forever.
type Sweeper struct {
	store        AgentMarker
	interval     time.Duration
	offlineAfter time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// New creates a sweeper that runs every interval and marks agents Offline
// once they have been silent for offlineAfter.
func New(store AgentMarker, interval, offlineAfter time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:        store,
		interval:     interval,
		offlineAfter: offlineAfter,
		logger:       logger,
		now:          time.Now,
	}
}

// Run blocks until the context is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := s.now().UTC().Add(-s.offlineAfter)
	marked, err := s.store.MarkAgentsOffline(ctx, cutoff)
	if err != nil {
		s.logger.Error("staleness sweep failed", "error", err)
		return
	}
	if marked > 0 {
		s.logger.Info("marked stale agents offline", "count", marked)
	}
}
