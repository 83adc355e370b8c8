// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/telemetry"
)

// Scheduler closes open ballots once their close date has passed.
type Scheduler struct {
	manager  *Manager
	store    *store.Store
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	sweepMu sync.Mutex // one sweep at a time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(manager *Manager, st *store.Store, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		manager:  manager,
		store:    st,
		interval: interval,
		logger:   telemetry.ResolveLogger(logger),
		now:      time.Now,
	}
}

// Start sweeps once immediately, then every interval, on one background
// goroutine until ctx is cancelled or Stop is called. Calling Start on a
// running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		s.run(ctx)
	}()

	s.logger.Info("auto-close scheduler started", "interval", s.interval)
}

// Stop cancels the scheduler and waits for an in-flight sweep to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("auto-close scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("auto-close sweep failed", "error", err)
	}
}

// Sweep closes every open ballot whose close date is at or before now and
// returns how many it closed. A ballot that fails to close is logged and
// skipped; only a failed listing is returned as an error.
func (s *Scheduler) Sweep(ctx context.Context) (closed int, err error) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	ctx, span := telemetry.Start(ctx, "lifecycle.Sweep")
	defer func() {
		span.SetAttributes(attribute.Int("ballots.closed", closed))
		telemetry.End(span, err)
	}()

	due, err := s.store.ListDueBallots(ctx, s.now())
	if err != nil {
		return 0, err
	}

	for _, b := range due {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.manager.Close(ctx, b.ID); err != nil {
			s.logger.Error("failed to auto-close ballot", "ballot_id", b.ID, "error", err)
			continue
		}
		closed++
	}

	if closed > 0 {
		s.logger.Info("auto-closed ballots", "count", closed, "due", len(due))
	}
	return closed, nil
}
