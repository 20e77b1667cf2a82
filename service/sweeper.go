package service

import (
	"context"
	"fmt"
	"time"

	"github.com/layer-3/clockguard/internal/logger"
	"github.com/layer-3/clockguard/ports"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper runs the store's expiry sweep on a fixed interval
type Sweeper struct {
	store    ports.SessionStore
	clock    ports.Clock
	interval time.Duration
	timeout  time.Duration
	log      logrus.FieldLogger
	cron     *cron.Cron
}

// NewSweeper creates a sweeper; timeout bounds a single pass
func NewSweeper(store ports.SessionStore, interval, timeout time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		clock:    systemClock{},
		interval: interval,
		timeout:  timeout,
		log:      logger.Logger,
		cron:     cron.New(cron.WithLocation(time.UTC)),
	}
}

// WithClock replaces the wall clock used to judge expiry
func (s *Sweeper) WithClock(c ports.Clock) *Sweeper {
	s.clock = c
	return s
}

// RunOnce performs one sweep pass
func (s *Sweeper) RunOnce(ctx context.Context) (ports.SweepStats, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	stats, err := s.store.Sweep(ctx, s.clock.Now())
	if err != nil {
		return stats, fmt.Errorf("sweep failed: %w", err)
	}
	return stats, nil
}

// Start schedules the sweep; passes never overlap
func (s *Sweeper) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", s.interval)
	}

	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		stats, err := s.RunOnce(context.Background())
		if err != nil {
			s.log.WithError(err).Error("Failed to sweep sessions")
			return
		}
		s.log.WithFields(logrus.Fields{
			"scanned": stats.Scanned,
			"expired": stats.Expired,
			"evicted": stats.Evicted,
		}).Debug("Swept sessions")
	}))

	if _, err := s.cron.AddJob(fmt.Sprintf("@every %s", s.interval), job); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	s.cron.Start()
	s.log.WithField("interval", s.interval.String()).Info("Scheduled session sweep")
	return nil
}

// Stop halts the schedule and waits for a running pass to finish
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
