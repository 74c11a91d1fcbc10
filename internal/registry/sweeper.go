package registry

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/nearlink-net/nearlink/internal/infra/metrics"
)

// Sweeper periodically evicts peers whose liveness window has lapsed.
// Registration-triggered eviction only fires when someone else registers,
// so this loop is what guarantees eventual removal of peers that stop
// heartbeating entirely.
type Sweeper struct {
	store    *Store
	clock    clock.Clock
	interval time.Duration
	timeout  time.Duration
	log      *logrus.Logger
}

// NewSweeper creates a sweeper that runs EvictStale(now, timeout) every
// interval.
func NewSweeper(store *Store, clk clock.Clock, interval, timeout time.Duration, log *logrus.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		clock:    clk,
		interval: interval,
		timeout:  timeout,
		log:      log,
	}
}

// Run starts the sweep loop. Call in a goroutine; returns when ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	// Sweep immediately on start, then on every tick.
	s.sweep(s.clock.Now())

	ticker := s.clock.Ticker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *Sweeper) sweep(now time.Time) {
	removed := s.store.EvictStale(now, s.timeout)

	metrics.SweepRuns.Inc()
	metrics.PeersRegistered.Set(float64(s.store.Len()))
	if removed > 0 {
		metrics.PeersEvicted.Add(float64(removed))
		s.log.WithFields(logrus.Fields{
			"component": "sweeper",
			"evicted":   removed,
			"remaining": s.store.Len(),
		}).Info("evicted stale peers")
	}
}
