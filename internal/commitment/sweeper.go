package commitment

import (
	"context"
	"log/slog"
	"time"

	"github.com/mbd888/zkroulette/internal/metrics"
)

// Sweeper periodically expires stale commitments.
type Sweeper struct {
	store    *Store
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger
	stop     chan struct{}

	// OnExpire, if set, is called with the removed count after each sweep
	// that expired something. Set before Start.
	OnExpire func(count int)
}

// NewSweeper creates a sweeper that removes commitments older than maxAge
// every interval.
func NewSweeper(store *Store, maxAge, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start begins the sweep loop. Call in a goroutine; returns when ctx is done
// or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// Stop signals the sweeper to stop.
func (s *Sweeper) Stop() {
	select {
	case s.stop <- struct{}{}:
	default:
	}
}

func (s *Sweeper) sweep() {
	removed := s.store.Expire(s.maxAge)
	if removed > 0 {
		metrics.CommitmentsExpiredTotal.Add(float64(removed))
		s.logger.Info("expired stale commitments", "count", removed)
		if s.OnExpire != nil {
			s.OnExpire(removed)
		}
	}
}
