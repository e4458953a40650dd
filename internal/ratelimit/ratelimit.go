// Package ratelimit caps how many bets a player can prepare per hour.
//
// The limiter keeps a sliding one-hour window of bet timestamps per player
// and rejects preparation once the window is full. Stale windows are pruned
// by a background cleanup loop so memory tracks the active player set, not
// everyone ever seen.
package ratelimit

import (
	"sync"
	"time"
)

const window = time.Hour

// Config configures the bet limiter.
type Config struct {
	// BetsPerHour is the max bet preparations per player per sliding hour.
	BetsPerHour int
	// CleanupInterval is how often stale player windows are pruned.
	CleanupInterval time.Duration
}

// DefaultConfig matches the platform default of 50 bets per hour.
func DefaultConfig() Config {
	return Config{
		BetsPerHour:     50,
		CleanupInterval: time.Minute,
	}
}

// Limiter tracks bet timestamps per player.
type Limiter struct {
	cfg     Config
	mu      sync.Mutex
	windows map[string][]time.Time
	stop    chan struct{}

	nowFunc func() time.Time
}

// New creates a limiter and starts its cleanup loop.
func New(cfg Config) *Limiter {
	l := &Limiter{
		cfg:     cfg,
		windows: make(map[string][]time.Time),
		stop:    make(chan struct{}),
		nowFunc: time.Now,
	}
	go l.cleanup()
	return l
}

// Allow records one bet attempt for the player and reports whether it fits
// inside the hourly window. A rejected attempt is not recorded.
func (l *Limiter) Allow(playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	recent := pruneBefore(l.windows[playerID], now.Add(-window))

	if len(recent) >= l.cfg.BetsPerHour {
		l.windows[playerID] = recent
		return false
	}

	l.windows[playerID] = append(recent, now)
	return true
}

// Remaining reports how many bets the player has left in the current window.
func (l *Limiter) Remaining(playerID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := pruneBefore(l.windows[playerID], l.nowFunc().Add(-window))
	l.windows[playerID] = recent

	remaining := l.cfg.BetsPerHour - len(recent)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	close(l.stop)
}

func (l *Limiter) cleanup() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			cutoff := l.nowFunc().Add(-window)
			for playerID, stamps := range l.windows {
				recent := pruneBefore(stamps, cutoff)
				if len(recent) == 0 {
					delete(l.windows, playerID)
				} else {
					l.windows[playerID] = recent
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}

func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	start := 0
	for start < len(stamps) && !stamps[start].After(cutoff) {
		start++
	}
	return stamps[start:]
}
