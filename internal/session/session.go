// Package session tracks per-player API sessions in process memory.
//
// A session is created the first time a player is seen and refreshed on
// every touch; idle sessions are swept after the configured TTL. Sessions
// carry no secrets beyond the random session ID; wallet signatures, not
// sessions, are the authentication mechanism.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mbd888/zkroulette/internal/idgen"
)

// Session is one player's API session.
type Session struct {
	SessionID    string    `json:"sessionId"`
	PlayerID     string    `json:"playerId"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	BetsCount    int       `json:"betsCount"`
}

// Manager owns the session map.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session // by player ID
	ttl      time.Duration

	nowFunc func() time.Time
}

// NewManager creates a manager that expires sessions idle longer than ttl.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		nowFunc:  time.Now,
	}
}

// Touch returns the player's session, creating it on first sight, and
// refreshes its last-activity time.
func (m *Manager) Touch(playerID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFunc()
	s, ok := m.sessions[playerID]
	if !ok {
		s = &Session{
			SessionID: idgen.SessionID(),
			PlayerID:  playerID,
			CreatedAt: now,
		}
		m.sessions[playerID] = s
	}
	s.LastActivity = now

	cp := *s
	return &cp
}

// RecordBet increments the session's bet counter, creating the session if
// needed, and returns a copy.
func (m *Manager) RecordBet(playerID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFunc()
	s, ok := m.sessions[playerID]
	if !ok {
		s = &Session{
			SessionID: idgen.SessionID(),
			PlayerID:  playerID,
			CreatedAt: now,
		}
		m.sessions[playerID] = s
	}
	s.LastActivity = now
	s.BetsCount++

	cp := *s
	return &cp
}

// ExpireIdle removes sessions whose last activity is older than the TTL and
// returns the number removed.
func (m *Manager) ExpireIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.nowFunc().Add(-m.ttl)
	removed := 0
	for playerID, s := range m.sessions {
		if s.LastActivity.Before(cutoff) {
			delete(m.sessions, playerID)
			removed++
		}
	}
	return removed
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StartSweeper runs ExpireIdle every interval until ctx is done. Call in a
// goroutine.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.ExpireIdle(); removed > 0 {
				logger.Info("expired idle sessions", "count", removed)
			}
		}
	}
}
