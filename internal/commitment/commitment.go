// Package commitment mints and expires per-bet hash commitments.
//
// A commitment fixes a player's chosen number before the wager is committed
// on-chain: digest = SHA-256(playerID || number || nonce || createdAt). The
// store holds commitments in process memory only; a periodic sweeper removes
// entries older than the configured TTL.
package commitment

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mbd888/zkroulette/internal/digest"
	"github.com/mbd888/zkroulette/internal/idgen"
)

// MinNumber and MaxNumber bound the European roulette wheel.
const (
	MinNumber = 0
	MaxNumber = 36
)

var (
	// ErrNumberOutOfRange is returned for bet numbers outside [0, 36].
	ErrNumberOutOfRange = errors.New("number must be between 0 and 36")
)

// Commitment is a stored per-bet commitment record.
type Commitment struct {
	PlayerID  string    `json:"playerId"`
	Number    int       `json:"number"`
	Nonce     string    `json:"nonce"`
	CreatedAt time.Time `json:"createdAt"`
	Digest    string    `json:"digest"`
}

// Receipt is what Create hands back to the caller. SecretKey is independent
// randomness, not derived from the commitment digest; the caller supplies it
// to the attestation issuer later.
type Receipt struct {
	Nonce     string `json:"nonce"`
	Digest    string `json:"commitment"`
	SecretKey string `json:"secretKey"`
}

// Stats summarizes the live commitment set.
type Stats struct {
	TotalCommitments int       `json:"totalCommitments"`
	OldestCreatedAt  time.Time `json:"oldestCreatedAt"`
}

// Store holds commitments keyed by playerID and creation timestamp.
//
// The key has second resolution: two commitments for the same player within
// the same second collide and the later one overwrites the earlier. That is
// documented behavior carried over from the protocol as shipped.
type Store struct {
	mu          sync.RWMutex
	commitments map[string]*Commitment

	nowFunc func() time.Time // injectable for tests
}

// NewStore creates an empty commitment store.
func NewStore() *Store {
	return &Store{
		commitments: make(map[string]*Commitment),
		nowFunc:     time.Now,
	}
}

// DigestFor computes the commitment digest for the given inputs. It is a pure
// function: identical inputs always produce the identical digest.
func DigestFor(playerID string, number int, nonce string, createdAt time.Time) string {
	return digest.Sum(playerID, strconv.Itoa(number), nonce, strconv.FormatInt(createdAt.Unix(), 10))
}

// Create mints a commitment for the player's chosen number and stores it.
// It returns the nonce, the commitment digest, and a fresh secret key.
func (s *Store) Create(playerID string, number int) (*Receipt, error) {
	if number < MinNumber || number > MaxNumber {
		return nil, fmt.Errorf("%w: got %d", ErrNumberOutOfRange, number)
	}

	now := s.nowFunc()
	c := &Commitment{
		PlayerID:  playerID,
		Number:    number,
		Nonce:     idgen.Nonce(),
		CreatedAt: now,
		Digest:    "",
	}
	c.Digest = DigestFor(playerID, number, c.Nonce, now)

	key := fmt.Sprintf("%s_%d", playerID, now.Unix())

	s.mu.Lock()
	s.commitments[key] = c
	s.mu.Unlock()

	return &Receipt{
		Nonce:     c.Nonce,
		Digest:    c.Digest,
		SecretKey: idgen.SecretKey(),
	}, nil
}

// Get returns a copy of the commitment stored under the given player and
// creation time, or false when absent.
func (s *Store) Get(playerID string, createdAt time.Time) (*Commitment, bool) {
	key := fmt.Sprintf("%s_%d", playerID, createdAt.Unix())

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.commitments[key]
	if !ok {
		return nil, false
	}
	cp := *c
	return &cp, true
}

// Expire removes every commitment older than maxAge and returns the number
// removed. It snapshots expired keys under a read lock first so concurrent
// Create calls for unrelated keys are not blocked for the full sweep;
// deletions are idempotent.
func (s *Store) Expire(maxAge time.Duration) int {
	now := s.nowFunc()

	s.mu.RLock()
	expired := make([]string, 0)
	for key, c := range s.commitments {
		if now.Sub(c.CreatedAt) > maxAge {
			expired = append(expired, key)
		}
	}
	s.mu.RUnlock()

	if len(expired) == 0 {
		return 0
	}

	s.mu.Lock()
	removed := 0
	for _, key := range expired {
		if _, ok := s.commitments[key]; ok {
			delete(s.commitments, key)
			removed++
		}
	}
	s.mu.Unlock()

	return removed
}

// Stats returns the current commitment count and the oldest creation time.
// With no commitments stored, OldestCreatedAt is the current time, matching
// the protocol's stats contract.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalCommitments: len(s.commitments),
		OldestCreatedAt:  s.nowFunc(),
	}
	for _, c := range s.commitments {
		if c.CreatedAt.Before(st.OldestCreatedAt) {
			st.OldestCreatedAt = c.CreatedAt
		}
	}
	return st
}
