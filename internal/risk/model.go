package risk

import (
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mbd888/zkroulette/internal/syncutil"
)

// Model is the explicitly owned risk service. All state lives in process
// memory; construct one instance and hand it to every caller.
type Model struct {
	mu          sync.RWMutex
	alpha       [numberCount]float64
	beta        [numberCount]float64
	frequencies [numberCount]int
	profiles    map[string]*PlayerProfile
	events      []SuspiciousEvent

	// playerLocks serializes the check-then-mutate profile update per
	// player key; updates for different players proceed in parallel.
	playerLocks syncutil.ShardedMutex

	nowFunc func() time.Time // injectable for tests
}

// NewModel creates a model with the uniform Beta(1, 36) prior on every number.
func NewModel() *Model {
	m := &Model{
		profiles: make(map[string]*PlayerProfile),
		nowFunc:  time.Now,
	}
	for i := range m.alpha {
		m.alpha[i] = 1.0
		m.beta[i] = 36.0
	}
	return m
}

// Posterior returns the analytic Beta posterior summary for a number: mean,
// variance, and the 95%/99% equal-tailed credible intervals.
func (m *Model) Posterior(number int) (*Distribution, error) {
	if number < 0 || number >= numberCount {
		return nil, fmt.Errorf("%w: got %d", ErrNumberOutOfRange, number)
	}

	m.mu.RLock()
	alpha := m.alpha[number]
	beta := m.beta[number]
	m.mu.RUnlock()

	dist := distuv.Beta{Alpha: alpha, Beta: beta}
	return &Distribution{
		Number:       number,
		Mean:         dist.Mean(),
		Variance:     dist.Variance(),
		Alpha:        alpha,
		Beta:         beta,
		Observations: alpha + beta - float64(numberCount),
		CI95Lower:    dist.Quantile(0.025),
		CI95Upper:    dist.Quantile(0.975),
		CI99Lower:    dist.Quantile(0.005),
		CI99Upper:    dist.Quantile(0.995),
	}, nil
}

// RecordOutcome folds a settled spin into the drawn number's posterior:
// alpha[number] += 1, all other numbers untouched. Observation counts
// increase monotonically.
func (m *Model) RecordOutcome(number int) error {
	if number < 0 || number >= numberCount {
		return fmt.Errorf("%w: got %d", ErrNumberOutOfRange, number)
	}

	m.mu.Lock()
	m.alpha[number]++
	m.frequencies[number]++
	m.mu.Unlock()
	return nil
}

// UpdatePlayer folds one settled bet into the player's profile, creating the
// profile on first sight, and returns a copy of the updated profile.
func (m *Model) UpdatePlayer(playerID string, betAmount float64, won bool, payout float64) *PlayerProfile {
	unlock := m.playerLocks.Lock(playerID)
	defer unlock()

	m.mu.RLock()
	existing := m.profiles[playerID]
	m.mu.RUnlock()

	var p PlayerProfile
	if existing != nil {
		p = *existing
	} else {
		p = PlayerProfile{Address: playerID}
	}

	p.TotalBets++
	p.TotalAmount += betAmount
	p.LastActivityAt = m.nowFunc()
	if won {
		p.Wins++
		p.ProfitLoss += payout - betAmount
	} else {
		p.ProfitLoss -= betAmount
	}
	p.WinRate = float64(p.Wins) / float64(p.TotalBets)
	p.RiskScore = 2 * p.WinRate // unclamped: exceeds 1.0 once winRate > 0.5

	m.mu.Lock()
	m.profiles[playerID] = &p
	m.mu.Unlock()

	cp := p
	return &cp
}

// Profile returns a copy of the player's profile.
func (m *Model) Profile(playerID string) (*PlayerProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

// Classify maps the player's risk score to a discrete level with a
// recommendation. Unknown players get ErrPlayerNotFound, not a fault.
func (m *Model) Classify(playerID string) (*Assessment, error) {
	p, err := m.Profile(playerID)
	if err != nil {
		return nil, err
	}

	a := &Assessment{
		RiskScore:     p.RiskScore,
		TotalBets:     p.TotalBets,
		WinRate:       p.WinRate,
		IsBlacklisted: p.IsBlacklisted,
	}
	switch {
	case p.RiskScore < mediumThreshold:
		a.RiskLevel = LevelLow
		a.Recommendation = "Player poses no risk"
	case p.RiskScore < highThreshold:
		a.RiskLevel = LevelMedium
		a.Recommendation = "Observation recommended"
	default:
		a.RiskLevel = LevelHigh
		a.Recommendation = "Close attention required"
	}
	return a, nil
}

// RecordSuspicious appends an event to the suspicious-event sink.
func (m *Model) RecordSuspicious(ev SuspiciousEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = m.nowFunc()
	}
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
}

// SuspiciousEvents returns a copy of the recorded event log.
func (m *Model) SuspiciousEvents() []SuspiciousEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]SuspiciousEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Export returns the aggregate analytics report.
func (m *Model) Export() *Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r := &Report{TotalPlayers: len(m.profiles)}
	for _, n := range m.frequencies {
		r.TotalSpins += n
	}
	for _, p := range m.profiles {
		if p.RiskScore >= highThreshold {
			r.HighRiskPlayers++
		}
	}
	cutoff := m.nowFunc().Add(-24 * time.Hour)
	for _, ev := range m.events {
		if ev.Timestamp.After(cutoff) {
			r.SuspiciousEvents24h++
		}
	}
	return r
}
