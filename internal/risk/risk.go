// Package risk maintains the Bayesian fraud model: a Beta posterior per
// roulette number and an aggregate behavior profile per player.
//
// Number posteriors start at Beta(1, 36), encoding the uniform 1/37 prior of
// a fair European wheel; each settled spin increments the drawn number's
// alpha. Player profiles are created on first observed bet and updated on
// every settlement. The derived risk score is 2 x win rate and is
// deliberately unclamped, so sustained winning pushes it past 1.0.
package risk

import (
	"errors"
	"time"
)

// numberCount is the European wheel size: numbers 0-36.
const numberCount = 37

var (
	// ErrNumberOutOfRange is returned for posterior lookups outside [0, 36].
	ErrNumberOutOfRange = errors.New("number must be between 0 and 36")
	// ErrPlayerNotFound is returned when assessing a player with no profile.
	ErrPlayerNotFound = errors.New("player not found")
)

// Risk levels derived from a player's risk score.
const (
	LevelLow    = "LOW"
	LevelMedium = "MEDIUM"
	LevelHigh   = "HIGH"
)

// Classification thresholds. The LOW boundary is exclusive: a score of
// exactly 0.3 classifies as MEDIUM, and 0.6 as HIGH.
const (
	mediumThreshold = 0.3
	highThreshold   = 0.6
)

// Distribution is the analytic summary of one number's Beta posterior.
type Distribution struct {
	Number       int     `json:"number"`
	Mean         float64 `json:"mean"`
	Variance     float64 `json:"variance"`
	Alpha        float64 `json:"alpha"`
	Beta         float64 `json:"beta"`
	Observations float64 `json:"observations"`
	CI95Lower    float64 `json:"ci95Lower"`
	CI95Upper    float64 `json:"ci95Upper"`
	CI99Lower    float64 `json:"ci99Lower"`
	CI99Upper    float64 `json:"ci99Upper"`
}

// PlayerProfile aggregates one player's observed betting behavior. Profiles
// live for the process lifetime; there is no destruction path.
type PlayerProfile struct {
	Address        string    `json:"address"`
	TotalBets      int       `json:"totalBets"`
	Wins           int       `json:"wins"`
	TotalAmount    float64   `json:"totalAmount"`
	ProfitLoss     float64   `json:"profitLoss"`
	WinRate        float64   `json:"winRate"`
	RiskScore      float64   `json:"riskScore"`
	IsBlacklisted  bool      `json:"isBlacklisted"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

// Assessment is the pre-bet risk gate output for one player.
type Assessment struct {
	RiskLevel      string  `json:"riskLevel"`
	RiskScore      float64 `json:"riskScore"`
	TotalBets      int     `json:"totalBets"`
	WinRate        float64 `json:"winRate"`
	IsBlacklisted  bool    `json:"isBlacklisted"`
	Recommendation string  `json:"recommendation"`
}

// SuspiciousEvent records a flagged behavior observation. The sink is
// write-capable but no detection rule populates it in this version.
type SuspiciousEvent struct {
	PlayerAddress    string    `json:"playerAddress"`
	EventType        string    `json:"eventType"`
	Severity         float64   `json:"severity"`
	Description      string    `json:"description"`
	ProbabilityScore float64   `json:"probabilityScore"`
	Timestamp        time.Time `json:"timestamp"`
}

// Report is the aggregate analytics export.
type Report struct {
	TotalPlayers        int `json:"totalPlayers"`
	TotalSpins          int `json:"totalSpins"`
	HighRiskPlayers     int `json:"highRiskPlayers"`
	SuspiciousEvents24h int `json:"suspiciousEvents24h"`
}
