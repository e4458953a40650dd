// Package roulette orchestrates bet preparation and settlement.
//
// Preparation runs the full pre-bet pipeline: rate limit, risk gate,
// commitment, attestation, and the unsigned on-chain transaction.
// Settlement feeds the spin outcome back into the Bayesian risk model.
package roulette

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mbd888/zkroulette/internal/attestation"
	"github.com/mbd888/zkroulette/internal/chain"
	"github.com/mbd888/zkroulette/internal/commitment"
	"github.com/mbd888/zkroulette/internal/metrics"
	"github.com/mbd888/zkroulette/internal/ratelimit"
	"github.com/mbd888/zkroulette/internal/realtime"
	"github.com/mbd888/zkroulette/internal/risk"
	"github.com/mbd888/zkroulette/internal/session"
	"github.com/mbd888/zkroulette/internal/traces"
)

var (
	// ErrBetOutOfRange is returned when the stake is outside the table limits.
	ErrBetOutOfRange = errors.New("bet amount outside table limits")
	// ErrRateLimited is returned when the player's hourly bet budget is spent.
	ErrRateLimited = errors.New("bet rate limit exceeded")
	// ErrPlayerSuspended is returned when the risk gate refuses the player.
	ErrPlayerSuspended = errors.New("player temporarily suspended")
)

// Limits are the table stake bounds and the risk suspension threshold.
type Limits struct {
	MinBetAmount float64
	MaxBetAmount float64
	SuspendScore float64
}

// PrepareResult is everything a player needs to commit the bet on-chain.
type PrepareResult struct {
	Nonce       string                     `json:"nonce"`
	Attestation *attestation.Attestation   `json:"zkProof"`
	Transaction *chain.PreparedTransaction `json:"transactionData"`
	SessionID   string                     `json:"sessionId"`
}

// Service wires the commitment engine, the attestation issuer, the risk
// model, and the supporting glue into the two bet operations.
type Service struct {
	limits      Limits
	commitments *commitment.Store
	issuer      *attestation.Issuer
	model       *risk.Model
	sessions    *session.Manager
	limiter     *ratelimit.Limiter
	chain       *chain.Builder
	hub         *realtime.Hub
	logger      *slog.Logger
}

// NewService creates the orchestration service. hub may be nil (no feed).
func NewService(
	limits Limits,
	commitments *commitment.Store,
	issuer *attestation.Issuer,
	model *risk.Model,
	sessions *session.Manager,
	limiter *ratelimit.Limiter,
	chainBuilder *chain.Builder,
	hub *realtime.Hub,
	logger *slog.Logger,
) *Service {
	return &Service{
		limits:      limits,
		commitments: commitments,
		issuer:      issuer,
		model:       model,
		sessions:    sessions,
		limiter:     limiter,
		chain:       chainBuilder,
		hub:         hub,
		logger:      logger,
	}
}

// PrepareBet runs the pre-bet pipeline and returns the attestation bundle
// plus the unsigned transaction.
func (s *Service) PrepareBet(ctx context.Context, playerID string, number int, amount float64) (*PrepareResult, error) {
	ctx, span := traces.StartSpan(ctx, "roulette.PrepareBet",
		traces.PlayerAddr(playerID), traces.BetNumber(number))
	defer span.End()

	if amount < s.limits.MinBetAmount || amount > s.limits.MaxBetAmount {
		return nil, fmt.Errorf("%w: %g not in [%g, %g]",
			ErrBetOutOfRange, amount, s.limits.MinBetAmount, s.limits.MaxBetAmount)
	}

	if !s.limiter.Allow(playerID) {
		metrics.RateLimitedRequestsTotal.Inc()
		return nil, ErrRateLimited
	}

	// Risk gate: players above the suspension threshold are refused before
	// any commitment is minted. Unknown players pass, no history means no risk.
	if a, err := s.RiskGate(playerID); err == nil {
		if a.RiskScore > s.limits.SuspendScore {
			s.logger.Warn("bet refused by risk gate",
				"player", playerID, "risk_score", a.RiskScore, "risk_level", a.RiskLevel)
			return nil, ErrPlayerSuspended
		}
	}

	receipt, err := s.commitments.Create(playerID, number)
	if err != nil {
		return nil, err
	}
	metrics.CommitmentsCreatedTotal.Inc()
	span.SetAttributes(traces.CommitmentDigest(receipt.Digest))

	att := s.issuer.Issue(receipt.Digest, receipt.SecretKey)

	tx, err := s.chain.Prepare(ctx, playerID, number, amount, att.Commitment, att.MerkleRoot, att.MerkleProof)
	if err != nil {
		return nil, fmt.Errorf("prepare transaction: %w", err)
	}

	sess := s.sessions.RecordBet(playerID)
	if s.hub != nil {
		s.hub.BroadcastBetPrepared(playerID, number, amount)
	}

	return &PrepareResult{
		Nonce:       receipt.Nonce,
		Attestation: att,
		Transaction: tx,
		SessionID:   sess.SessionID,
	}, nil
}

// SettleBet folds a completed spin into the risk model: the drawn number's
// posterior and the player's profile. Returns the updated profile.
func (s *Service) SettleBet(ctx context.Context, playerID string, number int, betAmount float64, won bool, payout float64) (*risk.PlayerProfile, error) {
	_, span := traces.StartSpan(ctx, "roulette.SettleBet",
		traces.PlayerAddr(playerID), traces.BetNumber(number))
	defer span.End()

	if err := s.model.RecordOutcome(number); err != nil {
		return nil, err
	}
	metrics.SpinsTotal.Inc()

	profile := s.model.UpdatePlayer(playerID, betAmount, won, payout)

	if s.hub != nil {
		s.hub.BroadcastSpinSettled(playerID, number, won, payout)
		if profile.RiskScore > s.limits.SuspendScore {
			if a, err := s.model.Classify(playerID); err == nil {
				s.hub.BroadcastRiskFlagged(playerID, a.RiskScore, a.RiskLevel)
			}
		}
	}

	return profile, nil
}

// VerifyAttestation applies the freshness/well-formedness check to a
// caller-supplied attestation.
func (s *Service) VerifyAttestation(att *attestation.Attestation) bool {
	return s.issuer.Verify(att)
}

// RiskGate returns the player's assessment and records the gate decision.
func (s *Service) RiskGate(playerID string) (*risk.Assessment, error) {
	a, err := s.model.Classify(playerID)
	if err != nil {
		return nil, err
	}
	metrics.RiskGateDecisionsTotal.WithLabelValues(a.RiskLevel).Inc()
	return a, nil
}

// CommitmentStats exposes the live commitment set summary.
func (s *Service) CommitmentStats() commitment.Stats {
	return s.commitments.Stats()
}
