package roulette

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/zkroulette/internal/attestation"
	"github.com/mbd888/zkroulette/internal/commitment"
	"github.com/mbd888/zkroulette/internal/validation"
)

// Handler provides HTTP endpoints for bet preparation and settlement.
type Handler struct {
	service *Service
}

// NewHandler creates a new roulette handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up the bet routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/bet/prepare", h.PrepareBet)
	r.POST("/bet/settle", h.SettleBet)
	r.POST("/attestation/verify", h.VerifyAttestation)
	r.GET("/commitments/stats", h.CommitmentStats)
}

// PrepareRequest is the request body for POST /v1/bet/prepare.
type PrepareRequest struct {
	PlayerAddress string  `json:"playerAddress" binding:"required"`
	Number        *int    `json:"number" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
}

// SettleRequest is the request body for POST /v1/bet/settle.
type SettleRequest struct {
	PlayerAddress string  `json:"playerAddress" binding:"required"`
	Number        *int    `json:"number" binding:"required"`
	BetAmount     float64 `json:"betAmount" binding:"required"`
	Won           bool    `json:"won"`
	Payout        float64 `json:"payout"`
}

// PrepareBet handles POST /v1/bet/prepare.
func (h *Handler) PrepareBet(c *gin.Context) {
	var req PrepareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}
	player := validation.SanitizeAddress(req.PlayerAddress)
	if !validation.IsValidEthAddress(player) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_address",
			"message": "playerAddress must be a 0x-prefixed 40-hex-char address",
		})
		return
	}

	result, err := h.service.PrepareBet(c.Request.Context(), player, *req.Number, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, commitment.ErrNumberOutOfRange), errors.Is(err, ErrBetOutOfRange):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_bet",
				"message": err.Error(),
			})
		case errors.Is(err, ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Bet rate limit exceeded",
			})
		case errors.Is(err, ErrPlayerSuspended):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "player_suspended",
				"message": "Player temporarily suspended",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "prepare_failed",
				"message": "Bet preparation failed",
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// SettleBet handles POST /v1/bet/settle.
func (h *Handler) SettleBet(c *gin.Context) {
	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	profile, err := h.service.SettleBet(c.Request.Context(),
		validation.SanitizeAddress(req.PlayerAddress), *req.Number, req.BetAmount, req.Won, req.Payout)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_bet",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "settled",
		"profile": profile,
	})
}

// VerifyAttestation handles POST /v1/attestation/verify. Stale or malformed
// attestations are a false verdict, never an error status.
func (h *Handler) VerifyAttestation(c *gin.Context) {
	var att attestation.Attestation
	if err := c.ShouldBindJSON(&att); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": h.service.VerifyAttestation(&att),
	})
}

// CommitmentStats handles GET /v1/commitments/stats.
func (h *Handler) CommitmentStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.CommitmentStats())
}
