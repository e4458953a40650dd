package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/zkroulette/internal/session"
)

// Handler provides the wallet authentication endpoint.
type Handler struct {
	sessions *session.Manager
}

// NewHandler creates an auth handler backed by the given session manager.
func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes sets up the auth routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/player", h.AuthenticatePlayer)
}

// AuthRequest is the request body for POST /auth/player.
type AuthRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	Signature     string `json:"signature" binding:"required"`
	Message       string `json:"message" binding:"required"`
}

// AuthenticatePlayer handles POST /auth/player.
func (h *Handler) AuthenticatePlayer(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	if !IsValidAddress(req.WalletAddress) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_address",
			"message": "walletAddress must be a 0x-prefixed 40-hex-char address",
		})
		return
	}

	if err := VerifySignature(req.Message, req.Signature, req.WalletAddress); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_signature",
			"message": "Signature does not match wallet address",
		})
		return
	}

	s := h.sessions.Touch(req.WalletAddress)
	c.JSON(http.StatusOK, gin.H{
		"status":        "authenticated",
		"sessionId":     s.SessionID,
		"playerAddress": req.WalletAddress,
	})
}
