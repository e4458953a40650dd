package risk

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler exposes the Bayesian model over HTTP.
type Handler struct {
	model *Model
}

// NewHandler creates a new risk handler.
func NewHandler(model *Model) *Handler {
	return &Handler{model: model}
}

// RegisterRoutes sets up the analytics routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats/number/:number", h.NumberStats)
	r.GET("/players/:address/risk", h.PlayerRisk)
	r.GET("/analytics", h.Analytics)
}

// NumberStats handles GET /v1/stats/number/:number.
func (h *Handler) NumberStats(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_number",
			"message": "number must be an integer",
		})
		return
	}

	dist, err := h.model.Posterior(number)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_number",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dist)
}

// PlayerRisk handles GET /v1/players/:address/risk.
func (h *Handler) PlayerRisk(c *gin.Context) {
	assessment, err := h.model.Classify(c.Param("address"))
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "player_not_found",
				"message": "No betting history for player",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "assessment_failed",
			"message": "Risk assessment failed",
		})
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// Analytics handles GET /v1/analytics.
func (h *Handler) Analytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.model.Export())
}
