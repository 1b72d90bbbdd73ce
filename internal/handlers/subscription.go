package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"amora-service/internal/middleware"
	"amora-service/internal/models"
	"amora-service/internal/repositories"
)

// SubscriptionHandler manages tier bookkeeping. Payment processing is
// external; the payment token is recorded opaquely, never charged here.
type SubscriptionHandler struct {
	users repositories.UserRepository
}

// NewSubscriptionHandler builds a SubscriptionHandler.
func NewSubscriptionHandler(users repositories.UserRepository) *SubscriptionHandler {
	return &SubscriptionHandler{users: users}
}

// Upgrade switches the caller to the requested tier.
func (h *SubscriptionHandler) Upgrade(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		Tier         string  `json:"tier" binding:"required"`
		PaymentToken *string `json:"payment_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tier, ok := models.ParseSubscriptionTier(req.Tier)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tier"})
		return
	}

	if err := h.users.SetSubscriptionTier(c.Request.Context(), userID, tier); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tier": tier, "features": tierFeatures(tier)})
}

func tierFeatures(tier models.SubscriptionTier) []string {
	switch tier {
	case models.TierMonthly, models.TierYearly:
		return []string{"unlimited_messages", "nearby_boost", "read_receipts", "video_calls"}
	default:
		return []string{"basic_messages", "nearby"}
	}
}
