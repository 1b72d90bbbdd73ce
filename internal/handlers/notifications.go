package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"amora-service/internal/middleware"
	"amora-service/internal/repositories"
)

// NotificationHandler manages push-delivery device tokens.
type NotificationHandler struct {
	users repositories.UserRepository
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(users repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{users: users}
}

// RegisterDeviceToken stores a device token for the push workers.
func (h *NotificationHandler) RegisterDeviceToken(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.SaveDeviceToken(c.Request.Context(), userID, req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register device token"})
		return
	}
	c.Status(http.StatusNoContent)
}
