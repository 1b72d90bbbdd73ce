package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"amora-service/internal/middleware"
	"amora-service/internal/repositories"
	"amora-service/internal/ws"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// MessagesHandler is the REST mirror of the message store, used by
// clients catching up on history after reconnecting.
type MessagesHandler struct {
	messages repositories.MessageRepository
	hub      *ws.Hub
}

// NewMessagesHandler builds a MessagesHandler.
func NewMessagesHandler(messages repositories.MessageRepository, hub *ws.Hub) *MessagesHandler {
	return &MessagesHandler{messages: messages, hub: hub}
}

// GetConversationMessages returns paginated history, newest first.
func (h *MessagesHandler) GetConversationMessages(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("conversation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	limit := parseIntQuery(c, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := parseIntQuery(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	msgs, err := h.messages.GetConversationMessages(c.Request.Context(), conversationID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// MarkAsRead upserts a read receipt for the caller.
func (h *MessagesHandler) MarkAsRead(c *gin.Context) {
	userID, messageID, ok := authAndMessageID(c)
	if !ok {
		return
	}

	if err := h.messages.MarkAsRead(c.Request.Context(), messageID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark message read"})
		return
	}
	c.Status(http.StatusNoContent)
}

// AddReaction sets or replaces the caller's reaction.
func (h *MessagesHandler) AddReaction(c *gin.Context) {
	userID, messageID, ok := authAndMessageID(c)
	if !ok {
		return
	}

	var req struct {
		Reaction string `json:"reaction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.messages.AddReaction(c.Request.Context(), messageID, userID, req.Reaction); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add reaction"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteForAll tombstones a message (sender only) and notifies live
// connections.
func (h *MessagesHandler) DeleteForAll(c *gin.Context) {
	userID, messageID, ok := authAndMessageID(c)
	if !ok {
		return
	}

	msg, err := h.messages.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.SenderID == nil || *msg.SenderID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only sender can delete for all"})
		return
	}

	if err := h.messages.SoftDeleteMessage(c.Request.Context(), messageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
		return
	}

	frame, err := ws.MarshalEnvelope(ws.EventMessageDeleted, gin.H{
		"message_id":      messageID,
		"conversation_id": msg.ConversationID,
	})
	if err != nil {
		log.Printf("marshal deletion frame failed: %v", err)
	} else {
		h.hub.Broadcast(frame)
	}

	c.Status(http.StatusNoContent)
}

func authAndMessageID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return uuid.Nil, uuid.Nil, false
	}
	messageID, err := uuid.Parse(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, messageID, true
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
