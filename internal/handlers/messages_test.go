package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"amora-service/internal/mocks"
	"amora-service/internal/models"
	"amora-service/internal/repositories"
	"amora-service/internal/ws"
)

func setupMessagesRouter(handler *MessagesHandler, userID uuid.UUID) *gin.Engine {
	r := authedRouter(userID)
	r.GET("/conversations/:conversation_id/messages", handler.GetConversationMessages)
	r.POST("/messages/:message_id/read", handler.MarkAsRead)
	r.PUT("/messages/:message_id/reactions", handler.AddReaction)
	r.DELETE("/messages/:message_id", handler.DeleteForAll)
	return r
}

func TestGetConversationMessagesDefaults(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router := setupMessagesRouter(NewMessagesHandler(repo, ws.NewHub()), uuid.New())

	conversationID := uuid.New()
	msgs := []models.Message{models.NewMessage(conversationID, uuid.New(), "hi", models.MessageTypeText)}
	repo.On("GetConversationMessages", mock.Anything, conversationID, defaultPageSize, 0).Return(msgs, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/"+conversationID.String()+"/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestGetConversationMessagesClampsLimit(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router := setupMessagesRouter(NewMessagesHandler(repo, ws.NewHub()), uuid.New())

	conversationID := uuid.New()
	repo.On("GetConversationMessages", mock.Anything, conversationID, defaultPageSize, 20).Return([]models.Message{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/"+conversationID.String()+"/messages?limit=9999&offset=20", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestGetConversationMessagesInvalidID(t *testing.T) {
	router := setupMessagesRouter(NewMessagesHandler(new(mocks.MessageRepositoryMock), ws.NewHub()), uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/conversations/nope/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkAsRead(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	userID := uuid.New()
	router := setupMessagesRouter(NewMessagesHandler(repo, ws.NewHub()), userID)

	messageID := uuid.New()
	repo.On("MarkAsRead", mock.Anything, messageID, userID).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/"+messageID.String()+"/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
}

func TestAddReaction(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	userID := uuid.New()
	router := setupMessagesRouter(NewMessagesHandler(repo, ws.NewHub()), userID)

	messageID := uuid.New()
	repo.On("AddReaction", mock.Anything, messageID, userID, "❤️").Return(nil).Once()

	body := bytes.NewBufferString(`{"reaction":"❤️"}`)
	req := httptest.NewRequest(http.MethodPut, "/messages/"+messageID.String()+"/reactions", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
}

func TestAddReactionRequiresBody(t *testing.T) {
	router := setupMessagesRouter(NewMessagesHandler(new(mocks.MessageRepositoryMock), ws.NewHub()), uuid.New())

	req := httptest.NewRequest(http.MethodPut, "/messages/"+uuid.NewString()+"/reactions", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteForAllSuccess(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	userID := uuid.New()
	hub := ws.NewHub()
	router := setupMessagesRouter(NewMessagesHandler(repo, hub), userID)

	msg := models.NewMessage(uuid.New(), userID, "bye", models.MessageTypeText)
	repo.On("GetMessage", mock.Anything, msg.ID).Return(msg, nil).Once()
	repo.On("SoftDeleteMessage", mock.Anything, msg.ID).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/"+msg.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteForAllRejectsNonSender(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router := setupMessagesRouter(NewMessagesHandler(repo, ws.NewHub()), uuid.New())

	msg := models.NewMessage(uuid.New(), uuid.New(), "not yours", models.MessageTypeText)
	repo.On("GetMessage", mock.Anything, msg.ID).Return(msg, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/"+msg.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteForAllNotFound(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router := setupMessagesRouter(NewMessagesHandler(repo, ws.NewHub()), uuid.New())

	messageID := uuid.New()
	repo.On("GetMessage", mock.Anything, messageID).Return(models.Message{}, repositories.ErrMessageNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/"+messageID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteForAllRepoError(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	userID := uuid.New()
	router := setupMessagesRouter(NewMessagesHandler(repo, ws.NewHub()), userID)

	msg := models.NewMessage(uuid.New(), userID, "x", models.MessageTypeText)
	repo.On("GetMessage", mock.Anything, msg.ID).Return(msg, nil).Once()
	repo.On("SoftDeleteMessage", mock.Anything, msg.ID).Return(assert.AnError).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/"+msg.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	repo.AssertExpectations(t)
}

func TestSubscriptionUpgrade(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	userID := uuid.New()
	r := authedRouter(userID)
	r.POST("/subscription/upgrade", NewSubscriptionHandler(users).Upgrade)

	users.On("SetSubscriptionTier", mock.Anything, userID, models.TierMonthly).Return(nil).Once()

	body := bytes.NewBufferString(`{"tier":"Monthly","payment_token":"tok_visa"}`)
	req := httptest.NewRequest(http.MethodPost, "/subscription/upgrade", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Monthly", resp["tier"])
	users.AssertExpectations(t)
}

func TestSubscriptionUpgradeUnknownTier(t *testing.T) {
	r := authedRouter(uuid.New())
	r.POST("/subscription/upgrade", NewSubscriptionHandler(new(mocks.UserRepositoryMock)).Upgrade)

	body := bytes.NewBufferString(`{"tier":"Platinum"}`)
	req := httptest.NewRequest(http.MethodPost, "/subscription/upgrade", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDeviceToken(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	userID := uuid.New()
	r := authedRouter(userID)
	r.POST("/notifications/device-token", NewNotificationHandler(users).RegisterDeviceToken)

	users.On("SaveDeviceToken", mock.Anything, userID, "fcm-token-123").Return(nil).Once()

	body := bytes.NewBufferString(`{"token":"fcm-token-123"}`)
	req := httptest.NewRequest(http.MethodPost, "/notifications/device-token", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	users.AssertExpectations(t)
}
