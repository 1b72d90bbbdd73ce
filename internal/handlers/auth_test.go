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
	"golang.org/x/crypto/bcrypt"

	"amora-service/internal/middleware"
	"amora-service/internal/mocks"
	"amora-service/internal/models"
	"amora-service/internal/repositories"
)

type stubIssuer struct {
	token string
	err   error
}

func (s stubIssuer) Issue(uuid.UUID) (string, error) { return s.token, s.err }

func authedRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})
	return r
}

func setupAuthRouter(handler *AuthHandler, userID uuid.UUID) *gin.Engine {
	r := authedRouter(userID)
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.PUT("/e2ee/public-key", handler.UploadPublicKey)
	r.GET("/e2ee/public-key/:user_id", handler.GetPublicKey)
	return r
}

func TestRegisterSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(users, stubIssuer{token: "tok"})
	router := setupAuthRouter(handler, uuid.New())

	created := models.NewUser("+33612345678", "hash")
	users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.PhoneNumber == "+33612345678" && u.PasswordHash != "secret-password"
	})).Return(created, nil).Once()

	body := bytes.NewBufferString(`{"phone_number":"+33612345678","password":"secret-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "tok", resp["access_token"])
	assert.Equal(t, created.ID.String(), resp["user_id"])
	users.AssertExpectations(t)
}

func TestRegisterPhoneTaken(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(users, stubIssuer{token: "tok"})
	router := setupAuthRouter(handler, uuid.New())

	users.On("CreateUser", mock.Anything, mock.Anything).Return(models.User{}, repositories.ErrPhoneTaken).Once()

	body := bytes.NewBufferString(`{"phone_number":"+33612345678","password":"secret-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	users.AssertExpectations(t)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	handler := NewAuthHandler(new(mocks.UserRepositoryMock), stubIssuer{token: "tok"})
	router := setupAuthRouter(handler, uuid.New())

	body := bytes.NewBufferString(`{"phone_number":"+33612345678","password":"abc"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(users, stubIssuer{token: "tok"})
	router := setupAuthRouter(handler, uuid.New())

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.NewUser("+33612345678", string(hash))
	users.On("GetUserByPhone", mock.Anything, "+33612345678").Return(user, nil).Once()

	body := bytes.NewBufferString(`{"phone_number":"+33612345678","password":"secret-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(users, stubIssuer{token: "tok"})
	router := setupAuthRouter(handler, uuid.New())

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("GetUserByPhone", mock.Anything, "+33612345678").Return(models.NewUser("+33612345678", string(hash)), nil).Once()

	body := bytes.NewBufferString(`{"phone_number":"+33612345678","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	users.AssertExpectations(t)
}

func TestLoginUnknownPhone(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(users, stubIssuer{token: "tok"})
	router := setupAuthRouter(handler, uuid.New())

	users.On("GetUserByPhone", mock.Anything, "+33600000000").Return(models.User{}, repositories.ErrUserNotFound).Once()

	body := bytes.NewBufferString(`{"phone_number":"+33600000000","password":"whatever"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	users.AssertExpectations(t)
}

func TestUploadPublicKey(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	userID := uuid.New()
	handler := NewAuthHandler(users, stubIssuer{token: "tok"})
	router := setupAuthRouter(handler, userID)

	users.On("SetPublicKey", mock.Anything, userID, "base64-x25519-key").Return(nil).Once()

	body := bytes.NewBufferString(`{"public_key":"base64-x25519-key"}`)
	req := httptest.NewRequest(http.MethodPut, "/e2ee/public-key", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	users.AssertExpectations(t)
}

func TestGetPublicKey(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(users, stubIssuer{token: "tok"})
	router := setupAuthRouter(handler, uuid.New())

	targetID := uuid.New()
	key := "base64-x25519-key"
	users.On("GetPublicKey", mock.Anything, targetID).Return(&key, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/e2ee/public-key/"+targetID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, key, resp["public_key"])
	users.AssertExpectations(t)
}
