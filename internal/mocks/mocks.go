package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"amora-service/internal/models"
	"amora-service/internal/repositories"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	args := m.Called(ctx, msg)
	var stored models.Message
	if val := args.Get(0); val != nil {
		stored = val.(models.Message)
	}
	return stored, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, id uuid.UUID) (models.Message, error) {
	args := m.Called(ctx, id)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetConversationMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID, limit, offset)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) MarkAsRead(ctx context.Context, messageID, userID uuid.UUID) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) AddReaction(ctx context.Context, messageID, userID uuid.UUID, reaction string) error {
	args := m.Called(ctx, messageID, userID, reaction)
	return args.Error(0)
}

func (m *MessageRepositoryMock) SoftDeleteMessage(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MessageRepositoryMock) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type LocationRepositoryMock struct {
	mock.Mock
}

func (m *LocationRepositoryMock) UpdateLocation(ctx context.Context, userID uuid.UUID, lat, lon float64) error {
	args := m.Called(ctx, userID, lat, lon)
	return args.Error(0)
}

func (m *LocationRepositoryMock) FindNearby(ctx context.Context, lat, lon, radiusKM float64) ([]models.NearbyUser, error) {
	args := m.Called(ctx, lat, lon, radiusKM)
	var users []models.NearbyUser
	if val := args.Get(0); val != nil {
		users = val.([]models.NearbyUser)
	}
	return users, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	var stored models.User
	if val := args.Get(0); val != nil {
		stored = val.(models.User)
	}
	return stored, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	args := m.Called(ctx, id)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByPhone(ctx context.Context, phoneNumber string) (models.User, error) {
	args := m.Called(ctx, phoneNumber)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) SetPublicKey(ctx context.Context, userID uuid.UUID, publicKey string) error {
	args := m.Called(ctx, userID, publicKey)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetPublicKey(ctx context.Context, userID uuid.UUID) (*string, error) {
	args := m.Called(ctx, userID)
	var key *string
	if val := args.Get(0); val != nil {
		key = val.(*string)
	}
	return key, args.Error(1)
}

func (m *UserRepositoryMock) SetSubscriptionTier(ctx context.Context, userID uuid.UUID, tier models.SubscriptionTier) error {
	args := m.Called(ctx, userID, tier)
	return args.Error(0)
}

func (m *UserRepositoryMock) SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	args := m.Called(ctx, userID, verified)
	return args.Error(0)
}

func (m *UserRepositoryMock) SaveDeviceToken(ctx context.Context, userID uuid.UUID, deviceToken string) error {
	args := m.Called(ctx, userID, deviceToken)
	return args.Error(0)
}

type KycRepositoryMock struct {
	mock.Mock
}

func (m *KycRepositoryMock) CreateRequest(ctx context.Context, req models.KycRequest) (models.KycRequest, error) {
	args := m.Called(ctx, req)
	var stored models.KycRequest
	if val := args.Get(0); val != nil {
		stored = val.(models.KycRequest)
	}
	return stored, args.Error(1)
}

func (m *KycRepositoryMock) GetRequest(ctx context.Context, id uuid.UUID) (models.KycRequest, error) {
	args := m.Called(ctx, id)
	var req models.KycRequest
	if val := args.Get(0); val != nil {
		req = val.(models.KycRequest)
	}
	return req, args.Error(1)
}

func (m *KycRepositoryMock) ReviewRequest(ctx context.Context, id, reviewerID uuid.UUID, approved bool, note *string) (models.KycRequest, error) {
	args := m.Called(ctx, id, reviewerID, approved, note)
	var req models.KycRequest
	if val := args.Get(0); val != nil {
		req = val.(models.KycRequest)
	}
	return req, args.Error(1)
}

type UploadURLProviderMock struct {
	mock.Mock
}

func (m *UploadURLProviderMock) PresignedUploadURL(ctx context.Context, objectKey string) (string, string, error) {
	args := m.Called(ctx, objectKey)
	return args.String(0), args.String(1), args.Error(2)
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.LocationRepository = (*LocationRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.KycRepository = (*KycRepositoryMock)(nil)
