package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"amora-service/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrPhoneTaken   = errors.New("phone number already registered")
)

const userColumns = `id, phone_number, password_hash, name, username, bio, avatar_url, public_key_x25519, is_verified, subscription_tier, created_at, updated_at`

// UserRepository abstracts account persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetUserByPhone(ctx context.Context, phoneNumber string) (models.User, error)
	SetPublicKey(ctx context.Context, userID uuid.UUID, publicKey string) error
	GetPublicKey(ctx context.Context, userID uuid.UUID) (*string, error)
	SetSubscriptionTier(ctx context.Context, userID uuid.UUID, tier models.SubscriptionTier) error
	SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error
	SaveDeviceToken(ctx context.Context, userID uuid.UUID, deviceToken string) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser inserts a new account.
func (r *UserRepo) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	var stored models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (id, phone_number, password_hash, subscription_tier, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+userColumns,
		user.ID, user.PhoneNumber, user.PasswordHash, user.SubscriptionTier, user.CreatedAt, user.UpdatedAt).
		StructScan(&stored)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return models.User{}, ErrPhoneTaken
	}
	return stored, err
}

// GetUserByID fetches a user by id.
func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetUserByPhone fetches a user by phone number.
func (r *UserRepo) GetUserByPhone(ctx context.Context, phoneNumber string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE phone_number=$1`, phoneNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// SetPublicKey stores the user's X25519 public key for E2EE.
func (r *UserRepo) SetPublicKey(ctx context.Context, userID uuid.UUID, publicKey string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET public_key_x25519=$2, updated_at=NOW() WHERE id=$1`, userID, publicKey)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetPublicKey returns the user's public key, nil if none uploaded yet.
func (r *UserRepo) GetPublicKey(ctx context.Context, userID uuid.UUID) (*string, error) {
	var key *string
	err := r.db.GetContext(ctx, &key, `SELECT public_key_x25519 FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return key, err
}

// SetSubscriptionTier updates the user's plan.
func (r *UserRepo) SetSubscriptionTier(ctx context.Context, userID uuid.UUID, tier models.SubscriptionTier) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET subscription_tier=$2, updated_at=NOW() WHERE id=$1`, userID, tier)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetVerified flips the KYC verification flag.
func (r *UserRepo) SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_verified=$2, updated_at=NOW() WHERE id=$1`, userID, verified)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SaveDeviceToken records a push-notification device token; duplicates
// are no-ops.
func (r *UserRepo) SaveDeviceToken(ctx context.Context, userID uuid.UUID, deviceToken string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO device_tokens (user_id, token, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (user_id, token) DO NOTHING`, userID, deviceToken)
	return err
}

func requireRow(res sql.Result) error {
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}
