package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionTier is the user's paid plan.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "Free"
	TierMonthly SubscriptionTier = "Monthly"
	TierYearly  SubscriptionTier = "Yearly"
)

// ParseSubscriptionTier validates a tier string.
func ParseSubscriptionTier(s string) (SubscriptionTier, bool) {
	switch SubscriptionTier(s) {
	case TierFree, TierMonthly, TierYearly:
		return SubscriptionTier(s), true
	default:
		return "", false
	}
}

// User is an account row. PasswordHash never leaves the service.
type User struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	PhoneNumber      string           `db:"phone_number" json:"phone_number"`
	PasswordHash     string           `db:"password_hash" json:"-"`
	Name             *string          `db:"name" json:"name,omitempty"`
	Username         *string          `db:"username" json:"username,omitempty"`
	Bio              *string          `db:"bio" json:"bio,omitempty"`
	AvatarURL        *string          `db:"avatar_url" json:"avatar_url,omitempty"`
	PublicKey        *string          `db:"public_key_x25519" json:"-"`
	IsVerified       bool             `db:"is_verified" json:"is_verified"`
	SubscriptionTier SubscriptionTier `db:"subscription_tier" json:"subscription_tier"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// NewUser builds an unverified free-tier account.
func NewUser(phoneNumber, passwordHash string) User {
	now := time.Now().UTC()
	return User{
		ID:               uuid.New(),
		PhoneNumber:      phoneNumber,
		PasswordHash:     passwordHash,
		SubscriptionTier: TierFree,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsPremium reports whether the user is on a paid tier.
func (u User) IsPremium() bool {
	return u.SubscriptionTier == TierMonthly || u.SubscriptionTier == TierYearly
}

// NearbyUser is one proximity query result.
type NearbyUser struct {
	UserID     uuid.UUID `db:"id" json:"user_id"`
	Name       *string   `db:"name" json:"name,omitempty"`
	Username   *string   `db:"username" json:"username,omitempty"`
	AvatarURL  *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Latitude   float64   `db:"latitude" json:"latitude"`
	Longitude  float64   `db:"longitude" json:"longitude"`
	DistanceKM float64   `db:"distance_km" json:"distance_km"`
}
