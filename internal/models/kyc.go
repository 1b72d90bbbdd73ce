package models

import (
	"time"

	"github.com/google/uuid"
)

// KycStatus tracks an identity-verification request through review.
type KycStatus string

const (
	KycPending  KycStatus = "Pending"
	KycApproved KycStatus = "Approved"
	KycRejected KycStatus = "Rejected"
)

// KycRequest is a submitted identity-verification dossier.
type KycRequest struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	FrontDocURL string     `db:"front_doc_url" json:"front_doc_url"`
	BackDocURL  *string    `db:"back_doc_url" json:"back_doc_url,omitempty"`
	SelfieURL   string     `db:"selfie_url" json:"selfie_url"`
	Status      KycStatus  `db:"status" json:"status"`
	AdminNote   *string    `db:"admin_note" json:"admin_note,omitempty"`
	ReviewedBy  *uuid.UUID `db:"reviewed_by" json:"reviewed_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ReviewedAt  *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// NewKycRequest builds a pending request.
func NewKycRequest(userID uuid.UUID, frontDocURL string, backDocURL *string, selfieURL string) KycRequest {
	return KycRequest{
		ID:          uuid.New(),
		UserID:      userID,
		FrontDocURL: frontDocURL,
		BackDocURL:  backDocURL,
		SelfieURL:   selfieURL,
		Status:      KycPending,
		CreatedAt:   time.Now().UTC(),
	}
}
