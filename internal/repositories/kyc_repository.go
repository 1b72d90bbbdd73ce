package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"amora-service/internal/models"
)

var ErrKycRequestNotFound = errors.New("kyc request not found")

const kycColumns = `id, user_id, front_doc_url, back_doc_url, selfie_url, status, admin_note, reviewed_by, created_at, reviewed_at`

// KycRepository abstracts identity-verification request persistence.
type KycRepository interface {
	CreateRequest(ctx context.Context, req models.KycRequest) (models.KycRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (models.KycRequest, error)
	ReviewRequest(ctx context.Context, id, reviewerID uuid.UUID, approved bool, note *string) (models.KycRequest, error)
}

// KycRepo is a sqlx implementation of KycRepository.
type KycRepo struct {
	db *sqlx.DB
}

// NewKycRepo constructs a KycRepo.
func NewKycRepo(db *sqlx.DB) *KycRepo {
	return &KycRepo{db: db}
}

// CreateRequest stores a pending verification request.
func (r *KycRepo) CreateRequest(ctx context.Context, req models.KycRequest) (models.KycRequest, error) {
	var stored models.KycRequest
	err := r.db.QueryRowxContext(ctx, `INSERT INTO kyc_requests (id, user_id, front_doc_url, back_doc_url, selfie_url, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+kycColumns,
		req.ID, req.UserID, req.FrontDocURL, req.BackDocURL, req.SelfieURL, req.Status, req.CreatedAt).
		StructScan(&stored)
	return stored, err
}

// GetRequest fetches a request by id.
func (r *KycRepo) GetRequest(ctx context.Context, id uuid.UUID) (models.KycRequest, error) {
	var req models.KycRequest
	err := r.db.GetContext(ctx, &req, `SELECT `+kycColumns+` FROM kyc_requests WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.KycRequest{}, ErrKycRequestNotFound
	}
	return req, err
}

// ReviewRequest records the reviewer's verdict.
func (r *KycRepo) ReviewRequest(ctx context.Context, id, reviewerID uuid.UUID, approved bool, note *string) (models.KycRequest, error) {
	status := models.KycRejected
	if approved {
		status = models.KycApproved
	}

	var reviewed models.KycRequest
	err := r.db.QueryRowxContext(ctx, `UPDATE kyc_requests
        SET status=$2, reviewed_by=$3, admin_note=$4, reviewed_at=NOW()
        WHERE id=$1
        RETURNING `+kycColumns, id, status, reviewerID, note).
		StructScan(&reviewed)
	if errors.Is(err, sql.ErrNoRows) {
		return models.KycRequest{}, ErrKycRequestNotFound
	}
	return reviewed, err
}
