package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"amora-service/internal/middleware"
	"amora-service/internal/models"
	"amora-service/internal/repositories"
	"amora-service/internal/storage"
)

// KycHandler manages identity-verification endpoints.
type KycHandler struct {
	kyc     repositories.KycRepository
	users   repositories.UserRepository
	uploads storage.UploadURLProvider
}

// NewKycHandler builds a KycHandler.
func NewKycHandler(kyc repositories.KycRepository, users repositories.UserRepository, uploads storage.UploadURLProvider) *KycHandler {
	return &KycHandler{kyc: kyc, users: users, uploads: uploads}
}

// GetUploadURL mints a write-once presigned target for a KYC document.
func (h *KycHandler) GetUploadURL(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		Filename    string `json:"filename" binding:"required"`
		ContentType string `json:"content_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Object keys are namespaced per user and salted so clients cannot
	// guess or overwrite each other's documents.
	key := fmt.Sprintf("kyc/%s/%s-%s", userID, uuid.NewString(), path.Base(req.Filename))
	uploadURL, fileURL, err := h.uploads.PresignedUploadURL(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to create upload url"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"upload_url": uploadURL, "file_url": fileURL})
}

// SubmitKyc files a verification request for review.
func (h *KycHandler) SubmitKyc(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		FrontDocURL string  `json:"front_doc_url" binding:"required,url"`
		BackDocURL  *string `json:"back_doc_url" binding:"omitempty,url"`
		SelfieURL   string  `json:"selfie_url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.kyc.CreateRequest(c.Request.Context(), models.NewKycRequest(userID, req.FrontDocURL, req.BackDocURL, req.SelfieURL))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit kyc request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         request.ID,
		"status":     request.Status,
		"created_at": request.CreatedAt,
	})
}

// ReviewKyc records an admin verdict and marks the user verified on
// approval.
func (h *KycHandler) ReviewKyc(c *gin.Context) {
	reviewerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	requestID, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var req struct {
		Approved *bool   `json:"approved" binding:"required"`
		Reason   *string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reviewed, err := h.kyc.ReviewRequest(c.Request.Context(), requestID, reviewerID, *req.Approved, req.Reason)
	if err != nil {
		if errors.Is(err, repositories.ErrKycRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "kyc request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to review kyc request"})
		return
	}

	if *req.Approved {
		if err := h.users.SetVerified(c.Request.Context(), reviewed.UserID, true); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark user verified"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         reviewed.ID,
		"status":     reviewed.Status,
		"created_at": reviewed.CreatedAt,
	})
}
