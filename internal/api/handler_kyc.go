package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studio-booking-backend/internal/email"
	"studio-booking-backend/internal/model"
	"studio-booking-backend/internal/mw"
	"studio-booking-backend/internal/store"
)

func logEmailFailure(kind, id string, err error) {
	log.Printf("could not send %s email for %s: %v", kind, id, err)
}

type submitKYCRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	DocumentRef string `json:"document_ref"`
}

// SubmitKYC handles POST /api/kyc.
func (h *Handler) SubmitKYC(c *gin.Context) {
	var req submitKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	submission := model.KYCSubmission{
		ID:          uuid.NewString(),
		UserID:      mw.CallerEmail(c),
		FullName:    req.FullName,
		Email:       req.Email,
		DocumentRef: req.DocumentRef,
		Status:      model.KYCPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.store.CreateKYCSubmission(c.Request.Context(), &submission); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The submission succeeded; notification failures stay internal.
	h.emitter.KYCSubmitted(submission.UserID, submission.FullName, submission.ID)
	msg := email.KYCReceived(submission.FullName)
	if err := h.email.Send(c.Request.Context(), submission.Email, msg.Subject, msg.HTMLBody); err != nil {
		logEmailFailure("kyc receipt", submission.ID, err)
	}

	c.JSON(http.StatusCreated, submission)
}

// GetKYC handles GET /api/kyc/:id.
func (h *Handler) GetKYC(c *gin.Context) {
	submission, err := h.store.GetKYCSubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, submission)
}

type reviewKYCRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

// ReviewKYC handles POST /api/kyc/:id/review (admin only).
func (h *Handler) ReviewKYC(c *gin.Context) {
	var req reviewKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := model.KYCRejected
	if req.Approve {
		status = model.KYCApproved
	}

	submission, err := h.store.ReviewKYCSubmission(c.Request.Context(), c.Param("id"), status, req.Reason)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.emitter.KYCReviewed(submission.UserID, submission.FullName, req.Approve, req.Reason)
	msg := email.KYCVerdict(submission.FullName, req.Approve, req.Reason)
	if err := h.email.Send(c.Request.Context(), submission.Email, msg.Subject, msg.HTMLBody); err != nil {
		logEmailFailure("kyc verdict", submission.ID, err)
	}

	c.JSON(http.StatusOK, submission)
}
