package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studio-booking-backend/internal/email"
)

type testEmailRequest struct {
	To string `json:"to" binding:"required,email"`
}

// SendTestEmail handles POST /api/email/test (admin only). Provider
// failures surface to the dashboard with the provider's detail; there
// is no automatic retry.
func (h *Handler) SendTestEmail(c *gin.Context) {
	var req testEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := email.Test(req.To)
	if err := h.email.Send(c.Request.Context(), req.To, msg.Subject, msg.HTMLBody); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
