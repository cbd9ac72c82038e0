package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studio-booking-backend/internal/mw"
)

// CheckAdmin handles GET /api/admin/check. Without an email query
// parameter it reports on the caller's own privileges. "Not an admin"
// is a normal 200 outcome, never an error.
func (h *Handler) CheckAdmin(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		email = mw.CallerEmail(c)
	}
	c.JSON(http.StatusOK, gin.H{"email": email, "is_admin": h.gate.IsAdmin(c.Request.Context(), email)})
}

type grantRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// GrantAdmin handles POST /api/admin/grants.
func (h *Handler) GrantAdmin(c *gin.Context) {
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.gate.Grant(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, record)
}

// RevokeAdmin handles DELETE /api/admin/grants/:email. Revoking a
// non-admin email succeeds as a no-op.
func (h *Handler) RevokeAdmin(c *gin.Context) {
	email := c.Param("email")
	if err := h.gate.Revoke(c.Request.Context(), email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListAdmins handles GET /api/admins, newest grant first.
func (h *Handler) ListAdmins(c *gin.Context) {
	records, err := h.gate.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve admin records"})
		return
	}
	c.JSON(http.StatusOK, records)
}

var errStreamUnsupported = errors.New("streaming unsupported")

// WatchAdmins handles GET /api/admins/watch: a server-sent event
// stream over admin grant/revoke mutations. The subscription is
// released when the client disconnects.
func (h *Handler) WatchAdmins(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errStreamUnsupported.Error()})
		return
	}

	events, cancel := h.gate.Watch()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			c.SSEvent(string(ev.Kind), gin.H{"email": ev.Email})
			flusher.Flush()
		}
	}
}
