package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studio-booking-backend/internal/mw"
	"studio-booking-backend/internal/store"
)

// ListNotifications handles GET /api/notifications. Callers see their
// own notifications; admins may pass ?user_id= to inspect another
// user's feed.
func (h *Handler) ListNotifications(c *gin.Context) {
	userID := c.Query("user_id")
	caller := mw.CallerEmail(c)
	if userID == "" {
		userID = caller
	} else if userID != caller && !h.gate.IsAdmin(c.Request.Context(), caller) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot read another user's notifications"})
		return
	}

	notifications, err := h.store.ListNotifications(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead handles POST /api/notifications/:id/read, the
// only mutation a notification record supports.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := h.store.MarkNotificationRead(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
