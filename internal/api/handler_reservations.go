package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studio-booking-backend/internal/countdown"
	"studio-booking-backend/internal/email"
	"studio-booking-backend/internal/model"
	"studio-booking-backend/internal/mw"
	"studio-booking-backend/internal/store"
)

type createReservationRequest struct {
	CustomerName  string    `json:"customer_name" binding:"required"`
	CustomerEmail string    `json:"customer_email" binding:"required,email"`
	ServiceName   string    `json:"service_name" binding:"required"`
	ScheduledAt   time.Time `json:"scheduled_at" binding:"required"`
	// PaymentDeadline accepts an RFC3339 instant or a raw
	// epoch-millisecond number.
	PaymentDeadline any `json:"payment_deadline" binding:"required"`
}

// parseDeadline accepts the deadline in any of the shapes clients
// send: an RFC3339 string or a raw epoch-millisecond number.
func parseDeadline(v any) (time.Time, error) {
	if s, ok := v.(string); ok {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, countdown.ErrInvalidDeadlineFormat
		}
		return t, nil
	}
	ms, err := countdown.NormalizeDeadline(v)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

// CreateReservation handles POST /api/reservations.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deadline, err := parseDeadline(req.PaymentDeadline)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_deadline must be an RFC3339 timestamp or epoch milliseconds"})
		return
	}

	now := time.Now().UTC()
	reservation := model.Reservation{
		ID:              uuid.NewString(),
		UserID:          mw.CallerEmail(c),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		ServiceName:     req.ServiceName,
		ScheduledAt:     req.ScheduledAt,
		Status:          model.ReservationPending,
		PaymentDeadline: deadline,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.store.CreateReservation(c.Request.Context(), &reservation); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Side channels are best-effort and never fail the booking.
	h.emitter.ReservationCreated(reservation.UserID, reservation)
	msg := email.ReservationConfirmation(reservation.CustomerName, reservation.ServiceName, reservation.ScheduledAt, reservation.PaymentDeadline)
	if err := h.email.Send(c.Request.Context(), reservation.CustomerEmail, msg.Subject, msg.HTMLBody); err != nil {
		logEmailFailure("confirmation", reservation.ID, err)
	}

	c.JSON(http.StatusCreated, reservation)
}

// GetReservation handles GET /api/reservations/:id.
func (h *Handler) GetReservation(c *gin.Context) {
	reservation, err := h.store.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// GetReservationRemaining handles GET /api/reservations/:id/remaining:
// the time left until the payment deadline, decomposed for display,
// with the urgency band.
func (h *Handler) GetReservationRemaining(c *gin.Context) {
	reservation, err := h.store.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	diff := reservation.PaymentDeadline.UnixMilli() - time.Now().UnixMilli()
	rem := countdown.Decompose(diff)
	expired := diff <= 0 || reservation.Status == model.ReservationExpired || reservation.Status == model.ReservationCancelled

	c.JSON(http.StatusOK, countdown.Snapshot{
		Remaining: rem,
		Urgency:   rem.Urgency(),
		Expired:   expired,
	})
}

// CancelReservation handles POST /api/reservations/:id/cancel.
func (h *Handler) CancelReservation(c *gin.Context) {
	reservation, err := h.store.CancelReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.emitter.ReservationCancelled(reservation.UserID, reservation)
	msg := email.ReservationCancellation(reservation.CustomerName, reservation.ServiceName, reservation.ScheduledAt)
	if err := h.email.Send(c.Request.Context(), reservation.CustomerEmail, msg.Subject, msg.HTMLBody); err != nil {
		logEmailFailure("cancellation", reservation.ID, err)
	}

	c.JSON(http.StatusOK, reservation)
}
