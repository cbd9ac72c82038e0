package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"studio-booking-backend/internal/admin"
	"studio-booking-backend/internal/email"
	"studio-booking-backend/internal/notification"
	"studio-booking-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	gate    *admin.Gate
	emitter *notification.Emitter
	email   email.Sender
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, gate *admin.Gate, emitter *notification.Emitter, sender email.Sender, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		gate:    gate,
		emitter: emitter,
		email:   sender,
		webpush: webpushOptions,
	}
}
