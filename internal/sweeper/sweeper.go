package sweeper

import (
	"context"
	"log"
	"time"

	"studio-booking-backend/config"
	"studio-booking-backend/internal/email"
	"studio-booking-backend/internal/notification"
	"studio-booking-backend/internal/store"
)

// Service cancels pending reservations whose payment deadline has
// passed. It is the server-side counterpart of the client countdown:
// the countdown shows the deadline approaching, the sweeper enforces
// it.
type Service struct {
	cfg     *config.Config
	store   store.Store
	emitter *notification.Emitter
	email   email.Sender
}

// NewService creates a sweeper.
func NewService(cfg *config.Config, s store.Store, e *notification.Emitter, sender email.Sender) *Service {
	return &Service{cfg: cfg, store: s, emitter: e, email: sender}
}

// Run starts the sweep loop. The first sweep happens immediately, then
// on the configured interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Sweeper.Enabled {
		log.Println("Reservation sweeper is disabled. Not starting.")
		return
	}
	log.Println("Starting reservation sweeper...")

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.Sweeper.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reservation sweeper shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.Sweeper.Interval)
		}
	}
}

// SweepOnce expires all due reservations and emits the side effects
// for each. Notifications and emails are best-effort; a failure there
// never rolls back the expiry.
func (s *Service) SweepOnce(ctx context.Context) {
	now := time.Now().UTC()

	expired, err := s.store.ExpireDueReservations(ctx, now)
	if err != nil {
		log.Printf("Error expiring due reservations: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	log.Printf("Expired %d overdue reservations", len(expired))
	for _, r := range expired {
		s.emitter.ReservationCancelled(r.UserID, r)

		msg := email.ReservationCancellation(r.CustomerName, r.ServiceName, r.ScheduledAt)
		if err := s.email.Send(ctx, r.CustomerEmail, msg.Subject, msg.HTMLBody); err != nil {
			log.Printf("Could not send cancellation email for reservation %s: %v", r.ID, err)
		}
	}
}
