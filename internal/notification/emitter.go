package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"studio-booking-backend/internal/model"
	"studio-booking-backend/internal/store"
)

// PushSender defines the interface for sending a web push message.
type PushSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real PushSender backed by the webpush library.
type WebPushSender struct{}

func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Emitter persists notification records best-effort through a pool of
// worker goroutines. Emit never blocks and never fails the caller:
// persistence errors are logged and swallowed, and a full queue drops
// the record with a log line. Admin-targeted events additionally fan
// out to registered admin browser push subscriptions.
type Emitter struct {
	workers int
	jobs    chan model.Notification
	store   store.Store
	webpush *webpush.Options
	sender  PushSender
}

// NewEmitter creates an emitter with the given worker count and queue
// capacity.
func NewEmitter(workers, queueSize int, s store.Store, webpushOptions *webpush.Options) *Emitter {
	return &Emitter{
		workers: workers,
		jobs:    make(chan model.Notification, queueSize),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (e *Emitter) Start(ctx context.Context) {
	for i := 0; i < e.workers; i++ {
		go e.worker(ctx, i)
	}
}

func (e *Emitter) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case n := <-e.jobs:
			e.deliver(ctx, n)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Emit enqueues a notification record for the given user. The payload,
// if non-nil, is stored as JSON alongside the record.
func (e *Emitter) Emit(userID string, typ model.NotificationType, title, message string, payload any) {
	n := model.Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			log.Printf("could not marshal payload for %s notification to %s: %v", typ, userID, err)
		} else {
			n.Payload = string(raw)
		}
	}

	select {
	case e.jobs <- n:
	default:
		log.Printf("notification queue full, dropping %s notification for user %s", typ, userID)
	}
}

// KYCSubmitted notifies the submitting user and alerts admins.
func (e *Emitter) KYCSubmitted(userID, name, submissionID string) {
	title, message := KYCSubmittedTemplate(name)
	e.Emit(userID, model.NotificationKYCSubmitted, title, message, map[string]string{"submission_id": submissionID})

	title, message = AdminNewKYCTemplate(name)
	e.Emit("admin", model.NotificationAdminNewKYC, title, message, map[string]string{"submission_id": submissionID})
}

// KYCReviewed notifies the user of an approve/reject verdict.
func (e *Emitter) KYCReviewed(userID, name string, approved bool, reason string) {
	if approved {
		title, message := KYCApprovedTemplate(name)
		e.Emit(userID, model.NotificationKYCApproved, title, message, nil)
		return
	}
	title, message := KYCRejectedTemplate(name, reason)
	e.Emit(userID, model.NotificationKYCRejected, title, message, nil)
}

// ReservationCreated notifies the booking user.
func (e *Emitter) ReservationCreated(userID string, r model.Reservation) {
	title, message := ReservationCreatedTemplate(r.ServiceName, r.ScheduledAt)
	e.Emit(userID, model.NotificationReservationCreated, title, message, map[string]string{"reservation_id": r.ID})
}

// ReservationCancelled notifies the booking user.
func (e *Emitter) ReservationCancelled(userID string, r model.Reservation) {
	title, message := ReservationCancelledTemplate(r.ServiceName, r.ScheduledAt)
	e.Emit(userID, model.NotificationReservationCanceled, title, message, map[string]string{"reservation_id": r.ID})
}

// deliver persists a single record and, for admin-targeted events,
// fans out to admin browsers.
func (e *Emitter) deliver(ctx context.Context, n model.Notification) {
	if err := e.store.CreateNotification(ctx, &n); err != nil {
		// Best-effort: the triggering business operation already
		// succeeded, so the failure is only logged.
		log.Printf("failed to persist %s notification for user %s: %v", n.Type, n.UserID, err)
	}

	if n.Type == model.NotificationAdminNewKYC {
		e.pushToAdmins(ctx, n)
	}
}

func (e *Emitter) pushToAdmins(ctx context.Context, n model.Notification) {
	if e.webpush == nil || e.webpush.VAPIDPublicKey == "" {
		return
	}

	subs, err := e.store.ListPushSubscriptions(ctx)
	if err != nil {
		log.Printf("could not list admin push subscriptions: %v", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(map[string]string{"title": n.Title, "message": n.Message})
	if err != nil {
		log.Printf("could not marshal push payload: %v", err)
		return
	}

	for _, sub := range subs {
		e.push(ctx, sub, payload)
	}
}

func (e *Emitter) push(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := e.sender.Send(payload, wpSub, e.webpush)
	if err != nil {
		log.Printf("error sending push to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Prune subscriptions the push service reports as gone.
	if resp.StatusCode == http.StatusGone {
		log.Printf("push subscription %s is expired, deleting", sub.Endpoint)
		if err := e.store.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("failed to delete expired push subscription %s: %v", sub.Endpoint, err)
		}
	}
}
