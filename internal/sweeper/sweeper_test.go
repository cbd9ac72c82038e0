package sweeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"studio-booking-backend/config"
	"studio-booking-backend/internal/db"
	"studio-booking-backend/internal/model"
	"studio-booking-backend/internal/notification"
	"studio-booking-backend/internal/store"
)

// recordingSender captures outbound emails.
type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, to)
	return nil
}

func (r *recordingSender) recipients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

func newTestStore(t *testing.T) store.Store {
	testDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	// A pooled second connection would see its own empty in-memory DB.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(testDB))
	return store.NewGormStore(testDB)
}

func newReservation(userID string, status model.ReservationStatus, deadline time.Time) *model.Reservation {
	now := time.Now().UTC()
	return &model.Reservation{
		ID:              uuid.NewString(),
		UserID:          userID,
		CustomerName:    "Test Customer",
		CustomerEmail:   userID + "@example.com",
		ServiceName:     "Brow shaping",
		ScheduledAt:     now.Add(48 * time.Hour),
		Status:          status,
		PaymentDeadline: deadline,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestSweepOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newTestStore(t)

	now := time.Now().UTC()
	overdue := newReservation("late", model.ReservationPending, now.Add(-time.Minute))
	upcoming := newReservation("ontime", model.ReservationPending, now.Add(time.Hour))
	alreadyCancelled := newReservation("gone", model.ReservationCancelled, now.Add(-time.Hour))
	require.NoError(t, s.CreateReservation(ctx, overdue))
	require.NoError(t, s.CreateReservation(ctx, upcoming))
	require.NoError(t, s.CreateReservation(ctx, alreadyCancelled))

	emitter := notification.NewEmitter(1, 8, s, nil)
	emitter.Start(ctx)
	sender := &recordingSender{}

	cfg := &config.Config{}
	cfg.Sweeper.Enabled = true
	svc := NewService(cfg, s, emitter, sender)

	svc.SweepOnce(ctx)

	// The overdue pending reservation is expired.
	got, err := s.GetReservation(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationExpired, got.Status)

	// Others are untouched.
	got, err = s.GetReservation(ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, got.Status)
	got, err = s.GetReservation(ctx, alreadyCancelled.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, got.Status)

	// The cancellation email went to the overdue customer only.
	assert.Equal(t, []string{"late@example.com"}, sender.recipients())

	// And a cancellation notification record lands for that user.
	require.Eventually(t, func() bool {
		list, err := s.ListNotifications(ctx, "late")
		return err == nil && len(list) == 1 && list[0].Type == model.NotificationReservationCanceled
	}, time.Second, 10*time.Millisecond)

	// A second sweep finds nothing to do.
	svc.SweepOnce(ctx)
	assert.Len(t, sender.recipients(), 1)
}

func TestRun_DisabledDoesNotSweep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newTestStore(t)

	overdue := newReservation("late", model.ReservationPending, time.Now().UTC().Add(-time.Minute))
	require.NoError(t, s.CreateReservation(ctx, overdue))

	cfg := &config.Config{}
	cfg.Sweeper.Enabled = false
	svc := NewService(cfg, s, notification.NewEmitter(1, 1, s, nil), &recordingSender{})

	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately when disabled")
	}

	got, err := s.GetReservation(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, got.Status)
}
