package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"studio-booking-backend/internal/model"
)

// newMockDB creates a gorm handle over a sqlmock connection, for
// exercising failure paths.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newSQLiteStore creates a migrated in-memory store for behavioral
// tests.
func newSQLiteStore(t *testing.T) Store {
	testDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	// A pooled second connection would see its own empty in-memory DB.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, testDB.AutoMigrate(
		&model.AdminRecord{},
		&model.Notification{},
		&model.Reservation{},
		&model.KYCSubmission{},
		&model.PushSubscription{},
	))
	return NewGormStore(testDB)
}

func TestHasActiveAdmin_QueryFailureIsWrapped(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "admin_records"`).
		WillReturnError(assert.AnError)

	_, err := s.HasActiveAdmin(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query admin records for a@x.com")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantAdmin_Transitions(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a record for a new email", func(t *testing.T) {
		s := newSQLiteStore(t)

		record, err := s.GrantAdmin(ctx, "new@x.com")
		require.NoError(t, err)
		assert.True(t, record.Active)
		assert.NotZero(t, record.ID)
	})

	t.Run("re-grant of an active admin is a no-op", func(t *testing.T) {
		s := newSQLiteStore(t)

		first, err := s.GrantAdmin(ctx, "a@x.com")
		require.NoError(t, err)
		second, err := s.GrantAdmin(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		var count int64
		require.NoError(t, s.DB().Model(&model.AdminRecord{}).Where("email = ?", "a@x.com").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("reactivates a revoked record instead of duplicating", func(t *testing.T) {
		s := newSQLiteStore(t)

		first, err := s.GrantAdmin(ctx, "a@x.com")
		require.NoError(t, err)
		affected, err := s.RevokeAdmin(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		regrant, err := s.GrantAdmin(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, regrant.ID)
		assert.True(t, regrant.Active)
	})
}

func TestRevokeAdmin_NonAdminIsNoop(t *testing.T) {
	s := newSQLiteStore(t)

	affected, err := s.RevokeAdmin(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestListAdmins_OrderedByCreationDescending(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i, email := range []string{"first@x.com", "second@x.com", "third@x.com"} {
		require.NoError(t, s.DB().Create(&model.AdminRecord{
			Email:     email,
			Active:    true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	records, err := s.ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "third@x.com", records[0].Email)
	assert.Equal(t, "first@x.com", records[2].Email)
}

func TestExpireDueReservations(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	now := time.Now().UTC()

	mk := func(id string, status model.ReservationStatus, deadline time.Time) {
		require.NoError(t, s.CreateReservation(ctx, &model.Reservation{
			ID:              id,
			UserID:          "u",
			CustomerName:    "n",
			CustomerEmail:   "e@x.com",
			ServiceName:     "s",
			ScheduledAt:     now.Add(24 * time.Hour),
			Status:          status,
			PaymentDeadline: deadline,
			CreatedAt:       now,
			UpdatedAt:       now,
		}))
	}

	mk("due-1", model.ReservationPending, now.Add(-time.Minute))
	mk("due-2", model.ReservationPending, now.Add(-time.Hour))
	mk("future", model.ReservationPending, now.Add(time.Hour))
	mk("confirmed", model.ReservationConfirmed, now.Add(-time.Hour))

	expired, err := s.ExpireDueReservations(ctx, now)
	require.NoError(t, err)

	ids := make([]string, len(expired))
	for i, r := range expired {
		ids[i] = r.ID
		assert.Equal(t, model.ReservationExpired, r.Status)
	}
	assert.ElementsMatch(t, []string{"due-1", "due-2"}, ids)

	// Untouched rows keep their status.
	r, err := s.GetReservation(ctx, "future")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, r.Status)
	r, err = s.GetReservation(ctx, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationConfirmed, r.Status)

	// Idempotent: a second sweep finds nothing.
	expired, err = s.ExpireDueReservations(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestMarkNotificationRead(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	n := model.Notification{
		UserID:    "u",
		Type:      model.NotificationKYCApproved,
		Title:     "t",
		Message:   "m",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateNotification(ctx, &n))

	require.NoError(t, s.MarkNotificationRead(ctx, n.ID))

	list, err := s.ListNotifications(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)

	assert.ErrorIs(t, s.MarkNotificationRead(ctx, 99999), ErrNotFound)
}

func TestGetReservation_NotFound(t *testing.T) {
	s := newSQLiteStore(t)
	_, err := s.GetReservation(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelReservation_TerminalStatesAreNoops(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.CreateReservation(ctx, &model.Reservation{
		ID:              "r-1",
		UserID:          "u",
		CustomerName:    "n",
		CustomerEmail:   "e@x.com",
		ServiceName:     "s",
		ScheduledAt:     now.Add(24 * time.Hour),
		Status:          model.ReservationPending,
		PaymentDeadline: now.Add(time.Hour),
		CreatedAt:       now,
		UpdatedAt:       now,
	}))

	r, err := s.CancelReservation(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, r.Status)

	// Cancelling again does not change anything.
	r, err = s.CancelReservation(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, r.Status)
}
