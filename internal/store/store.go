package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studio-booking-backend/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: record not found")

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Admin records.
	HasActiveAdmin(ctx context.Context, email string) (bool, error)
	GrantAdmin(ctx context.Context, email string) (model.AdminRecord, error)
	RevokeAdmin(ctx context.Context, email string) (int64, error)
	ListAdmins(ctx context.Context) ([]model.AdminRecord, error)

	// Notifications.
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error

	// Reservations.
	CreateReservation(ctx context.Context, r *model.Reservation) error
	GetReservation(ctx context.Context, id string) (model.Reservation, error)
	CancelReservation(ctx context.Context, id string) (model.Reservation, error)
	ExpireDueReservations(ctx context.Context, now time.Time) ([]model.Reservation, error)

	// KYC submissions.
	CreateKYCSubmission(ctx context.Context, s *model.KYCSubmission) error
	GetKYCSubmission(ctx context.Context, id string) (model.KYCSubmission, error)
	ReviewKYCSubmission(ctx context.Context, id string, status model.KYCStatus, reason string) (model.KYCSubmission, error)

	// Admin browser push subscriptions.
	UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeletePushSubscription(ctx context.Context, endpoint string) error
	ListPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// HasActiveAdmin reports whether an active admin record exists for the
// given email.
func (s *gormStore) HasActiveAdmin(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.AdminRecord{}).
		Where("email = ? AND active = ?", email, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query admin records for %s: %w", email, err)
	}
	return count > 0, nil
}

// GrantAdmin creates an active admin record for the email, preserving
// the at-most-one-active invariant: an existing active record makes
// the grant a no-op, an inactive one is reactivated instead of
// inserting a duplicate row.
func (s *gormStore) GrantAdmin(ctx context.Context, email string) (model.AdminRecord, error) {
	var granted model.AdminRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.AdminRecord
		err := tx.Where("email = ?", email).
			Order("created_at DESC").
			First(&existing).Error
		switch {
		case err == nil && existing.Active:
			// Re-grant of an already-active admin is a no-op.
			granted = existing
			return nil
		case err == nil:
			existing.Active = true
			existing.UpdatedAt = time.Now().UTC()
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to reactivate admin record for %s: %w", email, err)
			}
			granted = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			record := model.AdminRecord{Email: email, Active: true}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to create admin record for %s: %w", email, err)
			}
			granted = record
			return nil
		default:
			return fmt.Errorf("failed to look up admin record for %s: %w", email, err)
		}
	})
	return granted, err
}

// RevokeAdmin deactivates all active records for the email and returns
// the number of records touched. Revoking a non-admin email is a no-op.
func (s *gormStore) RevokeAdmin(ctx context.Context, email string) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&model.AdminRecord{}).
		Where("email = ? AND active = ?", email, true).
		Updates(map[string]any{"active": false, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to revoke admin records for %s: %w", email, res.Error)
	}
	return res.RowsAffected, nil
}

// ListAdmins returns all admin records ordered by creation instant
// descending.
func (s *gormStore) ListAdmins(ctx context.Context) ([]model.AdminRecord, error) {
	var records []model.AdminRecord
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list admin records: %w", err)
	}
	return records, nil
}

func (s *gormStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification for user %s: %w", n.UserID, err)
	}
	return nil
}

func (s *gormStore) ListNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	var notifications []model.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %s: %w", userID, err)
	}
	return notifications, nil
}

func (s *gormStore) MarkNotificationRead(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification %d read: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to create reservation %s: %w", r.ID, err)
	}
	return nil
}

func (s *gormStore) GetReservation(ctx context.Context, id string) (model.Reservation, error) {
	var r model.Reservation
	err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r, ErrNotFound
	}
	if err != nil {
		return r, fmt.Errorf("failed to get reservation %s: %w", id, err)
	}
	return r, nil
}

// CancelReservation transitions a reservation to cancelled. Cancelling
// an already-cancelled or expired reservation is a no-op.
func (s *gormStore) CancelReservation(ctx context.Context, id string) (model.Reservation, error) {
	var r model.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&r, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get reservation %s: %w", id, err)
		}
		if r.Status == model.ReservationCancelled || r.Status == model.ReservationExpired {
			return nil
		}
		r.Status = model.ReservationCancelled
		r.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&r).Error; err != nil {
			return fmt.Errorf("failed to cancel reservation %s: %w", id, err)
		}
		return nil
	})
	return r, err
}

// ExpireDueReservations transitions every pending reservation whose
// payment deadline has passed to expired and returns the affected
// rows so the caller can emit per-reservation notifications.
func (s *gormStore) ExpireDueReservations(ctx context.Context, now time.Time) ([]model.Reservation, error) {
	var due []model.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("status = ? AND payment_deadline <= ?", model.ReservationPending, now).
			Find(&due).Error; err != nil {
			return fmt.Errorf("failed to fetch due reservations: %w", err)
		}
		if len(due) == 0 {
			return nil
		}
		ids := make([]string, len(due))
		for i := range due {
			ids[i] = due[i].ID
			due[i].Status = model.ReservationExpired
		}
		if err := tx.Model(&model.Reservation{}).
			Where("id IN ?", ids).
			Updates(map[string]any{"status": model.ReservationExpired, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("failed to expire reservations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return due, nil
}

func (s *gormStore) CreateKYCSubmission(ctx context.Context, sub *model.KYCSubmission) error {
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create kyc submission %s: %w", sub.ID, err)
	}
	return nil
}

func (s *gormStore) GetKYCSubmission(ctx context.Context, id string) (model.KYCSubmission, error) {
	var sub model.KYCSubmission
	err := s.db.WithContext(ctx).First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sub, ErrNotFound
	}
	if err != nil {
		return sub, fmt.Errorf("failed to get kyc submission %s: %w", id, err)
	}
	return sub, nil
}

// ReviewKYCSubmission records an approve/reject verdict on a
// submission.
func (s *gormStore) ReviewKYCSubmission(ctx context.Context, id string, status model.KYCStatus, reason string) (model.KYCSubmission, error) {
	var sub model.KYCSubmission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get kyc submission %s: %w", id, err)
		}
		sub.Status = status
		sub.Reason = reason
		sub.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&sub).Error; err != nil {
			return fmt.Errorf("failed to review kyc submission %s: %w", id, err)
		}
		return nil
	})
	return sub, err
}

func (s *gormStore) UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "admin_email"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert push subscription: %w", err)
	}
	return nil
}

func (s *gormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}

func (s *gormStore) ListPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	return subs, nil
}
