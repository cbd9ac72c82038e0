package model

import "time"

// NotificationType tags a notification record with the domain event
// that produced it.
type NotificationType string

const (
	NotificationKYCSubmitted        NotificationType = "kyc_submitted"
	NotificationKYCApproved         NotificationType = "kyc_approved"
	NotificationKYCRejected         NotificationType = "kyc_rejected"
	NotificationReservationCreated  NotificationType = "reservation_created"
	NotificationReservationCanceled NotificationType = "reservation_cancelled"
	NotificationAdminNewKYC         NotificationType = "admin_new_kyc"
)

// Notification is a user-visible event record. Immutable after
// creation except for the Read flag.
type Notification struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	UserID    string           `gorm:"size:64;not null;index" json:"user_id"`
	Type      NotificationType `gorm:"size:64;not null" json:"type"`
	Title     string           `gorm:"size:256;not null" json:"title"`
	Message   string           `gorm:"not null" json:"message"`
	Payload   string           `json:"payload,omitempty"` // optional JSON blob
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
}
