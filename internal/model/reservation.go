package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationExpired   ReservationStatus = "expired"
)

// Reservation is a booked studio appointment. A pending reservation
// must be paid for before PaymentDeadline or the sweeper cancels it.
type Reservation struct {
	ID              string            `gorm:"primaryKey;size:36" json:"id"`
	UserID          string            `gorm:"size:64;not null;index" json:"user_id"`
	CustomerName    string            `gorm:"size:256;not null" json:"customer_name"`
	CustomerEmail   string            `gorm:"size:256;not null" json:"customer_email"`
	ServiceName     string            `gorm:"size:256;not null" json:"service_name"`
	ScheduledAt     time.Time         `gorm:"not null" json:"scheduled_at"`
	Status          ReservationStatus `gorm:"size:32;not null;index" json:"status"`
	PaymentDeadline time.Time         `gorm:"not null;index" json:"payment_deadline"`
	CreatedAt       time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null" json:"updated_at"`
}
