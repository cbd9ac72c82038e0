package model

import "time"

// PushSubscription holds a browser push subscription registered by an
// admin to receive new-KYC alerts.
type PushSubscription struct {
	Endpoint   string    `gorm:"primaryKey"`
	P256DH     string    `gorm:"column:p256dh;not null"`
	Auth       string    `gorm:"not null"`
	AdminEmail string    `gorm:"size:256;not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
}
