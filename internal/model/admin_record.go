package model

import "time"

// AdminRecord is a persisted, revocable grant of admin privilege.
// Records are soft-deleted by flipping Active to false so the grant
// history is retained. The write path guarantees at most one active
// record per email; the storage layer does not enforce it.
type AdminRecord struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:256;not null;index" json:"email"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
