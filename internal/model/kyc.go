package model

import "time"

// KYCStatus is the review state of an identity submission.
type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCApproved KYCStatus = "approved"
	KYCRejected KYCStatus = "rejected"
)

// KYCSubmission is a customer identity/booking intake record awaiting
// admin review.
type KYCSubmission struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:64;not null;index" json:"user_id"`
	FullName    string    `gorm:"size:256;not null" json:"full_name"`
	Email       string    `gorm:"size:256;not null" json:"email"`
	DocumentRef string    `gorm:"size:512" json:"document_ref"`
	Status      KYCStatus `gorm:"size:32;not null;index" json:"status"`
	Reason      string    `gorm:"size:512" json:"reason,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
