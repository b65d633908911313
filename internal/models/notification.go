package models

import "time"

// Notification is a scheduled message for a user, optionally tied to an
// invoice. Only the read timestamp is mutable after creation.
type Notification struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	InvoiceID   *uint      `gorm:"index" json:"invoice_id,omitempty"`
	Type        string     `gorm:"not null" json:"type"` // urssaf_deadline, vat_alert
	Title       string     `gorm:"not null" json:"title"`
	Message     string     `json:"message"`
	ScheduledAt time.Time  `gorm:"not null;index" json:"scheduled_at"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
