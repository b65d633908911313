package models

import "time"

// Obligation is one compliance deadline (URSSAF, TVA) for a user. Rows are
// regenerated in bulk for a user, not updated incrementally.
type Obligation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Type            string    `gorm:"not null" json:"type"` // urssaf_monthly, urssaf_quarterly, vat_quarterly
	Title           string    `gorm:"not null" json:"title"`
	DueDate         time.Time `gorm:"not null;index" json:"due_date"`
	Status          string    `gorm:"not null;default:'pending'" json:"status"` // pending, completed, overdue
	EstimatedAmount *float64  `json:"estimated_amount,omitempty"`
	ChecklistItems  []string  `gorm:"serializer:json" json:"checklist_items"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
