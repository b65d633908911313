package models

import "time"

// Invoicing models
type Invoice struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	ClientID      *uint      `gorm:"index" json:"client_id,omitempty"` // lien optionnel vers Client
	InvoiceNumber string     `gorm:"not null;index" json:"invoice_number"`
	ClientName    string     `gorm:"not null" json:"client_name"`
	ClientEmail   string     `json:"client_email"`
	ClientAddress string     `json:"client_address"`
	AmountHT      float64    `gorm:"not null" json:"amount_ht"`
	VATAmount     float64    `gorm:"not null" json:"vat_amount"`
	AmountTTC     float64    `gorm:"not null" json:"amount_ttc"`
	Description   string     `json:"description"`
	Status        string     `gorm:"not null;default:'draft';index" json:"status"` // draft, sent, paid, overdue
	ReminderCount int        `gorm:"not null;default:0" json:"reminder_count"`
	LastReminder  *time.Time `json:"last_reminder_date,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// InvoiceCounter is the per-user numbering sequence. The row is bumped inside
// the invoice-creation transaction so two concurrent creations cannot draw
// the same number. The sequence never resets across years and never reuses a
// number after a delete.
type InvoiceCounter struct {
	UserID  uint `gorm:"primaryKey"`
	LastSeq int  `gorm:"not null;default:0"`
}

// Reminder is an append-only log row, one per reminder send.
type Reminder struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	InvoiceID uint      `gorm:"not null;index" json:"invoice_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"not null" json:"reminder_type"` // gentle, firm, final
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
