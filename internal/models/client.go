package models

import "time"

// Client entity, scoped to its owning user. The (user_id, email) pair is
// unique: the same email may appear under different users.
type Client struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_clients_user_email" json:"user_id"`
	Name       string    `gorm:"not null;index" json:"name"` // raison sociale ou nom
	Email      string    `gorm:"not null;uniqueIndex:idx_clients_user_email" json:"email"`
	Phone      string    `json:"phone"`
	Company    string    `json:"company"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	SIRET      string    `gorm:"index" json:"siret"` // France
	VATNumber  string    `json:"vat_number"`         // numéro TVA intracommunautaire
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Derived on read, never stored: see ClientHandler.withTotals.
	TotalInvoices int64   `gorm:"-" json:"total_invoices"`
	TotalAmount   float64 `gorm:"-" json:"total_amount"`
}
