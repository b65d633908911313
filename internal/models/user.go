package models

import "time"

// User & profile models
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"unique;not null;index" json:"email"`
	Password    string    `gorm:"not null" json:"-"` // hashé (bcrypt)
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsOnboarded bool      `gorm:"not null;default:false" json:"is_onboarded"` // passe à true à la création du profil
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaxProfile holds the fiscal situation of a micro-entrepreneur.
// One per user, enforced by the unique index on UserID.
type TaxProfile struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	ActivityType         string    `gorm:"not null" json:"activity_type"`      // BIC ou BNC
	URSSAFPeriodicity    string    `gorm:"not null" json:"urssaf_periodicity"` // monthly ou quarterly
	VATRegime            string    `gorm:"not null" json:"vat_regime"`         // franchise, simplified, real
	MicroThreshold       float64   `gorm:"not null" json:"micro_threshold"`    // plafond micro-entreprise
	VATThreshold         float64   `gorm:"not null" json:"vat_threshold"`      // plafond franchise TVA
	PreviousYearTurnover *float64  `json:"previous_year_turnover,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
