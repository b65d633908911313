package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pilotage/micro/internal/models"
)

// DashboardService aggregates the figures shown on the home screen:
// year-to-date revenue and its position against the regime thresholds.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService { return &DashboardService{db: db} }

type BankTransaction struct {
	ID           string    `json:"id"`
	Amount       float64   `json:"amount"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	Counterparty string    `json:"counterparty"`
}

type Dashboard struct {
	CurrentRevenue     float64             `json:"current_revenue"`
	MicroThreshold     float64             `json:"micro_threshold"`
	VATThreshold       float64             `json:"vat_threshold"`
	MicroThresholdPct  float64             `json:"micro_threshold_percent"`
	VATThresholdPct    float64             `json:"vat_threshold_percent"`
	NextObligations    []models.Obligation `json:"next_obligations"`
	RecentTransactions []BankTransaction   `json:"recent_transactions"`
	ActivityType       string              `json:"activity_type"`
	VATRegime          string              `json:"vat_regime"`
	URSSAFPeriodicity  string              `json:"urssaf_periodicity"`
}

// ThresholdPercent expresses revenue as a percentage of a threshold, clamped
// at 100 on the upper side (revenue is never negative).
func ThresholdPercent(revenue, threshold float64) float64 {
	pct := revenue / threshold * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// Compute builds the dashboard for a user. Revenue is the sum of amount_ttc
// over invoices paid since January 1st of the current year.
func (s *DashboardService) Compute(userID uint) (*Dashboard, error) {
	var profile models.TaxProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	startOfYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	var revenue float64
	if err := s.db.Model(&models.Invoice{}).
		Where("user_id = ? AND status = ? AND paid_at >= ?", userID, "paid", startOfYear).
		Select("COALESCE(SUM(amount_ttc), 0)").Scan(&revenue).Error; err != nil {
		return nil, err
	}

	var obligations []models.Obligation
	if err := s.db.Where("user_id = ? AND status = ? AND due_date >= ?", userID, "pending", now).
		Order("due_date asc").Limit(5).Find(&obligations).Error; err != nil {
		return nil, err
	}

	return &Dashboard{
		CurrentRevenue:     revenue,
		MicroThreshold:     profile.MicroThreshold,
		VATThreshold:       profile.VATThreshold,
		MicroThresholdPct:  ThresholdPercent(revenue, profile.MicroThreshold),
		VATThresholdPct:    ThresholdPercent(revenue, profile.VATThreshold),
		NextObligations:    obligations,
		RecentTransactions: mockTransactions(now),
		ActivityType:       profile.ActivityType,
		VATRegime:          profile.VATRegime,
		URSSAFPeriodicity:  profile.URSSAFPeriodicity,
	}, nil
}

// mockTransactions is a stand-in bank feed until a real aggregator is wired.
func mockTransactions(now time.Time) []BankTransaction {
	return []BankTransaction{
		{ID: "mock-1", Amount: 1500.0, Description: "Virement - Client ABC", Date: now.AddDate(0, 0, -5), Counterparty: "Client ABC"},
		{ID: "mock-2", Amount: 2300.0, Description: "Virement - Projet XYZ", Date: now.AddDate(0, 0, -12), Counterparty: "Entreprise XYZ"},
		{ID: "mock-3", Amount: 850.0, Description: "Consultation freelance", Date: now.AddDate(0, 0, -18), Counterparty: "StartupDEF"},
	}
}
