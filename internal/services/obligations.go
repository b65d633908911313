package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pilotage/micro/internal/models"
)

// Static compliance-calendar constants. These are deliberately flat figures,
// not derived from actual turnover: the calendar is a simplified stand-in for
// a real tax engine.
const (
	urssafMonthlyEstimate   = 450.0
	urssafQuarterlyEstimate = 1350.0
	vatQuarterlyEstimate    = 800.0

	// Stand-in revenue figure used by the VAT-alert check until real
	// turnover tracking feeds it.
	mockAnnualRevenue = 28000.0
	vatAlertRatio     = 0.70
)

var urssafMonthlyChecklist = []string{
	"Se connecter sur urssaf.fr",
	"Saisir le chiffre d'affaires du mois",
	"Valider la déclaration",
	"Effectuer le paiement des cotisations",
}

var urssafQuarterlyChecklist = []string{
	"Se connecter sur urssaf.fr",
	"Saisir le chiffre d'affaires du trimestre",
	"Valider la déclaration trimestrielle",
	"Effectuer le paiement des cotisations",
}

var vatChecklist = []string{
	"Se connecter sur impots.gouv.fr",
	"Remplir la déclaration CA3",
	"Vérifier les montants HT et TVA",
	"Transmettre la déclaration",
	"Payer la TVA due",
}

// ObligationService regenerates the compliance calendar and schedules the
// deadline notifications derived from a user's tax profile.
type ObligationService struct {
	db *gorm.DB
}

func NewObligationService(db *gorm.DB) *ObligationService { return &ObligationService{db: db} }

func (s *ObligationService) profile(userID uint) (*models.TaxProfile, error) {
	var profile models.TaxProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Regenerate wipes the user's obligations and rebuilds them from the profile
// periodicity: three upcoming monthly URSSAF deadlines, or one quarterly, plus
// a VAT deadline outside the franchise regime. Returns the number created.
func (s *ObligationService) Regenerate(userID uint) (int, error) {
	profile, err := s.profile(userID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	var obligations []models.Obligation

	if profile.URSSAFPeriodicity == "monthly" {
		for i := 1; i <= 3; i++ {
			amount := urssafMonthlyEstimate
			obligations = append(obligations, models.Obligation{
				UserID:          userID,
				Type:            "urssaf_monthly",
				Title:           fmt.Sprintf("Déclaration URSSAF mensuelle - %s", now.Month()),
				DueDate:         now.AddDate(0, 0, 15+30*i),
				Status:          "pending",
				EstimatedAmount: &amount,
				ChecklistItems:  urssafMonthlyChecklist,
			})
		}
	} else {
		amount := urssafQuarterlyEstimate
		obligations = append(obligations, models.Obligation{
			UserID:          userID,
			Type:            "urssaf_quarterly",
			Title:           "Déclaration URSSAF trimestrielle",
			DueDate:         now.AddDate(0, 0, 25),
			Status:          "pending",
			EstimatedAmount: &amount,
			ChecklistItems:  urssafQuarterlyChecklist,
		})
	}

	if profile.VATRegime != "franchise" {
		amount := vatQuarterlyEstimate
		obligations = append(obligations, models.Obligation{
			UserID:          userID,
			Type:            "vat_quarterly",
			Title:           "Déclaration TVA trimestrielle",
			DueDate:         now.AddDate(0, 0, 35),
			Status:          "pending",
			EstimatedAmount: &amount,
			ChecklistItems:  vatChecklist,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Obligation{}).Error; err != nil {
			return err
		}
		if len(obligations) == 0 {
			return nil
		}
		return tx.Create(&obligations).Error
	})
	if err != nil {
		return 0, err
	}
	return len(obligations), nil
}

// ScheduleNotifications creates the deadline notifications for the user:
// J-7 / J-3 / J-0 around the next monthly URSSAF declaration date (the 15th
// of next month), plus a VAT alert when revenue crosses 70% of the VAT
// franchise threshold. Stand-in for a time-driven scheduler; the selection
// logic is the real one, the trigger is not.
func (s *ObligationService) ScheduleNotifications(userID uint) (int, error) {
	profile, err := s.profile(userID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	var notifications []models.Notification

	if profile.URSSAFPeriodicity == "monthly" {
		deadline := time.Date(now.Year(), now.Month()+1, 15, 9, 0, 0, 0, now.Location())
		for _, offset := range []int{7, 3, 0} {
			when := deadline.AddDate(0, 0, -offset)
			title := fmt.Sprintf("Échéance URSSAF dans %d jours", offset)
			if offset == 0 {
				title = "Échéance URSSAF aujourd'hui"
			}
			notifications = append(notifications, models.Notification{
				UserID:      userID,
				Type:        "urssaf_deadline",
				Title:       title,
				Message:     fmt.Sprintf("Votre déclaration URSSAF mensuelle est à effectuer avant le %s.", deadline.Format("02/01/2006")),
				ScheduledAt: when,
			})
		}
	}

	if mockAnnualRevenue > vatAlertRatio*profile.VATThreshold {
		notifications = append(notifications, models.Notification{
			UserID:      userID,
			Type:        "vat_alert",
			Title:       "Seuil de TVA bientôt atteint",
			Message:     fmt.Sprintf("Votre chiffre d'affaires dépasse 70%% du seuil de franchise de TVA (%.0f €). Anticipez le passage au régime réel.", profile.VATThreshold),
			ScheduledAt: now,
		})
	}

	if len(notifications) > 0 {
		if err := s.db.Create(&notifications).Error; err != nil {
			return 0, err
		}
	}
	return len(notifications), nil
}
