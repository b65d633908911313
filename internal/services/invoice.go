package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/pilotage/micro/internal/models"
)

// Flat VAT rate applied outside the franchise regime.
const vatRate = 0.20

// Reminder escalation tiers, selected on the pre-increment reminder count.
const (
	ReminderGentle = "gentle"
	ReminderFirm   = "firm"
	ReminderFinal  = "final"
)

var validStatuses = []string{"draft", "sent", "paid", "overdue"}

// InvoiceService encapsulates invoice business logic: VAT computation,
// sequential numbering, status transitions, and reminder escalation.
type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService { return &InvoiceService{db: db} }

type InvoiceInput struct {
	ClientID      *uint
	ClientName    string
	ClientEmail   string
	ClientAddress string
	AmountHT      float64
	Description   string
	DueDate       *time.Time
}

// round2 rounds to cents. Amounts stay float64 end to end, as stored.
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// ComputeVAT returns the VAT amount for a pre-tax amount under a regime:
// zero under franchise, flat 20% otherwise.
func ComputeVAT(amountHT float64, vatRegime string) float64 {
	if vatRegime == "franchise" {
		return 0
	}
	return round2(amountHT * vatRate)
}

// Create builds and persists a new invoice for the user. The caller must
// have a tax profile (VAT regime drives the computation). The invoice number
// is drawn from a per-user counter row bumped inside the same transaction,
// so concurrent creations cannot produce duplicates.
func (s *InvoiceService) Create(userID uint, in InvoiceInput) (*models.Invoice, error) {
	var profile models.TaxProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileRequired
		}
		return nil, err
	}

	vat := ComputeVAT(in.AmountHT, profile.VATRegime)
	inv := models.Invoice{
		UserID:        userID,
		ClientID:      in.ClientID,
		ClientName:    in.ClientName,
		ClientEmail:   in.ClientEmail,
		ClientAddress: in.ClientAddress,
		AmountHT:      in.AmountHT,
		VATAmount:     vat,
		AmountTTC:     round2(in.AmountHT + vat),
		Description:   in.Description,
		Status:        "draft",
		DueDate:       in.DueDate,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		seq, err := nextInvoiceSeq(tx, userID)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = fmt.Sprintf("FAC-%d-%04d", time.Now().Year(), seq)
		return tx.Create(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// nextInvoiceSeq bumps the user's counter row atomically and returns the new
// value. The UPDATE takes a row lock on postgres, serializing concurrent
// creators; the sequence spans years and is never reused after a delete.
func nextInvoiceSeq(tx *gorm.DB, userID uint) (int, error) {
	var counter models.InvoiceCounter
	if err := tx.Where(models.InvoiceCounter{UserID: userID}).FirstOrCreate(&counter).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.InvoiceCounter{}).Where("user_id = ?", userID).
		UpdateColumn("last_seq", gorm.Expr("last_seq + 1")).Error; err != nil {
		return 0, err
	}
	if err := tx.Where("user_id = ?", userID).First(&counter).Error; err != nil {
		return 0, err
	}
	return counter.LastSeq, nil
}

// List returns the user's invoices, newest first, capped at 100.
func (s *InvoiceService) List(userID uint) ([]models.Invoice, error) {
	var invs []models.Invoice
	err := s.db.Where("user_id = ?", userID).Order("created_at desc").Limit(100).Find(&invs).Error
	return invs, err
}

// Get loads one invoice, ownership enforced by filtering on both ids.
func (s *InvoiceService) Get(invoiceID, userID uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.Where("id = ? AND user_id = ?", invoiceID, userID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// UpdateStatus sets the invoice status. Transitions are deliberately
// unconstrained (any status may move to any other); only the value itself is
// validated. Moving to paid stamps paid_at.
func (s *InvoiceService) UpdateStatus(invoiceID, userID uint, status string) error {
	valid := false
	for _, v := range validStatuses {
		if status == v {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidStatus
	}
	update := map[string]any{"status": status}
	if status == "paid" {
		update["paid_at"] = time.Now()
	}
	res := s.db.Model(&models.Invoice{}).Where("id = ? AND user_id = ?", invoiceID, userID).Updates(update)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReminderResult reports what a reminder send produced.
type ReminderResult struct {
	Type  string `json:"reminder_type"`
	Count int    `json:"reminder_count"`
}

// SendReminder sends one payment reminder for an unpaid invoice, escalating
// gentle → firm → final on the count before this send. When the invoice is
// past due it is also forced to overdue, whatever the tier. A Reminder row is
// appended and the invoice's counters stamped, in one transaction.
func (s *InvoiceService) SendReminder(invoiceID, userID uint) (*ReminderResult, error) {
	inv, err := s.Get(invoiceID, userID)
	if err != nil {
		return nil, err
	}
	if inv.Status == "paid" {
		return nil, ErrAlreadyPaid
	}

	tier := reminderTier(inv.ReminderCount)
	now := time.Now()

	update := map[string]any{
		"reminder_count": inv.ReminderCount + 1,
		"last_reminder":  now,
	}
	if inv.DueDate != nil && now.After(*inv.DueDate) && inv.Status != "overdue" {
		update["status"] = "overdue"
	}

	subject, message := reminderText(tier, inv)
	rem := models.Reminder{
		InvoiceID: inv.ID,
		UserID:    userID,
		Type:      tier,
		Subject:   subject,
		Message:   message,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rem).Error; err != nil {
			return err
		}
		return tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Updates(update).Error
	})
	if err != nil {
		return nil, err
	}
	return &ReminderResult{Type: tier, Count: inv.ReminderCount + 1}, nil
}

func reminderTier(count int) string {
	switch {
	case count == 0:
		return ReminderGentle
	case count == 1:
		return ReminderFirm
	default:
		return ReminderFinal
	}
}

func reminderText(tier string, inv *models.Invoice) (subject, message string) {
	switch tier {
	case ReminderGentle:
		subject = fmt.Sprintf("Rappel - Facture %s", inv.InvoiceNumber)
		message = fmt.Sprintf("Bonjour,\n\nSauf erreur de notre part, la facture %s d'un montant de %.2f € TTC reste en attente de règlement.\n\nCordialement", inv.InvoiceNumber, inv.AmountTTC)
	case ReminderFirm:
		subject = fmt.Sprintf("Relance - Facture %s impayée", inv.InvoiceNumber)
		message = fmt.Sprintf("Bonjour,\n\nMalgré notre précédent rappel, la facture %s d'un montant de %.2f € TTC demeure impayée. Merci de procéder au règlement sous 8 jours.\n\nCordialement", inv.InvoiceNumber, inv.AmountTTC)
	default:
		subject = fmt.Sprintf("Mise en demeure - Facture %s", inv.InvoiceNumber)
		message = fmt.Sprintf("Bonjour,\n\nSans règlement de la facture %s (%.2f € TTC) sous 48 heures, nous nous verrons contraints d'engager une procédure de recouvrement.\n\nCordialement", inv.InvoiceNumber, inv.AmountTTC)
	}
	return subject, message
}

// ListReminders returns the append-only reminder log for one invoice.
func (s *InvoiceService) ListReminders(invoiceID, userID uint) ([]models.Reminder, error) {
	if _, err := s.Get(invoiceID, userID); err != nil {
		return nil, err
	}
	var rems []models.Reminder
	err := s.db.Where("invoice_id = ? AND user_id = ?", invoiceID, userID).Order("created_at asc").Find(&rems).Error
	return rems, err
}

// ProcessAutoReminders sweeps the user's invoices and dispatches the
// reminders the escalation policy calls for: a gentle reminder for unpaid
// invoices more than 7 days past due with none sent yet, a firm one for
// overdue invoices more than 14 days past due with exactly one sent.
// The reminder_count filters make a rerun within the same window a no-op.
func (s *InvoiceService) ProcessAutoReminders(userID uint) (int, error) {
	now := time.Now()
	sent := 0

	var gentle []models.Invoice
	if err := s.db.Where("user_id = ? AND status IN ? AND due_date < ? AND reminder_count = 0",
		userID, []string{"sent", "overdue"}, now.AddDate(0, 0, -7)).Find(&gentle).Error; err != nil {
		return 0, err
	}
	for _, inv := range gentle {
		if _, err := s.SendReminder(inv.ID, userID); err != nil {
			return sent, err
		}
		sent++
	}

	var firm []models.Invoice
	if err := s.db.Where("user_id = ? AND status = ? AND due_date < ? AND reminder_count = 1",
		userID, "overdue", now.AddDate(0, 0, -14)).Find(&firm).Error; err != nil {
		return sent, err
	}
	for _, inv := range firm {
		if _, err := s.SendReminder(inv.ID, userID); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
