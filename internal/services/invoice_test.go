package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pilotage/micro/internal/models"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.TaxProfile{}, &models.Client{},
		&models.Invoice{}, &models.InvoiceCounter{}, &models.Reminder{},
		&models.Obligation{}, &models.Notification{},
	))
	return db
}

func seedUserWithProfile(t *testing.T, db *gorm.DB, vatRegime string) models.User {
	t.Helper()
	user := models.User{Email: fmt.Sprintf("%s@test.fr", t.Name()), Password: "x", FirstName: "Marie", LastName: "Durand"}
	require.NoError(t, db.Create(&user).Error)
	profile := models.TaxProfile{
		UserID:            user.ID,
		ActivityType:      "BNC",
		URSSAFPeriodicity: "monthly",
		VATRegime:         vatRegime,
		MicroThreshold:    77700,
		VATThreshold:      36800,
	}
	require.NoError(t, db.Create(&profile).Error)
	return user
}

func TestComputeVAT(t *testing.T) {
	assert.Equal(t, 0.0, ComputeVAT(2500, "franchise"))
	assert.Equal(t, 500.0, ComputeVAT(2500, "simplified"))
	assert.Equal(t, 500.0, ComputeVAT(2500, "real"))
	// rounding to cents
	assert.Equal(t, 20.0, ComputeVAT(99.99, "real")) // 19.998 -> 20.00
}

func TestCreateInvoiceFranchise(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedUserWithProfile(t, db, "franchise")
	svc := NewInvoiceService(db)

	inv, err := svc.Create(user.ID, InvoiceInput{ClientName: "ACME", AmountHT: 2500})
	require.NoError(t, err)
	assert.Equal(t, 0.0, inv.VATAmount)
	assert.Equal(t, 2500.0, inv.AmountTTC)
	assert.Equal(t, "draft", inv.Status)
	assert.Equal(t, fmt.Sprintf("FAC-%d-0001", time.Now().Year()), inv.InvoiceNumber)
}

func TestCreateInvoiceWithVAT(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedUserWithProfile(t, db, "simplified")
	svc := NewInvoiceService(db)

	inv, err := svc.Create(user.ID, InvoiceInput{ClientName: "ACME", AmountHT: 1000})
	require.NoError(t, err)
	assert.Equal(t, 200.0, inv.VATAmount)
	assert.Equal(t, 1200.0, inv.AmountTTC)
}

func TestCreateInvoiceRequiresProfile(t *testing.T) {
	db := setupServiceTestDB(t)
	user := models.User{Email: "noprofile@test.fr", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	svc := NewInvoiceService(db)

	_, err := svc.Create(user.ID, InvoiceInput{ClientName: "ACME", AmountHT: 100})
	assert.ErrorIs(t, err, ErrProfileRequired)
}

func TestInvoiceNumbersStrictlyIncreasing(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedUserWithProfile(t, db, "franchise")
	svc := NewInvoiceService(db)

	year := time.Now().Year()
	for i := 1; i <= 3; i++ {
		inv, err := svc.Create(user.ID, InvoiceInput{ClientName: "ACME", AmountHT: 100})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("FAC-%d-%04d", year, i), inv.InvoiceNumber)
	}
}

func TestInvoiceNumberNotReusedAfterDelete(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedUserWithProfile(t, db, "franchise")
	svc := NewInvoiceService(db)

	first, err := svc.Create(user.ID, InvoiceInput{ClientName: "ACME", AmountHT: 100})
	require.NoError(t, err)
	require.NoError(t, db.Delete(&models.Invoice{}, first.ID).Error)

	second, err := svc.Create(user.ID, InvoiceInput{ClientName: "ACME", AmountHT: 100})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("FAC-%d-0002", time.Now().Year()), second.InvoiceNumber)
}

func TestUpdateStatus(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedUserWithProfile(t, db, "franchise")
	svc := NewInvoiceService(db)
	inv, err := svc.Create(user.ID, InvoiceInput{ClientName: "ACME", AmountHT: 100})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(inv.ID, user.ID, "paid"))
	got, err := svc.Get(inv.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", got.Status)
	require.NotNil(t, got.PaidAt)

	assert.ErrorIs(t, svc.UpdateStatus(inv.ID, user.ID, "bogus"), ErrInvalidStatus)
	assert.ErrorIs(t, svc.UpdateStatus(9999, user.ID, "sent"), ErrNotFound)
	// ownership: another user cannot touch it
	assert.ErrorIs(t, svc.UpdateStatus(inv.ID, user.ID+1, "sent"), ErrNotFound)
}

func TestReminderEscalationLadder(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedUserWithProfile(t, db, "franchise")
	svc := NewInvoiceService(db)
	inv, err := svc.Create(user.ID, InvoiceInput{ClientName: "ACME", AmountHT: 100})
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(inv.ID, user.ID, "sent"))

	expected := []struct {
		tier  string
		count int
	}{
		{ReminderGentle, 1},
		{ReminderFirm, 2},
		{ReminderFinal, 3},
		{ReminderFinal, 4}, // stays final past the ladder
	}
	for _, want := range expected {
		res, err := svc.SendReminder(inv.ID, user.ID)
		require.NoError(t, err)
		assert.Equal(t, want.tier, res.Type)
		assert.Equal(t, want.count, res.Count)
	}

	var rems []models.Reminder
	require.NoError(t, db.Where("invoice_id = ?", inv.ID).Find(&rems).Error)
	assert.Len(t, rems, 4)
}

func TestReminderOnPaidInvoiceRejected(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedUserWithProfile(t, db, "franchise")
	svc := NewInvoiceService(db)
	inv, err := svc.Create(user.ID, InvoiceInput{ClientName: "ACME", AmountHT: 100})
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(inv.ID, user.ID, "paid"))

	_, err = svc.SendReminder(inv.ID, user.ID)
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	got, err := svc.Get(inv.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ReminderCount)
}

func TestReminderForcesOverdue(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedUserWithProfile(t, db, "franchise")
	svc := NewInvoiceService(db)
	inv, err := svc.Create(user.ID, InvoiceInput{ClientName: "ACME", AmountHT: 100})
	require.NoError(t, err)
	past := time.Now().AddDate(0, 0, -3)
	require.NoError(t, db.Model(&models.Invoice{}).Where("id = ?", inv.ID).
		Updates(map[string]any{"status": "sent", "due_date": past}).Error)

	_, err = svc.SendReminder(inv.ID, user.ID)
	require.NoError(t, err)

	got, err := svc.Get(inv.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "overdue", got.Status)
	require.NotNil(t, got.LastReminder)
}

func TestProcessAutoReminders(t *testing.T) {
	db := setupServiceTestDB(t)
	user := seedUserWithProfile(t, db, "franchise")
	svc := NewInvoiceService(db)

	mkInvoice := func(status string, dueDaysAgo, reminderCount int) models.Invoice {
		due := time.Now().AddDate(0, 0, -dueDaysAgo)
		inv := models.Invoice{
			UserID: user.ID, InvoiceNumber: fmt.Sprintf("FAC-T-%d", dueDaysAgo),
			ClientName: "ACME", AmountHT: 100, AmountTTC: 100,
			Status: status, DueDate: &due, ReminderCount: reminderCount,
		}
		require.NoError(t, db.Create(&inv).Error)
		return inv
	}

	gentle := mkInvoice("sent", 10, 0)    // > 7d past due, never reminded
	firm := mkInvoice("overdue", 20, 1)   // > 14d past due, one reminder
	mkInvoice("sent", 3, 0)               // too recent
	mkInvoice("draft", 30, 0)             // wrong status
	mkInvoice("overdue", 10, 1)           // overdue but not past the 14d mark

	n, err := svc.ProcessAutoReminders(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var rems []models.Reminder
	require.NoError(t, db.Where("user_id = ?", user.ID).Order("invoice_id").Find(&rems).Error)
	require.Len(t, rems, 2)
	byInvoice := map[uint]string{}
	for _, rem := range rems {
		byInvoice[rem.InvoiceID] = rem.Type
	}
	assert.Equal(t, ReminderGentle, byInvoice[gentle.ID])
	assert.Equal(t, ReminderFirm, byInvoice[firm.ID])

	// second pass is a no-op: the reminder_count filters no longer match
	n, err = svc.ProcessAutoReminders(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
