package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pilotage/micro/internal/auth"
	"github.com/pilotage/micro/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.TaxProfile{}, &models.Client{},
		&models.Invoice{}, &models.InvoiceCounter{}, &models.Reminder{},
		&models.Obligation{}, &models.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, Password: "x", FirstName: "Jean", LastName: "Martin"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return user
}

func seedProfile(t *testing.T, db *gorm.DB, userID uint, vatRegime string) models.TaxProfile {
	t.Helper()
	profile := models.TaxProfile{
		UserID: userID, ActivityType: "BNC", URSSAFPeriodicity: "monthly",
		VATRegime: vatRegime, MicroThreshold: 77700, VATThreshold: 36800,
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("profile: %v", err)
	}
	return profile
}

// authedRequest builds a JSON request carrying the user id in context, the
// way the auth middleware would after validating a token.
func authedRequest(t *testing.T, userID uint, method, target, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}
