package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pilotage/micro/internal/models"
	"github.com/pilotage/micro/internal/services"
)

func TestMockInitObligations(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "obligations@exemple.fr")
	seedProfile(t, db, user.ID, "franchise") // monthly periodicity in fixture
	h := NewMockHandler(services.NewObligationService(db), services.NewInvoiceService(db))

	req := authedRequest(t, user.ID, http.MethodPost, "/mock/init-obligations", "")
	w := httptest.NewRecorder()
	h.InitObligations(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var count int64
	if err := db.Model(&models.Obligation{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 obligations got %d", count)
	}
}

func TestMockInitObligationsWithoutProfile(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "rien@exemple.fr")
	h := NewMockHandler(services.NewObligationService(db), services.NewInvoiceService(db))

	req := authedRequest(t, user.ID, http.MethodPost, "/mock/init-obligations", "")
	w := httptest.NewRecorder()
	h.InitObligations(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestMockAutoReminders(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "relances@exemple.fr")
	seedProfile(t, db, user.ID, "franchise")
	h := NewMockHandler(services.NewObligationService(db), services.NewInvoiceService(db))

	due := time.Now().AddDate(0, 0, -10)
	inv := models.Invoice{UserID: user.ID, InvoiceNumber: "FAC-AUTO", ClientName: "ACME",
		AmountHT: 100, AmountTTC: 100, Status: "sent", DueDate: &due}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}

	req := authedRequest(t, user.ID, http.MethodPost, "/mock/auto-reminders", "")
	w := httptest.NewRecorder()
	h.AutoReminders(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("expected 1 reminder sent got %d", resp.Count)
	}
}

func TestNotificationsListAndRead(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "notifs@exemple.fr")
	other := seedUser(t, db, "autre@exemple.fr")
	h := NewNotificationHandler(db)

	notif := models.Notification{UserID: user.ID, Type: "urssaf_deadline",
		Title: "Échéance URSSAF", ScheduledAt: time.Now()}
	if err := db.Create(&notif).Error; err != nil {
		t.Fatalf("notif: %v", err)
	}

	req := authedRequest(t, user.ID, http.MethodGet, "/notifications", "")
	w := httptest.NewRecorder()
	h.List(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var notifs []models.Notification
	if err := json.Unmarshal(w.Body.Bytes(), &notifs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(notifs) != 1 || notifs[0].ReadAt != nil {
		t.Fatalf("unexpected list: %#v", notifs)
	}

	notifID := fmt.Sprint(notif.ID)

	// another user cannot mark it read
	req = authedRequest(t, other.ID, http.MethodPost, "/notifications/"+notifID+"/read", "")
	req.SetPathValue("id", notifID)
	w = httptest.NewRecorder()
	h.MarkRead(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}

	req = authedRequest(t, user.ID, http.MethodPost, "/notifications/"+notifID+"/read", "")
	req.SetPathValue("id", notifID)
	w = httptest.NewRecorder()
	h.MarkRead(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var got models.Notification
	if err := db.First(&got, notif.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.ReadAt == nil {
		t.Fatalf("read_at not stamped")
	}
}
