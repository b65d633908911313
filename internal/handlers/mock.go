package handlers

import (
	"fmt"
	"net/http"

	"github.com/pilotage/micro/internal/auth"
	"github.com/pilotage/micro/internal/httpx"
	"github.com/pilotage/micro/internal/services"
)

// MockHandler exposes the background jobs as on-demand endpoints. The same
// logic runs from the cron runner; these routes exist so a client (or a test)
// can trigger a pass synchronously.
type MockHandler struct {
	Obligations *services.ObligationService
	Invoices    *services.InvoiceService
}

func NewMockHandler(obl *services.ObligationService, inv *services.InvoiceService) *MockHandler {
	return &MockHandler{Obligations: obl, Invoices: inv}
}

// InitObligations: POST /mock/init-obligations
func (h *MockHandler) InitObligations(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	n, err := h.Obligations.Regenerate(uid)
	if err != nil {
		if err == services.ErrNotFound {
			httpx.JSONError(w, http.StatusNotFound, "Profil non trouvé", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("%d obligations créées", n)})
}

// ScheduleNotifications: POST /mock/schedule-notifications
func (h *MockHandler) ScheduleNotifications(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	n, err := h.Obligations.ScheduleNotifications(uid)
	if err != nil {
		if err == services.ErrNotFound {
			httpx.JSONError(w, http.StatusNotFound, "Profil non trouvé", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("%d notifications programmées", n)})
}

// AutoReminders: POST /mock/auto-reminders
func (h *MockHandler) AutoReminders(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	n, err := h.Invoices.ProcessAutoReminders(uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": fmt.Sprintf("%d relances envoyées", n), "count": n})
}
