package handlers

import (
	"net/http"

	"github.com/pilotage/micro/internal/auth"
	"github.com/pilotage/micro/internal/httpx"
	"github.com/pilotage/micro/internal/services"
)

type DashboardHandler struct{ Svc *services.DashboardService }

func NewDashboardHandler(svc *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Svc: svc}
}

// Get: GET /dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	dash, err := h.Svc.Compute(uid)
	if err != nil {
		if err == services.ErrNotFound {
			httpx.JSONError(w, http.StatusNotFound, "Profil non trouvé", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dash)
}
