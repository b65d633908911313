package server

import (
	"net/http"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pilotage/micro/internal/auth"
	"github.com/pilotage/micro/internal/handlers"
	"github.com/pilotage/micro/internal/httpx"
	"github.com/pilotage/micro/internal/middleware"
	"github.com/pilotage/micro/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, a *auth.Auth, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		// Lightweight DB check (SELECT 1) – ignore detailed errors in body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter

	// Auth endpoints (register/login are the only unauthenticated routes)
	ah := handlers.NewAuthHandler(db, a)
	mux.HandleFunc("POST /auth/register", ah.Register)
	mux.HandleFunc("POST /auth/login", ah.Login)
	mux.Handle("GET /auth/me", protect(a, ah.Me))

	// Tax profile
	ph := handlers.NewProfileHandler(db)
	mux.Handle("POST /profile", protect(a, ph.Create))
	mux.Handle("GET /profile", protect(a, ph.Get))
	mux.Handle("PUT /profile", protect(a, ph.Update))

	// Clients
	ch := handlers.NewClientHandler(db)
	mux.Handle("POST /clients", protect(a, ch.Create))
	mux.Handle("GET /clients", protect(a, ch.List))
	mux.Handle("GET /clients/{id}", protect(a, ch.Get))
	mux.Handle("PUT /clients/{id}", protect(a, ch.Update))
	mux.Handle("DELETE /clients/{id}", protect(a, ch.Delete))

	// Invoices
	invSvc := services.NewInvoiceService(db)
	ih := handlers.NewInvoiceHandler(db, invSvc)
	mux.Handle("POST /invoices", protect(a, ih.Create))
	mux.Handle("GET /invoices", protect(a, ih.List))
	mux.Handle("PUT /invoices/{id}/status", protect(a, ih.UpdateStatus))
	mux.Handle("GET /invoices/{id}/pdf", protect(a, ih.PDF))
	mux.Handle("POST /invoices/{id}/reminders", protect(a, ih.SendReminder))
	mux.Handle("GET /invoices/{id}/reminders", protect(a, ih.ListReminders))

	// Dashboard
	dh := handlers.NewDashboardHandler(services.NewDashboardService(db))
	mux.Handle("GET /dashboard", protect(a, dh.Get))

	// Notifications
	nh := handlers.NewNotificationHandler(db)
	mux.Handle("GET /notifications", protect(a, nh.List))
	mux.Handle("POST /notifications/{id}/read", protect(a, nh.MarkRead))

	// Mock/ops endpoints simulating background jobs on demand
	mh := handlers.NewMockHandler(services.NewObligationService(db), invSvc)
	mux.Handle("POST /mock/init-obligations", protect(a, mh.InitObligations))
	mux.Handle("POST /mock/schedule-notifications", protect(a, mh.ScheduleNotifications))
	mux.Handle("POST /mock/auto-reminders", protect(a, mh.AutoReminders))

	return middleware.CORS(middleware.RequestID(middleware.Recover(logger)(middleware.AccessLog(logger)(mux))))
}

// protect chains the token middleware with the auth requirement.
func protect(a *auth.Auth, h http.HandlerFunc) http.Handler {
	return a.Middleware(auth.RequireAuth(h))
}
