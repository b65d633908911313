package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pilotage/micro/internal/auth"
	"github.com/pilotage/micro/internal/httpx"
	"github.com/pilotage/micro/internal/models"
	pdfgen "github.com/pilotage/micro/internal/pdf"
	"github.com/pilotage/micro/internal/services"
	"github.com/pilotage/micro/internal/validation"
)

type InvoiceHandler struct {
	DB  *gorm.DB
	Svc *services.InvoiceService
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Svc: svc}
}

type invoiceRequest struct {
	ClientID      *uint      `json:"client_id"`
	ClientName    string     `json:"client_name"`
	ClientEmail   string     `json:"client_email"`
	ClientAddress string     `json:"client_address"`
	AmountHT      float64    `json:"amount_ht"`
	Description   string     `json:"description"`
	DueDate       *time.Time `json:"due_date"`
}

// Create: POST /invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var req invoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v := make(validation.Violations)
	validation.Required("client_name", req.ClientName, v)
	validation.PositiveFloat("amount_ht", req.AmountHT, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "Champs invalides", v)
		return
	}
	inv, err := h.Svc.Create(uid, services.InvoiceInput{
		ClientID:      req.ClientID,
		ClientName:    strings.TrimSpace(req.ClientName),
		ClientEmail:   strings.TrimSpace(req.ClientEmail),
		ClientAddress: req.ClientAddress,
		AmountHT:      req.AmountHT,
		Description:   req.Description,
		DueDate:       req.DueDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// List: GET /invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	invs, err := h.Svc.List(uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invs)
}

// UpdateStatus: PUT /invoices/{id}/status?status=
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	if err := h.Svc.UpdateStatus(id, uid, status); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Statut mis à jour"})
}

// SendReminder: POST /invoices/{id}/reminders
func (h *InvoiceHandler) SendReminder(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.Svc.SendReminder(id, uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// ListReminders: GET /invoices/{id}/reminders
func (h *InvoiceHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rems, err := h.Svc.ListReminders(id, uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rems)
}

// PDF: GET /invoices/{id}/pdf
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.Svc.Get(id, uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	var profile models.TaxProfile
	if err := h.DB.Where("user_id = ?", uid).First(&profile).Error; err != nil {
		writeServiceError(w, services.ErrProfileRequired)
		return
	}

	dueDate := ""
	if inv.DueDate != nil {
		dueDate = inv.DueDate.Format("02/01/2006")
	}
	data, err := pdfgen.InvoicePDF(pdfgen.InvoiceData{
		InvoiceNumber: inv.InvoiceNumber,
		Date:          inv.CreatedAt.Format("02/01/2006"),
		DueDate:       dueDate,
		Description:   inv.Description,
		AmountHT:      inv.AmountHT,
		VATAmount:     inv.VATAmount,
		AmountTTC:     inv.AmountTTC,
		VATFranchise:  profile.VATRegime == "franchise",
		IssuerName:    user.FirstName + " " + user.LastName,
		IssuerEmail:   user.Email,
		ClientName:    inv.ClientName,
		ClientEmail:   inv.ClientEmail,
		ClientAddress: inv.ClientAddress,
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "Échec de la génération du PDF", nil)
		return
	}
	filename := fmt.Sprintf("facture_%s_%s.pdf", inv.InvoiceNumber, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
