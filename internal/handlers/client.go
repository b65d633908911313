package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/pilotage/micro/internal/auth"
	"github.com/pilotage/micro/internal/httpx"
	"github.com/pilotage/micro/internal/models"
	"github.com/pilotage/micro/internal/validation"
)

type ClientHandler struct{ DB *gorm.DB }

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

type clientRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	SIRET      string `json:"siret"`
	VATNumber  string `json:"vat_number"`
}

func (req *clientRequest) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validation.Required("email", req.Email, v)
	validation.Email("email", req.Email, v)
	return v
}

// withTotals fills the derived invoice aggregates. Computed on read, never
// stored, so they cannot go stale.
func (h *ClientHandler) withTotals(c *models.Client) error {
	type agg struct {
		Count int64
		Sum   float64
	}
	var a agg
	err := h.DB.Model(&models.Invoice{}).
		Where("client_id = ? AND user_id = ?", c.ID, c.UserID).
		Select("COUNT(*) as count, COALESCE(SUM(amount_ttc), 0) as sum").
		Scan(&a).Error
	if err != nil {
		return err
	}
	c.TotalInvoices = a.Count
	c.TotalAmount = a.Sum
	return nil
}

// emailTaken reports whether another client of the same user already uses the
// email. excludeID skips the client being updated.
func (h *ClientHandler) emailTaken(userID uint, email string, excludeID uint) (bool, error) {
	q := h.DB.Model(&models.Client{}).Where("user_id = ? AND email = ?", userID, email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List: GET /clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var clients []models.Client
	if err := h.DB.Where("user_id = ?", uid).Order("name").Find(&clients).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	for i := range clients {
		if err := h.withTotals(&clients[i]); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, clients)
}

// Create: POST /clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "Champs invalides", v)
		return
	}
	taken, err := h.emailTaken(uid, req.Email, 0)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if taken {
		httpx.JSONError(w, http.StatusConflict, "Un client avec cet email existe déjà", nil)
		return
	}
	client := models.Client{
		UserID:     uid,
		Name:       strings.TrimSpace(req.Name),
		Email:      req.Email,
		Phone:      req.Phone,
		Company:    req.Company,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		SIRET:      req.SIRET,
		VATNumber:  req.VATNumber,
	}
	if err := h.DB.Create(&client).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

// Get: GET /clients/{id}
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var client models.Client
	if err := h.DB.Where("id = ? AND user_id = ?", id, uid).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Client non trouvé", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	if err := h.withTotals(&client); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Update: PUT /clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var client models.Client
	if err := h.DB.Where("id = ? AND user_id = ?", id, uid).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Client non trouvé", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "Champs invalides", v)
		return
	}
	taken, err := h.emailTaken(uid, req.Email, client.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if taken {
		httpx.JSONError(w, http.StatusConflict, "Un client avec cet email existe déjà", nil)
		return
	}
	client.Name = strings.TrimSpace(req.Name)
	client.Email = req.Email
	client.Phone = req.Phone
	client.Company = req.Company
	client.Address = req.Address
	client.City = req.City
	client.PostalCode = req.PostalCode
	client.Country = req.Country
	client.SIRET = req.SIRET
	client.VATNumber = req.VATNumber
	if err := h.DB.Save(&client).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Delete: DELETE /clients/{id} — refused while invoices reference the client.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var client models.Client
	if err := h.DB.Where("id = ? AND user_id = ?", id, uid).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Client non trouvé", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	var linked int64
	if err := h.DB.Model(&models.Invoice{}).Where("client_id = ?", client.ID).Count(&linked).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	if linked > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "Client lié à des factures existantes", nil)
		return
	}
	if err := h.DB.Delete(&client).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Client supprimé"})
}
