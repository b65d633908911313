package handlers

import (
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/pilotage/micro/internal/auth"
	"github.com/pilotage/micro/internal/httpx"
	"github.com/pilotage/micro/internal/models"
	"github.com/pilotage/micro/internal/validation"
)

// Default thresholds for 2025 (prestations de services / BNC).
const (
	defaultMicroThreshold = 77700.0
	defaultVATThreshold   = 36800.0
)

type ProfileHandler struct{ DB *gorm.DB }

func NewProfileHandler(db *gorm.DB) *ProfileHandler { return &ProfileHandler{DB: db} }

type profileRequest struct {
	ActivityType         string   `json:"activity_type"`
	URSSAFPeriodicity    string   `json:"urssaf_periodicity"`
	VATRegime            string   `json:"vat_regime"`
	MicroThreshold       float64  `json:"micro_threshold"`
	VATThreshold         float64  `json:"vat_threshold"`
	PreviousYearTurnover *float64 `json:"previous_year_turnover"`
}

func (req *profileRequest) validate() validation.Violations {
	v := make(validation.Violations)
	validation.OneOf("activity_type", req.ActivityType, []string{"BIC", "BNC"}, v)
	validation.OneOf("urssaf_periodicity", req.URSSAFPeriodicity, []string{"monthly", "quarterly"}, v)
	validation.OneOf("vat_regime", req.VATRegime, []string{"franchise", "simplified", "real"}, v)
	return v
}

func (req *profileRequest) applyDefaults() {
	if req.MicroThreshold == 0 {
		req.MicroThreshold = defaultMicroThreshold
	}
	if req.VATThreshold == 0 {
		req.VATThreshold = defaultVATThreshold
	}
}

// Create: POST /profile — one profile per user.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "Champs invalides", v)
		return
	}
	req.applyDefaults()

	var count int64
	if err := h.DB.Model(&models.TaxProfile{}).Where("user_id = ?", uid).Count(&count).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "Profil déjà créé", nil)
		return
	}

	profile := models.TaxProfile{
		UserID:               uid,
		ActivityType:         req.ActivityType,
		URSSAFPeriodicity:    req.URSSAFPeriodicity,
		VATRegime:            req.VATRegime,
		MicroThreshold:       req.MicroThreshold,
		VATThreshold:         req.VATThreshold,
		PreviousYearTurnover: req.PreviousYearTurnover,
	}
	if err := h.DB.Create(&profile).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	// First profile completes the onboarding.
	if err := h.DB.Model(&models.User{}).Where("id = ?", uid).Update("is_onboarded", true).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, profile)
}

// Get: GET /profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var profile models.TaxProfile
	if err := h.DB.Where("user_id = ?", uid).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Profil non trouvé", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

// Update: PUT /profile — full replace of all fields.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "Champs invalides", v)
		return
	}
	req.applyDefaults()

	res := h.DB.Model(&models.TaxProfile{}).Where("user_id = ?", uid).Updates(map[string]any{
		"activity_type":          req.ActivityType,
		"urssaf_periodicity":     req.URSSAFPeriodicity,
		"vat_regime":             req.VATRegime,
		"micro_threshold":        req.MicroThreshold,
		"vat_threshold":          req.VATThreshold,
		"previous_year_turnover": req.PreviousYearTurnover,
		"updated_at":             time.Now(),
	})
	if res.Error != nil {
		writeServiceError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "Profil non trouvé", nil)
		return
	}
	var profile models.TaxProfile
	if err := h.DB.Where("user_id = ?", uid).First(&profile).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}
