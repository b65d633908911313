package handlers

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pilotage/micro/internal/auth"
	"github.com/pilotage/micro/internal/httpx"
	"github.com/pilotage/micro/internal/models"
	"github.com/pilotage/micro/internal/validation"
)

type AuthHandler struct {
	DB   *gorm.DB
	Auth *auth.Auth
}

func NewAuthHandler(db *gorm.DB, a *auth.Auth) *AuthHandler { return &AuthHandler{DB: db, Auth: a} }

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenEnvelope is the common register/login response.
type tokenEnvelope struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        models.User `json:"user"`
}

// Register: POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	v := make(validation.Violations)
	validation.Required("email", req.Email, v)
	validation.Email("email", req.Email, v)
	validation.Required("password", req.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "Champs invalides", v)
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "Email déjà utilisé", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	user := models.User{
		Email:     req.Email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	h.respondWithToken(w, http.StatusCreated, user)
}

// Login: POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var user models.User
	if err := h.DB.Where("email = ?", strings.TrimSpace(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusBadRequest, "Identifiants invalides", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Identifiants invalides", nil)
		return
	}
	h.respondWithToken(w, http.StatusOK, user)
}

// Me: GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "Utilisateur non trouvé", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user models.User) {
	token, err := h.Auth.CreateToken(user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, status, tokenEnvelope{AccessToken: token, TokenType: "bearer", User: user})
}
