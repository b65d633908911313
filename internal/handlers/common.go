package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pilotage/micro/internal/httpx"
	"github.com/pilotage/micro/internal/services"
)

// writeServiceError translates service sentinel errors into HTTP responses:
// NotFound→404, Conflict→409, business-rule violations→400.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrConflict):
		httpx.JSONError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, services.ErrProfileRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrAlreadyPaid),
		errors.Is(err, services.ErrClientHasInvoices):
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "Erreur interne", nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "JSON invalide", nil)
		return false
	}
	return true
}

// pathID parses the {id} segment of the route pattern.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "Identifiant invalide", nil)
		return 0, false
	}
	return uint(id), true
}
