package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform error envelope. Detail is the human-readable
// message surfaced to the caller.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Fields any    `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"detail":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, fields any) {
	JSON(w, status, ErrorResponse{Detail: msg, Fields: fields})
}
