package handler

import (
	"encoding/json"
	"net/http"

	"github.com/thanawat-r/account-api/internal/payload"
)

func respond(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload.Envelope{
		Data:    data,
		Message: message,
		Status:  status,
	})
}

func respondOK(w http.ResponseWriter, data any) {
	respond(w, http.StatusOK, "OK", data)
}

func respondConflict(w http.ResponseWriter) {
	respond(w, http.StatusConflict, "Conflict", nil)
}

func respondForbidden(w http.ResponseWriter) {
	respond(w, http.StatusForbidden, "Forbidden", nil)
}

func respondNotFound(w http.ResponseWriter) {
	respond(w, http.StatusNotFound, "Not Found", nil)
}

func respondBadRequest(w http.ResponseWriter) {
	respond(w, http.StatusBadRequest, "Bad Request", nil)
}
