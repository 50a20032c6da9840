package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"homeguard/backend/app/dto"
	"homeguard/backend/app/enforce"
	"homeguard/backend/app/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses. Remote failures come
// back verbatim so the UI can show what the router said.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, enforce.ErrTransport), errors.Is(err, enforce.ErrRemoteState):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, dto.ErrorResponse{Success: false, Error: err.Error()})
}
