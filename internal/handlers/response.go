package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"companion-backend/internal/models"
	"companion-backend/internal/services"
)

const exhaustedMessage = "Model not found on Google Generative Language API."

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(message, details string) models.ErrorResponse {
	return models.ErrorResponse{Error: message, Details: details}
}

// handleServiceError maps relay failures onto the HTTP contract.
func handleServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *services.ValidationError
		backendErr    *services.BackendError
		transportErr  *services.TransportError
		exhaustedErr  *services.ExhaustedError
		busyErr       *services.BusyError
		malformedErr  *services.MalformedReplyError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResp(validationErr.Message, ""))
	case errors.As(err, &backendErr):
		writeJSON(w, backendErr.StatusCode, models.BackendErrorResponse{Error: "API Error", Details: backendErr.Body})
	case errors.As(err, &transportErr):
		writeJSON(w, http.StatusBadGateway, errorResp("Upstream unreachable", transportErr.Err.Error()))
	case errors.As(err, &exhaustedErr):
		writeJSON(w, http.StatusNotFound, errorResp(exhaustedMessage, ""))
	case errors.As(err, &busyErr):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("Assistant is busy, please try again", ""))
	case errors.As(err, &malformedErr):
		writeJSON(w, http.StatusBadGateway, errorResp("Invalid response from backend", malformedErr.Err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("An unexpected error occurred", ""))
	}
}
