package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Shray90/YalaCarves-sub001/internal/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError converts service-layer errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   validationErr.Message,
			Code:    "validation_error",
			Details: validationErr.Field,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, service.ErrIllegalTransition):
		respondError(w, http.StatusBadRequest, "illegal_transition", err.Error())
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrNotCancellable):
		respondError(w, http.StatusConflict, "not_cancellable", err.Error())
	case errors.Is(err, service.ErrTransitionConflict):
		respondError(w, http.StatusConflict, "status_conflict", err.Error())
	case errors.Is(err, service.ErrInsufficientStock):
		respondError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		respondError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, service.ErrAccountDisabled):
		respondError(w, http.StatusForbidden, "account_disabled", err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
