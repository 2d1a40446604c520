package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"
	"github.com/TruyenGau/sosialNetwork-backend/pkg/logging"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps domain sentinels onto HTTP statuses. Anything unmapped is a
// 500 with a generic body so internals never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidConversationID):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
		msg = err.Error()
	case errors.Is(err, domain.ErrPermissionDenied):
		status = http.StatusForbidden
		msg = err.Error()
	case errors.Is(err, domain.ErrConversationNotFound),
		errors.Is(err, domain.ErrMessageNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	default:
		logging.FromContext(r.Context()).ErrorContext(r.Context(),
			"handler - unexpected error", logging.Err(err))
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// userMessage is the connection-facing rendering of an error: domain errors
// read as-is, everything else collapses to a generic message.
func userMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrValidation,
		domain.ErrPermissionDenied,
		domain.ErrConversationNotFound,
		domain.ErrMessageNotFound,
		domain.ErrUserNotFound,
		domain.ErrInvalidConversationID,
	} {
		if errors.Is(err, sentinel) {
			return err.Error()
		}
	}
	return "internal error"
}

func decode(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
