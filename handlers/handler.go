package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/LeylaVieira/merntasks-backend/logging"
	"github.com/LeylaVieira/merntasks-backend/middleware"
	"github.com/LeylaVieira/merntasks-backend/services"
)

type messageResponse struct {
	Msg string `json:"msg"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Msg: msg})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Msg: msg})
}

// principal returns the authenticated identity or answers 401. The auth
// middleware normally guarantees its presence; this covers misrouted
// registrations.
func principal(w http.ResponseWriter, r *http.Request) (middleware.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
	}
	return p, ok
}

// handleServiceError maps service errors onto the endpoint's status
// codes. Denial codes differ per surface (project reads answer 401,
// collaborator management 400, task actions 403), so the caller picks
// the code for ErrForbidden.
func handleServiceError(w http.ResponseWriter, err error, forbiddenStatus int) {
	switch {
	case errors.Is(err, services.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "Invalid ID")
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		writeError(w, forbiddenStatus, err.Error())
	case errors.Is(err, services.ErrSelfCollaboration),
		errors.Is(err, services.ErrAlreadyCollaborator),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logging.Logger.Errorf("Event ID: STORE_OPERATION_FAILED, Description: %v", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
	}
}
