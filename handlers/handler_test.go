package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LeylaVieira/merntasks-backend/services"
)

// Each surface maps denials and absences onto its own status codes;
// NotFound always wins over Forbidden because the permission check never
// runs for an absent entity.
func TestHandleServiceErrorMapping(t *testing.T) {
	tests := []struct {
		err             error
		forbiddenStatus int
		want            int
	}{
		{services.ErrInvalidID, http.StatusUnauthorized, http.StatusBadRequest},
		{services.ErrProjectNotFound, http.StatusUnauthorized, http.StatusNotFound},
		{services.ErrTaskNotFound, http.StatusForbidden, http.StatusNotFound},
		{services.ErrUserNotFound, http.StatusBadRequest, http.StatusNotFound},
		{services.ErrForbidden, http.StatusUnauthorized, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden, http.StatusForbidden},
		{services.ErrForbidden, http.StatusBadRequest, http.StatusBadRequest},
		{services.ErrSelfCollaboration, http.StatusBadRequest, http.StatusBadRequest},
		{services.ErrAlreadyCollaborator, http.StatusBadRequest, http.StatusBadRequest},
		{services.ErrInvalidPriority, http.StatusForbidden, http.StatusBadRequest},
		{services.ErrWeakPassword, http.StatusForbidden, http.StatusBadRequest},
		{fmt.Errorf("mongo exploded"), http.StatusForbidden, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		rec := httptest.NewRecorder()
		handleServiceError(rec, tc.err, tc.forbiddenStatus)
		if rec.Code != tc.want {
			t.Errorf("%v (forbidden=%d): got %d, want %d", tc.err, tc.forbiddenStatus, rec.Code, tc.want)
		}
	}
}

// An unauthenticated request to a gated handler is answered before the
// handler touches any service.
func TestPrincipalRequired(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()

	if _, ok := principal(rec, req); ok {
		t.Fatal("request without a principal should not pass")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
