package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LeylaVieira/merntasks-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMiddlewareRejectsUnauthenticatedRequests(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	// The inner handler must never run: unauthenticated requests are
	// rejected before any store access could happen.
	reached := false
	handler := JWTAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	for _, header := range []string{"", "Bearer not-a-token"} {
		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
	if reached {
		t.Fatal("handler ran for an unauthenticated request")
	}
}

func TestMiddlewareExposesPrincipal(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userID := primitive.NewObjectID()
	token, err := utils.GenerateToken(userID.Hex(), "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var got Principal
	handler := JWTAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			t.Fatal("principal missing from context")
		}
		got = principal
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.ID != userID || got.Email != "alice@example.com" || got.Name != "Alice" {
		t.Fatalf("unexpected principal: %+v", got)
	}
}
