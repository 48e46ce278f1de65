package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/LeylaVieira/merntasks-backend/logging"
	"github.com/LeylaVieira/merntasks-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID    primitive.ObjectID
	Name  string
	Email string
}

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFromContext returns the authenticated principal set by
// JWTAuthMiddleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalKey).(Principal)
	return principal, ok
}

// WithPrincipal attaches a principal to a context. Used by tests and the
// websocket handshake, which authenticates outside this middleware.
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// JWTAuthMiddleware rejects requests without a valid bearer token before
// any handler or store access runs, and exposes the authenticated
// principal through the request context.
func JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
			http.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateToken(tokenStr)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token for request to %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_BAD_SUBJECT, Description: Token carries a malformed user id for request to %s %s", r.Method, r.URL.Path)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		principal := Principal{ID: userID, Name: claims.Name, Email: claims.Email}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}
