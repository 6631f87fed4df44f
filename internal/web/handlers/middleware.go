package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/omnarkhede/volunteerhub/pkg/core/model"
	"github.com/omnarkhede/volunteerhub/pkg/identity"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// userContextKey stores the authenticated user in request context.
const userContextKey contextKey = "user"

// AuthMiddleware requires a valid identity-provider bearer token and puts
// the signed-in user into the request context.
func AuthMiddleware(verifier *identity.Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "sign in required")
				return
			}

			user, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("Token verification failed", zap.Error(err))
				writeError(w, http.StatusUnauthorized, "sign in required")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware requires the authenticated user to be on the admin
// allow-list. Must run after AuthMiddleware.
func AdminMiddleware(verifier *identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !verifier.IsAdmin(user) {
				writeError(w, http.StatusForbidden, "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext extracts the authenticated user from request context.
func UserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userContextKey).(model.User)
	return user, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
