package middleware

import (
	"context"
	"net/http"

	"github.com/cravencooling/fsm/internal/auth"
	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	UserContextKey   contextKey = "user"
	PortalContextKey contextKey = "portal"
)

// AuthMiddleware provides JWT authentication middleware for staff and
// customer portal tokens.
type AuthMiddleware struct {
	authService *auth.Service
	users       db.UserCollection
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service, users db.UserCollection) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		users:       users,
	}
}

// RequireStaff validates a staff bearer token and loads the user record
// into the request context. The user is re-fetched on every request, so a
// deleted user is rejected even while their token is unexpired.
func (m *AuthMiddleware) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		token, err := m.authService.ExtractTokenFromHeader(authHeader)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		m.authenticateStaff(w, r, next, token)
	})
}

// RequireStaffToken validates a staff token passed as a ?token= query
// parameter. Browser-initiated downloads (window.open on a PDF link)
// cannot set an Authorization header.
func (m *AuthMiddleware) RequireStaffToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}

		m.authenticateStaff(w, r, next, token)
	})
}

func (m *AuthMiddleware) authenticateStaff(w http.ResponseWriter, r *http.Request, next http.Handler, token string) {
	claims, err := m.authService.ValidateToken(token)
	if err != nil {
		if err == auth.ErrExpiredToken {
			http.Error(w, "Token expired", http.StatusUnauthorized)
			return
		}
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	user, err := m.users.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	ctx := context.WithValue(r.Context(), UserContextKey, user)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// RequirePortal validates a customer portal bearer token. Portal tokens
// are checked by signature and type only; there is no live lookup, so
// revoking access does not invalidate tokens already issued.
func (m *AuthMiddleware) RequirePortal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		token, err := m.authService.ExtractTokenFromHeader(authHeader)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		claims, err := m.authService.ValidatePortalToken(token)
		if err != nil {
			if err == auth.ErrExpiredToken {
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}
			http.Error(w, "Invalid portal token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), PortalContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext extracts the authenticated staff user from the
// request context.
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok
}

// GetPortalFromContext extracts portal claims from the request context.
func GetPortalFromContext(ctx context.Context) (*models.PortalClaims, bool) {
	claims, ok := ctx.Value(PortalContextKey).(*models.PortalClaims)
	return claims, ok
}
