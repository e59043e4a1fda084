package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"toolpool-backend/internal/security"
)

type contextKey string

const claimsContextKey contextKey = "user_claims"

// ClaimsFromContext returns the authenticated claims, or nil on public
// routes.
func ClaimsFromContext(ctx context.Context) *security.UserClaims {
	claims, _ := ctx.Value(claimsContextKey).(*security.UserClaims)
	return claims
}

func writeAuthError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Authenticator validates the Bearer token and stuffs the claims into the
// request context.
type Authenticator struct {
	tokens security.TokenManager
}

func NewAuthenticator(tokens security.TokenManager) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Required rejects requests without a valid access token.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := a.parse(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims)))
	})
}

// Optional attaches claims when a valid token is present but lets anonymous
// requests through; the rate limiter uses this to key by user when it can.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, ok := a.parse(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims)))
	})
}

func (a *Authenticator) parse(w http.ResponseWriter, r *http.Request) (*security.UserClaims, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		writeAuthError(w, "authentication required", http.StatusUnauthorized)
		return nil, false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		writeAuthError(w, "invalid authorization header", http.StatusUnauthorized)
		return nil, false
	}

	claims, err := a.tokens.ValidateToken(parts[1])
	if err != nil {
		writeAuthError(w, "invalid or expired token", http.StatusUnauthorized)
		return nil, false
	}
	if claims.Type != security.TokenTypeAccess {
		writeAuthError(w, "wrong token type", http.StatusUnauthorized)
		return nil, false
	}
	return claims, true
}
