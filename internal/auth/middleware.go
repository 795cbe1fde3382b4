package auth

import (
	"net/http"
	"strings"

	"github.com/appetiteclub/apt"
)

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// StaffGate returns middleware that rejects requests without a valid staff
// session token.
func StaffGate(store *TokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				apt.RespondError(w, http.StatusUnauthorized, "Missing credentials")
				return
			}

			if _, err := store.Validate(token); err != nil {
				apt.RespondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
