package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/wishlist/internal/auth"
)

// TokenHeader carries the access token on authenticated requests.
const TokenHeader = "X-Access-Token"

// TokenVerifier resolves an access token to the user it was issued to.
type TokenVerifier interface {
	VerifyAccess(raw string) (int64, error)
}

// RequireToken validates the access token header and populates AuthContext.
// A missing token is 403, an invalid or expired one 401.
func RequireToken(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(TokenHeader)
			if raw == "" {
				writeError(w, http.StatusForbidden, "no token provided")
				return
			}

			userID, err := v.VerifyAccess(raw)
			if err != nil || userID == 0 {
				writeError(w, http.StatusUnauthorized, "failed to authenticate token")
				return
			}

			ctx := auth.WithAuth(r.Context(), auth.AuthContext{UserID: userID})
			inner := r.WithContext(ctx)
			next.ServeHTTP(w, inner)
			// Surface the nested mux's pattern to outer middleware.
			r.Pattern = inner.Pattern
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
