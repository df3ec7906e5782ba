package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Cheertaboi/shop-microservices/internal/auth"
)

type ctxKey int

const (
	principalKey ctxKey = iota
	credentialKey
)

// TokenFrom extracts the raw credential from "Authorization: Bearer <t>" or,
// failing that, the "x-auth-token" header.
func TokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.Fields(h)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	return strings.TrimSpace(r.Header.Get("x-auth-token"))
}

// Authenticate rejects requests without a valid token and stores the
// principal and the raw credential on the request context.
func Authenticate(v auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := TokenFrom(r)
			if tok == "" {
				writeMessage(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}
			p, err := v.Verify(tok)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "Token is not valid")
				return
			}
			ctx := context.WithValue(r.Context(), principalKey, p)
			ctx = context.WithValue(ctx, credentialKey, tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}
		if !p.IsAdmin() {
			writeMessage(w, http.StatusForbidden, "Access denied, admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func PrincipalFrom(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	return p, ok
}

func CredentialFrom(ctx context.Context) string {
	s, _ := ctx.Value(credentialKey).(string)
	return s
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
