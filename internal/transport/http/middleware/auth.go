package middleware

import (
	"net/http"
	"strings"

	"notify/internal/auth"
	"notify/internal/requestctx"
	"notify/internal/transport/http/api"
)

// Auth attaches the bearer token's account to the request context. Requests
// without a valid token pass through unauthenticated.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil || claims.AccountID == "" && !claims.HasScope(auth.ScopeInternal) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := requestctx.WithAccount(r.Context(), requestctx.Account{
				AccountID: claims.AccountID,
				Internal:  claims.HasScope(auth.ScopeInternal),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetAccount(r *http.Request) (requestctx.Account, bool) {
	return requestctx.GetAccount(r.Context())
}

// RequireAccount rejects requests that carry no account identity.
func RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := GetAccount(r)
		if !ok || account.AccountID == "" {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireInternal admits only service tokens carrying the internal scope.
func RequireInternal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := GetAccount(r)
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		if !account.Internal {
			api.Fail(w, http.StatusForbidden, "forbidden", "internal scope required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
