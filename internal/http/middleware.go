package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/Shray90/YalaCarves-sub001/internal/service"
)

type contextKey string

const claimsContextKey = contextKey("claims")

// AuthMiddleware verifies the Bearer JWT and attaches its claims to the
// request context.
func AuthMiddleware(auth service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "Authorization header missing")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid Authorization header format")
				return
			}

			claims, err := auth.ParseToken(parts[1])
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly rejects requests whose token does not carry the admin flag.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil || !claims.IsAdmin {
			respondError(w, http.StatusForbidden, "forbidden", "admins only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFromContext(ctx context.Context) *service.Claims {
	if claims, ok := ctx.Value(claimsContextKey).(*service.Claims); ok {
		return claims
	}
	return nil
}

func getUserIDFromContext(ctx context.Context) int64 {
	if claims := claimsFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return 0
}
