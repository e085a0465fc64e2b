package middleware

import (
	"context"
	"net/http"

	"petcare-inventory-api/internal/auth"
	"petcare-inventory-api/pkg/apierror"

	"go.uber.org/zap"
)

// ClaimsKey is the context key for validated token claims.
const ClaimsKey contextKey = "claims"

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Validator *auth.Validator
	Logger    *zap.Logger
}

// NewAuthMiddleware requires a valid bearer token and stores its claims
// in the request context.
func NewAuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, apierror.Unauthorized("Authentication required. Use a Bearer token."))
				return
			}

			claims, err := cfg.Validator.Validate(token)
			if err != nil {
				logger.Debug("rejected bearer token",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err))
				writeError(w, apierror.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose claims lack role. It must run after
// the auth middleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				writeError(w, apierror.Unauthorized(""))
				return
			}
			if !claims.HasRole(role) {
				writeError(w, apierror.Forbidden(role+" role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}

// GetClaimsFromContext retrieves token claims from request context.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
