package middleware

import (
	"banking-api/internal/api/handler/dto"
	"banking-api/internal/pkg/token"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const claimsKey contextKey = "authClaims"

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	Parse(tokenString string) (*token.Claims, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// verified claims in the request context.
func AuthMiddleware(parser TokenParser, logger *slog.Logger) func(http.Handler) http.Handler {
	if parser == nil {
		panic("token parser cannot be nil")
	}
	logger = logger.With("component", "AuthMiddleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				logger.WarnContext(r.Context(), "Missing or malformed Authorization header")
				unauthorized(w, "No token, authorization denied")
				return
			}

			claims, err := parser.Parse(tokenString)
			if err != nil {
				logger.WarnContext(r.Context(), "Invalid token", slog.Any("error", err))
				unauthorized(w, "Token is not valid")
				return
			}

			logger.DebugContext(r.Context(), "Authenticated request", slog.Int64("customerID", claims.CustomerID))
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: dto.ErrorDetail{Message: message}})
}

func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// CustomerIDFromContext returns the authenticated customer, if any.
func CustomerIDFromContext(ctx context.Context) (int64, bool) {
	claims, ok := ctx.Value(claimsKey).(*token.Claims)
	if !ok || claims == nil {
		return 0, false
	}
	return claims.CustomerID, true
}
