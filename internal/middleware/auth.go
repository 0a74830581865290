package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	StaffIDKey       contextKey = "staff_id"
	StaffUsernameKey contextKey = "staff_username"
	StaffRoleKey     contextKey = "staff_role"
)

// StaffAuthMiddleware validates the Bearer token on staff routes and puts
// the staff identity into the request context. Requests without a valid
// token never reach the handler.
func StaffAuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})

			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			if !token.Valid {
				RespondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				logger.Error("Failed to extract claims from token")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			staffID, ok := claims["staff_id"].(string)
			if !ok {
				logger.Error("Missing staff_id in token claims")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			username, _ := claims["username"].(string)

			role, ok := claims["role"].(string)
			if !ok {
				logger.Error("Missing role in token claims")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			ctx := context.WithValue(r.Context(), StaffIDKey, staffID)
			ctx = context.WithValue(ctx, StaffUsernameKey, username)
			ctx = context.WithValue(ctx, StaffRoleKey, role)

			logger.Debug("Staff authenticated",
				zap.String("staff_id", staffID),
				zap.String("username", username),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetStaffID extracts the staff ID from the request context
func GetStaffID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(StaffIDKey).(string)
	return id, ok
}

// GetStaffUsername extracts the staff username from the request context
func GetStaffUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(StaffUsernameKey).(string)
	return username, ok
}

// GetStaffRole extracts the staff role from the request context
func GetStaffRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(StaffRoleKey).(string)
	return role, ok
}
