package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// RoleStaff is the only role issued today; the guard still checks it so a
// token minted for anything else never reaches staff endpoints.
const RoleStaff = "staff"

// RequireStaff ensures the authenticated principal carries the staff role.
// It must run after StaffAuthMiddleware.
func RequireStaff(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetStaffRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if role != RoleStaff {
				logger.Warn("Non-staff principal attempted a staff endpoint",
					zap.String("role", role),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
