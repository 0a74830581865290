package transport

import (
	"errors"
	"net/http"

	"lunchline/internal/middleware"
	"lunchline/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LoginRequest represents the staff login payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the staff login response
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	Staff       StaffProfile `json:"staff"`
}

// ChangePasswordRequest represents the password change payload
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// StaffProfile represents staff account data safe to return
type StaffProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// StaffHandler handles HTTP requests for staff authentication
type StaffHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewStaffHandler creates a new StaffHandler
func NewStaffHandler(authService service.AuthService, logger *zap.Logger) *StaffHandler {
	return &StaffHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the staff auth routes
func (h *StaffHandler) RegisterRoutes(r chi.Router, staffAuth func(http.Handler) http.Handler) {
	r.Route("/api/staff", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(staffAuth)
			r.Post("/password", h.ChangePassword)
		})
	})
}

// Login handles staff authentication
func (h *StaffHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, account, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	response := LoginResponse{
		AccessToken: token,
		Staff: StaffProfile{
			ID:       account.ID.String(),
			Username: account.Username,
			Role:     account.Role,
		},
	}

	h.logger.Info("Staff logged in", zap.String("username", account.Username))
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// ChangePassword handles a staff password change. The current password must
// be verified again even though the request already carries a valid token.
func (h *StaffHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetStaffUsername(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.ChangePassword(r.Context(), username, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid current password")
			return
		}
		h.logger.Error("Password change failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to change password")
		return
	}

	h.logger.Info("Staff password changed", zap.String("username", username))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}
