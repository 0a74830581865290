package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lunchline/internal/domain"
	"lunchline/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// AccessTokenExpiration is deliberately short; there is no refresh
	// flow, staff simply log in again.
	AccessTokenExpiration = 8 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// StaffClaims represents the JWT claims issued to staff
type StaffClaims struct {
	StaffID  string `json:"staff_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService defines the interface for staff authentication. Every staff
// endpoint rejects unauthenticated requests before any core logic runs.
type AuthService interface {
	Login(ctx context.Context, username, password string) (token string, account *domain.StaffAccount, err error)
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error
	ValidateToken(tokenString string) (*StaffClaims, error)
}

type authService struct {
	staff     repository.StaffRepository
	jwtSecret string
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(staff repository.StaffRepository, jwtSecret string) AuthService {
	return &authService{staff: staff, jwtSecret: jwtSecret}
}

// Login verifies the password and issues a signed access token.
func (s *authService) Login(ctx context.Context, username, password string) (string, *domain.StaffAccount, error) {
	account, err := s.staff.FindByUsername(ctx, username)
	if err != nil {
		if err == repository.ErrStaffNotFound {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find staff account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	expirationTime := time.Now().Add(AccessTokenExpiration)
	claims := &StaffClaims{
		StaffID:  account.ID.String(),
		Username: account.Username,
		Role:     account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, account, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *authService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	account, err := s.staff.FindByUsername(ctx, username)
	if err != nil {
		if err == repository.ErrStaffNotFound {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to find staff account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.staff.UpdatePassword(ctx, account.ID, string(hashed)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// ValidateToken validates a JWT token and returns the staff claims
func (s *authService) ValidateToken(tokenString string) (*StaffClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*StaffClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
