package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lunchline/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrStaffNotFound      = errors.New("staff account not found")
	ErrStaffAlreadyExists = errors.New("staff account with this username already exists")
)

// StaffRepository defines the interface for staff account data access.
type StaffRepository interface {
	Create(ctx context.Context, account *domain.StaffAccount) error
	FindByUsername(ctx context.Context, username string) (*domain.StaffAccount, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type staffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new instance of StaffRepository
func NewStaffRepository(db *sql.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Create(ctx context.Context, account *domain.StaffAccount) error {
	query := `
		INSERT INTO staff_accounts (id, username, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		account.ID,
		account.Username,
		account.PasswordHash,
		account.Role,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrStaffAlreadyExists
		}
		return fmt.Errorf("failed to create staff account: %w", err)
	}

	return nil
}

func (r *staffRepository) FindByUsername(ctx context.Context, username string) (*domain.StaffAccount, error) {
	query := `
		SELECT id, username, password_hash, role, created_at, updated_at
		FROM staff_accounts
		WHERE username = $1
	`

	account := &domain.StaffAccount{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.Role,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to find staff account: %w", err)
	}

	return account, nil
}

func (r *staffRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE staff_accounts SET password_hash = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrStaffNotFound
	}

	return nil
}
