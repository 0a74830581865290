package domain

import (
	"time"

	"github.com/google/uuid"
)

// StaffAccount is a cafeteria staff login. All staff share the same role for
// now; the column exists so finer roles can be added without a migration.
type StaffAccount struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
