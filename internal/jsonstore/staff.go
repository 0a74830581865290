package jsonstore

import (
	"context"
	"time"

	"lunchline/internal/domain"
	"lunchline/internal/repository"

	"github.com/google/uuid"
)

type staffStore struct {
	store *Store
}

// Staff returns the staff account store backed by this file.
func (s *Store) Staff() repository.StaffRepository {
	return &staffStore{store: s}
}

func (s *staffStore) Create(ctx context.Context, account *domain.StaffAccount) error {
	return s.store.mutate(func(doc *document) error {
		for _, existing := range doc.StaffAccounts {
			if existing.Username == account.Username {
				return repository.ErrStaffAlreadyExists
			}
		}
		doc.StaffAccounts = append(doc.StaffAccounts, staffRecord{
			ID:           account.ID,
			Username:     account.Username,
			PasswordHash: account.PasswordHash,
			Role:         account.Role,
			CreatedAt:    account.CreatedAt,
			UpdatedAt:    account.UpdatedAt,
		})
		return nil
	})
}

func (s *staffStore) FindByUsername(ctx context.Context, username string) (*domain.StaffAccount, error) {
	var found *domain.StaffAccount
	err := s.store.view(func(doc *document) error {
		for _, existing := range doc.StaffAccounts {
			if existing.Username == username {
				found = &domain.StaffAccount{
					ID:           existing.ID,
					Username:     existing.Username,
					PasswordHash: existing.PasswordHash,
					Role:         existing.Role,
					CreatedAt:    existing.CreatedAt,
					UpdatedAt:    existing.UpdatedAt,
				}
				return nil
			}
		}
		return repository.ErrStaffNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *staffStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return s.store.mutate(func(doc *document) error {
		for i := range doc.StaffAccounts {
			if doc.StaffAccounts[i].ID == id {
				doc.StaffAccounts[i].PasswordHash = passwordHash
				doc.StaffAccounts[i].UpdatedAt = time.Now()
				return nil
			}
		}
		return repository.ErrStaffNotFound
	})
}
