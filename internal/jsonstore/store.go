// Package jsonstore is the flat-file backend. The whole dataset lives in one
// JSON document guarded by a single mutex; every mutation is applied to a
// copy of the document, persisted with a write-then-rename, and only then
// swapped in. A failed write therefore leaves no partial state, matching the
// transactional contract of the postgres backend.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"lunchline/internal/domain"

	"github.com/google/uuid"
)

type Store struct {
	mu   sync.Mutex
	path string
	doc  *document
}

type document struct {
	Products      []*domain.Product     `json:"products"`
	Orders        []*domain.Order       `json:"orders"`
	SalesRecords  []*domain.SalesRecord `json:"sales_records"`
	StaffAccounts []staffRecord         `json:"staff_accounts"`
}

// staffRecord mirrors domain.StaffAccount with the password hash included;
// the domain type hides it from JSON on purpose.
type staffRecord struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Open loads the store file, creating an empty store if it does not exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: &document{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if err := json.Unmarshal(raw, s.doc); err != nil {
		return nil, fmt.Errorf("failed to parse store file %s: %w", path, err)
	}

	return s, nil
}

// mutate runs fn against a copy of the document, persists the copy, and
// swaps it in on success. The caller must not hold s.mu.
func (s *Store) mutate(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working, err := s.doc.clone()
	if err != nil {
		return err
	}

	if err := fn(working); err != nil {
		return err
	}

	if err := s.persist(working); err != nil {
		return err
	}

	s.doc = working
	return nil
}

// view runs fn with read access to the live document.
func (s *Store) view(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.doc)
}

func (s *Store) persist(doc *document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	return nil
}

func (d *document) clone() (*document, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to clone store document: %w", err)
	}
	copied := &document{}
	if err := json.Unmarshal(raw, copied); err != nil {
		return nil, fmt.Errorf("failed to clone store document: %w", err)
	}
	return copied, nil
}
