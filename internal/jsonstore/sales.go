package jsonstore

import (
	"context"
	"sort"

	"lunchline/internal/domain"
	"lunchline/internal/repository"

	"github.com/google/uuid"
)

type salesStore struct {
	store *Store
}

// Sales returns the sales ledger backed by this file.
func (s *Store) Sales() repository.SalesRepository {
	return &salesStore{store: s}
}

func (s *salesStore) Upsert(ctx context.Context, record *domain.SalesRecord) error {
	return s.store.mutate(func(doc *document) error {
		if findProduct(doc, record.ProductID) == nil {
			return repository.ErrProductNotFound
		}

		day := domain.DateOf(record.SaleDate)
		for _, existing := range doc.SalesRecords {
			if existing.ProductID == record.ProductID && domain.SameDay(existing.SaleDate, day) {
				existing.QuantitySold = record.QuantitySold
				return nil
			}
		}

		copied := *record
		copied.SaleDate = day
		doc.SalesRecords = append(doc.SalesRecords, &copied)
		return nil
	})
}

func (s *salesStore) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.SalesRecord, error) {
	records := []*domain.SalesRecord{}
	err := s.store.view(func(doc *document) error {
		for _, existing := range doc.SalesRecords {
			if existing.ProductID == productID {
				copied := *existing
				records = append(records, &copied)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].SaleDate.Before(records[j].SaleDate)
	})

	return records, nil
}

func (s *salesStore) ListRecent(ctx context.Context, limit int) ([]*domain.SalesRecord, error) {
	records := []*domain.SalesRecord{}
	err := s.store.view(func(doc *document) error {
		for _, existing := range doc.SalesRecords {
			copied := *existing
			records = append(records, &copied)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].SaleDate.After(records[j].SaleDate)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}
