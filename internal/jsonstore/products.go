package jsonstore

import (
	"context"

	"lunchline/internal/domain"
	"lunchline/internal/repository"

	"github.com/google/uuid"
)

type productStore struct {
	store *Store
}

// Products returns the catalog store backed by this file.
func (s *Store) Products() repository.ProductRepository {
	return &productStore{store: s}
}

func (p *productStore) Create(ctx context.Context, product *domain.Product) error {
	return p.store.mutate(func(doc *document) error {
		copied := *product
		doc.Products = append(doc.Products, &copied)
		return nil
	})
}

func (p *productStore) Update(ctx context.Context, product *domain.Product) error {
	return p.store.mutate(func(doc *document) error {
		for i, existing := range doc.Products {
			if existing.ID == product.ID {
				copied := *product
				doc.Products[i] = &copied
				return nil
			}
		}
		return repository.ErrProductNotFound
	})
}

func (p *productStore) Delete(ctx context.Context, id uuid.UUID) error {
	return p.store.mutate(func(doc *document) error {
		idx := -1
		for i, existing := range doc.Products {
			if existing.ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return repository.ErrProductNotFound
		}

		// Historical orders and sales records keep the product alive.
		for _, order := range doc.Orders {
			for _, item := range order.Items {
				if item.ProductID == id {
					return repository.ErrProductInUse
				}
			}
		}
		for _, record := range doc.SalesRecords {
			if record.ProductID == id {
				return repository.ErrProductInUse
			}
		}

		doc.Products = append(doc.Products[:idx], doc.Products[idx+1:]...)
		return nil
	})
}

func (p *productStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var found *domain.Product
	err := p.store.view(func(doc *document) error {
		for _, existing := range doc.Products {
			if existing.ID == id {
				copied := *existing
				found = &copied
				return nil
			}
		}
		return repository.ErrProductNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (p *productStore) List(ctx context.Context) ([]*domain.Product, error) {
	products := []*domain.Product{}
	err := p.store.view(func(doc *document) error {
		for _, existing := range doc.Products {
			copied := *existing
			products = append(products, &copied)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (p *productStore) SetStock(ctx context.Context, id uuid.UUID, stock int) error {
	return p.store.mutate(func(doc *document) error {
		for _, existing := range doc.Products {
			if existing.ID == id {
				existing.Stock = stock
				return nil
			}
		}
		return repository.ErrProductNotFound
	})
}
