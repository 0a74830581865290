package jsonstore

import (
	"context"
	"strings"
	"time"

	"lunchline/internal/domain"
	"lunchline/internal/repository"

	"github.com/google/uuid"
)

type orderStore struct {
	store *Store
}

// Orders returns the order store backed by this file.
func (s *Store) Orders() repository.OrderRepository {
	return &orderStore{store: s}
}

// CreateOrder validates and commits an order under the store lock. The
// eligibility and stock checks, stock decrements, and the append of the
// order all happen inside one mutate call, so a rejected line or a failed
// file write leaves nothing behind.
func (o *orderStore) CreateOrder(ctx context.Context, order *domain.Order, now time.Time) error {
	return o.store.mutate(func(doc *document) error {
		for _, existing := range doc.Orders {
			if existing.Code == order.Code {
				return repository.ErrDuplicateOrderCode
			}
		}

		var total float64
		for i := range order.Items {
			item := &order.Items[i]

			product := findProduct(doc, item.ProductID)
			if product == nil {
				return repository.ErrProductNotFound
			}
			if !product.OrderableAt(now) || product.Stock < item.Quantity {
				return repository.ErrInsufficientStock
			}

			product.Stock -= item.Quantity
			item.OrderID = order.ID
			item.ProductName = product.Name
			item.UnitPrice = product.Price
			total += product.Price * float64(item.Quantity)
		}

		order.TotalPrice = total
		order.OrderDate = domain.DateOf(order.OrderDate)

		copied := *order
		copied.Items = append([]domain.OrderItem(nil), order.Items...)
		doc.Orders = append(doc.Orders, &copied)
		return nil
	})
}

func (o *orderStore) CodeExists(ctx context.Context, code string) (bool, error) {
	exists := false
	err := o.store.view(func(doc *document) error {
		for _, existing := range doc.Orders {
			if existing.Code == code {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (o *orderStore) FindByCode(ctx context.Context, code string) (*domain.Order, error) {
	return o.findOne(func(order *domain.Order) bool { return order.Code == code })
}

func (o *orderStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return o.findOne(func(order *domain.Order) bool { return order.ID == id })
}

func (o *orderStore) findOne(match func(*domain.Order) bool) (*domain.Order, error) {
	var found *domain.Order
	err := o.store.view(func(doc *document) error {
		for _, existing := range doc.Orders {
			if match(existing) {
				found = copyOrder(existing)
				return nil
			}
		}
		return repository.ErrOrderNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (o *orderStore) ListByDate(ctx context.Context, date time.Time, codeFilter string) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	err := o.store.view(func(doc *document) error {
		for _, existing := range doc.Orders {
			if !domain.SameDay(existing.OrderDate, date) {
				continue
			}
			if codeFilter != "" && !strings.Contains(strings.ToUpper(existing.Code), strings.ToUpper(codeFilter)) {
				continue
			}
			orders = append(orders, copyOrder(existing))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (o *orderStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	return o.store.mutate(func(doc *document) error {
		for _, existing := range doc.Orders {
			if existing.ID == id {
				existing.Status = status
				return nil
			}
		}
		return repository.ErrOrderNotFound
	})
}

// Delete removes an order together with its items; items live inline in the
// order record, so the cascade is the removal itself.
func (o *orderStore) Delete(ctx context.Context, id uuid.UUID) error {
	return o.store.mutate(func(doc *document) error {
		for i, existing := range doc.Orders {
			if existing.ID == id {
				doc.Orders = append(doc.Orders[:i], doc.Orders[i+1:]...)
				return nil
			}
		}
		return repository.ErrOrderNotFound
	})
}

func (o *orderStore) SummaryForDate(ctx context.Context, date time.Time) (*domain.DailySummary, error) {
	summary := &domain.DailySummary{Date: domain.DateOf(date)}
	err := o.store.view(func(doc *document) error {
		for _, existing := range doc.Orders {
			if domain.SameDay(existing.OrderDate, date) {
				summary.OrderCount++
				summary.TotalSales += existing.TotalPrice
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func findProduct(doc *document, id uuid.UUID) *domain.Product {
	for _, product := range doc.Products {
		if product.ID == id {
			return product
		}
	}
	return nil
}

func copyOrder(order *domain.Order) *domain.Order {
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	return &copied
}
