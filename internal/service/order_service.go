package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"lunchline/internal/domain"
	"lunchline/internal/repository"

	"github.com/google/uuid"
)

const (
	// Pickup codes are 8 characters from a 36-symbol alphabet; collisions
	// are vanishingly rare, and the store's uniqueness check catches the
	// rest.
	orderCodeLength   = 8
	orderCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxCodeAttempts bounds collision retries before the request fails.
	maxCodeAttempts = 5
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyOrder    = errors.New("order contains no items")
	ErrTotalMismatch = errors.New("declared total does not match current prices")
	ErrInvalidStatus = errors.New("unknown order status")
)

// OrderLine is one requested product/quantity pair.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderInput is a customer's order submission. DeclaredTotal is the
// total the client computed from the menu it rendered; when present it is
// checked against a server-side recomputation and never trusted.
type PlaceOrderInput struct {
	CustomerName  string
	PhoneNumber   string
	Grade         *int
	ClassNum      *int
	Number        *int
	DeclaredTotal *float64
	Lines         []OrderLine
}

// OrderService defines the interface for the order acceptance workflow and
// staff order management.
type OrderService interface {
	// PlaceOrder validates and commits an order. The returned order is
	// the explicit handoff value for the confirmation step; there is no
	// ambient "last order" state.
	PlaceOrder(ctx context.Context, in PlaceOrderInput, now time.Time) (*domain.Order, error)
	GetByCode(ctx context.Context, code string) (*domain.Order, error)
	ListForDate(ctx context.Context, date time.Time, codeFilter string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository) OrderService {
	return &orderService{orders: orders, products: products}
}

// PlaceOrder runs the acceptance workflow: validate the submission, verify
// any client-declared total against current prices, generate a unique
// pickup code, and hand the lines to the store for the atomic commit. The
// store re-checks eligibility and stock at commit time, so a menu rendered
// before a cutoff or a stock change cannot oversell.
func (s *orderService) PlaceOrder(ctx context.Context, in PlaceOrderInput, now time.Time) (*domain.Order, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}

	items := make([]domain.OrderItem, 0, len(in.Lines))
	var expectedTotal float64
	for _, line := range in.Lines {
		if line.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
		}
		if line.Quantity == 0 {
			continue
		}

		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		expectedTotal += product.Price * float64(line.Quantity)

		items = append(items, domain.OrderItem{
			ID:        uuid.New(),
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	if in.DeclaredTotal != nil && math.Abs(*in.DeclaredTotal-expectedTotal) > 0.005 {
		return nil, ErrTotalMismatch
	}

	order := &domain.Order{
		ID:           uuid.New(),
		CustomerName: strings.TrimSpace(in.CustomerName),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Grade:        in.Grade,
		ClassNum:     in.ClassNum,
		Number:       in.Number,
		Status:       domain.OrderStatusPending,
		OrderDate:    domain.DateOf(now),
		CreatedAt:    now,
		Items:        items,
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateOrderCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate order code: %w", err)
		}

		exists, err := s.orders.CodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		order.Code = code
		err = s.orders.CreateOrder(ctx, order, now)
		if err == repository.ErrDuplicateOrderCode {
			// Lost a race for the code; try a fresh one.
			continue
		}
		if err != nil {
			return nil, err
		}

		return order, nil
	}

	return nil, fmt.Errorf("failed to allocate a unique order code after %d attempts", maxCodeAttempts)
}

func (s *orderService) GetByCode(ctx context.Context, code string) (*domain.Order, error) {
	return s.orders.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

func (s *orderService) ListForDate(ctx context.Context, date time.Time, codeFilter string) ([]*domain.Order, error) {
	return s.orders.ListByDate(ctx, date, strings.TrimSpace(codeFilter))
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	if !domain.ValidOrderStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.orders.UpdateStatus(ctx, id, status)
}

func (s *orderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.orders.Delete(ctx, id)
}

// generateOrderCode draws 8 characters uniformly from the code alphabet.
func generateOrderCode() (string, error) {
	var b strings.Builder
	for i := 0; i < orderCodeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(orderCodeAlphabet))))
		if err != nil {
			return "", err
		}
		b.WriteByte(orderCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
