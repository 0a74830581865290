package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lunchline/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func seedProduct(t *testing.T, name string, price float64, stock int, cutoff *domain.TimeOfDay, showDate time.Time) *domain.Product {
	t.Helper()

	now := time.Now()
	product := &domain.Product{
		ID:         uuid.New(),
		Name:       name,
		Category:   "lunch",
		Price:      price,
		Stock:      stock,
		CutoffTime: cutoff,
		ShowDate:   domain.DateOf(showDate),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	repo := NewProductRepository(testDB)
	if err := repo.Create(context.Background(), product); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	return product
}

func newTestOrder(code string, items ...domain.OrderItem) *domain.Order {
	now := time.Now()
	return &domain.Order{
		ID:           uuid.New(),
		Code:         code,
		CustomerName: "Alex Kim",
		Status:       domain.OrderStatusPending,
		OrderDate:    domain.DateOf(now),
		CreatedAt:    now,
		Items:        items,
	}
}

func currentStock(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	var stock int
	if err := testDB.QueryRow(`SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

func TestCreateOrder_CommitsAndDecrementsStock(t *testing.T) {
	truncateAll(t)
	repo := NewOrderRepository(testDB)
	ctx := context.Background()
	now := time.Now()

	rice := seedProduct(t, "Fried Rice", 5.50, 10, nil, now)
	soup := seedProduct(t, "Miso Soup", 2.25, 4, nil, now)

	order := newTestOrder("AAAA1111",
		domain.OrderItem{ID: uuid.New(), ProductID: rice.ID, Quantity: 2},
		domain.OrderItem{ID: uuid.New(), ProductID: soup.ID, Quantity: 1},
	)

	if err := repo.CreateOrder(ctx, order, now); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if got, want := order.TotalPrice, 2*5.50+2.25; got != want {
		t.Errorf("total = %v, want %v", got, want)
	}
	if got := currentStock(t, rice.ID); got != 8 {
		t.Errorf("rice stock = %d, want 8", got)
	}
	if got := currentStock(t, soup.ID); got != 3 {
		t.Errorf("soup stock = %d, want 3", got)
	}

	found, err := repo.FindByCode(ctx, "AAAA1111")
	if err != nil {
		t.Fatalf("FindByCode failed: %v", err)
	}
	if len(found.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(found.Items))
	}
	for _, item := range found.Items {
		if item.ProductName == "" || item.UnitPrice == 0 {
			t.Errorf("item snapshot incomplete: %+v", item)
		}
	}
}

func TestCreateOrder_InsufficientStockRollsBackEverything(t *testing.T) {
	truncateAll(t)
	repo := NewOrderRepository(testDB)
	ctx := context.Background()
	now := time.Now()

	rice := seedProduct(t, "Fried Rice", 5.50, 10, nil, now)
	soup := seedProduct(t, "Miso Soup", 2.25, 1, nil, now)

	order := newTestOrder("BBBB2222",
		domain.OrderItem{ID: uuid.New(), ProductID: rice.ID, Quantity: 3},
		domain.OrderItem{ID: uuid.New(), ProductID: soup.ID, Quantity: 2},
	)

	err := repo.CreateOrder(ctx, order, now)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	// The first line passed its check before the second failed; the rollback
	// must undo its decrement too.
	if got := currentStock(t, rice.ID); got != 10 {
		t.Errorf("rice stock = %d, want 10", got)
	}
	if got := currentStock(t, soup.ID); got != 1 {
		t.Errorf("soup stock = %d, want 1", got)
	}

	if _, err := repo.FindByCode(ctx, "BBBB2222"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("order should not exist, got err = %v", err)
	}
}

func TestCreateOrder_RejectsAfterCutoff(t *testing.T) {
	truncateAll(t)
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	cutoff := domain.TimeOfDay{Hour: 10, Minute: 30}
	product := seedProduct(t, "Bento Box", 7.00, 5, &cutoff, now)

	order := newTestOrder("CCCC3333",
		domain.OrderItem{ID: uuid.New(), ProductID: product.ID, Quantity: 1},
	)
	order.OrderDate = domain.DateOf(now)

	err := repo.CreateOrder(ctx, order, now)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if got := currentStock(t, product.ID); got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}
}

func TestCreateOrder_RejectsWrongShowDate(t *testing.T) {
	truncateAll(t)
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	now := time.Now()
	product := seedProduct(t, "Tomorrow Special", 4.00, 5, nil, now.AddDate(0, 0, 1))

	order := newTestOrder("DDDD4444",
		domain.OrderItem{ID: uuid.New(), ProductID: product.ID, Quantity: 1},
	)

	if err := repo.CreateOrder(ctx, order, now); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
}

func TestCreateOrder_DuplicateCodeRollsBack(t *testing.T) {
	truncateAll(t)
	repo := NewOrderRepository(testDB)
	ctx := context.Background()
	now := time.Now()

	product := seedProduct(t, "Fried Rice", 5.50, 10, nil, now)

	first := newTestOrder("EEEE5555",
		domain.OrderItem{ID: uuid.New(), ProductID: product.ID, Quantity: 1},
	)
	if err := repo.CreateOrder(ctx, first, now); err != nil {
		t.Fatalf("first CreateOrder failed: %v", err)
	}

	second := newTestOrder("EEEE5555",
		domain.OrderItem{ID: uuid.New(), ProductID: product.ID, Quantity: 1},
	)
	if err := repo.CreateOrder(ctx, second, now); !errors.Is(err, ErrDuplicateOrderCode) {
		t.Fatalf("err = %v, want ErrDuplicateOrderCode", err)
	}

	// Only the first order's decrement survives.
	if got := currentStock(t, product.ID); got != 9 {
		t.Errorf("stock = %d, want 9", got)
	}
}

func TestCreateOrder_ConcurrentOrdersNeverOversell(t *testing.T) {
	truncateAll(t)
	repo := NewOrderRepository(testDB)
	ctx := context.Background()
	now := time.Now()

	product := seedProduct(t, "Last Pudding", 1.50, 1, nil, now)

	codes := []string{"FFFF6666", "GGGG7777"}
	results := make([]error, len(codes))

	var wg sync.WaitGroup
	for i, code := range codes {
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()
			order := newTestOrder(code,
				domain.OrderItem{ID: uuid.New(), ProductID: product.ID, Quantity: 1},
			)
			results[i] = repo.CreateOrder(ctx, order, now)
		}(i, code)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else if !errors.Is(err, ErrInsufficientStock) {
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1", successes)
	}
	if got := currentStock(t, product.ID); got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
}

func TestOrderLifecycle_StatusAndDelete(t *testing.T) {
	truncateAll(t)
	repo := NewOrderRepository(testDB)
	ctx := context.Background()
	now := time.Now()

	product := seedProduct(t, "Fried Rice", 5.50, 10, nil, now)
	order := newTestOrder("HHHH8888",
		domain.OrderItem{ID: uuid.New(), ProductID: product.ID, Quantity: 2},
	)
	if err := repo.CreateOrder(ctx, order, now); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if err := repo.UpdateStatus(ctx, order.ID, domain.OrderStatusReady); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	found, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Status != domain.OrderStatusReady {
		t.Errorf("status = %s, want ready", found.Status)
	}

	summary, err := repo.SummaryForDate(ctx, now)
	if err != nil {
		t.Fatalf("SummaryForDate failed: %v", err)
	}
	if summary.OrderCount != 1 {
		t.Errorf("order count = %d, want 1", summary.OrderCount)
	}
	if summary.TotalSales != 11.00 {
		t.Errorf("total sales = %v, want 11.00", summary.TotalSales)
	}

	if err := repo.Delete(ctx, order.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.FindByID(ctx, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("order should be gone, got err = %v", err)
	}

	var itemCount int
	if err := testDB.QueryRow(`SELECT COUNT(*) FROM order_items WHERE order_id = $1`, order.ID).Scan(&itemCount); err != nil {
		t.Fatalf("failed to count items: %v", err)
	}
	if itemCount != 0 {
		t.Errorf("order items survived the delete: %d", itemCount)
	}
}

// Feature: cafeteria-preorder, Property: the stored total always equals the
// sum of unit price times quantity across the order's lines.
func TestProperty_OrderTotalMatchesLines(t *testing.T) {
	truncateAll(t)
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("total equals sum of line subtotals", prop.ForAll(
		func(qty1, qty2 int, cents1, cents2 int) bool {
			truncateAll(t)
			now := time.Now()

			price1 := float64(cents1) / 100
			price2 := float64(cents2) / 100
			p1 := seedProduct(t, "Item One", price1, qty1+5, nil, now)
			p2 := seedProduct(t, "Item Two", price2, qty2+5, nil, now)

			order := newTestOrder("PROP0001",
				domain.OrderItem{ID: uuid.New(), ProductID: p1.ID, Quantity: qty1},
				domain.OrderItem{ID: uuid.New(), ProductID: p2.ID, Quantity: qty2},
			)

			if err := repo.CreateOrder(ctx, order, now); err != nil {
				t.Logf("CreateOrder failed: %v", err)
				return false
			}

			want := price1*float64(qty1) + price2*float64(qty2)
			diff := order.TotalPrice - want
			return diff < 0.001 && diff > -0.001
		},
		gen.IntRange(1, 10),
		gen.IntRange(1, 10),
		gen.IntRange(0, 2000),
		gen.IntRange(0, 2000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
