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
	ErrOrderNotFound      = errors.New("order not found")
	ErrDuplicateOrderCode = errors.New("order code already exists")

	// ErrInsufficientStock also covers products that are no longer
	// orderable because the cutoff passed or the show date is over; the
	// caller sees both as "not available anymore".
	ErrInsufficientStock = errors.New("insufficient stock")
)

// OrderRepository defines the interface for order data access. CreateOrder
// is the single transactional entry point of the acceptance workflow.
type OrderRepository interface {
	// CreateOrder atomically re-validates every line against current
	// availability and stock, decrements stock, and persists the header
	// plus items. On any error nothing is applied. It fills in each
	// item's name and unit price snapshot and the order total.
	CreateOrder(ctx context.Context, order *domain.Order, now time.Time) error
	CodeExists(ctx context.Context, code string) (bool, error)
	FindByCode(ctx context.Context, code string) (*domain.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByDate(ctx context.Context, date time.Time, codeFilter string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	SummaryForDate(ctx context.Context, date time.Time) (*domain.DailySummary, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateOrder commits an order in one transaction. Product rows are locked
// with FOR UPDATE so two concurrent orders cannot both pass the stock check
// for the same product; the conditional UPDATE is a second guard.
func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var total float64

	for i := range order.Items {
		item := &order.Items[i]

		product := &domain.Product{}
		var cutoff sql.NullString
		err := tx.QueryRowContext(ctx, `
			SELECT id, name, price, stock, cutoff_time, show_date
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, item.ProductID).Scan(
			&product.ID,
			&product.Name,
			&product.Price,
			&product.Stock,
			&cutoff,
			&product.ShowDate,
		)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to lock product: %w", err)
		}
		if product.CutoffTime, err = parseCutoff(cutoff); err != nil {
			return fmt.Errorf("failed to parse cutoff: %w", err)
		}

		if !product.OrderableAt(now) || product.Stock < item.Quantity {
			return ErrInsufficientStock
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $2, updated_at = $3
			WHERE id = $1 AND stock >= $2
		`, item.ProductID, item.Quantity, now)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return ErrInsufficientStock
		}

		// Snapshot the current name and price; later catalog edits must
		// not change committed orders.
		item.OrderID = order.ID
		item.ProductName = product.Name
		item.UnitPrice = product.Price
		total += product.Price * float64(item.Quantity)
	}

	order.TotalPrice = total

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, code, customer_name, phone_number, grade, class_num, number, total_price, status, order_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		order.ID,
		order.Code,
		order.CustomerName,
		order.PhoneNumber,
		order.Grade,
		order.ClassNum,
		order.Number,
		order.TotalPrice,
		order.Status,
		domain.DateOf(order.OrderDate),
		order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateOrderCode
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, order.ID, item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// CodeExists reports whether an order already uses the given pickup code.
func (r *orderRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order code: %w", err)
	}
	return exists, nil
}

const orderColumns = `id, code, customer_name, phone_number, grade, class_num, number, total_price, status, order_date, created_at`

// FindByCode retrieves an order with its items by pickup code.
func (r *orderRepository) FindByCode(ctx context.Context, code string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE code = $1`, orderColumns)
	return r.findOne(ctx, query, code)
}

// FindByID retrieves an order with its items by internal ID.
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	return r.findOne(ctx, query, id)
}

func (r *orderRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	items, err := r.itemsForOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ListByDate retrieves the orders placed on one calendar day, optionally
// filtered by a pickup-code substring, items included.
func (r *orderRepository) ListByDate(ctx context.Context, date time.Time, codeFilter string) ([]*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE order_date = $1`, orderColumns)
	args := []interface{}{domain.DateOf(date)}

	if codeFilter != "" {
		query += ` AND code ILIKE $2`
		args = append(args, "%"+codeFilter+"%")
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, order := range orders {
		items, err := r.itemsForOrder(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}

	return orders, nil
}

// UpdateStatus moves an order to a new fulfillment status.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Delete removes an order; its items go with it via ON DELETE CASCADE.
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// SummaryForDate returns the order count and revenue for one calendar day.
func (r *orderRepository) SummaryForDate(ctx context.Context, date time.Time) (*domain.DailySummary, error) {
	summary := &domain.DailySummary{Date: domain.DateOf(date)}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_price), 0)
		FROM orders
		WHERE order_date = $1
	`, domain.DateOf(date)).Scan(&summary.OrderCount, &summary.TotalSales)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize orders: %w", err)
	}

	return summary, nil
}

func (r *orderRepository) itemsForOrder(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.unit_price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY p.name ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var phone sql.NullString

	err := row.Scan(
		&order.ID,
		&order.Code,
		&order.CustomerName,
		&phone,
		&order.Grade,
		&order.ClassNum,
		&order.Number,
		&order.TotalPrice,
		&order.Status,
		&order.OrderDate,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.PhoneNumber = phone.String
	return order, nil
}
