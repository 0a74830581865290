package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus tracks fulfillment progress of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
)

// ValidOrderStatus reports whether s is one of the known statuses.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusReady, OrderStatusCompleted:
		return true
	}
	return false
}

// Order is a committed customer order. Code is the customer-facing 8-char
// pickup code; ID is the internal key. Orders own their items.
type Order struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Code         string      `json:"code" db:"code"`
	CustomerName string      `json:"customer_name" db:"customer_name"`
	PhoneNumber  string      `json:"phone_number,omitempty" db:"phone_number"`
	Grade        *int        `json:"grade,omitempty" db:"grade"`
	ClassNum     *int        `json:"class_num,omitempty" db:"class_num"`
	Number       *int        `json:"number,omitempty" db:"number"`
	TotalPrice   float64     `json:"total_price" db:"total_price"`
	Status       OrderStatus `json:"status" db:"status"`
	OrderDate    time.Time   `json:"order_date" db:"order_date"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	Items        []OrderItem `json:"items,omitempty"`
}

// OrderItem is one line of an order. UnitPrice is the product's price
// captured at commit time and never changes afterwards.
type OrderItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OrderID     uuid.UUID `json:"order_id" db:"order_id"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	ProductName string    `json:"product_name" db:"product_name"`
	Quantity    int       `json:"quantity" db:"quantity"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
}

// DailySummary aggregates the orders committed on one calendar day.
type DailySummary struct {
	Date       time.Time `json:"date"`
	OrderCount int       `json:"order_count"`
	TotalSales float64   `json:"total_sales"`
}
