package domain

import (
	"time"

	"github.com/google/uuid"
)

// SalesRecord is a staff-entered count of units sold for one product on one
// day. At most one record exists per (product, date); a later write for the
// same pair overwrites the quantity.
type SalesRecord struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	SaleDate     time.Time `json:"sale_date" db:"sale_date"`
	QuantitySold int       `json:"quantity_sold" db:"quantity_sold"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ForecastPoint is one projected day of demand for a product.
type ForecastPoint struct {
	Date              time.Time `json:"date"`
	PredictedQuantity int       `json:"predicted_quantity"`
}
