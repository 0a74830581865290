package repository

import (
	"context"
	"database/sql"
	"fmt"

	"lunchline/internal/domain"

	"github.com/google/uuid"
)

// SalesRepository defines the interface for the historical sales ledger.
type SalesRepository interface {
	// Upsert writes the sold quantity for a (product, date) pair,
	// silently overwriting any earlier value for the same pair.
	Upsert(ctx context.Context, record *domain.SalesRecord) error
	// ListByProduct returns all records for a product ordered by sale
	// date ascending, the order the forecaster expects.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.SalesRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.SalesRecord, error)
}

type salesRepository struct {
	db *sql.DB
}

// NewSalesRepository creates a new instance of SalesRepository
func NewSalesRepository(db *sql.DB) SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) Upsert(ctx context.Context, record *domain.SalesRecord) error {
	query := `
		INSERT INTO sales_records (id, product_id, sale_date, quantity_sold, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, sale_date)
		DO UPDATE SET quantity_sold = EXCLUDED.quantity_sold
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.ProductID,
		domain.DateOf(record.SaleDate),
		record.QuantitySold,
		record.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to upsert sales record: %w", err)
	}

	return nil
}

func (r *salesRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.SalesRecord, error) {
	query := `
		SELECT id, product_id, sale_date, quantity_sold, created_at
		FROM sales_records
		WHERE product_id = $1
		ORDER BY sale_date ASC
	`

	return r.queryRecords(ctx, query, productID)
}

func (r *salesRepository) ListRecent(ctx context.Context, limit int) ([]*domain.SalesRecord, error) {
	query := `
		SELECT id, product_id, sale_date, quantity_sold, created_at
		FROM sales_records
		ORDER BY sale_date DESC, created_at DESC
		LIMIT $1
	`

	return r.queryRecords(ctx, query, limit)
}

func (r *salesRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*domain.SalesRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales records: %w", err)
	}
	defer rows.Close()

	records := []*domain.SalesRecord{}
	for rows.Next() {
		record := &domain.SalesRecord{}
		err := rows.Scan(
			&record.ID,
			&record.ProductID,
			&record.SaleDate,
			&record.QuantitySold,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sales record: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales records: %w", err)
	}

	return records, nil
}
