package service

import (
	"context"
	"fmt"
	"time"

	"lunchline/internal/domain"
	"lunchline/internal/repository"

	"github.com/google/uuid"
)

// ProductForecast pairs a product with its demand projection.
type ProductForecast struct {
	Product     *domain.Product        `json:"product"`
	Predictions []domain.ForecastPoint `json:"predictions"`
}

// SalesService defines the interface for the sales ledger and the demand
// forecaster built on top of it.
type SalesService interface {
	RecordSale(ctx context.Context, productID uuid.UUID, date time.Time, quantity int) (*domain.SalesRecord, error)
	RecentRecords(ctx context.Context, limit int) ([]*domain.SalesRecord, error)
	Forecast(ctx context.Context, productID uuid.UUID, horizon int) ([]domain.ForecastPoint, error)
	// ForecastAll projects demand for every product with enough history,
	// skipping those with an empty projection.
	ForecastAll(ctx context.Context, horizon int) ([]ProductForecast, error)
}

type salesService struct {
	sales    repository.SalesRepository
	products repository.ProductRepository
}

// NewSalesService creates a new instance of SalesService
func NewSalesService(sales repository.SalesRepository, products repository.ProductRepository) SalesService {
	return &salesService{sales: sales, products: products}
}

// RecordSale upserts the sold quantity for one product on one day.
func (s *salesService) RecordSale(ctx context.Context, productID uuid.UUID, date time.Time, quantity int) (*domain.SalesRecord, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}

	record := &domain.SalesRecord{
		ID:           uuid.New(),
		ProductID:    productID,
		SaleDate:     domain.DateOf(date),
		QuantitySold: quantity,
		CreatedAt:    time.Now(),
	}

	if err := s.sales.Upsert(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *salesService) RecentRecords(ctx context.Context, limit int) ([]*domain.SalesRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.sales.ListRecent(ctx, limit)
}

func (s *salesService) Forecast(ctx context.Context, productID uuid.UUID, horizon int) ([]domain.ForecastPoint, error) {
	if horizon <= 0 {
		horizon = DefaultForecastHorizon
	}

	records, err := s.sales.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return ProjectDemand(records, horizon), nil
}

func (s *salesService) ForecastAll(ctx context.Context, horizon int) ([]ProductForecast, error) {
	if horizon <= 0 {
		horizon = DefaultForecastHorizon
	}

	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}

	forecasts := []ProductForecast{}
	for _, product := range products {
		records, err := s.sales.ListByProduct(ctx, product.ID)
		if err != nil {
			return nil, err
		}

		points := ProjectDemand(records, horizon)
		if len(points) == 0 {
			continue
		}

		forecasts = append(forecasts, ProductForecast{
			Product:     product,
			Predictions: points,
		})
	}

	return forecasts, nil
}
