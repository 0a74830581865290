package service

import (
	"context"
	"sort"
	"time"

	"lunchline/internal/domain"
	"lunchline/internal/repository"
)

// ProductTotal is the summed quantity ordered for one product on one day,
// the figure the kitchen preps against.
type ProductTotal struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// ReportService defines read-only aggregation over committed orders.
type ReportService interface {
	ProductTotals(ctx context.Context, date time.Time) ([]ProductTotal, error)
	DailySummary(ctx context.Context, date time.Time) (*domain.DailySummary, error)
}

type reportService struct {
	orders repository.OrderRepository
}

// NewReportService creates a new instance of ReportService
func NewReportService(orders repository.OrderRepository) ReportService {
	return &reportService{orders: orders}
}

// ProductTotals sums ordered quantities per product name across all orders
// of one day, sorted by name for stable output.
func (s *reportService) ProductTotals(ctx context.Context, date time.Time) ([]ProductTotal, error) {
	orders, err := s.orders.ListByDate(ctx, date, "")
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, order := range orders {
		for _, item := range order.Items {
			counts[item.ProductName] += item.Quantity
		}
	}

	totals := make([]ProductTotal, 0, len(counts))
	for name, quantity := range counts {
		totals = append(totals, ProductTotal{ProductName: name, Quantity: quantity})
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].ProductName < totals[j].ProductName
	})

	return totals, nil
}

func (s *reportService) DailySummary(ctx context.Context, date time.Time) (*domain.DailySummary, error) {
	return s.orders.SummaryForDate(ctx, date)
}
