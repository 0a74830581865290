package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"lunchline/internal/domain"

	"github.com/google/uuid"
)

func TestSalesRepository_UpsertOverwritesSameDay(t *testing.T) {
	truncateAll(t)
	repo := NewSalesRepository(testDB)
	ctx := context.Background()
	now := time.Now()

	product := seedProduct(t, "Bento Box", 7.25, 12, nil, now)
	day := domain.DateOf(now)

	first := &domain.SalesRecord{
		ID:           uuid.New(),
		ProductID:    product.ID,
		SaleDate:     day,
		QuantitySold: 10,
		CreatedAt:    now,
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	second := &domain.SalesRecord{
		ID:           uuid.New(),
		ProductID:    product.ID,
		SaleDate:     day,
		QuantitySold: 14,
		CreatedAt:    now,
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	records, err := repo.ListByProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("ListByProduct failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].QuantitySold != 14 {
		t.Errorf("quantity = %d, want 14", records[0].QuantitySold)
	}
}

func TestSalesRepository_UpsertUnknownProduct(t *testing.T) {
	truncateAll(t)
	repo := NewSalesRepository(testDB)

	record := &domain.SalesRecord{
		ID:           uuid.New(),
		ProductID:    uuid.New(),
		SaleDate:     domain.DateOf(time.Now()),
		QuantitySold: 5,
		CreatedAt:    time.Now(),
	}
	if err := repo.Upsert(context.Background(), record); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestSalesRepository_ListByProductOrdersByDate(t *testing.T) {
	truncateAll(t)
	repo := NewSalesRepository(testDB)
	ctx := context.Background()
	now := time.Now()

	product := seedProduct(t, "Bento Box", 7.25, 12, nil, now)

	// Insert out of order; the forecaster relies on ascending dates.
	for _, offset := range []int{2, 0, 1} {
		record := &domain.SalesRecord{
			ID:           uuid.New(),
			ProductID:    product.ID,
			SaleDate:     domain.DateOf(now.AddDate(0, 0, offset)),
			QuantitySold: 10 + offset,
			CreatedAt:    now,
		}
		if err := repo.Upsert(ctx, record); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	records, err := repo.ListByProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("ListByProduct failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].SaleDate.Before(records[i-1].SaleDate) {
			t.Errorf("records not ordered by date: %v before %v", records[i].SaleDate, records[i-1].SaleDate)
		}
	}
}

func TestSalesRepository_ListRecentHonorsLimit(t *testing.T) {
	truncateAll(t)
	repo := NewSalesRepository(testDB)
	ctx := context.Background()
	now := time.Now()

	product := seedProduct(t, "Bento Box", 7.25, 12, nil, now)
	for offset := 0; offset < 5; offset++ {
		record := &domain.SalesRecord{
			ID:           uuid.New(),
			ProductID:    product.ID,
			SaleDate:     domain.DateOf(now.AddDate(0, 0, -offset)),
			QuantitySold: offset,
			CreatedAt:    now,
		}
		if err := repo.Upsert(ctx, record); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	records, err := repo.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	// Newest first.
	if !records[0].SaleDate.After(records[2].SaleDate) {
		t.Errorf("records not ordered newest first")
	}
}
