package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"lunchline/internal/domain"
	"lunchline/internal/repository"

	"github.com/google/uuid"
)

// ProductInput carries the fields staff may set on a product.
type ProductInput struct {
	Name       string
	Category   string
	Price      float64
	ImageURL   string
	Stock      int
	CutoffTime *domain.TimeOfDay
	ShowDate   time.Time
}

// CatalogService defines the interface for catalog management and the
// availability filter.
type CatalogService interface {
	CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	SetStock(ctx context.Context, id uuid.UUID, stock int) error
	AvailableProducts(ctx context.Context, now time.Time) ([]*domain.Product, error)
	CategoriesInUse(ctx context.Context) ([]string, error)
}

type catalogService struct {
	products repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(products repository.ProductRepository) CatalogService {
	return &catalogService{products: products}
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	now := time.Now()
	product := &domain.Product{
		ID:         uuid.New(),
		Name:       in.Name,
		Category:   in.Category,
		Price:      in.Price,
		ImageURL:   in.ImageURL,
		Stock:      in.Stock,
		CutoffTime: in.CutoffTime,
		ShowDate:   domain.DateOf(in.ShowDate),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.Category = in.Category
	product.Price = in.Price
	product.Stock = in.Stock
	product.CutoffTime = in.CutoffTime
	product.ShowDate = domain.DateOf(in.ShowDate)
	product.UpdatedAt = time.Now()
	// An empty image URL keeps the current one, mirroring how uploads
	// behave on the edit form.
	if in.ImageURL != "" {
		product.ImageURL = in.ImageURL
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.products.Delete(ctx, id)
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *catalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx)
}

func (s *catalogService) SetStock(ctx context.Context, id uuid.UUID, stock int) error {
	if stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	return s.products.SetStock(ctx, id, stock)
}

// AvailableProducts returns the products a customer may order right now.
func (s *catalogService) AvailableProducts(ctx context.Context, now time.Time) ([]*domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterAvailable(products, now), nil
}

// CategoriesInUse returns the distinct categories across the catalog,
// sorted, for the product management form.
func (s *catalogService) CategoriesInUse(ctx context.Context) ([]string, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	categories := []string{}
	for _, product := range products {
		if !seen[product.Category] {
			seen[product.Category] = true
			categories = append(categories, product.Category)
		}
	}
	sort.Strings(categories)

	return categories, nil
}

// FilterAvailable is the availability filter: a pure function of the catalog
// snapshot and "now". A product passes iff it is shown today, its cutoff (if
// any) has not passed, and it has stock.
func FilterAvailable(products []*domain.Product, now time.Time) []*domain.Product {
	available := []*domain.Product{}
	for _, product := range products {
		if product.OrderableAt(now) {
			available = append(available, product)
		}
	}
	return available
}

// GroupByCategory arranges products for the menu page, category order
// alphabetical, insertion order preserved within a category.
func GroupByCategory(products []*domain.Product) map[string][]*domain.Product {
	grouped := map[string][]*domain.Product{}
	for _, product := range products {
		grouped[product.Category] = append(grouped[product.Category], product)
	}
	return grouped
}
