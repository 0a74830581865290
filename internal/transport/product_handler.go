package transport

import (
	"errors"
	"net/http"
	"time"

	"lunchline/internal/domain"
	"lunchline/internal/middleware"
	"lunchline/internal/repository"
	"lunchline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductRequest represents the product create/update payload. CutoffTime is
// "HH:MM" or empty for no cutoff; ShowDate is "YYYY-MM-DD".
type ProductRequest struct {
	Name       string  `json:"name" validate:"required"`
	Category   string  `json:"category" validate:"required"`
	Price      float64 `json:"price" validate:"gte=0"`
	ImageURL   string  `json:"image_url"`
	Stock      int     `json:"stock" validate:"gte=0"`
	CutoffTime string  `json:"cutoff_time"`
	ShowDate   string  `json:"show_date" validate:"required"`
}

// SetStockRequest represents the stock adjustment payload
type SetStockRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}

// ProductHandler handles HTTP requests for catalog management
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers the staff catalog routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, staffAuth func(http.Handler) http.Handler) {
	r.Route("/api/staff/products", func(r chi.Router) {
		r.Use(staffAuth)
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/categories", h.ListCategories)
		r.Get("/{id}", h.GetProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
		r.Patch("/{id}/stock", h.SetStock)
	})
}

func (h *ProductHandler) productInput(req ProductRequest) (service.ProductInput, error) {
	showDate, err := time.Parse("2006-01-02", req.ShowDate)
	if err != nil {
		return service.ProductInput{}, errors.New("invalid show_date, expected YYYY-MM-DD")
	}

	var cutoff *domain.TimeOfDay
	if req.CutoffTime != "" {
		parsed, err := domain.ParseTimeOfDay(req.CutoffTime)
		if err != nil {
			return service.ProductInput{}, errors.New("invalid cutoff_time, expected HH:MM")
		}
		cutoff = &parsed
	}

	return service.ProductInput{
		Name:       req.Name,
		Category:   req.Category,
		Price:      req.Price,
		ImageURL:   req.ImageURL,
		Stock:      req.Stock,
		CutoffTime: cutoff,
		ShowDate:   showDate,
	}, nil
}

// CreateProduct handles product creation
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input, err := h.productInput(req)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), input)
	if err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles product updates
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input, err := h.productInput(req)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to update product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles product deletion. Products referenced by orders or
// the sales ledger cannot be removed.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, repository.ErrProductInUse):
			middleware.RespondWithError(w, http.StatusConflict, "product is referenced by orders or sales records")
		default:
			h.logger.Error("Failed to delete product", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		}
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// GetProduct handles a single product lookup
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// ListProducts handles the full catalog listing for the management view
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// ListCategories handles the distinct category listing
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.CategoriesInUse(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// SetStock handles a direct stock adjustment
func (h *ProductHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req SetStockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.catalogService.SetStock(r.Context(), id, req.Stock); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to set stock", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to set stock")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "stock updated"})
}
