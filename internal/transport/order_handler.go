package transport

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"lunchline/internal/domain"
	"lunchline/internal/middleware"
	"lunchline/internal/repository"
	"lunchline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderItemRequest is one line of an order submission
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// CreateOrderRequest represents the order submission payload. TotalPrice is
// the client's own computation and is only used as a cross-check.
type CreateOrderRequest struct {
	CustomerName string             `json:"customer_name" validate:"required"`
	PhoneNumber  string             `json:"phone_number"`
	Grade        *int               `json:"grade" validate:"omitempty,gte=1,lte=12"`
	ClassNum     *int               `json:"class_num" validate:"omitempty,gte=1"`
	Number       *int               `json:"number" validate:"omitempty,gte=1"`
	TotalPrice   *float64           `json:"total_price" validate:"omitempty,gte=0"`
	Items        []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderStatusRequest represents the status transition payload
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending ready completed"`
}

// MenuCategory groups the orderable products of one category
type MenuCategory struct {
	Name     string            `json:"name"`
	Products []*domain.Product `json:"products"`
}

// MenuResponse is the customer-facing menu for today
type MenuResponse struct {
	Date       string         `json:"date"`
	Categories []MenuCategory `json:"categories"`
}

// OrderHandler handles HTTP requests for ordering and order management
type OrderHandler struct {
	orderService   service.OrderService
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, catalogService service.CatalogService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers menu and order routes. rateLimit guards order
// submission only; staffAuth guards the management endpoints.
func (h *OrderHandler) RegisterRoutes(r chi.Router, staffAuth, rateLimit func(http.Handler) http.Handler) {
	r.Get("/api/menu", h.GetMenu)

	r.Route("/api/orders", func(r chi.Router) {
		r.With(rateLimit).Post("/", h.PlaceOrder)
		r.Get("/{code}", h.GetOrderByCode)
	})

	r.Route("/api/staff/orders", func(r chi.Router) {
		r.Use(staffAuth)
		r.Get("/", h.ListOrders)
		r.Patch("/{id}/status", h.UpdateOrderStatus)
		r.Delete("/{id}", h.DeleteOrder)
	})
}

// GetMenu returns the products a customer can order right now, grouped by
// category.
func (h *OrderHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	products, err := h.catalogService.AvailableProducts(r.Context(), now)
	if err != nil {
		h.logger.Error("Failed to load menu", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load menu")
		return
	}

	grouped := service.GroupByCategory(products)
	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	categories := make([]MenuCategory, 0, len(names))
	for _, name := range names {
		categories = append(categories, MenuCategory{Name: name, Products: grouped[name]})
	}

	response := MenuResponse{
		Date:       domain.DateOf(now).Format("2006-01-02"),
		Categories: categories,
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// PlaceOrder handles an order submission
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := make([]service.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
			return
		}
		lines = append(lines, service.OrderLine{ProductID: productID, Quantity: item.Quantity})
	}

	input := service.PlaceOrderInput{
		CustomerName:  req.CustomerName,
		PhoneNumber:   req.PhoneNumber,
		Grade:         req.Grade,
		ClassNum:      req.ClassNum,
		Number:        req.Number,
		DeclaredTotal: req.TotalPrice,
		Lines:         lines,
	}

	order, err := h.orderService.PlaceOrder(r.Context(), input, time.Now())
	if err != nil {
		h.logger.Debug("Order rejected", zap.Error(err))

		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, repository.ErrInsufficientStock):
			middleware.RespondWithError(w, http.StatusConflict, "item no longer available")
		case errors.Is(err, service.ErrTotalMismatch):
			middleware.RespondWithError(w, http.StatusConflict, "prices changed, please review your order")
		case errors.Is(err, service.ErrEmptyOrder), errors.Is(err, service.ErrInvalidInput):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to place order", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
		}
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("code", order.Code),
		zap.Float64("total", order.TotalPrice),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// GetOrderByCode handles order lookup by pickup code
func (h *OrderHandler) GetOrderByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	order, err := h.orderService.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to look up order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to look up order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListOrders handles the staff order list, optionally filtered by a partial
// pickup code. The date defaults to today.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	orders, err := h.orderService.ListForDate(r.Context(), date, r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus handles a fulfillment status transition
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req UpdateOrderStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.orderService.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status)); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrInvalidStatus):
			middleware.RespondWithError(w, http.StatusBadRequest, "unknown order status")
		default:
			h.logger.Error("Failed to update order status", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		}
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("status", req.Status),
	)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "status updated"})
}

// DeleteOrder handles order deletion
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	if err := h.orderService.DeleteOrder(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to delete order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete order")
		return
	}

	h.logger.Info("Order deleted", zap.String("order_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}
