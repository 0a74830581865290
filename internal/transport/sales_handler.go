package transport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"lunchline/internal/middleware"
	"lunchline/internal/repository"
	"lunchline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordSaleRequest represents the sales ledger upsert payload. Date is
// "YYYY-MM-DD"; recording the same product and date again overwrites the
// earlier quantity.
type RecordSaleRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Date      string `json:"date" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// SalesHandler handles HTTP requests for the sales ledger and forecasting
type SalesHandler struct {
	salesService service.SalesService
	horizon      int
	logger       *zap.Logger
}

// NewSalesHandler creates a new SalesHandler. horizon is the default number
// of days the forecast endpoints project ahead.
func NewSalesHandler(salesService service.SalesService, horizon int, logger *zap.Logger) *SalesHandler {
	return &SalesHandler{
		salesService: salesService,
		horizon:      horizon,
		logger:       logger,
	}
}

// RegisterRoutes registers the staff sales and forecast routes
func (h *SalesHandler) RegisterRoutes(r chi.Router, staffAuth func(http.Handler) http.Handler) {
	r.Route("/api/staff/sales", func(r chi.Router) {
		r.Use(staffAuth)
		r.Post("/", h.RecordSale)
		r.Get("/recent", h.RecentSales)
	})

	r.Route("/api/staff/forecast", func(r chi.Router) {
		r.Use(staffAuth)
		r.Get("/", h.ForecastAll)
		r.Get("/{productID}", h.ForecastProduct)
	})
}

// RecordSale handles a sales ledger entry
func (h *SalesHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Sales record validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	record, err := h.salesService.RecordSale(r.Context(), productID, date, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, service.ErrInvalidInput):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to record sale", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to record sale")
		}
		return
	}

	h.logger.Info("Sale recorded",
		zap.String("product_id", productID.String()),
		zap.String("date", req.Date),
		zap.Int("quantity", req.Quantity),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, record)
}

// RecentSales handles listing the latest ledger entries
func (h *SalesHandler) RecentSales(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	records, err := h.salesService.RecentRecords(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list sales records", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list sales records")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, records)
}

func (h *SalesHandler) horizonFrom(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return h.horizon, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, errors.New("invalid days")
	}
	return parsed, nil
}

// ForecastAll handles the demand projection across the whole catalog
func (h *SalesHandler) ForecastAll(w http.ResponseWriter, r *http.Request) {
	horizon, err := h.horizonFrom(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	forecasts, err := h.salesService.ForecastAll(r.Context(), horizon)
	if err != nil {
		h.logger.Error("Failed to compute forecast", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute forecast")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, forecasts)
}

// ForecastProduct handles the demand projection for one product
func (h *SalesHandler) ForecastProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	horizon, err := h.horizonFrom(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	points, err := h.salesService.Forecast(r.Context(), productID, horizon)
	if err != nil {
		h.logger.Error("Failed to compute forecast", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute forecast")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, points)
}
