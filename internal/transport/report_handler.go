package transport

import (
	"net/http"
	"time"

	"lunchline/internal/middleware"
	"lunchline/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReportHandler handles HTTP requests for daily reporting
type ReportHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers the staff reporting routes
func (h *ReportHandler) RegisterRoutes(r chi.Router, staffAuth func(http.Handler) http.Handler) {
	r.Route("/api/staff/reports", func(r chi.Router) {
		r.Use(staffAuth)
		r.Get("/summary", h.DailySummary)
		r.Get("/products", h.ProductTotals)
	})
}

func reportDate(r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Now(), true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// DailySummary handles the order count and revenue report for one day
func (h *ReportHandler) DailySummary(w http.ResponseWriter, r *http.Request) {
	date, ok := reportDate(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	summary, err := h.reportService.DailySummary(r.Context(), date)
	if err != nil {
		h.logger.Error("Failed to compute daily summary", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute daily summary")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

// ProductTotals handles the per-product quantity report the kitchen preps
// against
func (h *ReportHandler) ProductTotals(w http.ResponseWriter, r *http.Request) {
	date, ok := reportDate(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	totals, err := h.reportService.ProductTotals(r.Context(), date)
	if err != nil {
		h.logger.Error("Failed to compute product totals", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute product totals")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, totals)
}
