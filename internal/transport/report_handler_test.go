package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lunchline/internal/domain"
	"lunchline/internal/jsonstore"
	"lunchline/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newReportRouter(t *testing.T, store *jsonstore.Store) chi.Router {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	reportService := service.NewReportService(store.Orders())
	handler := NewReportHandler(reportService, logger)

	r := chi.NewRouter()
	handler.RegisterRoutes(r, passThrough)
	return r
}

func TestReports_SummarizeTodaysOrders(t *testing.T) {
	store := newTestStore(t)
	orderRouter := newOrderRouter(t, store)
	reportRouter := newReportRouter(t, store)

	bento := seedMenuProduct(t, store, "Bento Box", "lunch", 7.25, 20)
	pudding := seedMenuProduct(t, store, "Pudding", "dessert", 1.50, 20)

	submissions := []CreateOrderRequest{
		{CustomerName: "Alex Kim", Items: []OrderItemRequest{
			{ProductID: bento.ID.String(), Quantity: 2},
		}},
		{CustomerName: "Sam Lee", Items: []OrderItemRequest{
			{ProductID: bento.ID.String(), Quantity: 1},
			{ProductID: pudding.ID.String(), Quantity: 3},
		}},
	}
	for _, submission := range submissions {
		if w := postJSON(t, orderRouter, "/api/orders", submission); w.Code != http.StatusCreated {
			t.Fatalf("order status = %d, body = %s", w.Code, w.Body.String())
		}
	}

	summaryReq := httptest.NewRequest("GET", "/api/staff/reports/summary", nil)
	summaryRec := httptest.NewRecorder()
	reportRouter.ServeHTTP(summaryRec, summaryReq)

	if summaryRec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", summaryRec.Code)
	}
	var summary domain.DailySummary
	if err := json.Unmarshal(summaryRec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if summary.OrderCount != 2 {
		t.Errorf("order count = %d, want 2", summary.OrderCount)
	}
	// 2*7.25 + 1*7.25 + 3*1.50
	if summary.TotalSales < 26.24 || summary.TotalSales > 26.26 {
		t.Errorf("total sales = %f, want 26.25", summary.TotalSales)
	}

	totalsReq := httptest.NewRequest("GET", "/api/staff/reports/products", nil)
	totalsRec := httptest.NewRecorder()
	reportRouter.ServeHTTP(totalsRec, totalsReq)

	if totalsRec.Code != http.StatusOK {
		t.Fatalf("totals status = %d", totalsRec.Code)
	}
	var totals []service.ProductTotal
	if err := json.Unmarshal(totalsRec.Body.Bytes(), &totals); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("totals = %d, want 2", len(totals))
	}
	// Sorted by product name.
	if totals[0].ProductName != "Bento Box" || totals[0].Quantity != 3 {
		t.Errorf("totals[0] = %+v", totals[0])
	}
	if totals[1].ProductName != "Pudding" || totals[1].Quantity != 3 {
		t.Errorf("totals[1] = %+v", totals[1])
	}
}

func TestReports_RejectBadDate(t *testing.T) {
	store := newTestStore(t)
	reportRouter := newReportRouter(t, store)

	for _, path := range []string{
		"/api/staff/reports/summary?date=lunchtime",
		"/api/staff/reports/products?date=lunchtime",
	} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		reportRouter.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
}

func TestReports_EmptyDay(t *testing.T) {
	store := newTestStore(t)
	reportRouter := newReportRouter(t, store)

	req := httptest.NewRequest("GET", "/api/staff/reports/summary?date=2020-01-01", nil)
	w := httptest.NewRecorder()
	reportRouter.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var summary domain.DailySummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if summary.OrderCount != 0 || summary.TotalSales != 0 {
		t.Errorf("summary = %+v, want zeros", summary)
	}
}
