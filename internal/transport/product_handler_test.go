package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lunchline/internal/domain"
	"lunchline/internal/jsonstore"
	"lunchline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newProductRouter(t *testing.T, store *jsonstore.Store) chi.Router {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	catalogService := service.NewCatalogService(store.Products())
	handler := NewProductHandler(catalogService, logger)

	r := chi.NewRouter()
	handler.RegisterRoutes(r, passThrough)
	return r
}

func putJSON(t *testing.T, router chi.Router, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest("PUT", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestProductCRUD_FullCycle(t *testing.T) {
	store := newTestStore(t)
	router := newProductRouter(t, store)
	today := time.Now().Format("2006-01-02")

	w := postJSON(t, router, "/api/staff/products", ProductRequest{
		Name:       "Bento Box",
		Category:   "lunch",
		Price:      7.25,
		Stock:      20,
		CutoffTime: "10:30",
		ShowDate:   today,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	var created domain.Product
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if created.CutoffTime == nil || created.CutoffTime.String() != "10:30" {
		t.Errorf("cutoff = %v, want 10:30", created.CutoffTime)
	}

	update := putJSON(t, router, "/api/staff/products/"+created.ID.String(), ProductRequest{
		Name:     "Deluxe Bento Box",
		Category: "lunch",
		Price:    8.75,
		Stock:    15,
		ShowDate: today,
	})
	if update.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", update.Code, update.Body.String())
	}
	var updated domain.Product
	if err := json.Unmarshal(update.Body.Bytes(), &updated); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if updated.Name != "Deluxe Bento Box" || updated.Price != 8.75 {
		t.Errorf("updated product = %+v", updated)
	}
	if updated.CutoffTime != nil {
		t.Errorf("empty cutoff in update must clear it, got %v", updated.CutoffTime)
	}

	stock := postPatch(t, router, "/api/staff/products/"+created.ID.String()+"/stock", SetStockRequest{Stock: 3})
	if stock.Code != http.StatusOK {
		t.Fatalf("set stock status = %d", stock.Code)
	}

	get := httptest.NewRequest("GET", "/api/staff/products/"+created.ID.String(), nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, get)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status = %d", getRec.Code)
	}
	var fetched domain.Product
	if err := json.Unmarshal(getRec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if fetched.Stock != 3 {
		t.Errorf("stock = %d, want 3", fetched.Stock)
	}

	del := httptest.NewRequest("DELETE", "/api/staff/products/"+created.ID.String(), nil)
	delRec := httptest.NewRecorder()
	router.ServeHTTP(delRec, del)
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", delRec.Code)
	}

	missing := httptest.NewRequest("GET", "/api/staff/products/"+created.ID.String(), nil)
	missingRec := httptest.NewRecorder()
	router.ServeHTTP(missingRec, missing)
	if missingRec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", missingRec.Code)
	}
}

func TestCreateProduct_RejectsBadDatesAndTimes(t *testing.T) {
	store := newTestStore(t)
	router := newProductRouter(t, store)

	cases := []struct {
		name    string
		request ProductRequest
	}{
		{"bad show date", ProductRequest{Name: "Bento", Category: "lunch", Price: 1, ShowDate: "tomorrow"}},
		{"bad cutoff", ProductRequest{Name: "Bento", Category: "lunch", Price: 1, ShowDate: "2026-03-09", CutoffTime: "25:99"}},
		{"missing name", ProductRequest{Category: "lunch", Price: 1, ShowDate: "2026-03-09"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, router, "/api/staff/products", tc.request)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestDeleteProduct_BlockedWhileLedgerReferencesIt(t *testing.T) {
	store := newTestStore(t)
	router := newProductRouter(t, store)

	product := seedMenuProduct(t, store, "Bento Box", "lunch", 7.25, 5)

	record := &domain.SalesRecord{
		ID:           uuid.New(),
		ProductID:    product.ID,
		SaleDate:     domain.DateOf(time.Now()),
		QuantitySold: 10,
		CreatedAt:    time.Now(),
	}
	if err := store.Sales().Upsert(context.Background(), record); err != nil {
		t.Fatalf("failed to seed sales record: %v", err)
	}

	del := httptest.NewRequest("DELETE", "/api/staff/products/"+product.ID.String(), nil)
	delRec := httptest.NewRecorder()
	router.ServeHTTP(delRec, del)

	if delRec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", delRec.Code)
	}
}

func TestListCategories_ReturnsDistinctSorted(t *testing.T) {
	store := newTestStore(t)
	router := newProductRouter(t, store)

	seedMenuProduct(t, store, "Bento Box", "lunch", 7.25, 5)
	seedMenuProduct(t, store, "Fried Rice", "lunch", 5.50, 3)
	seedMenuProduct(t, store, "Pudding", "dessert", 1.50, 2)

	req := httptest.NewRequest("GET", "/api/staff/products/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var categories []string
	if err := json.Unmarshal(w.Body.Bytes(), &categories); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(categories) != 2 || categories[0] != "dessert" || categories[1] != "lunch" {
		t.Errorf("categories = %v", categories)
	}
}
