package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/payment"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	testJWTSecret     = "jwt-secret"
	testWebhookSecret = "whsec_test"
)

type testAPI struct {
	router     chi.Router
	users      *mockUserRepository
	categories *mockCategoryRepository
	products   *mockProductRepository
	orders     *mockOrderRepository
	faq        *mockFAQRepository
}

func newTestAPI() *testAPI {
	api := &testAPI{
		users:      newMockUserRepository(),
		categories: newMockCategoryRepository(),
		products:   &mockProductRepository{},
		orders:     newMockOrderRepository(),
		faq:        &mockFAQRepository{},
	}

	logger := zap.NewNop()
	orderService := service.NewOrderService(api.orders, "storefront.orders", nil, logger)

	r := chi.NewRouter()
	NewUserHandler(service.NewUserService(api.users), logger).RegisterRoutes(r)
	NewCatalogHandler(service.NewCatalogService(api.categories, api.products), logger).RegisterRoutes(r)
	NewFAQHandler(service.NewFAQService(api.faq), logger).RegisterRoutes(r)
	NewOrderHandler(orderService, logger).RegisterRoutes(r, middleware.AuthMiddleware(testJWTSecret, logger))
	NewWebhookHandler(payment.NewWebhookVerifier(testWebhookSecret), orderService, logger).RegisterRoutes(r)
	api.router = r

	return api
}

func (api *testAPI) do(method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

func serviceHeader() http.Header {
	token, _ := auth.NewSigner(testJWTSecret, "bot", time.Minute).Token()
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

// seedCatalog creates one category with one subcategory holding n products
func (api *testAPI) seedCatalog(n int) (categoryID, subcategoryID int64) {
	ctx := context.Background()
	category := &domain.Category{Name: "Pizza"}
	_ = api.categories.Create(ctx, category)
	sub := &domain.Subcategory{CategoryID: category.ID, Name: "Classic"}
	_ = api.categories.CreateSubcategory(ctx, sub)

	for i := 0; i < n; i++ {
		_ = api.products.Create(ctx, &domain.Product{
			SubcategoryID: sub.ID,
			Name:          string(rune('A' + i)),
			Price:         decimal.NewFromInt(int64(1000 + i)),
		})
	}
	return category.ID, sub.ID
}

func decodeBody[T any](w *httptest.ResponseRecorder) (T, error) {
	var out T
	err := json.Unmarshal(w.Body.Bytes(), &out)
	return out, err
}
