package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/auth"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/clients"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/config"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/errors"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/service"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/store"
)

type testBackends struct {
	products *clients.MockProductClient
	users    *clients.MockUserClient
	orders   *clients.MockOrderClient
}

func newTestHandlers(t *testing.T) (*Handlers, *testBackends) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Defaults()
	b := &testBackends{
		products: clients.NewMockProductClient(),
		users:    clients.NewMockUserClient(),
		orders:   clients.NewMockOrderClient(),
	}
	svc := service.NewBackoffice(b.products, b.users, b.orders, store.New(cfg.Dashboard.NoticeLimit), nil, nil, nil, cfg)
	return NewHandlers(svc, cfg), b
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "backoffice", resp["service"])
}

func TestReady(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	h.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReady_FailingCheck(t *testing.T) {
	h, _ := newTestHandlers(t)
	h.AddReadinessCheck("redis", func(ctx context.Context) error {
		return fmt.Errorf("connection refused")
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	h.Ready(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "not_ready", resp["status"])
	assert.Equal(t, map[string]interface{}{"redis": "connection refused"}, resp["failed"])
}

func TestLive(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Live(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "validation",
			err:     errors.NewValidationError("name", "value missing"),
			status:  http.StatusBadRequest,
			message: "value missing",
		},
		{
			name:   "terminal order",
			err:    fmt.Errorf("order is DELIVERED: %w", errors.ErrTerminalStatus),
			status: http.StatusConflict,
		},
		{
			name:    "backend 404",
			err:     &errors.HTTPError{Service: "product", StatusCode: 404, Message: "Product not found"},
			status:  http.StatusNotFound,
			message: "Product not found",
		},
		{
			name:    "backend 409 passes through",
			err:     &errors.HTTPError{Service: "membership", StatusCode: 409, Message: "Email already in use"},
			status:  http.StatusConflict,
			message: "Email already in use",
		},
		{
			name:    "backend 500 is a gateway error",
			err:     &errors.HTTPError{Service: "order", StatusCode: 500, Message: "HTTP 500"},
			status:  http.StatusBadGateway,
			message: "HTTP 500",
		},
		{
			name:    "unreachable backend",
			err:     &errors.ConnectivityError{Service: "order", Err: fmt.Errorf("dial tcp")},
			status:  http.StatusBadGateway,
			message: errors.ConnectivityMessage,
		},
		{
			name:   "bad payload",
			err:    &errors.DecodeError{Service: "order", Err: fmt.Errorf("id: must be gt 0")},
			status: http.StatusBadGateway,
		},
		{
			name:   "missing token",
			err:    auth.ErrNoToken,
			status: http.StatusUnauthorized,
		},
		{
			name:    "unexpected",
			err:     fmt.Errorf("boom"),
			status:  http.StatusInternalServerError,
			message: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decode(t, w)["error"])
			}
		})
	}
}

func TestHandleError_RefreshFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	handleError(c, &errors.RefreshError{Slice: "orders", Err: &errors.HTTPError{StatusCode: 404, Message: "gone"}})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["write_applied"])
	assert.Contains(t, resp["error"], "change applied")
}

func TestListProducts_LocalFilter(t *testing.T) {
	h, b := newTestHandlers(t)
	b.products.AddProduct(models.Product{Name: "Go Book", Stock: 3, Category: models.CategoryBooks})
	b.products.AddProduct(models.Product{Name: "Old Book", Stock: 0, Category: models.CategoryBooks, Active: models.Bool(false)})
	b.products.AddProduct(models.Product{Name: "Cable", Stock: 9, Category: models.CategoryElectronics})

	router := gin.New()
	router.GET("/products", h.ListProducts)

	tests := []struct {
		query string
		count float64
	}{
		{"", 3},
		{"?search=book", 2},
		{"?category=BOOKS&available=true", 1},
		{"?active=inactive", 1},
		{"?active=bogus", 3},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products"+tt.query, nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.count, decode(t, w)["count"])
		})
	}
	assert.Equal(t, len(tests), b.products.Calls("ListProducts"))
}

func TestListProducts_UnknownCategory(t *testing.T) {
	h, b := newTestHandlers(t)
	router := gin.New()
	router.GET("/products", h.ListProducts)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products?category=TOYS", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, b.products.Calls("ListProducts"))
}

func TestInvalidID(t *testing.T) {
	h, b := newTestHandlers(t)
	router := gin.New()
	router.GET("/orders/:id", h.GetOrder)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, b.orders.Calls("GetOrder"))
}

func TestMiddleware_RequestIDAndToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), BearerToken())

	var (
		gotID    string
		gotToken string
	)
	router.GET("/ping", func(c *gin.Context) {
		gotID, _ = auth.RequestIDFromContext(c.Request.Context())
		gotToken, _ = auth.TokenFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEmpty(t, gotID)
	assert.Equal(t, gotID, w.Header().Get(auth.HeaderRequestID))
	assert.Equal(t, "abc.def.ghi", gotToken)

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(auth.HeaderRequestID, "req-42")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", gotID)
	assert.Empty(t, gotToken)
}
