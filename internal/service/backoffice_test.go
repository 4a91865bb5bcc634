package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/auth"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/clients"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/config"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/derived"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/errors"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/events"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/repository"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/store"
)

type memoryAuditLog struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (m *memoryAuditLog) Record(ctx context.Context, entry *models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryAuditLog) List(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.AuditEntry(nil), m.entries...), nil
}

type fixture struct {
	svc       *Backoffice
	products  *clients.MockProductClient
	users     *clients.MockUserClient
	orders    *clients.MockOrderClient
	audit     *memoryAuditLog
	publisher *events.MockEventPublisher
	cfg       *config.Config
}

func newFixture(t *testing.T, cache repository.SnapshotCache) *fixture {
	t.Helper()
	cfg := config.Defaults()
	cfg.Features = config.FeatureConfig{
		EnableAudit:         true,
		EnableSnapshotCache: cache != nil,
		EnableEvents:        true,
	}

	f := &fixture{
		products:  clients.NewMockProductClient(),
		users:     clients.NewMockUserClient(),
		orders:    clients.NewMockOrderClient(),
		audit:     &memoryAuditLog{},
		publisher: events.NewMockEventPublisher(),
		cfg:       cfg,
	}
	f.svc = NewBackoffice(f.products, f.users, f.orders, store.New(cfg.Dashboard.NoticeLimit), cache, f.audit, f.publisher, cfg)
	return f
}

func tokenFor(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestLoadAll(t *testing.T) {
	f := newFixture(t, nil)
	f.products.AddProduct(models.Product{Name: "Pen", Stock: 2, Category: models.CategoryOther})
	f.users.AddUser(models.User{FirstName: "Ada"})
	f.orders.AddOrder(models.Order{UserID: 1, Status: models.OrderStatusPending, TotalAmount: 9})

	require.NoError(t, f.svc.LoadAll(context.Background()))

	state := f.svc.State()
	assert.Len(t, state.Products, 1)
	assert.Len(t, state.Users, 1)
	assert.Len(t, state.Orders, 1)
	assert.Empty(t, state.Error)
}

func TestLoadAll_FailureIsolatedToSlice(t *testing.T) {
	f := newFixture(t, nil)
	f.products.AddProduct(models.Product{Name: "Pen", Category: models.CategoryOther})
	f.orders.AddOrder(models.Order{UserID: 1, Status: models.OrderStatusPending})
	f.users.ListErr = &errors.ConnectivityError{Service: "membership", Err: assert.AnError}

	err := f.svc.LoadAll(context.Background())
	require.Error(t, err)

	state := f.svc.State()
	assert.Len(t, state.Products, 1)
	assert.Len(t, state.Orders, 1)
	assert.Empty(t, state.Users)
	assert.Equal(t, errors.ConnectivityMessage, state.Error)
}

func TestCreateProduct_RefetchesAndRecords(t *testing.T) {
	f := newFixture(t, nil)
	ctx := auth.WithToken(context.Background(), tokenFor(t, jwt.MapClaims{"userId": 3, "email": "ops@example.com"}))

	created, err := f.svc.CreateProduct(ctx, &models.ProductRequest{
		Name: "Lamp", Price: 19.9, Stock: 4, Category: models.CategoryElectronics,
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Len(t, f.svc.State().Products, 1)
	assert.Equal(t, 1, f.products.Calls("ListProducts"))
	assert.Equal(t, []events.EventType{"backoffice.product.create"}, f.publisher.Types())

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "ops@example.com", f.audit.entries[0].Actor)
	assert.Equal(t, models.AuditOutcomeSuccess, f.audit.entries[0].Outcome)

	notices := f.svc.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, store.NoticeSuccess, notices[0].Level)
}

func TestCreateProduct_InvalidIsNeverSent(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.CreateProduct(context.Background(), &models.ProductRequest{Name: "", Price: -1, Category: "TOYS"})

	var validationErr *errors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, 0, f.products.Calls("CreateProduct"))
	assert.NotEmpty(t, f.svc.State().Error)
}

func TestDeleteProduct_FailureLeavesState(t *testing.T) {
	f := newFixture(t, nil)
	f.products.AddProduct(models.Product{ID: 1, Name: "Pen", Category: models.CategoryOther})
	_, err := f.svc.ListProducts(context.Background())
	require.NoError(t, err)

	f.products.Err = &errors.HTTPError{Service: "product", StatusCode: 409, Message: "Product is referenced by orders"}
	err = f.svc.DeleteProduct(context.Background(), 1)
	require.Error(t, err)

	state := f.svc.State()
	assert.Len(t, state.Products, 1)
	assert.Equal(t, "Product is referenced by orders", state.Error)
	assert.Empty(t, f.publisher.Events)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, models.AuditOutcomeFailure, f.audit.entries[0].Outcome)
	assert.Equal(t, "anonymous", f.audit.entries[0].Actor)
}

func TestWrite_RefreshFailureSurfacedSeparately(t *testing.T) {
	f := newFixture(t, nil)
	f.products.AddProduct(models.Product{ID: 1, Name: "Pen", Stock: 1, Category: models.CategoryOther})
	_, err := f.svc.ListProducts(context.Background())
	require.NoError(t, err)

	f.products.ListErr = &errors.HTTPError{Service: "product", StatusCode: 500, Message: "HTTP 500"}
	_, err = f.svc.UpdateStock(context.Background(), 1, 40)

	var refreshErr *errors.RefreshError
	require.True(t, errors.As(err, &refreshErr))
	assert.Equal(t, "products", refreshErr.Slice)

	p, getErr := f.products.GetProduct(context.Background(), 1)
	require.NoError(t, getErr)
	assert.Equal(t, 40, p.Stock, "write must be applied on the backend")
	assert.Equal(t, 1, f.svc.State().Products[0].Stock, "local state keeps the last loaded list")
	assert.Contains(t, f.svc.State().Error, "change applied")
}

func TestOrders_TerminalNeverSent(t *testing.T) {
	for _, status := range []models.OrderStatus{models.OrderStatusDelivered, models.OrderStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t, nil)
			f.orders.AddOrder(models.Order{ID: 1, UserID: 1, Status: status})
			_, err := f.svc.ListOrders(context.Background())
			require.NoError(t, err)

			_, err = f.svc.AdvanceOrder(context.Background(), 1)
			assert.ErrorIs(t, err, errors.ErrTerminalStatus)

			_, err = f.svc.SetOrderStatus(context.Background(), 1, models.OrderStatusCancelled)
			assert.ErrorIs(t, err, errors.ErrTerminalStatus)

			err = f.svc.CancelOrder(context.Background(), 1)
			assert.ErrorIs(t, err, errors.ErrTerminalStatus)

			assert.Equal(t, 0, f.orders.Calls("UpdateOrderStatus"))
			assert.Equal(t, 0, f.orders.Calls("DeleteOrder"))
		})
	}
}

func TestAdvanceOrder(t *testing.T) {
	f := newFixture(t, nil)
	f.orders.AddOrder(models.Order{ID: 1, UserID: 1, Status: models.OrderStatusPending})

	updated, err := f.svc.AdvanceOrder(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, 1, f.orders.Calls("GetOrder"), "status read from the backend when not loaded")

	orders := f.svc.State().Orders
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusConfirmed, orders[0].Status)
	assert.Equal(t, []events.EventType{"backoffice.order.status_CONFIRMED"}, f.publisher.Types())
}

func TestSetOrderStatus_RejectsBackwardMove(t *testing.T) {
	f := newFixture(t, nil)
	f.orders.AddOrder(models.Order{ID: 1, UserID: 1, Status: models.OrderStatusShipped})

	_, err := f.svc.SetOrderStatus(context.Background(), 1, models.OrderStatusPending)

	var validationErr *errors.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, 0, f.orders.Calls("UpdateOrderStatus"))
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t, nil)
	f.orders.AddOrder(models.Order{ID: 1, UserID: 1, Status: models.OrderStatusShipped})
	f.orders.AddOrder(models.Order{ID: 2, UserID: 1, Status: models.OrderStatusPending})

	require.NoError(t, f.svc.CancelOrder(context.Background(), 1))

	orders := f.svc.State().Orders
	require.Len(t, orders, 1)
	assert.Equal(t, int64(2), orders[0].ID)
}

func TestCancelOrder_Unknown(t *testing.T) {
	f := newFixture(t, nil)

	err := f.svc.CancelOrder(context.Background(), 99)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.Equal(t, "Order not found", f.svc.State().Error)
}

func TestRefreshKeepsLastQuery(t *testing.T) {
	f := newFixture(t, nil)
	f.users.AddUser(models.User{ID: 1, FirstName: "Ada", Active: models.Bool(true)})
	f.users.AddUser(models.User{ID: 2, FirstName: "Bob", Active: models.Bool(true)})
	f.users.AddUser(models.User{ID: 3, FirstName: "Cy", Active: models.Bool(false)})

	active, err := f.svc.ActiveUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 2)

	_, err = f.svc.DeactivateUser(context.Background(), 2)
	require.NoError(t, err)

	users := f.svc.State().Users
	require.Len(t, users, 1)
	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, 2, f.users.Calls("ActiveUsers"))
	assert.Equal(t, 0, f.users.Calls("ListUsers"))
}

func TestRefresh_FromEvent(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.svc.LoadAll(context.Background()))

	f.products.AddProduct(models.Product{Name: "New", Category: models.CategoryBooks})
	require.NoError(t, f.svc.Refresh(context.Background(), store.SliceProducts))

	assert.Len(t, f.svc.State().Products, 1)
}

func TestRegister(t *testing.T) {
	f := newFixture(t, nil)

	resp, err := f.svc.Register(context.Background(), &models.RegisterRequest{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Password:        "difference-engine",
		ConfirmPassword: "difference-engine",
	})
	require.NoError(t, err)
	assert.Equal(t, "mock-token", resp.Token)
	assert.Equal(t, 1, f.users.Calls("CreateUser"))
	assert.Equal(t, 1, f.users.Calls("Login"))
	assert.Len(t, f.svc.State().Users, 1)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Register(context.Background(), &models.RegisterRequest{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Password:        "difference-engine",
		ConfirmPassword: "analytical-engine",
	})

	var validationErr *errors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "confirmPassword", validationErr.Field)
	assert.Equal(t, 0, f.users.Calls("CreateUser"))
}

func TestLogin_BadCredentials(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Login(context.Background(), &models.AuthRequest{Email: "x@example.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", f.svc.State().Error)
}

func TestMe(t *testing.T) {
	f := newFixture(t, nil)
	f.users.AddUser(models.User{ID: 5, FirstName: "Grace", Email: "grace@example.com"})

	ctx := auth.WithToken(context.Background(), tokenFor(t, jwt.MapClaims{"sub": "5"}))
	profile, err := f.svc.Me(ctx)
	require.NoError(t, err)
	require.NotNil(t, profile.User)
	assert.Equal(t, "Grace", profile.User.FirstName)

	_, err = f.svc.Me(context.Background())
	assert.ErrorIs(t, err, auth.ErrNoToken)

	ctx = auth.WithToken(context.Background(), tokenFor(t, jwt.MapClaims{"sub": "grace", "email": "grace@example.com"}))
	profile, err = f.svc.Me(ctx)
	require.NoError(t, err)
	assert.Nil(t, profile.User)
	assert.Zero(t, profile.Claims.UserID)
	assert.Equal(t, "grace@example.com", profile.Claims.Email)
	assert.Equal(t, 1, f.users.Calls("GetUser"), "a token without a numeric id is not looked up")
}

func TestActor(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"no token", context.Background(), anonymousActor},
		{"malformed", auth.WithToken(context.Background(), "not-a-token"), anonymousActor},
		{"email", auth.WithToken(context.Background(), tokenFor(t, jwt.MapClaims{"userId": 4, "email": "ops@example.com"})), "ops@example.com"},
		{"subject", auth.WithToken(context.Background(), tokenFor(t, jwt.MapClaims{"sub": "grace"})), "grace"},
		{"numeric id only", auth.WithToken(context.Background(), tokenFor(t, jwt.MapClaims{"userId": 4})), "user:4"},
		{"no identifier", auth.WithToken(context.Background(), tokenFor(t, jwt.MapClaims{"roles": "ADMIN"})), anonymousActor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, actor(tt.ctx))
		})
	}
}

func TestWarmFromSnapshotCache(t *testing.T) {
	mr := miniredis.RunT(t)
	newCache := func() *repository.RedisSnapshotCache {
		return repository.NewRedisSnapshotCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	}

	first := newFixture(t, newCache())
	first.products.AddProduct(models.Product{Name: "Pen", Category: models.CategoryOther})
	first.users.AddUser(models.User{FirstName: "Ada"})
	require.NoError(t, first.svc.LoadAll(context.Background()))

	second := newFixture(t, newCache())
	assert.Equal(t, 3, second.svc.Warm(context.Background()))
	assert.Len(t, second.svc.State().Products, 1)
	assert.Len(t, second.svc.State().Users, 1)
	assert.Equal(t, 0, second.products.Calls("ListProducts"))

	_, err := first.svc.CreateProduct(context.Background(), &models.ProductRequest{Name: "Ink", Category: models.CategoryOther})
	require.NoError(t, err)

	third := newFixture(t, newCache())
	third.svc.Warm(context.Background())
	assert.Len(t, third.svc.State().Products, 2, "refetch after the write re-saved the snapshot")
}

func TestDashboardAndFilters(t *testing.T) {
	f := newFixture(t, nil)
	f.products.AddProduct(models.Product{ID: 1, Name: "Pen", Price: 2, Stock: 1, Category: models.CategoryOther})
	f.products.AddProduct(models.Product{ID: 2, Name: "Book", Price: 10, Stock: 8, Category: models.CategoryBooks, Active: models.Bool(false)})
	f.users.AddUser(models.User{ID: 1, FirstName: "Ada"})
	f.orders.AddOrder(models.Order{ID: 1, UserID: 1, Status: models.OrderStatusPending, TotalAmount: 12})
	require.NoError(t, f.svc.LoadAll(context.Background()))

	d := f.svc.Dashboard()
	assert.Equal(t, 12.0, d.Orders.TotalRevenue)
	assert.Equal(t, 1, d.LowStock)
	require.Len(t, d.RecentOrders, 1)
	assert.Equal(t, "Ada", d.RecentOrders[0].UserName)

	filtered := f.svc.FilterProducts(derived.ProductFilter{Active: derived.ActiveInactive})
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(2), filtered[0].ID)

	assert.Equal(t, map[int64]string{1: "Ada"}, f.svc.UserNames())

	estimate := f.svc.EstimateOrder([]models.OrderItemRequest{{ProductID: 1, Quantity: 3}, {ProductID: 9, Quantity: 1}})
	assert.Equal(t, 6.0, estimate.Estimate)
	assert.False(t, estimate.Items[0].InStock)
	assert.False(t, estimate.Items[1].Known)
}

func TestValidateStatusTransition(t *testing.T) {
	assert.NoError(t, ValidateStatusTransition(models.OrderStatusPending, models.OrderStatusConfirmed))
	assert.NoError(t, ValidateStatusTransition(models.OrderStatusShipped, models.OrderStatusCancelled))
	assert.ErrorIs(t, ValidateStatusTransition(models.OrderStatusDelivered, models.OrderStatusCancelled), errors.ErrTerminalStatus)
	assert.Error(t, ValidateStatusTransition(models.OrderStatusPending, models.OrderStatusShipped))
	assert.Error(t, ValidateStatusTransition(models.OrderStatusPending, "LOST"))
}

// slowProductClient holds ListProducts open until release is closed, so a
// later load of the product slice can overtake it.
type slowProductClient struct {
	*clients.MockProductClient
	fetched chan struct{}
	release chan struct{}
	err     error
}

func (c *slowProductClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := c.MockProductClient.ListProducts(ctx)
	close(c.fetched)
	<-c.release
	if c.err != nil {
		return nil, c.err
	}
	return products, err
}

func newOvertakenFixture(t *testing.T, listErr error) (*fixture, *slowProductClient) {
	t.Helper()
	f := newFixture(t, nil)
	f.products.AddProduct(models.Product{ID: 1, Name: "Phone", Stock: 3, Category: models.CategoryElectronics})
	f.products.AddProduct(models.Product{ID: 2, Name: "Novel", Stock: 5, Category: models.CategoryBooks})

	slow := &slowProductClient{
		MockProductClient: f.products,
		fetched:           make(chan struct{}),
		release:           make(chan struct{}),
		err:               listErr,
	}
	f.svc = NewBackoffice(slow, f.users, f.orders, store.New(f.cfg.Dashboard.NoticeLimit), nil, f.audit, f.publisher, f.cfg)
	return f, slow
}

func TestListProducts_OvertakenReturnsOwnList(t *testing.T) {
	f, slow := newOvertakenFixture(t, nil)

	type result struct {
		products []models.Product
		err      error
	}
	done := make(chan result, 1)
	go func() {
		products, err := f.svc.ListProducts(context.Background())
		done <- result{products, err}
	}()
	<-slow.fetched

	found, err := f.svc.SearchProducts(context.Background(), "phone")
	require.NoError(t, err)
	require.Len(t, found, 1)

	close(slow.release)
	var got result
	select {
	case got = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ListProducts did not return")
	}

	require.NoError(t, got.err)
	assert.Len(t, got.products, 2, "caller receives the list it fetched")

	state := f.svc.State()
	require.Len(t, state.Products, 1, "the newer search stays committed")
	assert.Equal(t, "Phone", state.Products[0].Name)
	assert.Equal(t, store.Query{Kind: QuerySearch, Arg: "phone"}, state.Queries[store.SliceProducts])

	books := derived.FilterProducts(got.products, derived.ProductFilter{Category: models.CategoryBooks})
	require.Len(t, books, 1)
	assert.Equal(t, "Novel", books[0].Name)
}

func TestListProducts_OvertakenFailure(t *testing.T) {
	listErr := &errors.ConnectivityError{Service: "product", Err: assert.AnError}
	f, slow := newOvertakenFixture(t, listErr)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.ListProducts(context.Background())
		done <- err
	}()
	<-slow.fetched

	_, err := f.svc.SearchProducts(context.Background(), "phone")
	require.NoError(t, err)

	close(slow.release)
	select {
	case err = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ListProducts did not return")
	}

	assert.ErrorIs(t, err, listErr, "the caller still sees its own failure")
	state := f.svc.State()
	assert.Empty(t, state.Error, "an overtaken failure does not reach the error slot")
	assert.Len(t, state.Products, 1)
}
