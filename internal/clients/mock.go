package clients

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/errors"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

// mockBackend holds the bookkeeping shared by the in-memory clients.
type mockBackend struct {
	mu     sync.Mutex
	nextID int64
	calls  map[string]int

	// Err fails every write, ListErr fails every list call.
	Err     error
	ListErr error
}

func (m *mockBackend) record(op string) {
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
}

// Calls reports how many times op was invoked.
func (m *mockBackend) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *mockBackend) newID() int64 {
	m.nextID++
	return m.nextID
}

func notFound(service, message string) error {
	return &errors.HTTPError{Service: service, StatusCode: http.StatusNotFound, Message: message}
}

// MockProductClient is a mock implementation for testing.
type MockProductClient struct {
	mockBackend
	products map[int64]*models.Product
}

var _ ProductClient = (*MockProductClient)(nil)

// NewMockProductClient creates a mock product client.
func NewMockProductClient() *MockProductClient {
	return &MockProductClient{products: make(map[int64]*models.Product)}
}

// AddProduct seeds a product, assigning an ID when it has none.
func (m *MockProductClient) AddProduct(p models.Product) models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		p.ID = m.newID()
	} else if p.ID > m.nextID {
		m.nextID = p.ID
	}
	m.products[p.ID] = &p
	return p
}

func (m *MockProductClient) list(op string, keep func(*models.Product) bool) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(op)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		if keep == nil || keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockProductClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	return m.list("ListProducts", nil)
}

func (m *MockProductClient) SearchProducts(ctx context.Context, name string) ([]models.Product, error) {
	needle := strings.ToLower(name)
	return m.list("SearchProducts", func(p *models.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	})
}

func (m *MockProductClient) ProductsByCategory(ctx context.Context, category models.Category) ([]models.Product, error) {
	return m.list("ProductsByCategory", func(p *models.Product) bool { return p.Category == category })
}

func (m *MockProductClient) AvailableProducts(ctx context.Context) ([]models.Product, error) {
	return m.list("AvailableProducts", func(p *models.Product) bool { return p.Stock > 0 && p.IsActive() })
}

func (m *MockProductClient) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetProduct")
	p, ok := m.products[id]
	if !ok {
		return nil, notFound("product", "Product not found")
	}
	cp := *p
	return &cp, nil
}

func (m *MockProductClient) CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateProduct")
	if m.Err != nil {
		return nil, m.Err
	}
	p := productFromRequest(m.newID(), req)
	m.products[p.ID] = &p
	return &p, nil
}

func (m *MockProductClient) UpdateProduct(ctx context.Context, id int64, req *models.ProductRequest) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateProduct")
	if m.Err != nil {
		return nil, m.Err
	}
	if _, ok := m.products[id]; !ok {
		return nil, notFound("product", "Product not found")
	}
	p := productFromRequest(id, req)
	m.products[id] = &p
	return &p, nil
}

func (m *MockProductClient) DeleteProduct(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteProduct")
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.products[id]; !ok {
		return notFound("product", "Product not found")
	}
	delete(m.products, id)
	return nil
}

func (m *MockProductClient) UpdateStock(ctx context.Context, id int64, stock int) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateStock")
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, notFound("product", "Product not found")
	}
	p.Stock = stock
	cp := *p
	return &cp, nil
}

func productFromRequest(id int64, req *models.ProductRequest) models.Product {
	return models.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Active:      req.Active,
	}
}

// MockUserClient is a mock implementation for testing.
type MockUserClient struct {
	mockBackend
	users     map[int64]*models.User
	passwords map[string]string

	// Token is returned by a successful Login.
	Token string
}

var _ UserClient = (*MockUserClient)(nil)

// NewMockUserClient creates a mock membership client.
func NewMockUserClient() *MockUserClient {
	return &MockUserClient{
		users:     make(map[int64]*models.User),
		passwords: make(map[string]string),
		Token:     "mock-token",
	}
}

// AddUser seeds a user, assigning an ID when it has none.
func (m *MockUserClient) AddUser(u models.User) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		u.ID = m.newID()
	} else if u.ID > m.nextID {
		m.nextID = u.ID
	}
	m.users[u.ID] = &u
	return u
}

func (m *MockUserClient) list(op string, keep func(*models.User) bool) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(op)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		if keep == nil || keep(u) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockUserClient) ListUsers(ctx context.Context) ([]models.User, error) {
	return m.list("ListUsers", nil)
}

func (m *MockUserClient) SearchUsers(ctx context.Context, lastName string) ([]models.User, error) {
	needle := strings.ToLower(lastName)
	return m.list("SearchUsers", func(u *models.User) bool {
		return strings.Contains(strings.ToLower(u.LastName), needle)
	})
}

func (m *MockUserClient) ActiveUsers(ctx context.Context) ([]models.User, error) {
	return m.list("ActiveUsers", func(u *models.User) bool { return u.IsActive() })
}

func (m *MockUserClient) GetUser(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetUser")
	u, ok := m.users[id]
	if !ok {
		return nil, notFound("membership", "User not found")
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserClient) CreateUser(ctx context.Context, req *models.UserRequest) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateUser")
	if m.Err != nil {
		return nil, m.Err
	}
	u := models.User{
		ID:          m.newID(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Active:      models.Bool(true),
	}
	m.users[u.ID] = &u
	if req.Password != "" {
		m.passwords[req.Email] = req.Password
	}
	return &u, nil
}

func (m *MockUserClient) UpdateUser(ctx context.Context, id int64, req *models.UserRequest) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateUser")
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, notFound("membership", "User not found")
	}
	u.FirstName = req.FirstName
	u.LastName = req.LastName
	u.Email = req.Email
	u.PhoneNumber = req.PhoneNumber
	cp := *u
	return &cp, nil
}

func (m *MockUserClient) DeleteUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteUser")
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.users[id]; !ok {
		return notFound("membership", "User not found")
	}
	delete(m.users, id)
	return nil
}

func (m *MockUserClient) DeactivateUser(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeactivateUser")
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, notFound("membership", "User not found")
	}
	u.Active = models.Bool(false)
	cp := *u
	return &cp, nil
}

func (m *MockUserClient) Login(ctx context.Context, req *models.AuthRequest) (*models.AuthResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Login")
	if m.Err != nil {
		return nil, m.Err
	}
	if pw, ok := m.passwords[req.Email]; !ok || pw != req.Password {
		return nil, &errors.HTTPError{Service: "membership", StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return &models.AuthResponse{Token: m.Token, ExpiresIn: 3600}, nil
}

// MockOrderClient is a mock implementation for testing.
type MockOrderClient struct {
	mockBackend
	orders map[int64]*models.Order
}

var _ OrderClient = (*MockOrderClient)(nil)

// NewMockOrderClient creates a mock order client.
func NewMockOrderClient() *MockOrderClient {
	return &MockOrderClient{orders: make(map[int64]*models.Order)}
}

// AddOrder seeds an order, assigning an ID when it has none.
func (m *MockOrderClient) AddOrder(o models.Order) models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID == 0 {
		o.ID = m.newID()
	} else if o.ID > m.nextID {
		m.nextID = o.ID
	}
	m.orders[o.ID] = &o
	return o
}

func (m *MockOrderClient) list(op string, keep func(*models.Order) bool) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(op)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.Order, 0, len(m.orders))
	for _, o := range m.orders {
		if keep == nil || keep(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockOrderClient) ListOrders(ctx context.Context) ([]models.Order, error) {
	return m.list("ListOrders", nil)
}

func (m *MockOrderClient) OrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return m.list("OrdersByStatus", func(o *models.Order) bool { return o.Status == status })
}

func (m *MockOrderClient) OrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return m.list("OrdersByUser", func(o *models.Order) bool { return o.UserID == userID })
}

func (m *MockOrderClient) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetOrder")
	o, ok := m.orders[id]
	if !ok {
		return nil, notFound("order", "Order not found")
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderClient) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateOrder")
	if m.Err != nil {
		return nil, m.Err
	}
	o := models.Order{
		ID:              m.newID(),
		UserID:          req.UserID,
		Status:          models.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
	}
	for _, item := range req.Items {
		o.Items = append(o.Items, models.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	m.orders[o.ID] = &o
	return &o, nil
}

func (m *MockOrderClient) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateOrderStatus")
	if m.Err != nil {
		return nil, m.Err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, notFound("order", "Order not found")
	}
	o.Status = status
	cp := *o
	return &cp, nil
}

func (m *MockOrderClient) DeleteOrder(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteOrder")
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.orders[id]; !ok {
		return notFound("order", "Order not found")
	}
	delete(m.orders, id)
	return nil
}
