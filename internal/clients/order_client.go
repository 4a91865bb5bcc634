package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/config"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

const ordersPath = "/api/v1/orders"

// OrderClient provides operations against the order service.
type OrderClient interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	OrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	OrdersByUser(ctx context.Context, userID int64) ([]models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// HTTPOrderClient implements OrderClient using HTTP.
type HTTPOrderClient struct {
	rest   *restClient
	logger *logging.LoggerV2
}

var _ OrderClient = (*HTTPOrderClient)(nil)

// NewHTTPOrderClient creates a new HTTP-based order client.
func NewHTTPOrderClient(cfg config.ServiceConfig, logger *logging.LoggerV2) *HTTPOrderClient {
	return &HTTPOrderClient{
		rest:   newRESTClient("order", cfg, logger),
		logger: logger,
	}
}

func (c *HTTPOrderClient) ListOrders(ctx context.Context) ([]models.Order, error) {
	return getList[models.Order](ctx, c.rest, ordersPath)
}

func (c *HTTPOrderClient) OrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return getList[models.Order](ctx, c.rest, ordersPath+"/status/"+url.PathEscape(string(status)))
}

func (c *HTTPOrderClient) OrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return getList[models.Order](ctx, c.rest, fmt.Sprintf("%s/user/%d", ordersPath, userID))
}

func (c *HTTPOrderClient) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return c.orderCall(ctx, http.MethodGet, fmt.Sprintf("%s/%d", ordersPath, id), nil)
}

func (c *HTTPOrderClient) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c.logger.Info("Creating order", logging.Fields{
		"user_id":    req.UserID,
		"item_count": len(req.Items),
	})
	return c.orderCall(ctx, http.MethodPost, ordersPath, req)
}

func (c *HTTPOrderClient) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	req := &models.StatusUpdateRequest{Status: status}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c.logger.Info("Updating order status", logging.Fields{
		"order_id":   id,
		"new_status": status,
	})
	return c.orderCall(ctx, http.MethodPut, fmt.Sprintf("%s/%d/status", ordersPath, id), req)
}

func (c *HTTPOrderClient) DeleteOrder(ctx context.Context, id int64) error {
	c.logger.Info("Deleting order", logging.Fields{"order_id": id})
	return c.rest.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", ordersPath, id), nil, nil)
}

func (c *HTTPOrderClient) orderCall(ctx context.Context, method, path string, body interface{}) (*models.Order, error) {
	var order models.Order
	if err := c.rest.do(ctx, method, path, body, &order); err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}
