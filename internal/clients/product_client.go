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

const productsPath = "/api/v1/products"

// ProductClient provides operations against the product service.
type ProductClient interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	SearchProducts(ctx context.Context, name string) ([]models.Product, error)
	ProductsByCategory(ctx context.Context, category models.Category) ([]models.Product, error)
	AvailableProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *models.ProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	UpdateStock(ctx context.Context, id int64, stock int) (*models.Product, error)
}

// HTTPProductClient implements ProductClient using HTTP.
type HTTPProductClient struct {
	rest   *restClient
	logger *logging.LoggerV2
}

var _ ProductClient = (*HTTPProductClient)(nil)

// NewHTTPProductClient creates a new HTTP-based product client.
func NewHTTPProductClient(cfg config.ServiceConfig, logger *logging.LoggerV2) *HTTPProductClient {
	return &HTTPProductClient{
		rest:   newRESTClient("product", cfg, logger),
		logger: logger,
	}
}

func (c *HTTPProductClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	return getList[models.Product](ctx, c.rest, productsPath)
}

func (c *HTTPProductClient) SearchProducts(ctx context.Context, name string) ([]models.Product, error) {
	c.logger.Debug("Searching products", logging.Fields{"name": name})
	return getList[models.Product](ctx, c.rest, productsPath+"/search?name="+url.QueryEscape(name))
}

func (c *HTTPProductClient) ProductsByCategory(ctx context.Context, category models.Category) ([]models.Product, error) {
	return getList[models.Product](ctx, c.rest, productsPath+"/category/"+url.PathEscape(string(category)))
}

func (c *HTTPProductClient) AvailableProducts(ctx context.Context) ([]models.Product, error) {
	return getList[models.Product](ctx, c.rest, productsPath+"/available")
}

func (c *HTTPProductClient) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return c.productCall(ctx, http.MethodGet, fmt.Sprintf("%s/%d", productsPath, id), nil)
}

func (c *HTTPProductClient) CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c.logger.Info("Creating product", logging.Fields{"name": req.Name, "category": req.Category})
	return c.productCall(ctx, http.MethodPost, productsPath, req)
}

func (c *HTTPProductClient) UpdateProduct(ctx context.Context, id int64, req *models.ProductRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c.logger.Info("Updating product", logging.Fields{"product_id": id})
	return c.productCall(ctx, http.MethodPut, fmt.Sprintf("%s/%d", productsPath, id), req)
}

func (c *HTTPProductClient) DeleteProduct(ctx context.Context, id int64) error {
	c.logger.Info("Deleting product", logging.Fields{"product_id": id})
	return c.rest.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", productsPath, id), nil, nil)
}

func (c *HTTPProductClient) UpdateStock(ctx context.Context, id int64, stock int) (*models.Product, error) {
	req := &models.StockUpdateRequest{Stock: stock}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c.logger.Info("Updating stock", logging.Fields{"product_id": id, "stock": stock})
	return c.productCall(ctx, http.MethodPatch, fmt.Sprintf("%s/%d/stock", productsPath, id), req)
}

// productCall returns nil without error when the service answers 204.
func (c *HTTPProductClient) productCall(ctx context.Context, method, path string, body interface{}) (*models.Product, error) {
	var product models.Product
	if err := c.rest.do(ctx, method, path, body, &product); err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}
