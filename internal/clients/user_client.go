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

const (
	usersPath = "/api/v1/users"
	loginPath = "/api/v1/auth/login"
)

// UserClient provides operations against the membership service.
type UserClient interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	SearchUsers(ctx context.Context, lastName string) ([]models.User, error)
	ActiveUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, req *models.UserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, req *models.UserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	DeactivateUser(ctx context.Context, id int64) (*models.User, error)
	Login(ctx context.Context, req *models.AuthRequest) (*models.AuthResponse, error)
}

// HTTPUserClient implements UserClient using HTTP.
type HTTPUserClient struct {
	rest   *restClient
	logger *logging.LoggerV2
}

var _ UserClient = (*HTTPUserClient)(nil)

// NewHTTPUserClient creates a new HTTP-based membership client.
func NewHTTPUserClient(cfg config.ServiceConfig, logger *logging.LoggerV2) *HTTPUserClient {
	return &HTTPUserClient{
		rest:   newRESTClient("membership", cfg, logger),
		logger: logger,
	}
}

func (c *HTTPUserClient) ListUsers(ctx context.Context) ([]models.User, error) {
	return getList[models.User](ctx, c.rest, usersPath)
}

func (c *HTTPUserClient) SearchUsers(ctx context.Context, lastName string) ([]models.User, error) {
	c.logger.Debug("Searching users", logging.Fields{"last_name": lastName})
	return getList[models.User](ctx, c.rest, usersPath+"/search?lastName="+url.QueryEscape(lastName))
}

func (c *HTTPUserClient) ActiveUsers(ctx context.Context) ([]models.User, error) {
	return getList[models.User](ctx, c.rest, usersPath+"/active")
}

func (c *HTTPUserClient) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return c.userCall(ctx, http.MethodGet, fmt.Sprintf("%s/%d", usersPath, id), nil)
}

func (c *HTTPUserClient) CreateUser(ctx context.Context, req *models.UserRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c.logger.Info("Creating user", logging.Fields{"email": req.Email})
	return c.userCall(ctx, http.MethodPost, usersPath, req)
}

func (c *HTTPUserClient) UpdateUser(ctx context.Context, id int64, req *models.UserRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c.logger.Info("Updating user", logging.Fields{"user_id": id})
	return c.userCall(ctx, http.MethodPut, fmt.Sprintf("%s/%d", usersPath, id), req)
}

func (c *HTTPUserClient) DeleteUser(ctx context.Context, id int64) error {
	c.logger.Info("Deleting user", logging.Fields{"user_id": id})
	return c.rest.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", usersPath, id), nil, nil)
}

func (c *HTTPUserClient) DeactivateUser(ctx context.Context, id int64) (*models.User, error) {
	c.logger.Info("Deactivating user", logging.Fields{"user_id": id})
	return c.userCall(ctx, http.MethodPatch, fmt.Sprintf("%s/%d/deactivate", usersPath, id), nil)
}

// Login exchanges credentials for a bearer token.
func (c *HTTPUserClient) Login(ctx context.Context, req *models.AuthRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c.logger.Debug("Logging in", logging.Fields{"email": req.Email})

	var resp models.AuthResponse
	if err := c.rest.do(ctx, http.MethodPost, loginPath, req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, nil
	}
	return &resp, nil
}

func (c *HTTPUserClient) userCall(ctx context.Context, method, path string, body interface{}) (*models.User, error) {
	var user models.User
	if err := c.rest.do(ctx, method, path, body, &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}
