package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/auth"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/config"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/errors"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/service"
)

// ReadinessCheck reports whether a dependency can serve requests.
type ReadinessCheck func(ctx context.Context) error

// Handlers holds all HTTP handlers for the back office.
type Handlers struct {
	backoffice *service.Backoffice
	config     *config.Config
	checks     map[string]ReadinessCheck
	logger     *logging.LoggerV2
}

// NewHandlers creates a new handlers instance.
func NewHandlers(backoffice *service.Backoffice, cfg *config.Config) *Handlers {
	return &Handlers{
		backoffice: backoffice,
		config:     cfg,
		checks:     make(map[string]ReadinessCheck),
		logger:     logging.NewLoggerV2("handlers"),
	}
}

// AddReadinessCheck registers a dependency probed by GET /ready.
func (h *Handlers) AddReadinessCheck(name string, check ReadinessCheck) {
	h.checks[name] = check
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// handleError maps a service error to a status code. The body always carries
// the same message the error slot shows.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var refreshErr *errors.RefreshError
	if errors.As(err, &refreshErr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":         errors.Message(err),
			"write_applied": true,
		})
		return
	}

	var validationErr *errors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   validationErr.Message,
			"field":   validationErr.Field,
			"details": validationErr.Details,
		})
		return
	}

	if errors.Is(err, errors.ErrTerminalStatus) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	if errors.Is(err, auth.ErrNoToken) || errors.Is(err, jwt.ErrTokenMalformed) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var httpErr *errors.HTTPError
	if errors.As(err, &httpErr) {
		status := httpErr.StatusCode
		if status < 400 || status > 499 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": httpErr.Message})
		return
	}

	if errors.Is(err, errors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var connErr *errors.ConnectivityError
	var decodeErr *errors.DecodeError
	if errors.As(err, &connErr) || errors.As(err, &decodeErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": errors.Message(err)})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
