package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

// Login handles POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req models.AuthRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.backoffice.Login(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Register handles POST /api/v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.backoffice.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Me handles GET /api/v1/me
func (h *Handlers) Me(c *gin.Context) {
	profile, err := h.backoffice.Me(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
