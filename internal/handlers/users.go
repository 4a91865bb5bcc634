package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

// ListUsers handles GET /api/v1/users
// ?active=true switches to the active-only view, which later refreshes keep.
func (h *Handlers) ListUsers(c *gin.Context) {
	var (
		users []models.User
		err   error
	)
	if active, _ := strconv.ParseBool(c.Query("active")); active {
		users, err = h.backoffice.ActiveUsers(c.Request.Context())
	} else {
		users, err = h.backoffice.ListUsers(c.Request.Context())
	}
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// ActiveUsers handles GET /api/v1/users/active
func (h *Handlers) ActiveUsers(c *gin.Context) {
	users, err := h.backoffice.ActiveUsers(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// SearchUsers handles GET /api/v1/users/search?lastName=
func (h *Handlers) SearchUsers(c *gin.Context) {
	users, err := h.backoffice.SearchUsers(c.Request.Context(), c.Query("lastName"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// UserNames handles GET /api/v1/users/names
func (h *Handlers) UserNames(c *gin.Context) {
	c.JSON(http.StatusOK, h.backoffice.UserNames())
}

// GetUser handles GET /api/v1/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.backoffice.GetUser(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser handles POST /api/v1/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var req models.UserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.backoffice.CreateUser(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateUser handles PUT /api/v1/users/:id
func (h *Handlers) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.UserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.backoffice.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/users/:id
func (h *Handlers) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.backoffice.DeleteUser(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeactivateUser handles PATCH /api/v1/users/:id/deactivate
func (h *Handlers) DeactivateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.backoffice.DeactivateUser(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	if user == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, user)
}
