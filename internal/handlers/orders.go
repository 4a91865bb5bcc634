package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

// ListOrders handles GET /api/v1/orders
// An optional ?status= narrows the list on the order service.
func (h *Handlers) ListOrders(c *gin.Context) {
	status := models.OrderStatus(c.Query("status"))

	orders, err := h.backoffice.OrdersByStatus(c.Request.Context(), status)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
		"names":  h.backoffice.UserNames(),
	})
}

// OrdersByStatus handles GET /api/v1/orders/status/:status
func (h *Handlers) OrdersByStatus(c *gin.Context) {
	status := models.OrderStatus(c.Param("status"))

	orders, err := h.backoffice.OrdersByStatus(c.Request.Context(), status)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// OrdersByUser handles GET /api/v1/orders/user/:userId
func (h *Handlers) OrdersByUser(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	orders, err := h.backoffice.OrdersByUser(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.backoffice.GetOrder(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CreateOrder handles POST /api/v1/orders
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind request", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.backoffice.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// EstimateOrder handles POST /api/v1/orders/estimate
// The total is a preview priced against the loaded catalogue.
func (h *Handlers) EstimateOrder(c *gin.Context) {
	var req struct {
		Items []models.OrderItemRequest `json:"items"`
	}
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.backoffice.EstimateOrder(req.Items))
}

// AdvanceOrder handles POST /api/v1/orders/:id/advance
func (h *Handlers) AdvanceOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.backoffice.AdvanceOrder(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.StatusUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		handleError(c, err)
		return
	}

	order, err := h.backoffice.SetOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder handles DELETE /api/v1/orders/:id
func (h *Handlers) CancelOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.backoffice.CancelOrder(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
