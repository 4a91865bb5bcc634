package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/derived"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

// ListProducts handles GET /api/v1/products
// The full catalogue is reloaded, then search/category/available/active
// are applied locally.
func (h *Handlers) ListProducts(c *gin.Context) {
	var filter derived.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
		return
	}
	filter.Active = derived.ParseActiveFilter(string(filter.Active))
	if filter.Category != "" && !filter.Category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category " + string(filter.Category)})
		return
	}

	catalogue, err := h.backoffice.ListProducts(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	products := derived.FilterProducts(catalogue, filter)
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
		"filter":   filter,
	})
}

// SearchProducts handles GET /api/v1/products/search?name=
func (h *Handlers) SearchProducts(c *gin.Context) {
	products, err := h.backoffice.SearchProducts(c.Request.Context(), c.Query("name"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// ProductsByCategory handles GET /api/v1/products/category/:category
func (h *Handlers) ProductsByCategory(c *gin.Context) {
	category := models.Category(c.Param("category"))

	products, err := h.backoffice.ProductsByCategory(c.Request.Context(), category)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// AvailableProducts handles GET /api/v1/products/available
func (h *Handlers) AvailableProducts(c *gin.Context) {
	products, err := h.backoffice.AvailableProducts(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// GetProduct handles GET /api/v1/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := h.backoffice.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	var req models.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.backoffice.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/:id
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.backoffice.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.backoffice.DeleteProduct(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateStock handles PATCH /api/v1/products/:id/stock
func (h *Handlers) UpdateStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.StockUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.backoffice.UpdateStock(c.Request.Context(), id, req.Stock)
	if err != nil {
		handleError(c, err)
		return
	}
	if product == nil {
		c.JSON(http.StatusOK, gin.H{"id": id, "stock": req.Stock})
		return
	}
	c.JSON(http.StatusOK, product)
}
