package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/store"
)

const defaultAuditLimit = 50

// Dashboard handles GET /api/v1/dashboard
// ?refresh=true reloads the three lists before aggregating.
func (h *Handlers) Dashboard(c *gin.Context) {
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		if err := h.backoffice.LoadAll(c.Request.Context()); err != nil {
			handleError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, h.backoffice.Dashboard())
}

// State handles GET /api/v1/state
func (h *Handlers) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.backoffice.State())
}

// ClearError handles DELETE /api/v1/state/error
func (h *Handlers) ClearError(c *gin.Context) {
	h.backoffice.ClearError()
	c.Status(http.StatusNoContent)
}

// Refresh handles POST /api/v1/refresh and POST /api/v1/refresh/:slice
func (h *Handlers) Refresh(c *gin.Context) {
	slice := store.Slice(c.Param("slice"))
	if slice == "" {
		if err := h.backoffice.LoadAll(c.Request.Context()); err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, h.backoffice.State())
		return
	}

	if !knownSlice(slice) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown slice " + string(slice)})
		return
	}
	if err := h.backoffice.Refresh(c.Request.Context(), slice); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.backoffice.State())
}

// Notifications handles GET /api/v1/notifications
// Returned notices are removed from the queue.
func (h *Handlers) Notifications(c *gin.Context) {
	notices := h.backoffice.Notices()
	c.JSON(http.StatusOK, gin.H{"notifications": notices, "count": len(notices)})
}

// AuditTrail handles GET /api/v1/audit
func (h *Handlers) AuditTrail(c *gin.Context) {
	limit := defaultAuditLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := h.backoffice.AuditTrail(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read audit log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

func knownSlice(slice store.Slice) bool {
	for _, s := range store.Slices {
		if s == slice {
			return true
		}
	}
	return false
}
