package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/auth"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
)

// RequestID propagates X-Request-ID, generating one when the caller sent
// none. The id is forwarded to every backend call made for the request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(auth.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(auth.HeaderRequestID, id)
		c.Request = c.Request.WithContext(auth.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// BearerToken captures the caller's token so the clients can forward it.
// Requests without a token pass through; the backends decide.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := auth.BearerToken(c.GetHeader("Authorization")); ok {
			c.Request = c.Request.WithContext(auth.WithToken(c.Request.Context(), token))
		}
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *logging.LoggerV2) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		requestID, _ := auth.RequestIDFromContext(c.Request.Context())
		fields := logging.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  requestID,
		}
		if c.Writer.Status() >= 500 {
			logger.Error("HTTP request", fields)
			return
		}
		logger.Info("HTTP request", fields)
	}
}
