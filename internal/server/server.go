package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/config"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
)

type Server struct {
	config     *config.Config
	router     *gin.Engine
	handlers   *handlers.Handlers
	httpServer *http.Server
	logger     *logging.LoggerV2
}

func New(h *handlers.Handlers, cfg *config.Config) *Server {
	gin.SetMode(cfg.Server.Mode)
	logger := logging.NewLoggerV2("server")

	router := gin.New()
	router.Use(gin.Recovery(), handlers.RequestID(), handlers.BearerToken(), handlers.RequestLogger(logger))

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		logger:   logger,
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", h.Health)
	s.router.GET("/ready", h.Ready)
	s.router.GET("/live", h.Live)
	s.router.GET("/version", h.Version)
	s.router.GET("/debug", h.Debug)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/dashboard", h.Dashboard)
		v1.GET("/state", h.State)
		v1.DELETE("/state/error", h.ClearError)
		v1.POST("/refresh", h.Refresh)
		v1.POST("/refresh/:slice", h.Refresh)
		v1.GET("/notifications", h.Notifications)
		v1.GET("/audit", h.AuditTrail)

		v1.POST("/auth/login", h.Login)
		v1.POST("/auth/register", h.Register)
		v1.GET("/me", h.Me)
	}

	products := v1.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/search", h.SearchProducts)
		products.GET("/category/:category", h.ProductsByCategory)
		products.GET("/available", h.AvailableProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("", h.CreateProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
		products.PATCH("/:id/stock", h.UpdateStock)
	}

	users := v1.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/active", h.ActiveUsers)
		users.GET("/search", h.SearchUsers)
		users.GET("/names", h.UserNames)
		users.GET("/:id", h.GetUser)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
		users.PATCH("/:id/deactivate", h.DeactivateUser)
	}

	orders := v1.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/status/:status", h.OrdersByStatus)
		orders.GET("/user/:userId", h.OrdersByUser)
		orders.GET("/:id", h.GetOrder)
		orders.POST("", h.CreateOrder)
		orders.POST("/estimate", h.EstimateOrder)
		orders.POST("/:id/advance", h.AdvanceOrder)
		orders.PUT("/:id/status", h.UpdateOrderStatus)
		orders.DELETE("/:id", h.CancelOrder)
	}
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting server", logging.Fields{"addr": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
