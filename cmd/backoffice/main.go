package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/clients"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/config"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/events"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/repository"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/server"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/service"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/store"

	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewLoggerV2("backoffice").Fatal("Invalid configuration", logging.Fields{"error": err.Error()})
	}
	logging.Configure(cfg.Log.Level, cfg.Log.Format)
	defer logging.Sync()

	logger := logging.NewLoggerV2("backoffice")
	logging.Infof("Starting backoffice on port %d", cfg.Server.Port)

	productClient := clients.NewHTTPProductClient(cfg.ProductService, logger)
	userClient := clients.NewHTTPUserClient(cfg.MembershipService, logger)
	orderClient := clients.NewHTTPOrderClient(cfg.OrderService, logger)

	var (
		cache     repository.SnapshotCache
		audit     repository.AuditLog
		publisher events.Publisher
		checks    = map[string]handlers.ReadinessCheck{}
	)

	if cfg.Features.EnableAudit {
		db, err := initDatabase(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
		}
		defer db.Close()

		auditLog := repository.NewPostgresAuditLog(db, logger)
		if err := auditLog.EnsureSchema(context.Background()); err != nil {
			logger.Fatal("Failed to prepare audit table", logging.Fields{"error": err.Error()})
		}
		audit = auditLog
		checks["database"] = db.PingContext
	}

	if cfg.Features.EnableSnapshotCache {
		snapshotCache := repository.NewRedisSnapshotCache(cfg.Redis)
		defer snapshotCache.Close()
		cache = snapshotCache
		checks["redis"] = snapshotCache.Ping
	}

	if cfg.Features.EnableEvents {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	st := store.New(cfg.Dashboard.NoticeLimit)
	backoffice := service.NewBackoffice(productClient, userClient, orderClient, st, cache, audit, publisher, cfg)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	backoffice.Warm(startCtx)
	if err := backoffice.LoadAll(startCtx); err != nil {
		// The backends may come up later; the error slot already holds the message.
		logger.Warn("Initial load incomplete", logging.Fields{"error": err.Error()})
	}
	cancelStart()

	h := handlers.NewHandlers(backoffice, cfg)
	for name, check := range checks {
		h.AddReadinessCheck(name, check)
	}

	srv := server.New(h, cfg)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":                  cfg.Server.Port,
			"enable_audit":          cfg.Features.EnableAudit,
			"enable_snapshot_cache": cfg.Features.EnableSnapshotCache,
			"enable_events":         cfg.Features.EnableEvents,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	var eventConsumer *events.KafkaConsumer
	if cfg.Features.EnableEventConsumer {
		eventConsumer = events.NewKafkaConsumer(cfg.Kafka, backoffice, logger)
		go func() {
			if err := eventConsumer.Start(context.Background()); err != nil {
				logger.Error("Event consumer failed", logging.Fields{"error": err.Error()})
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if eventConsumer != nil {
		eventConsumer.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logging.Info("Database connected", logging.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	})

	return db, nil
}
