package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKOFFICE_CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8081", cfg.MembershipService.BaseURL)
	assert.Equal(t, "http://localhost:8082", cfg.ProductService.BaseURL)
	assert.Equal(t, "http://localhost:8083", cfg.OrderService.BaseURL)
	assert.Equal(t, 5, cfg.Dashboard.LowStockThreshold)
	assert.False(t, cfg.Features.EnableAudit)

	for _, svc := range []ServiceConfig{cfg.MembershipService, cfg.ProductService, cfg.OrderService} {
		assert.Zero(t, svc.Timeout, "backend calls are unbounded unless configured")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BACKOFFICE_CONFIG_FILE", "")
	t.Setenv("PRODUCT_SERVICE_URL", "http://products.internal/")
	t.Setenv("ORDER_SERVICE_TIMEOUT", "3")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("ENABLE_EVENTS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://products.internal", cfg.ProductService.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.OrderService.Timeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Features.EnableEvents)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backoffice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
membership_service:
  base_url: http://members:8081
  timeout: 2s
dashboard:
  low_stock_threshold: 3
`), 0o600))

	t.Setenv("BACKOFFICE_CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "9191")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "http://members:8081", cfg.MembershipService.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.MembershipService.Timeout)
	assert.Equal(t, 3, cfg.Dashboard.LowStockThreshold)
	assert.Equal(t, 5, cfg.Dashboard.RecentOrders)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("BACKOFFICE_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.OrderService.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Features.EnableEventConsumer = true
	cfg.Kafka.Brokers = nil
	assert.Error(t, cfg.Validate())
}

func TestConnectionString(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "host=localhost port=5432 user=acme password=acme dbname=acme_backoffice sslmode=disable", cfg.Database.ConnectionString())
}
