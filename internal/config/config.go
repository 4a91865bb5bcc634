package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server            ServerConfig    `yaml:"server"`
	Log               LogConfig       `yaml:"log"`
	MembershipService ServiceConfig   `yaml:"membership_service"`
	ProductService    ServiceConfig   `yaml:"product_service"`
	OrderService      ServiceConfig   `yaml:"order_service"`
	Database          DatabaseConfig  `yaml:"database"`
	Redis             RedisConfig     `yaml:"redis"`
	Kafka             KafkaConfig     `yaml:"kafka"`
	Features          FeatureConfig   `yaml:"features"`
	Dashboard         DashboardConfig `yaml:"dashboard"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	Mode         string        `yaml:"mode"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServiceConfig locates one backend. A zero Timeout leaves calls unbounded,
// which is the default.
type ServiceConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	APIKey  string        `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Name         string        `yaml:"name"`
	SSLMode      string        `yaml:"sslmode"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxLifetime  time.Duration `yaml:"max_lifetime"`
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	AuditTopic    string   `yaml:"audit_topic"`
	EntityTopics  []string `yaml:"entity_topics"`
	ConsumerGroup string   `yaml:"consumer_group"`
}

type FeatureConfig struct {
	EnableAudit         bool `yaml:"enable_audit"`
	EnableSnapshotCache bool `yaml:"enable_snapshot_cache"`
	EnableEvents        bool `yaml:"enable_events"`
	EnableEventConsumer bool `yaml:"enable_event_consumer"`
}

type DashboardConfig struct {
	RecentOrders      int `yaml:"recent_orders"`
	TopProducts       int `yaml:"top_products"`
	LowStockThreshold int `yaml:"low_stock_threshold"`
	NoticeLimit       int `yaml:"notice_limit"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			Mode:         "release",
		},
		Log: LogConfig{Level: "info", Format: "json"},
		MembershipService: ServiceConfig{
			BaseURL: "http://localhost:8081",
		},
		ProductService: ServiceConfig{
			BaseURL: "http://localhost:8082",
		},
		OrderService: ServiceConfig{
			BaseURL: "http://localhost:8083",
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "acme",
			Password:     "acme",
			Name:         "acme_backoffice",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			MaxLifetime:  5 * time.Minute,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
			TTL:  10 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			AuditTopic:    "backoffice.audit",
			EntityTopics:  []string{"orders.events", "products.events", "users.events"},
			ConsumerGroup: "backoffice",
		},
		Dashboard: DashboardConfig{
			RecentOrders:      5,
			TopProducts:       5,
			LowStockThreshold: 5,
			NoticeLimit:       20,
		},
	}
}

// Load reads .env, then the optional YAML file named by
// BACKOFFICE_CONFIG_FILE, then environment variables. Later sources win.
func Load() (*Config, error) {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("BACKOFFICE_CONFIG_FILE"); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.Mode = getEnvString("GIN_MODE", cfg.Server.Mode)

	cfg.Log.Level = getEnvString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnvString("LOG_FORMAT", cfg.Log.Format)

	applyServiceEnv("MEMBERSHIP", &cfg.MembershipService)
	applyServiceEnv("PRODUCT", &cfg.ProductService)
	applyServiceEnv("ORDER", &cfg.OrderService)

	cfg.Database.Host = getEnvString("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnvString("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnvString("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnvString("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnvString("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.MaxLifetime = getEnvDuration("DB_MAX_LIFETIME", cfg.Database.MaxLifetime)

	cfg.Redis.Host = getEnvString("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = getEnvInt("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = getEnvString("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTL = getEnvDuration("REDIS_TTL", cfg.Redis.TTL)

	cfg.Kafka.Brokers = getEnvList("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.AuditTopic = getEnvString("KAFKA_AUDIT_TOPIC", cfg.Kafka.AuditTopic)
	cfg.Kafka.EntityTopics = getEnvList("KAFKA_ENTITY_TOPICS", cfg.Kafka.EntityTopics)
	cfg.Kafka.ConsumerGroup = getEnvString("KAFKA_CONSUMER_GROUP", cfg.Kafka.ConsumerGroup)

	cfg.Features.EnableAudit = getEnvBool("ENABLE_AUDIT", cfg.Features.EnableAudit)
	cfg.Features.EnableSnapshotCache = getEnvBool("ENABLE_SNAPSHOT_CACHE", cfg.Features.EnableSnapshotCache)
	cfg.Features.EnableEvents = getEnvBool("ENABLE_EVENTS", cfg.Features.EnableEvents)
	cfg.Features.EnableEventConsumer = getEnvBool("ENABLE_EVENT_CONSUMER", cfg.Features.EnableEventConsumer)

	cfg.Dashboard.RecentOrders = getEnvInt("DASHBOARD_RECENT_ORDERS", cfg.Dashboard.RecentOrders)
	cfg.Dashboard.TopProducts = getEnvInt("DASHBOARD_TOP_PRODUCTS", cfg.Dashboard.TopProducts)
	cfg.Dashboard.LowStockThreshold = getEnvInt("DASHBOARD_LOW_STOCK_THRESHOLD", cfg.Dashboard.LowStockThreshold)
	cfg.Dashboard.NoticeLimit = getEnvInt("DASHBOARD_NOTICE_LIMIT", cfg.Dashboard.NoticeLimit)
}

func applyServiceEnv(prefix string, svc *ServiceConfig) {
	svc.BaseURL = strings.TrimRight(getEnvString(prefix+"_SERVICE_URL", svc.BaseURL), "/")
	svc.Timeout = getEnvDuration(prefix+"_SERVICE_TIMEOUT", svc.Timeout)
	svc.APIKey = getEnvString(prefix+"_SERVICE_API_KEY", svc.APIKey)
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server port must be positive, got %d", c.Server.Port)
	}
	services := map[string]ServiceConfig{
		"membership": c.MembershipService,
		"product":    c.ProductService,
		"order":      c.OrderService,
	}
	for name, svc := range services {
		if svc.BaseURL == "" {
			return fmt.Errorf("%s service base URL is required", name)
		}
	}
	if c.Dashboard.LowStockThreshold < 0 {
		return fmt.Errorf("low stock threshold cannot be negative")
	}
	if c.Features.EnableEvents || c.Features.EnableEventConsumer {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required when events are enabled")
		}
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("15s") or plain seconds ("15").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
