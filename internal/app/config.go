package app

import (
	"fmt"
	"os"
	"strings"
)

// Поддерживаемые драйверы хранилища.
const (
	StorageMemory   = "memory"
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	StorageDriver string
	PostgresDSN   string
	MongoURI      string
	MongoDatabase string

	KafkaBrokers string

	JWTSecret   string
	CatalogPath string
}

// DefaultConfig возвращает конфигурацию для локального запуска:
// in-memory хранилище, без Kafka.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:      ":8080",
		MetricsAddr:   ":9090",
		StorageDriver: StorageMemory,
		MongoDatabase: "houseit",
		JWTSecret:     "dev-secret",
	}
}

// LoadConfigFromEnv читает конфигурацию из окружения поверх дефолтов.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("HOUSEIT_HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("HOUSEIT_METRICS_ADDR")); v != "" {
		cfg.MetricsAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("HOUSEIT_STORAGE_DRIVER")); v != "" {
		cfg.StorageDriver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("HOUSEIT_POSTGRES_DSN")); v != "" {
		cfg.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("HOUSEIT_MONGO_URI")); v != "" {
		cfg.MongoURI = v
	}
	if v := strings.TrimSpace(os.Getenv("HOUSEIT_MONGO_DATABASE")); v != "" {
		cfg.MongoDatabase = v
	}
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := os.Getenv("HOUSEIT_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("HOUSEIT_CATALOG_PATH")); v != "" {
		cfg.CatalogPath = v
	}

	return cfg
}

// Validate проверяет согласованность конфигурации.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("storage driver %q requires HOUSEIT_POSTGRES_DSN", c.StorageDriver)
		}
	case StorageMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("storage driver %q requires HOUSEIT_MONGO_URI", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret must not be empty")
	}
	return nil
}
