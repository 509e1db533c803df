package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"

	defaultDSN         = "host=localhost user=postgres password=postgres dbname=starpos port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:8081"
)

type Config struct {
	HTTPPort    string
	CORSOrigins string
	LogLevel    string

	StorageDriver string
	DatabaseDSN   string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	JWTSecret string
	NodeID    int64

	StockPolicy    string // allow | clamp | reject
	LowStockRatio  float64
	BusinessName   string
	MetricsEnabled bool
}

// Load reads STARPOS_* environment variables, optionally seeded from a .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("STARPOS")
	v.AutomaticEnv()

	v.SetDefault("http_port", "8080")
	v.SetDefault("cors_allowed_origins", defaultCORSOrigins)
	v.SetDefault("log_level", "info")
	v.SetDefault("storage_driver", DriverSQLite)
	v.SetDefault("database_dsn", defaultDSN)
	v.SetDefault("sqlite_path", "starpos.db")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_prefix", "starpos:")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("node_id", 1)
	v.SetDefault("stock_policy", "allow")
	v.SetDefault("low_stock_ratio", 0.2)
	v.SetDefault("business_name", "StarBlack")
	v.SetDefault("metrics_enabled", true)

	cfg := &Config{
		HTTPPort:       v.GetString("http_port"),
		CORSOrigins:    v.GetString("cors_allowed_origins"),
		LogLevel:       v.GetString("log_level"),
		StorageDriver:  strings.ToLower(strings.TrimSpace(v.GetString("storage_driver"))),
		DatabaseDSN:    v.GetString("database_dsn"),
		SQLitePath:     v.GetString("sqlite_path"),
		RedisAddr:      v.GetString("redis_addr"),
		RedisPassword:  v.GetString("redis_password"),
		RedisDB:        v.GetInt("redis_db"),
		RedisPrefix:    v.GetString("redis_prefix"),
		JWTSecret:      strings.TrimSpace(v.GetString("jwt_secret")),
		NodeID:         v.GetInt64("node_id"),
		StockPolicy:    strings.ToLower(strings.TrimSpace(v.GetString("stock_policy"))),
		LowStockRatio:  v.GetFloat64("low_stock_ratio"),
		BusinessName:   v.GetString("business_name"),
		MetricsEnabled: v.GetBool("metrics_enabled"),
	}

	return cfg, nil
}

// Validate rejects unusable settings and returns warnings for insecure defaults.
func (c *Config) Validate() ([]string, error) {
	var warnings []string

	if c.JWTSecret == "" {
		return nil, errors.New("STARPOS_JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		return nil, errors.New("STARPOS_JWT_SECRET must be at least 32 characters")
	}

	switch c.StorageDriver {
	case DriverSQLite, DriverPostgres, DriverRedis, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	switch c.StockPolicy {
	case "allow", "clamp", "reject":
	default:
		return nil, fmt.Errorf("unknown stock policy %q", c.StockPolicy)
	}

	if c.LowStockRatio <= 0 || c.LowStockRatio >= 1 {
		return nil, fmt.Errorf("low stock ratio must be between 0 and 1, got %v", c.LowStockRatio)
	}
	if c.NodeID < 0 || c.NodeID > 1023 {
		return nil, fmt.Errorf("node id must be within 0..1023, got %d", c.NodeID)
	}

	if c.StorageDriver == DriverPostgres && c.DatabaseDSN == defaultDSN {
		warnings = append(warnings, "STARPOS_DATABASE_DSN uses the default value, set your own Postgres connection for production")
	}
	if c.StorageDriver == DriverMemory {
		warnings = append(warnings, "memory storage driver keeps nothing across restarts")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		warnings = append(warnings, "STARPOS_CORS_ALLOWED_ORIGINS uses the default value")
	}

	return warnings, nil
}
