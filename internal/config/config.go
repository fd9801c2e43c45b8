package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration read from the environment
type Config struct {
	Environment string
	Port        string
	LogLevel    string
	LogFile     string
	CORSOrigins []string

	DatabaseDriver string // "postgres" or "sqlite"
	DatabaseURL    string

	JWTSecret []byte

	RedisHost     string
	RedisPort     string
	RedisPassword string

	AWSRegion    string
	S3Bucket     string
	CDNBaseURL   string
	SESFromEmail string
	AppBaseURL   string

	ElasticsearchURL string

	OTelEnabled  bool
	OTelEndpoint string

	StatsLocation *time.Location
}

// Load reads .env (when present) and the process environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:      getEnvOrDefault("ENVIRONMENT", "development"),
		Port:             getEnvOrDefault("PORT", "8787"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:          getEnvOrDefault("LOG_FILE", "puffbuddy.log"),
		CORSOrigins:      splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
		DatabaseDriver:   getEnvOrDefault("DATABASE_DRIVER", "postgres"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        []byte(os.Getenv("JWT_SECRET")),
		RedisHost:        os.Getenv("REDIS_HOST"),
		RedisPort:        getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		AWSRegion:        getEnvOrDefault("AWS_REGION", "us-east-1"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		CDNBaseURL:       os.Getenv("CDN_BASE_URL"),
		SESFromEmail:     os.Getenv("SES_FROM_EMAIL"),
		AppBaseURL:       getEnvOrDefault("APP_BASE_URL", "http://localhost:5173"),
		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),
		OTelEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint:     getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
	}

	loc, err := time.LoadLocation(getEnvOrDefault("STATS_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_TIMEZONE: %w", err)
	}
	cfg.StatsLocation = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings the server cannot start without
func (c *Config) Validate() error {
	if len(c.JWTSecret) == 0 {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RedisEnabled reports whether a Redis host was configured
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// StorageEnabled reports whether an S3 bucket was configured
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
