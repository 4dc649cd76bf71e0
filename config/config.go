package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Session    SessionConfig
	Auth       AuthConfig
	Catalog    CatalogConfig
	Validation ValidationConfig
	Metrics    MetricsConfig
}

type ServerConfig struct {
	Environment string
	LogLevel    string
	LogFormat   string // console, json
	SeedDemo    bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SessionBackend selects where the session registry keeps its entries.
type SessionBackend string

const (
	SessionBackendMemory SessionBackend = "memory"
	SessionBackendRedis  SessionBackend = "redis"
)

type SessionConfig struct {
	Backend       SessionBackend
	Timeout       time.Duration
	SweepSchedule string // cron spec, e.g. "@every 5m"
}

type AuthConfig struct {
	BcryptCost int
}

type CatalogConfig struct {
	Categories []string
}

type ValidationConfig struct {
	MinPasswordLength    int
	MinNameLength        int
	MaxNameLength        int
	MaxDescriptionLength int
	MinPrice             decimal.Decimal
	MaxPrice             decimal.Decimal
	MaxQuantity          int
}

type MetricsConfig struct {
	Addr string // empty disables the listener
}

// DefaultCategories is the menu category set used when CATALOG_CATEGORIES is unset.
var DefaultCategories = []string{
	"Fruits & Vegetables",
	"Dairy & Eggs",
	"Grains & Bread",
	"Beverages",
	"Snacks",
	"Frozen Foods",
	"Canned Goods",
	"Condiments",
	"Other",
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	minPrice, err := decimal.NewFromString(getEnv("VALIDATION_MIN_PRICE", "0.01"))
	if err != nil {
		return nil, fmt.Errorf("invalid VALIDATION_MIN_PRICE: %w", err)
	}
	maxPrice, err := decimal.NewFromString(getEnv("VALIDATION_MAX_PRICE", "9999.99"))
	if err != nil {
		return nil, fmt.Errorf("invalid VALIDATION_MAX_PRICE: %w", err)
	}
	if !minPrice.IsPositive() || maxPrice.LessThan(minPrice) {
		return nil, fmt.Errorf("invalid price bounds: min=%s max=%s", minPrice, maxPrice)
	}

	backend := SessionBackend(getEnv("SESSION_BACKEND", string(SessionBackendMemory)))
	if backend != SessionBackendMemory && backend != SessionBackendRedis {
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", backend)
	}

	categories := parseSlice(getEnv("CATALOG_CATEGORIES", ""))
	if len(categories) == 0 {
		categories = append([]string(nil), DefaultCategories...)
	}

	environment := getEnv("ENVIRONMENT", "development")
	defaultLevel := "info"
	if environment == "development" {
		defaultLevel = "debug"
	}

	config := &Config{
		Server: ServerConfig{
			Environment: environment,
			LogLevel:    getEnv("LOG_LEVEL", defaultLevel),
			LogFormat:   getEnv("LOG_FORMAT", "console"),
			SeedDemo:    parseBool(getEnv("SEED_DEMO_DATA", "false")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "homemeal"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "homemeal"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Session: SessionConfig{
			Backend:       backend,
			Timeout:       parseDuration(getEnv("SESSION_TIMEOUT", "1h"), time.Hour),
			SweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 5m"),
		},
		Auth: AuthConfig{
			BcryptCost: parseInt(getEnv("AUTH_BCRYPT_COST", "12"), 12),
		},
		Catalog: CatalogConfig{
			Categories: categories,
		},
		Validation: ValidationConfig{
			MinPasswordLength:    parseInt(getEnv("VALIDATION_MIN_PASSWORD_LENGTH", "8"), 8),
			MinNameLength:        parseInt(getEnv("VALIDATION_MIN_NAME_LENGTH", "2"), 2),
			MaxNameLength:        parseInt(getEnv("VALIDATION_MAX_NAME_LENGTH", "50"), 50),
			MaxDescriptionLength: parseInt(getEnv("VALIDATION_MAX_DESCRIPTION_LENGTH", "500"), 500),
			MinPrice:             minPrice,
			MaxPrice:             maxPrice,
			MaxQuantity:          parseInt(getEnv("VALIDATION_MAX_QUANTITY", "999"), 999),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ""),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil || duration <= 0 {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func parseSlice(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
