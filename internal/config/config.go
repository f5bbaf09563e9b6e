package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"storefront-service/internal/models"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL string

	// NATS (optional, events are skipped when empty)
	NATSURL string

	// Server
	Port           string
	Environment    string
	AllowedOrigins []string

	// Auth
	JWTSecret string
	JWTIssuer string

	// Object storage (S3 compatible)
	StorageBucket    string
	StorageEndpoint  string
	StorageRegion    string
	StorageAccessKey string
	StorageSecretKey string
	StoragePublicURL string

	// Pagination
	DefaultPageSize int
	MaxPageSize     int

	// Catalog
	CatalogQueryTimeout time.Duration
	DirectoryCacheTTL   time.Duration

	// Cart
	CartWorkers int

	// Storefront rate limiting
	RateLimitPerSecond float64
	RateLimitBurst     int

	// Store defaults, used until settings are saved by an admin
	DefaultCurrency string
	DefaultLocale   string
	LowStockLimit   int
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	defaultPageSize, _ := strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "24"))
	maxPageSize, _ := strconv.Atoi(getEnv("MAX_PAGE_SIZE", "100"))
	cartWorkers, _ := strconv.Atoi(getEnv("CART_WORKERS", "4"))
	rateLimit, _ := strconv.ParseFloat(getEnv("RATE_LIMIT_PER_SECOND", "20"), 64)
	rateBurst, _ := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "40"))
	lowStock, _ := strconv.Atoi(getEnv("LOW_STOCK_LIMIT", "5"))

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "storefront_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		NATSURL:  os.Getenv("NATS_URL"),

		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),
		JWTIssuer: os.Getenv("JWT_ISSUER"),

		StorageBucket:    os.Getenv("STORAGE_BUCKET"),
		StorageEndpoint:  os.Getenv("STORAGE_ENDPOINT"),
		StorageRegion:    getEnv("STORAGE_REGION", "auto"),
		StorageAccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey: os.Getenv("STORAGE_SECRET_KEY"),
		StoragePublicURL: os.Getenv("STORAGE_PUBLIC_URL"),

		DefaultPageSize: defaultPageSize,
		MaxPageSize:     maxPageSize,

		CatalogQueryTimeout: getDuration("CATALOG_QUERY_TIMEOUT", 10*time.Second),
		DirectoryCacheTTL:   getDuration("DIRECTORY_CACHE_TTL", 5*time.Minute),

		CartWorkers: cartWorkers,

		RateLimitPerSecond: rateLimit,
		RateLimitBurst:     rateBurst,

		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "SAR"),
		DefaultLocale:   getEnv("DEFAULT_LOCALE", "ar"),
		LowStockLimit:   lowStock,
	}
}

// StorageEnabled reports whether product image uploads can be served.
func (c *Config) StorageEnabled() bool {
	return c.StorageBucket != "" && c.StorageAccessKey != "" && c.StorageSecretKey != ""
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Running auto-migrations...")
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Profile{},
		&models.Address{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Banner{},
		&models.Promotion{},
		&models.StoreSettings{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("Auto-migrations completed")

	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
