package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AppConfig holds all environment variables.
type AppConfig struct {
	Port       string
	DBHost     string
	DBPort     string
	DBUser     string
	DBName     string
	DBPassword string
	DBSSLMode  string

	// FrontendURL is the admin UI origin allowed by CORS; empty disables CORS.
	FrontendURL string

	LogLevel  string
	LogFormat string

	// OrdersAPIURL selects the HTTP orders source. Empty means orders are
	// read from the order_documents table.
	OrdersAPIURL   string
	OrdersAPIToken string

	// ReconcileSchedule is a cron spec; empty disables scheduled runs.
	ReconcileSchedule string

	AdminRateLimitRPS   float64
	AdminRateLimitBurst int
}

// Load reads environment variables (and .env if present)
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	c := &AppConfig{
		Port:              getenv("PORT", "8080"),
		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            os.Getenv("DB_PORT"),
		DBUser:            os.Getenv("DB_USER"),
		DBName:            os.Getenv("DB_NAME"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBSSLMode:         getenv("DB_SSLMODE", "disable"),
		FrontendURL:       os.Getenv("FRONTEND_URL"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFormat:         getenv("LOG_FORMAT", "json"),
		OrdersAPIURL:      os.Getenv("ORDERS_API_URL"),
		OrdersAPIToken:    os.Getenv("ORDERS_API_TOKEN"),
		ReconcileSchedule: os.Getenv("RECONCILE_SCHEDULE"),
	}

	var err error
	if c.AdminRateLimitRPS, err = strconv.ParseFloat(getenv("ADMIN_RATE_LIMIT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("ADMIN_RATE_LIMIT_RPS: %w", err)
	}
	if c.AdminRateLimitBurst, err = strconv.Atoi(getenv("ADMIN_RATE_LIMIT_BURST", "10")); err != nil {
		return nil, fmt.Errorf("ADMIN_RATE_LIMIT_BURST: %w", err)
	}
	if c.AdminRateLimitRPS <= 0 || c.AdminRateLimitBurst <= 0 {
		return nil, fmt.Errorf("admin rate limit must be positive")
	}
	return c, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// DSN is the postgres connection string for c.
func (c *AppConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// InitDB opens postgres with gorm's logger writing through log.
func InitDB(c *AppConfig, log *zap.Logger) (*gorm.DB, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(c.DSN()), &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}
