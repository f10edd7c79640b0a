package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	App      AppConfig
	Queue    QueueConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// QueueConfig holds the job queue worker tuning knobs.
type QueueConfig struct {
	PollInterval   time.Duration
	LockTimeout    time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BatchSize      int
}

// PayrollConfig holds payroll processing configuration.
type PayrollConfig struct {
	Workers int

	// AutoTriggerInterval is how often the scheduler checks whether the
	// current period's run exists. Zero disables auto-triggering.
	AutoTriggerInterval time.Duration
}

func Load() (*Config, error) {
	// A missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "payroll-backend"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// Queue configuration
	pollInterval, err := time.ParseDuration(getEnv("QUEUE_POLL_INTERVAL", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_POLL_INTERVAL: %w", err)
	}
	lockTimeout, err := time.ParseDuration(getEnv("QUEUE_LOCK_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_LOCK_TIMEOUT: %w", err)
	}
	maxAttempts, err := strconv.Atoi(getEnv("QUEUE_MAX_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_MAX_ATTEMPTS: %w", err)
	}
	initialBackoff, err := time.ParseDuration(getEnv("QUEUE_INITIAL_BACKOFF", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_INITIAL_BACKOFF: %w", err)
	}
	maxBackoff, err := time.ParseDuration(getEnv("QUEUE_MAX_BACKOFF", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_MAX_BACKOFF: %w", err)
	}
	batchSize, err := strconv.Atoi(getEnv("QUEUE_BATCH_SIZE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_BATCH_SIZE: %w", err)
	}

	config.Queue = QueueConfig{
		PollInterval:   pollInterval,
		LockTimeout:    lockTimeout,
		MaxAttempts:    maxAttempts,
		InitialBackoff: initialBackoff,
		MaxBackoff:     maxBackoff,
		BatchSize:      batchSize,
	}

	// Payroll configuration
	workers, err := strconv.Atoi(getEnv("PAYROLL_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_WORKERS: %w", err)
	}
	autoTrigger, err := time.ParseDuration(getEnv("PAYROLL_AUTO_TRIGGER_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_AUTO_TRIGGER_INTERVAL: %w", err)
	}

	config.Payroll = PayrollConfig{
		Workers:             workers,
		AutoTriggerInterval: autoTrigger,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Queue.MaxAttempts < 1 {
		return fmt.Errorf("QUEUE_MAX_ATTEMPTS must be at least 1")
	}
	if c.Payroll.Workers < 1 {
		return fmt.Errorf("PAYROLL_WORKERS must be at least 1")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	return strings.Split(getEnv(key, fallback), ",")
}
