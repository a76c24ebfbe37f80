// Package config loads service settings from the environment, after an optional .env file.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Port string `envconfig:"PORT" default:"3000"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"pharmaclic"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBTimeZone  string `envconfig:"DB_TIMEZONE" default:"America/Mexico_City"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"postgres"`
	StoreKey     string `envconfig:"STORE_KEY" default:"PHARMACLIC_DB_V1"`
	RedisAddr    string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	JWTSecret string `envconfig:"JWT_SECRET"`

	GeminiAPIKey     string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel      string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	GeminiBaseURL    string        `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	AssistantTimeout time.Duration `envconfig:"ASSISTANT_TIMEOUT" default:"30s"`

	AlertCron         string `envconfig:"ALERT_CRON" default:"0 8 * * *"`
	ExpiryHorizonDays int    `envconfig:"EXPIRY_HORIZON_DAYS" default:"90"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	return FromEnv()
}

// FromEnv processes the environment only.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.ExpiryHorizonDays <= 0 {
		return fmt.Errorf("config: EXPIRY_HORIZON_DAYS must be positive, got %d", c.ExpiryHorizonDays)
	}
	if c.AssistantTimeout <= 0 {
		return fmt.Errorf("config: ASSISTANT_TIMEOUT must be positive")
	}
	return nil
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN from the DB_* settings.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBTimeZone,
	)
}
