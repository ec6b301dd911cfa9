package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	Port        string `envconfig:"PORT" default:"8080"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`
	// TimeZone decides where a calendar day starts for quotas and streaks.
	TimeZone string `envconfig:"TZ_NAME" default:"Local"`

	// Database
	DBDriver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"vibeai.db"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"vibeai"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// Device tokens
	JWTSecret       string        `envconfig:"JWT_SECRET"`
	JWTAccessExpiry time.Duration `envconfig:"JWT_ACCESS_EXPIRY" default:"720h"`

	// AI provider (OpenAI-compatible)
	OpenAIAPIKey      string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL     string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIVisionModel string        `envconfig:"OPENAI_VISION_MODEL" default:"gpt-4o-mini"`
	OpenAIImageModel  string        `envconfig:"OPENAI_IMAGE_MODEL" default:"gpt-image-1"`
	AITimeout         time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`

	MaxImageBytes int `envconfig:"MAX_IMAGE_BYTES" default:"4194304"`
	// Loaded device sessions unused this long are dropped from memory.
	SessionIdleTimeout time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`

	SentryDSN        string `envconfig:"SENTRY_DSN"`
	LogRetentionDays int    `envconfig:"LOG_RETENTION_DAYS" default:"30"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	switch c.DBDriver {
	case "sqlite", "memory":
	case "postgres":
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD environment variable is required for postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite, postgres or memory, got %q", c.DBDriver)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("TZ_NAME: %w", err)
	}
	if c.AITimeout <= 0 {
		c.AITimeout = 60 * time.Second
	}
	if c.MaxImageBytes <= 0 {
		c.MaxImageBytes = 4 * 1024 * 1024
	}
	if c.SessionIdleTimeout <= 0 {
		c.SessionIdleTimeout = 30 * time.Minute
	}
	return nil
}

// Location is the zone used to derive calendar dates.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}
