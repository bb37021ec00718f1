package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Telegram TelegramConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Gemini   GeminiConfig
	HTTP     HTTPConfig
	Calc     CalcConfig

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

type TelegramConfig struct {
	Token    string  `env:"TELEGRAM_TOKEN"`
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"24h"`
}

// DatabaseConfig is optional: with an empty Host the static fee book is used.
type DatabaseConfig struct {
	Host            string        `env:"DB_HOST"`
	Port            int           `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER"`
	Password        string        `env:"DB_PASSWORD"`
	Name            string        `env:"DB_NAME"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"2m"`
	CacheTTL        time.Duration `env:"FEE_CACHE_TTL" envDefault:"1h"`
}

func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type GeminiConfig struct {
	APIKey         string        `env:"GEMINI_API_KEY"`
	Model          string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	BaseURL        string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/"`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	// Advice requests allowed per chat per hour. 0 disables the limit.
	RateLimit int64 `env:"ADVICE_RATE_LIMIT" envDefault:"20"`
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type CalcConfig struct {
	WarningMarginPercent float64 `env:"WARNING_MARGIN_PERCENT" envDefault:"20"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if w := cfg.Calc.WarningMarginPercent; math.IsNaN(w) || math.IsInf(w, 0) {
		return nil, errors.New("WARNING_MARGIN_PERCENT must be a finite number")
	}
	if cfg.Calc.WarningMarginPercent < 0 {
		return nil, errors.New("WARNING_MARGIN_PERCENT must not be negative")
	}
	if cfg.Database.Enabled() && cfg.Database.Name == "" {
		return nil, errors.New("DB_NAME is required when DB_HOST is set")
	}
	return &cfg, nil
}

// ValidateBot checks the settings only the Telegram front end needs.
func (c *Config) ValidateBot() error {
	if c.Telegram.Token == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}
	if len(c.Telegram.AdminIDs) == 0 {
		return errors.New("at least one admin ID is required")
	}
	return nil
}

func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
