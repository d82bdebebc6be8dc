package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL   string `env:"DATABASE_URL"`
	PGHost        string `env:"PGHOST" envDefault:"localhost"`
	PGPort        int    `env:"PGPORT" envDefault:"5432"`
	PGUser        string `env:"PGUSER" envDefault:"bingoo"`
	PGPassword    string `env:"PGPASSWORD" envDefault:"bingoo"`
	PGDatabase    string `env:"PGDATABASE" envDefault:"bingoo"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`

	// JWT
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTUserExpiry  time.Duration `env:"JWT_USER_EXPIRY" envDefault:"24h"`
	JWTAdminExpiry time.Duration `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3100"`

	// Kafka
	KafkaBrokers       string        `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled       bool          `env:"KAFKA_ENABLED" envDefault:"false"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`

	// Fraud
	FraudInline  bool          `env:"FRAUD_INLINE" envDefault:"true"`
	FraudTimeout time.Duration `env:"FRAUD_TIMEOUT" envDefault:"5s"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`

	// PayPal
	PayPalBaseURL      string        `env:"PAYPAL_BASE_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	PayPalClientID     string        `env:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret string        `env:"PAYPAL_CLIENT_SECRET"`
	PayPalTimeout      time.Duration `env:"PAYPAL_TIMEOUT" envDefault:"10s"`

	// Guards
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`

	// Telegram fraud notifications; disabled when the token is empty.
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`
}

// LoadDotEnv loads variables from the given files (default .env) without overriding
// ones already set. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass (local dev only).
func (c *Config) Validate() error {
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.OutboxBatchSize)
	}
	if c.TelegramBotToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	if c.PayPalClientID == "" || c.PayPalClientSecret == "" {
		return fmt.Errorf("PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET are required")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
