// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Supported OpenTelemetry exporters.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
)

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	LogFormat   string

	TelegramBotToken     string
	WhitelistedUserIDs   []int64
	WhitelistedUsernames []string
	DailyBudgetEnabled   bool
	BudgetHour           int
	BudgetTimezone       string

	GeminiAPIKey string

	ExchangeRateBaseURL  string
	ExchangeRateTimeout  time.Duration
	ExchangeRateCacheTTL time.Duration

	AnnualInterestRate  decimal.Decimal
	GrowthTaxAggressive bool

	CORSAllowedOrigins []string
	APIJWTSecret       string
	OTelExporter       string
	OTelServiceName    string
}

// Load reads configuration from environment variables.
// Invalid optional values fall back to their defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		HTTPAddr:         envOr("HTTP_ADDR", ":8080"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        strings.ToLower(envOr("LOG_FORMAT", "console")),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		APIJWTSecret:     os.Getenv("API_JWT_SECRET"),
		OTelServiceName:  envOr("OTEL_SERVICE_NAME", "leverage"),
	}

	cfg.DailyBudgetEnabled = os.Getenv("DAILY_BUDGET_ENABLED") == "true"
	cfg.BudgetHour = 8
	if hourStr := os.Getenv("BUDGET_HOUR"); hourStr != "" {
		if h, err := strconv.Atoi(hourStr); err == nil && h >= 0 && h <= 23 {
			cfg.BudgetHour = h
		}
	}
	cfg.BudgetTimezone = "Europe/Rome"
	if tz := os.Getenv("BUDGET_TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			cfg.BudgetTimezone = tz
		}
	}

	cfg.ExchangeRateBaseURL = strings.TrimRight(envOr("EXCHANGE_RATE_BASE_URL", "https://api.frankfurter.app"), "/")
	cfg.ExchangeRateTimeout = durationOr("EXCHANGE_RATE_TIMEOUT", 5*time.Second)
	cfg.ExchangeRateCacheTTL = durationOr("EXCHANGE_RATE_CACHE_TTL", 12*time.Hour)

	cfg.AnnualInterestRate = decimal.RequireFromString("0.07")
	if rateStr := os.Getenv("ANNUAL_INTEREST_RATE"); rateStr != "" {
		if r, err := decimal.NewFromString(rateStr); err == nil && !r.IsNegative() {
			cfg.AnnualInterestRate = r
		}
	}

	cfg.GrowthTaxAggressive = true
	if v := os.Getenv("GROWTH_TAX_AGGRESSIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.GrowthTaxAggressive = b
		}
	}

	cfg.CORSAllowedOrigins = splitList(envOr("CORS_ALLOWED_ORIGINS", "*"))

	cfg.OTelExporter = strings.ToLower(envOr("OTEL_EXPORTER", ExporterNone))
	switch cfg.OTelExporter {
	case ExporterNone, ExporterStdout, ExporterOTLPGRPC, ExporterOTLPHTTP:
	default:
		cfg.OTelExporter = ExporterNone
	}

	for idStr := range strings.SplitSeq(os.Getenv("WHITELISTED_USER_IDS"), ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		cfg.WhitelistedUserIDs = append(cfg.WhitelistedUserIDs, id)
	}

	for _, username := range splitList(os.Getenv("WHITELISTED_USERNAMES")) {
		cfg.WhitelistedUsernames = append(cfg.WhitelistedUsernames, strings.TrimPrefix(username, "@"))
	}

	// Validate required configuration.
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AuthEnabled reports whether /v1/users routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.APIJWTSecret != ""
}

// BotEnabled reports whether the Telegram bot should run.
func (c *Config) BotEnabled() bool {
	return c.TelegramBotToken != ""
}

// Location returns the configured budget timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BudgetTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if c.BotEnabled() && len(c.WhitelistedUserIDs) == 0 && len(c.WhitelistedUsernames) == 0 {
		errs = append(errs, "at least one whitelisted user (WHITELISTED_USER_IDS or WHITELISTED_USERNAMES) is required when TELEGRAM_BOT_TOKEN is set")
	}

	if c.APIJWTSecret != "" && len(c.APIJWTSecret) < 32 {
		errs = append(errs, "API_JWT_SECRET must be at least 32 characters")
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be console or json, got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsUserWhitelisted checks if a Telegram user ID or username is in the whitelist.
func (c *Config) IsUserWhitelisted(userID int64, username string) bool {
	if slices.Contains(c.WhitelistedUserIDs, userID) {
		return true
	}

	// Usernames are case-insensitive.
	if username != "" {
		username = strings.TrimPrefix(username, "@")
		for _, whitelisted := range c.WhitelistedUsernames {
			if strings.EqualFold(whitelisted, username) {
				return true
			}
		}
	}

	return false
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
