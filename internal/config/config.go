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
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string
	JWTSecret   string
	Location    *time.Location
	FrontendURL string
	CORSOrigins []string

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	CancellationWindow time.Duration
	PendingTTL         time.Duration
	ServiceCacheSize   int
	ServiceCacheTTL    time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            getEnv("CURRENCY", "usd"),
		SendGridAPIKey:      os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail:   os.Getenv("SENDGRID_FROM_EMAIL"),
		SendGridFromName:    getEnv("SENDGRID_FROM_NAME", "Coach Academy"),
		TwilioAccountSID:    os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:     os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:    os.Getenv("TWILIO_FROM_NUMBER"),
		CancellationWindow:  24 * time.Hour,
		PendingTTL:          30 * time.Minute,
		ServiceCacheSize:    128,
		ServiceCacheTTL:     5 * time.Minute,
	}

	var missing, invalid []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		invalid = append(invalid, "TIMEZONE")
	}
	cfg.Location = loc

	if d, ok := parseDuration("CANCELLATION_WINDOW", &invalid); ok {
		cfg.CancellationWindow = d
	}
	if d, ok := parseDuration("PENDING_TTL", &invalid); ok {
		cfg.PendingTTL = d
	}
	if d, ok := parseDuration("SERVICE_CACHE_TTL", &invalid); ok {
		cfg.ServiceCacheTTL = d
	}
	if v := strings.TrimSpace(os.Getenv("SERVICE_CACHE_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			invalid = append(invalid, "SERVICE_CACHE_SIZE")
		} else {
			cfg.ServiceCacheSize = n
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, invalid *[]string) (time.Duration, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*invalid = append(*invalid, key)
		return 0, false
	}
	return d, true
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
