// Package config loads application configuration from environment
// variables, with .env support for development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Razorpay RazorpayConfig
	Stripe   StripeConfig
	OpenAI   OpenAIConfig
	Email    EmailConfig
	ExtAuth  ExtAuthConfig
	Backup   BackupConfig
	CORS     CORSConfig
	LogLevel slog.Level
}

type ServerConfig struct {
	Host string
	Port int
	// TrustedProxy controls whether X-Forwarded-For is believed when
	// picking the client address for rate limiting and request logs.
	TrustedProxy bool
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Path string
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

type StripeConfig struct {
	SecretKey      string
	WebhookSecret  string
	BasicPriceID   string
	ProPriceID     string
	PremiumPriceID string
	SuccessURL     string
	CancelURL      string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type EmailConfig struct {
	APIKey    string
	FromEmail string
}

type ExtAuthConfig struct {
	BaseURL string
}

type BackupConfig struct {
	S3Endpoint   string
	S3Bucket     string
	S3Region     string
	S3AccessKey  string
	S3SecretKey  string
	Passphrase   string
	ScheduleHour int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from the environment. A .env file is loaded
// first if present; real environment variables win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("FITDESERT_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid FITDESERT_PORT: %w", err)
	}

	trustedProxy, err := strconv.ParseBool(getEnv("FITDESERT_TRUSTED_PROXY", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid FITDESERT_TRUSTED_PROXY: %w", err)
	}

	backupHour, err := strconv.Atoi(getEnv("FITDESERT_BACKUP_HOUR", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid FITDESERT_BACKUP_HOUR: %w", err)
	}
	if backupHour < 0 || backupHour > 23 {
		return nil, fmt.Errorf("FITDESERT_BACKUP_HOUR must be 0-23, got %d", backupHour)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("FITDESERT_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid FITDESERT_LOG_LEVEL: %w", err)
	}

	origins := strings.Split(getEnv("FITDESERT_CORS_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("FITDESERT_HOST", "0.0.0.0"),
			Port:         port,
			TrustedProxy: trustedProxy,
		},
		Database: DatabaseConfig{
			Path: getEnv("FITDESERT_DB_PATH", "fitdesert.db"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		},
		Stripe: StripeConfig{
			SecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
			BasicPriceID:   getEnv("STRIPE_PRICE_BASIC", ""),
			ProPriceID:     getEnv("STRIPE_PRICE_PRO", ""),
			PremiumPriceID: getEnv("STRIPE_PRICE_PREMIUM", ""),
			SuccessURL:     getEnv("STRIPE_SUCCESS_URL", "https://app.fitdesert.com/billing/success"),
			CancelURL:      getEnv("STRIPE_CANCEL_URL", "https://app.fitdesert.com/billing/cancel"),
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", ""),
		},
		Email: EmailConfig{
			APIKey:    getEnv("RESEND_API_KEY", ""),
			FromEmail: getEnv("EMAIL_FROM", "noreply@fitdesert.com"),
		},
		ExtAuth: ExtAuthConfig{
			BaseURL: getEnv("EXTERNAL_AUTH_URL", ""),
		},
		Backup: BackupConfig{
			S3Endpoint:   getEnv("BACKUP_S3_ENDPOINT", ""),
			S3Bucket:     getEnv("BACKUP_S3_BUCKET", ""),
			S3Region:     getEnv("BACKUP_S3_REGION", "auto"),
			S3AccessKey:  getEnv("BACKUP_S3_ACCESS_KEY", ""),
			S3SecretKey:  getEnv("BACKUP_S3_SECRET_KEY", ""),
			Passphrase:   getEnv("BACKUP_PASSPHRASE", ""),
			ScheduleHour: backupHour,
		},
		CORS: CORSConfig{
			AllowedOrigins: origins,
		},
		LogLevel: level,
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
