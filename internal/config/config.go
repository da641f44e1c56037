package config

import (
	"context"
	"fmt"
	"os"
	"strconv"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/sirupsen/logrus"
)

// Config holds all service configuration, loaded from environment
// variables with sensible local-dev defaults
type Config struct {
	Port        string
	Environment string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL string

	NATSUrl string

	StripeSecretKey        string
	StripeWebhookSecret    string
	RazorpayKeyID          string
	RazorpayKeySecret      string
	RazorpayWebhookSecret  string
	DefaultPaymentProvider string

	CheckoutSuccessURL string
	CheckoutCancelURL  string

	NotificationServiceURL string

	OTLPEndpoint string

	EnableGCPSecrets bool
	GCPProjectID     string
}

// Load builds the configuration from the environment. When GCP secret
// loading is enabled, sensitive values are fetched from Secret Manager
// and override their env counterparts.
func Load(logger *logrus.Logger) (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "payhula"),
		DBPassword: getEnv("DB_PASSWORD", "payhula"),
		DBName:     getEnv("DB_NAME", "payhula"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", ""),

		NATSUrl: getEnv("NATS_URL", ""),

		StripeSecretKey:        getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:    getEnv("STRIPE_WEBHOOK_SECRET", ""),
		RazorpayKeyID:          getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:      getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayWebhookSecret:  getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
		DefaultPaymentProvider: getEnv("DEFAULT_PAYMENT_PROVIDER", "stripe"),

		CheckoutSuccessURL: getEnv("CHECKOUT_SUCCESS_URL", ""),
		CheckoutCancelURL:  getEnv("CHECKOUT_CANCEL_URL", ""),

		NotificationServiceURL: getEnv("NOTIFICATION_SERVICE_URL", ""),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		EnableGCPSecrets: getEnvBool("ENABLE_GCP_SECRETS", false),
		GCPProjectID:     getEnv("GCP_PROJECT_ID", ""),
	}

	if cfg.EnableGCPSecrets {
		if err := cfg.loadGCPSecrets(context.Background(), logger); err != nil {
			return nil, fmt.Errorf("failed to load GCP secrets: %w", err)
		}
	}

	return cfg, nil
}

// DatabaseDSN builds the postgres connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// loadGCPSecrets overrides sensitive config values from Secret Manager.
// Missing secrets are logged and skipped so partial setups still boot.
func (c *Config) loadGCPSecrets(ctx context.Context, logger *logrus.Logger) error {
	if c.GCPProjectID == "" {
		return fmt.Errorf("GCP_PROJECT_ID is required when ENABLE_GCP_SECRETS=true")
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create secret manager client: %w", err)
	}
	defer client.Close()

	secrets := map[string]*string{
		"db-password":           &c.DBPassword,
		"stripe-secret-key":     &c.StripeSecretKey,
		"stripe-webhook-secret": &c.StripeWebhookSecret,
		"razorpay-key-secret":   &c.RazorpayKeySecret,
	}

	for name, dest := range secrets {
		value, err := c.fetchSecret(ctx, client, name)
		if err != nil {
			logger.WithError(err).WithField("secret", name).Warn("Skipping secret")
			continue
		}
		*dest = value
	}

	return nil
}

func (c *Config) fetchSecret(ctx context.Context, client *secretmanager.Client, name string) (string, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", c.GCPProjectID, name),
	}
	resp, err := client.AccessSecretVersion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to access secret %s: %w", name, err)
	}
	return string(resp.Payload.Data), nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
