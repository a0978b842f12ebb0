package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	Environment        string `envconfig:"ENV" default:"development"`
	SiteURL            string `envconfig:"SITE_URL" default:"http://localhost:3000"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	JWTSecret          string `envconfig:"SUPABASE_JWT_SECRET" required:"true"`

	// Stripe settings
	StripeSecretKey      string `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	StripeWebhookSecret  string `envconfig:"STRIPE_WEBHOOK_SECRET" required:"true"`
	StripePriceStarter   string `envconfig:"STRIPE_PRICE_STARTER" required:"true"`
	StripePricePro       string `envconfig:"STRIPE_PRICE_PRO" required:"true"`
	StripePriceUnlimited string `envconfig:"STRIPE_PRICE_UNLIMITED" required:"true"`

	// Critique model settings (OpenAI-compatible API)
	OpenRouterAPIKey   string `envconfig:"OPENROUTER_API_KEY" required:"true"`
	OpenRouterBaseURL  string `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	OpenRouterModel    string `envconfig:"OPENROUTER_MODEL" default:"openai/gpt-4o"`
	CritiqueTimeoutSec int    `envconfig:"CRITIQUE_TIMEOUT_SEC" default:"60"`

	// Screenshot capture service settings
	CaptureServiceBaseURL string `envconfig:"CAPTURE_SERVICE_BASE_URL" required:"true"`
	CaptureTimeoutSec     int    `envconfig:"CAPTURE_TIMEOUT_SEC" default:"45"`

	// S3-compatible storage for screenshots
	S3URL       string `envconfig:"S3_URL" required:"true"`
	S3Bucket    string `envconfig:"S3_BUCKET" required:"true"`
	S3Region    string `envconfig:"S3_REGION" required:"true"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY" required:"true"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY" required:"true"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
