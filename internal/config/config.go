// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	CORSOrigins []string

	// LLM backend selection.
	LLMProvider  string // "openai" or "ollama"
	Model        string
	OpenAIAPIKey string
	OllamaHost   string
	LLMTimeout   time.Duration

	// Agent behavior.
	PersonaPath      string
	UseTools         bool
	MaxToolHops      int
	SessionTTL       time.Duration
	PriceMappingPath string

	// Transcript archive.
	ArchiveEnabled bool
	DBPath         string

	Booking  BookingConfig
	Payment  PaymentConfig
	Calendly CalendlyConfig
	SMTP     SMTPConfig
	Places   PlacesConfig

	ToolTimeout time.Duration
}

// BookingConfig holds the ferry reservation API credentials.
type BookingConfig struct {
	BaseURL   string
	Code      string
	Username  string
	Password  string
	Signature string
}

// PaymentConfig holds the payment-link gateway settings.
type PaymentConfig struct {
	GatewayURL string
	StripeKey  string
}

// CalendlyConfig holds the Calendly scheduling settings.
type CalendlyConfig struct {
	APIKey        string
	EventTypeUUID string
}

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	StartTLS bool
}

// PlacesConfig holds the place-photo proxy settings.
type PlacesConfig struct {
	APIKey string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "*")),

		LLMProvider:  strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		Model:        getEnv("GPT_MODEL", "gpt-4o-mini"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OllamaHost:   getEnv("OLLAMA_HOST", "http://127.0.0.1:11434"),
		LLMTimeout:   getEnvDuration("LLM_TIMEOUT", 90*time.Second),

		PersonaPath:      getEnv("CONFIG_PATH", ""),
		UseTools:         getEnvBool("USE_TOOLS_IN_API", true),
		MaxToolHops:      getEnvInt("MAX_TOOL_HOPS", 5),
		SessionTTL:       getEnvDuration("SESSION_TTL", 60*time.Minute),
		PriceMappingPath: getEnv("PRODUCT_PRICE_MAPPING", ""),

		ArchiveEnabled: getEnvBool("ARCHIVE_ENABLED", false),
		DBPath:         getEnv("DB_PATH", "./data/conversations.db"),

		Booking: BookingConfig{
			BaseURL:   getEnv("BOOKING_API_URL", ""),
			Code:      getEnv("AGENCY_CODE", ""),
			Username:  getEnv("AGENCY_USER_NAME", ""),
			Password:  getEnv("AGENCY_PASSWORD", ""),
			Signature: getEnv("AGENCY_SIGNATURE", ""),
		},
		Payment: PaymentConfig{
			GatewayURL: getEnv("PAYMENT_GATEWAY_URL", ""),
			StripeKey:  getEnv("STRIPE_API_KEY", ""),
		},
		Calendly: CalendlyConfig{
			APIKey:        getEnv("CALENDLY_API_KEY", ""),
			EventTypeUUID: getEnv("CALENDLY_EVENT_UUID", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", ""),
			StartTLS: getEnvBool("SMTP_STARTTLS", true),
		},
		Places: PlacesConfig{
			APIKey: getEnv("GOOGLE_API_KEY", ""),
		},

		ToolTimeout: getEnvDuration("TOOL_TIMEOUT", 15*time.Second),
	}

	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	case "ollama":
		if c.OllamaHost == "" {
			return fmt.Errorf("OLLAMA_HOST is required when LLM_PROVIDER=ollama")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be \"openai\" or \"ollama\", got %q", c.LLMProvider)
	}
	if c.Model == "" {
		return fmt.Errorf("GPT_MODEL cannot be empty")
	}
	if c.MaxToolHops <= 0 {
		return fmt.Errorf("MAX_TOOL_HOPS must be > 0")
	}
	if c.ArchiveEnabled && c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty when ARCHIVE_ENABLED is set")
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare numbers are taken as seconds.
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
