package app

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the gateway. It is read once
// at process start and never re-read.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"45s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"60s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	SessionSecret string `envconfig:"SESSION_SECRET" required:"true"`

	ERPNextBaseURL      string        `envconfig:"ERPNEXT_BASE_URL" default:"https://demo.erpnext.com"`
	ERPNextAPIKey       string        `envconfig:"ERPNEXT_API_KEY"`
	ERPNextAPISecret    string        `envconfig:"ERPNEXT_API_SECRET"`
	ERPNextUsername     string        `envconfig:"ERPNEXT_USERNAME"`
	ERPNextPassword     string        `envconfig:"ERPNEXT_PASSWORD"`
	ERPNextTimeout      time.Duration `envconfig:"ERPNEXT_TIMEOUT" default:"30s"`
	ERPNextProbeTimeout time.Duration `envconfig:"ERPNEXT_PROBE_TIMEOUT" default:"5s"`
}

// LoadConfig reads configuration from the environment, honouring a
// local .env file when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.ERPNextBaseURL == "" {
		return nil, errors.New("erpnext base url must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
