package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Oracle backend
	OracleType    string        `envconfig:"ORACLE_TYPE" default:"compreface"`
	CompreFaceURL string        `envconfig:"COMPREFACE_URL" default:"http://localhost:8000"`
	CompreFaceKey string        `envconfig:"COMPREFACE_API_KEY"`
	RepresentURL  string        `envconfig:"REPRESENT_URL" default:"http://localhost:5005"`
	AWSRegion     string        `envconfig:"AWS_REGION" default:"us-east-1"`
	OracleTimeout time.Duration `envconfig:"ORACLE_TIMEOUT" default:"5s"`

	// Decision thresholds. These are the only copies; every call site
	// receives them from here.
	AcceptThreshold    float64 `envconfig:"ACCEPT_THRESHOLD" default:"0.85"`
	DuplicateThreshold float64 `envconfig:"DUPLICATE_THRESHOLD" default:"0.95"`
	LivenessThreshold  float64 `envconfig:"LIVENESS_THRESHOLD" default:"0.5"`

	// Lockout
	LockoutMaxFailures int           `envconfig:"LOCKOUT_MAX_FAILURES" default:"5"`
	LockoutWindow      time.Duration `envconfig:"LOCKOUT_WINDOW" default:"3m"`

	// Security
	APIKeySecret string `envconfig:"API_KEY_SECRET" required:"true"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects threshold values outside [0,1] and inverted policy
// (a duplicate threshold below the acceptance threshold would turn routine
// near-matches into account blocks).
func (c *Config) Validate() error {
	for name, v := range map[string]float64{
		"ACCEPT_THRESHOLD":    c.AcceptThreshold,
		"DUPLICATE_THRESHOLD": c.DuplicateThreshold,
		"LIVENESS_THRESHOLD":  c.LivenessThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, v)
		}
	}
	if c.DuplicateThreshold < c.AcceptThreshold {
		return fmt.Errorf("DUPLICATE_THRESHOLD (%v) must not be below ACCEPT_THRESHOLD (%v)",
			c.DuplicateThreshold, c.AcceptThreshold)
	}
	if c.LockoutMaxFailures <= 0 {
		return fmt.Errorf("LOCKOUT_MAX_FAILURES must be positive, got %d", c.LockoutMaxFailures)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
