package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/facegate_test")
	t.Setenv("API_KEY_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "compreface", cfg.OracleType)
	assert.Equal(t, 0.85, cfg.AcceptThreshold)
	assert.Equal(t, 0.95, cfg.DuplicateThreshold)
	assert.Equal(t, 0.5, cfg.LivenessThreshold)
	assert.Equal(t, 5, cfg.LockoutMaxFailures)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("API_KEY_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "accept threshold above 1",
			mutate:  func(c *Config) { c.AcceptThreshold = 85 },
			wantErr: "ACCEPT_THRESHOLD",
		},
		{
			name:    "negative liveness threshold",
			mutate:  func(c *Config) { c.LivenessThreshold = -0.1 },
			wantErr: "LIVENESS_THRESHOLD",
		},
		{
			name: "duplicate below accept",
			mutate: func(c *Config) {
				c.AcceptThreshold = 0.9
				c.DuplicateThreshold = 0.8
			},
			wantErr: "DUPLICATE_THRESHOLD",
		},
		{
			name:    "zero lockout failures",
			mutate:  func(c *Config) { c.LockoutMaxFailures = 0 },
			wantErr: "LOCKOUT_MAX_FAILURES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				AcceptThreshold:    0.85,
				DuplicateThreshold: 0.95,
				LivenessThreshold:  0.5,
				LockoutMaxFailures: 5,
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
