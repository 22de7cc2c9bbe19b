package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Environment:         "development",
		UploadURLExpiration: 900,
		SignedURLExpiration: 86400,
		DefaultListLimit:    60,
		MaxListLimit:        200,
		DeletePageSize:      1000,
		DeleteMaxIterations: 500,
		BrandScanMaxPages:   20,
	}
}

func TestValidate_Bounds(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero upload expiration", func(c *Config) { c.UploadURLExpiration = 0 }},
		{"zero signed expiration", func(c *Config) { c.SignedURLExpiration = 0 }},
		{"zero default list limit", func(c *Config) { c.DefaultListLimit = 0 }},
		{"zero max list limit", func(c *Config) { c.MaxListLimit = 0 }},
		{"zero delete page size", func(c *Config) { c.DeletePageSize = 0 }},
		{"negative delete page size", func(c *Config) { c.DeletePageSize = -1 }},
		{"zero delete iterations", func(c *Config) { c.DeleteMaxIterations = 0 }},
		{"zero scan pages", func(c *Config) { c.BrandScanMaxPages = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_Production(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = "production"
	cfg.BucketName = "bucket"
	cfg.BrandTable = "brands"
	cfg.IsLambda = true
	require.NoError(t, cfg.Validate())

	cfg.BucketName = ""
	assert.Error(t, cfg.Validate())

	cfg.BucketName = "bucket"
	cfg.IsLambda = false
	cfg.JWTSecret = ""
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())
}
