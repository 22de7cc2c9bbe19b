package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion  string
	BucketName string
	BrandTable string

	// Grant TTLs, seconds. Write grants are short; read grants last long
	// enough for a gallery session.
	UploadURLExpiration int
	SignedURLExpiration int

	// Listing and deletion bounds
	DefaultListLimit    int
	MaxListLimit        int
	DeletePageSize      int
	DeleteMaxIterations int
	BrandScanMaxPages   int

	// Messaging
	EventBusName string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Logging
	LogLevel string

	// Authentication (local development only; API Gateway authorizes in
	// the Lambda deployment)
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableMetrics bool
	EnableEvents  bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "ap-northeast-1"),
		BucketName:    getEnv("S3_BUCKET_NAME", ""),
		BrandTable:    getEnv("BRAND_TABLE_NAME", "tryon-brands"),

		UploadURLExpiration: getEnvInt("UPLOAD_URL_EXPIRATION", 900),
		SignedURLExpiration: getEnvInt("SIGNED_URL_EXPIRATION", 86400),

		DefaultListLimit:    getEnvInt("DEFAULT_LIST_LIMIT", 60),
		MaxListLimit:        getEnvInt("MAX_LIST_LIMIT", 200),
		DeletePageSize:      getEnvInt("DELETE_PAGE_SIZE", 1000),
		DeleteMaxIterations: getEnvInt("DELETE_MAX_ITERATIONS", 500),
		BrandScanMaxPages:   getEnvInt("BRAND_SCAN_MAX_PAGES", 20),

		EventBusName: getEnv("EVENT_BUS_NAME", ""),

		IsLambda:           os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "",
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "tryon-backend"),

		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableEvents:  getEnvBool("ENABLE_EVENTS", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.BucketName == "" {
			return fmt.Errorf("S3_BUCKET_NAME is required")
		}
		if c.BrandTable == "" {
			return fmt.Errorf("BRAND_TABLE_NAME is required")
		}
		if !c.IsLambda && c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required outside Lambda in production")
		}
	}
	if c.UploadURLExpiration <= 0 || c.SignedURLExpiration <= 0 {
		return fmt.Errorf("grant expirations must be positive")
	}
	if c.DefaultListLimit <= 0 || c.MaxListLimit <= 0 {
		return fmt.Errorf("listing limits must be positive")
	}
	if c.DeletePageSize <= 0 || c.DeleteMaxIterations <= 0 {
		return fmt.Errorf("deletion bounds must be positive")
	}
	if c.BrandScanMaxPages <= 0 {
		return fmt.Errorf("BRAND_SCAN_MAX_PAGES must be positive")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
