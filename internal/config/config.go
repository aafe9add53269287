package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port        string
	Env         string // "development" or "production"
	PostgresDSN string
	MongoURI    string
	MongoDB     string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	JWTSecret       string
	AdminSetupToken string
	CronSecret      string
	CronSchedule    string // e.g. "@daily"; empty disables the in-process schedule

	CORSOrigins []string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getenv("PORT", "8080"),
		Env:         getenv("ENV", "development"),
		PostgresDSN: getenv("POSTGRES_DSN", ""),
		MongoURI:    getenv("MONGO_URI", ""),
		MongoDB:     getenv("MONGO_DB", "vacancydesk"),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "notification-pdfs"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",

		JWTSecret:       getenv("JWT_SECRET", ""),
		AdminSetupToken: getenv("ADMIN_SETUP_TOKEN", ""),
		CronSecret:      getenv("CRON_SECRET", ""),
		CronSchedule:    getenv("CRON_SCHEDULE", ""),

		CORSOrigins: []string{
			getenv("CORS_ORIGIN", "http://localhost:3000"),
			"http://localhost:5173",
		},
	}
}

// Validate rejects configurations the service must not start with.
// Session tokens are only as strong as the signing secret, so a short or
// missing JWT_SECRET is a hard failure, not a warning.
func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes")
	}
	return nil
}

// IsProduction reports whether the service runs in a production-like
// context; secure cookie attributes key off this.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
