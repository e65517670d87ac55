package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds runtime configuration. Every field maps to one env var.
type Config struct {
	// Server
	Port        int    `mapstructure:"PORT"`
	Env         string `mapstructure:"APP_ENV"` // development | production
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	BodyLimitMB int    `mapstructure:"BODY_LIMIT_MB"`

	// CORS allow-list, comma separated. Empty means "*".
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Database
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DBHost        string `mapstructure:"DB_HOST"`
	DBUser        string `mapstructure:"DB_USER"`
	DBPassword    string `mapstructure:"DB_PASSWORD"`
	DBName        string `mapstructure:"DB_NAME"`
	DBPort        string `mapstructure:"DB_PORT"`
	DBAutoMigrate bool   `mapstructure:"DB_AUTO_MIGRATE"`

	// Shared admin secret for destructive / direct-set operations
	AdminPIN     string `mapstructure:"ADMIN_DELETE_PIN"`
	AdminPINHash string `mapstructure:"ADMIN_DELETE_PIN_HASH"`

	// Object storage (S3 compatible, e.g. Supabase storage)
	StorageEndpoint  string `mapstructure:"STORAGE_ENDPOINT"`
	StorageRegion    string `mapstructure:"STORAGE_REGION"`
	StorageAccessKey string `mapstructure:"STORAGE_ACCESS_KEY"`
	StorageSecretKey string `mapstructure:"STORAGE_SECRET_KEY"`
	StoragePublicURL string `mapstructure:"STORAGE_PUBLIC_URL"`

	// Redis (optional, overlap cache)
	RedisURL string `mapstructure:"REDIS_URL"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("PORT", 5000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BODY_LIMIT_MB", 60)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("STORAGE_REGION", "auto")

	// AutomaticEnv only resolves keys viper already knows about
	for _, key := range []string{
		"CORS_ALLOWED_ORIGINS", "DATABASE_URL", "DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"ADMIN_DELETE_PIN", "ADMIN_DELETE_PIN_HASH", "STORAGE_ENDPOINT", "STORAGE_ACCESS_KEY",
		"STORAGE_SECRET_KEY", "STORAGE_PUBLIC_URL", "REDIS_URL",
	} {
		_ = v.BindEnv(key)
	}

	// Optional .env file for local development, missing file is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN returns DATABASE_URL when set, otherwise builds one from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Kolkata",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// AllowedOrigins normalises the CORS allow-list for fiber's cors middleware.
func (c *Config) AllowedOrigins() string {
	if strings.TrimSpace(c.CORSAllowedOrigins) == "" {
		return "*"
	}
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.TrimRight(p, "/"))
		}
	}
	return strings.Join(out, ",")
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) StorageEnabled() bool {
	return c.StorageEndpoint != "" && c.StorageAccessKey != "" && c.StorageSecretKey != ""
}
