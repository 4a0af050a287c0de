package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Dedup policies for repeated referral submissions from the same customer UPI.
const (
	DedupAllow  = "allow"
	DedupReject = "reject"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret           string
	ClientURL           string
	ReferralDedupPolicy string
	StatsCron           string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "lootlink"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:           getEnv("JWT_SECRET", ""),
			ClientURL:           getEnv("CLIENT_URL", "http://localhost:3000"),
			ReferralDedupPolicy: getEnv("REFERRAL_DEDUP_POLICY", DedupAllow),
			StatsCron:           getEnv("STATS_CRON", "0 0 * * *"),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if p := config.App.ReferralDedupPolicy; p != DedupAllow && p != DedupReject {
		return nil, fmt.Errorf("REFERRAL_DEDUP_POLICY must be %q or %q, got %q", DedupAllow, DedupReject, p)
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
