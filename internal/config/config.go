// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Upstream  UpstreamConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port           int
	RequestTimeout time.Duration
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig holds per-IP rate limit settings
type RateLimitConfig struct {
	RequestsPerMinute int
}

// AuthConfig holds credential management settings
type AuthConfig struct {
	PasswordPolicy string
	BcryptCost     int
}

// UpstreamConfig holds the third-party AI API settings
type UpstreamConfig struct {
	APIKey    string
	ChatURL   string
	ChatModel string
	ImageURL  string
	ImageSize string
	Timeout   time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	cfg.Server.Port, err = getInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	// Logging configuration
	cfg.Logging.Level = getString("LOG_LEVEL", "info")

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// Rate limit configuration
	cfg.RateLimit.RequestsPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}

	// Credential management configuration
	cfg.Auth.PasswordPolicy = getString("PASSWORD_POLICY", "strict")
	cfg.Auth.BcryptCost, err = getInt("BCRYPT_COST", 10)
	if err != nil {
		return nil, err
	}

	// Upstream AI APIs (the key is optional; proxies answer 502 without it)
	cfg.Upstream.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Upstream.ChatURL = getString("CHAT_API_URL", "https://api.openai.com/v1/chat/completions")
	cfg.Upstream.ChatModel = getString("CHAT_MODEL", "gpt-3.5-turbo")
	cfg.Upstream.ImageURL = getString("IMAGE_API_URL", "https://api.openai.com/v1/images/generations")
	cfg.Upstream.ImageSize = getString("IMAGE_SIZE", "512x512")
	cfg.Upstream.Timeout, err = getDuration("UPSTREAM_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	if c.Database.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// parseOrigins splits a comma-separated origin list, defaulting to all origins
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
