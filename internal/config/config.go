package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Content store configuration
	Content ContentConfig

	// Admin authentication configuration
	Auth AuthConfig

	// Syndication feed configuration
	Feed FeedConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ContentConfig holds content store settings
type ContentConfig struct {
	Dir string
	// IDMaxAttempts bounds the number of random ids tried before create gives up with a conflict.
	IDMaxAttempts int
	MaxTags       int
}

// AuthConfig holds the admin secret and session cookie settings.
// An empty AdminToken is allowed at load time; authenticated operations then fail as misconfigured.
type AuthConfig struct {
	AdminToken   string
	SecureCookie bool
	SessionTTL   time.Duration
}

// FeedConfig holds RSS feed settings
type FeedConfig struct {
	SiteURL     string
	Title       string
	Description string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Content: ContentConfig{
			Dir:           getEnv("CONTENT_DIR", "content/posts"),
			IDMaxAttempts: getIntEnv("ID_MAX_ATTEMPTS", 50),
			MaxTags:       getIntEnv("MAX_TAGS", 20),
		},
		Auth: AuthConfig{
			AdminToken:   os.Getenv("ADMIN_TOKEN"),
			SecureCookie: getBoolEnv("COOKIE_SECURE", env == "production"),
			SessionTTL:   getDurationEnv("SESSION_TTL", 30*24*time.Hour),
		},
		Feed: FeedConfig{
			SiteURL:     normalizeSiteURL(getEnv("SITE_URL", getEnv("NEXT_PUBLIC_SITE_URL", "http://localhost:3000"))),
			Title:       getEnv("FEED_TITLE", "OpsiMate Blog"),
			Description: getEnv("FEED_DESCRIPTION", "All OpsiMate blog posts"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Content.Dir) == "" {
		return fmt.Errorf("CONTENT_DIR is required")
	}
	if c.Content.IDMaxAttempts <= 0 {
		return fmt.Errorf("ID_MAX_ATTEMPTS must be positive, got %d", c.Content.IDMaxAttempts)
	}
	if c.Content.MaxTags <= 0 {
		return fmt.Errorf("MAX_TAGS must be positive, got %d", c.Content.MaxTags)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	u, err := url.Parse(c.Feed.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SITE_URL must be an absolute URL, got %q", c.Feed.SiteURL)
	}
	return nil
}

// HasAdminToken reports whether the admin secret is configured
func (c *AuthConfig) HasAdminToken() bool {
	return c.AdminToken != ""
}

func normalizeSiteURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
