package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	// GitHub
	Token          string
	PrimaryAccount string

	// Selection policy
	SelfRepo     string
	ProjectLimit int

	// Preview resolution
	AssetsDir             string
	PlaceholderPath       string
	DisableAvatarFallback bool

	// Output
	IndexPath string

	// HTTP
	Timeout time.Duration

	// Logging
	LogLevel string
}

// Load loads the configuration from environment variables, preferring
// PRIVATE_REPOS_TOKEN over GITHUB_TOKEN when both are set.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	token := os.Getenv("PRIVATE_REPOS_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	cfg := &Config{
		Token:                 token,
		PrimaryAccount:        getEnv("PORTFOLIO_ACCOUNT", "joaosnet"),
		SelfRepo:              getEnv("PORTFOLIO_SELF_REPO", "joaosnet.github.io"),
		ProjectLimit:          getEnvInt("PORTFOLIO_PROJECT_LIMIT", 4),
		AssetsDir:             getEnv("PORTFOLIO_ASSETS_DIR", "assets/project-images"),
		PlaceholderPath:       getEnv("PORTFOLIO_PLACEHOLDER", "./assets/css/images/icon.png"),
		DisableAvatarFallback: getEnvBool("PORTFOLIO_DISABLE_AVATAR_FALLBACK", false),
		IndexPath:             getEnv("PORTFOLIO_INDEX", "index.html"),
		Timeout:               time.Duration(getEnvInt("PORTFOLIO_HTTP_TIMEOUT_SECONDS", 10)) * time.Second,
		LogLevel:              getEnv("PORTFOLIO_LOG_LEVEL", "info"),
	}

	return cfg, cfg.Validate()
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.PrimaryAccount == "" {
		return &ConfigError{Field: "PORTFOLIO_ACCOUNT", Message: "primary account is required"}
	}
	if c.ProjectLimit < 0 {
		return &ConfigError{Field: "PORTFOLIO_PROJECT_LIMIT", Message: "must not be negative"}
	}
	if c.Timeout <= 0 {
		return &ConfigError{Field: "PORTFOLIO_HTTP_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
