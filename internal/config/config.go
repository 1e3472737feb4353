package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
}

// AuthConfig holds hosted auth service configuration.
type AuthConfig struct {
	URL        string // project base URL, e.g. "https://xyz.supabase.co"
	ServiceKey string // service-role key for the admin API
	JWTSecret  string // shared secret session tokens are signed with
}

// AIConfig holds inference endpoint configuration.
type AIConfig struct {
	APIKey       string
	ImageAPIKey  string // falls back to APIKey when unset
	TextBaseURL  string // empty means the client default
	ImageBaseURL string // empty means the client default
	TextModel    string
	ImageModel   string
}

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Auth        AuthConfig
	AI          AIConfig
}

// Load reads configuration from environment variables, after loading a
// local .env file if one exists. It fails fast with a single error naming
// every missing required value.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var missing []string

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}
	if env != "development" && env != "staging" && env != "production" {
		return nil, fmt.Errorf("invalid ENV value %q: must be development, staging, or production", env)
	}

	// Database configuration (required)
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	// Auth service configuration (required)
	authURL := os.Getenv("AUTH_URL")
	if authURL == "" {
		missing = append(missing, "AUTH_URL")
	}
	authServiceKey := os.Getenv("AUTH_SERVICE_KEY")
	if authServiceKey == "" {
		missing = append(missing, "AUTH_SERVICE_KEY")
	}
	authJWTSecret := os.Getenv("AUTH_JWT_SECRET")
	if authJWTSecret == "" {
		missing = append(missing, "AUTH_JWT_SECRET")
	}

	// Inference configuration (key required, the rest has defaults)
	aiAPIKey := os.Getenv("HF_API_KEY")
	if aiAPIKey == "" {
		missing = append(missing, "HF_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	imageAPIKey := os.Getenv("HF_IMAGE_API_KEY")
	if imageAPIKey == "" {
		imageAPIKey = aiAPIKey
	}

	return &Config{
		Port:        port,
		Environment: env,
		Database: DatabaseConfig{
			URL:             databaseURL,
			MaxOpenConns:    intEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    intEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: intEnv("DB_CONN_MAX_LIFETIME", 300),
		},
		Auth: AuthConfig{
			URL:        strings.TrimSuffix(authURL, "/"),
			ServiceKey: authServiceKey,
			JWTSecret:  authJWTSecret,
		},
		AI: AIConfig{
			APIKey:       aiAPIKey,
			ImageAPIKey:  imageAPIKey,
			TextBaseURL:  os.Getenv("HF_TEXT_BASE_URL"),
			ImageBaseURL: os.Getenv("HF_IMAGE_BASE_URL"),
			TextModel:    os.Getenv("HF_TEXT_MODEL"),
			ImageModel:   os.Getenv("HF_IMAGE_MODEL"),
		},
	}, nil
}

func intEnv(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
