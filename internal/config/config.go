package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultRefreshInterval is how often the live map is rebuilt and pushed
const DefaultRefreshInterval = 30 * time.Second

type Config struct {
	DatabaseURL     string
	Port            string
	JWTSecret       string
	Env             string
	RefreshInterval time.Duration
	AllowedOrigins  []string

	// Firebase credentials; push alerts are disabled when both are empty
	FirebaseCredentialsBase64 string
	FirebaseCredentialsFile   string
}

// IsProduction reports whether APP_ENV is production
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env (if present) and the process environment.
// The returned bool reports whether a .env file was found.
func Load() (Config, bool, error) {
	loaded := godotenv.Load() == nil
	cfg, err := FromEnv(os.Getenv)
	return cfg, loaded, err
}

// FromEnv builds a Config from a lookup function
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		DatabaseURL:               getenv("DATABASE_URL"),
		Port:                      getenv("PORT"),
		JWTSecret:                 getenv("APP_JWT_SECRET"),
		Env:                       getenv("APP_ENV"),
		RefreshInterval:           DefaultRefreshInterval,
		AllowedOrigins:            []string{"*"},
		FirebaseCredentialsBase64: getenv("FIREBASE_CREDENTIALS_BASE64"),
		FirebaseCredentialsFile:   getenv("FIREBASE_CREDENTIALS_FILE"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("APP_JWT_SECRET environment variable is required")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	if raw := getenv("LIVE_MAP_REFRESH_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid LIVE_MAP_REFRESH_INTERVAL %q", raw)
		}
		cfg.RefreshInterval = d
	}

	if raw := getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		var origins []string
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.AllowedOrigins = origins
		}
	}

	return cfg, nil
}
