package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.

type Config struct {
	Port            string
	DatabasePath    string
	ComicvineAPIKey string
	ComicvineBase   string
	JWTSecret       string
	TokenTTL        time.Duration
	SelfPingURL     string
}

// Load reads .env (when present) then the environment.

func Load() (*Config, error) {
	// .env is optional; the environment alone is fine in production
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getenv("PORT", "3001"),
		DatabasePath:    getenv("DATABASE_PATH", "./data/comicvault.db"),
		ComicvineAPIKey: os.Getenv("COMICVINE_API_KEY"),
		ComicvineBase:   getenv("COMICVINE_BASE_URL", "https://comicvine.gamespot.com/api"),
		JWTSecret:       getenv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:        24 * time.Hour,
		SelfPingURL:     os.Getenv("SELF_PING_URL"),
	}

	if hrs := os.Getenv("TOKEN_TTL_HOURS"); hrs != "" {
		if n, err := strconv.Atoi(hrs); err == nil && n > 0 {
			cfg.TokenTTL = time.Duration(n) * time.Hour
		}
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
