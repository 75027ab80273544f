package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup from the environment (and .env when present).
type Config struct {
	Port             string
	DatabaseURL      string
	SessionSecret    string
	JWTSecret        string
	JWTTTL           time.Duration
	LogLevel         string
	LogFormat        string
	TrendingCacheTTL time.Duration
}

// Load reads .env if it exists and fills in defaults for anything unset.
// The returned bool reports whether a .env file was found.
func Load() (*Config, bool) {
	found := godotenv.Load() == nil

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=cinecore port=5432 sslmode=disable TimeZone=UTC"),
		SessionSecret:    getEnv("SESSION_SECRET", "secret_key_change_me"),
		JWTSecret:        getEnv("JWT_SECRET", "jwt_secret_change_me"),
		JWTTTL:           getDuration("JWT_TTL", 24*time.Hour),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		TrendingCacheTTL: getDuration("TRENDING_CACHE_TTL", 5*time.Minute),
	}
	return cfg, found
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
