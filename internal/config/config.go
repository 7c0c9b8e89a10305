package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env  string
	Port int

	// DATABASE_URL is the single source of truth for the Postgres address.
	DBURL string

	OTLPEndpoint string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads the configuration from the environment. A missing DATABASE_URL
// is a startup error, there is no usable fallback for it.
func Load() (Config, error) {
	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		return Config{}, errors.New("DATABASE_URL must be set")
	}

	return Config{
		Env:           env,
		Port:          port,
		DBURL:         dbURL,
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
	}, nil
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}
