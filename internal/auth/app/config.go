package app

import (
	"os"
	"strconv"
	"time"

	"github.com/rohllet/identity/pkg/jwtx"
)

type Config struct {
	Issuer         string        // Issuer claim for identity tokens (default: rohllet-identity)
	SigningKeyFile string        // Optional: path to a PEM-encoded Ed25519 private key; ephemeral if unset
	AccessTTL      time.Duration // Identity token lifetime (default: 15m)

	DatabaseFile string // Path to the SQLite database file (default: ./identity.db)
	PepperFile   string // Path to the password hashing pepper file (default: ./pepper)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Issuer:         getEnvOrDefault("AUTH_ISSUER", "rohllet-identity"),
		SigningKeyFile: os.Getenv("AUTH_SIGNING_KEY_FILE"),
		AccessTTL:      getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "identity.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Allow a bare integer, interpreted as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
