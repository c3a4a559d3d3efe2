package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultAddr = "localhost:8080"

// Env is the process configuration read from the environment, after an
// optional .env file in the working directory.
type Env struct {
	DBPath                string
	Addr                  string
	LogLevel              string
	USDAAPIKey            string
	FatSecretClientID     string
	FatSecretClientSecret string
	UPCItemDBAPIKey       string
}

func LoadEnv() Env {
	// A missing .env file is the normal case.
	_ = godotenv.Load()
	return Env{
		DBPath:                getEnv("SPOON_DB_PATH", ""),
		Addr:                  getEnv("SPOON_ADDR", DefaultAddr),
		LogLevel:              getEnv("SPOON_LOG_LEVEL", "info"),
		USDAAPIKey:            getEnv("USDA_API_KEY", ""),
		FatSecretClientID:     getEnv("FATSECRET_CLIENT_ID", ""),
		FatSecretClientSecret: getEnv("FATSECRET_CLIENT_SECRET", ""),
		UPCItemDBAPIKey:       getEnv("UPCITEMDB_API_KEY", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger for the CLI, or a JSON logger for the
// server when asJSON is set.
func NewLogger(w io.Writer, level string, asJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
