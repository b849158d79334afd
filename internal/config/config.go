// Package config loads service configuration from the environment, with
// optional .env support for local development.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port        string
	BearerToken string
	DatabaseURL string

	// RedisURL is optional; when empty the forecast cache runs in-process.
	RedisURL string

	// SolanaRPCEndpoint overrides the default mainnet RPC node when set.
	SolanaRPCEndpoint string
}

// Load reads configuration from the environment. A missing .env file is
// fine; missing required variables are not.
func Load(log *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file loaded", "err", err)
	}

	cfg := &Config{
		Port:              getenvDefault("PORT", "8080"),
		BearerToken:       os.Getenv("BEARER_TOKEN"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		SolanaRPCEndpoint: os.Getenv("SOLANA_RPC_ENDPOINT"),
	}

	if cfg.BearerToken == "" {
		return nil, fmt.Errorf("required environment variable BEARER_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("required environment variable DATABASE_URL not set")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
