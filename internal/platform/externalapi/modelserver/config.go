// Package modelserver provides a client for the HTTP service that hosts the trained yield model.
package modelserver

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds configuration for the model-serving client.
type Config struct {
	BaseURL   string        // Base URL of the model server (e.g., "http://localhost:9000")
	ModelName string        // Sent as the "model" field; empty lets the server pick its default
	Timeout   time.Duration // HTTP request timeout, 0 means none
}

// LoadConfig loads model server configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		BaseURL:   strings.TrimRight(os.Getenv("MODEL_BASE_URL"), "/"),
		ModelName: os.Getenv("MODEL_NAME"),
	}
	if raw := os.Getenv("MODEL_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			slog.Warn("ignoring invalid MODEL_TIMEOUT", "value", raw, "error", err)
		} else {
			cfg.Timeout = d
		}
	}
	return cfg
}
