// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr      string
	DBPath          string
	KeyPath         string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Load reads configuration from environment variables and returns a validated
// Config. PASSVAULT_JWT_SECRET is required; the server refuses to start
// without it. Optional variables with defaults: PASSVAULT_LISTEN_ADDR
// (127.0.0.1:8080), PASSVAULT_DB_PATH (passvault.db), PASSVAULT_KEY_PATH
// (encryption_key.key), PASSVAULT_ACCESS_TOKEN_TTL (15m),
// PASSVAULT_REFRESH_TOKEN_TTL (168h).
func Load() (*Config, error) {
	secret := os.Getenv("PASSVAULT_JWT_SECRET")
	if secret == "" {
		return nil, errors.New("PASSVAULT_JWT_SECRET is required")
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("PASSVAULT_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "passvault.db"
	if v, ok := os.LookupEnv("PASSVAULT_DB_PATH"); ok {
		dbPath = v
	}

	keyPath := "encryption_key.key"
	if v, ok := os.LookupEnv("PASSVAULT_KEY_PATH"); ok {
		keyPath = v
	}

	accessTTL := 15 * time.Minute
	if v, ok := os.LookupEnv("PASSVAULT_ACCESS_TOKEN_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PASSVAULT_ACCESS_TOKEN_TTL has invalid duration %q: %w", v, err)
		}
		accessTTL = parsed
	}

	refreshTTL := 168 * time.Hour
	if v, ok := os.LookupEnv("PASSVAULT_REFRESH_TOKEN_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PASSVAULT_REFRESH_TOKEN_TTL has invalid duration %q: %w", v, err)
		}
		refreshTTL = parsed
	}

	return &Config{
		ListenAddr:      listenAddr,
		DBPath:          dbPath,
		KeyPath:         keyPath,
		JWTSecret:       secret,
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
	}, nil
}
