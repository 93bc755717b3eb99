package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function. The engine's own
// numeric parameters are NOT here: those live in the curator config, which is
// resolved leniently by Resolver.go. Application wiring, by contrast, is strict
// and refuses to start half-configured.
var (
	// ChainID is the EVM chain the markets are fetched for (1 = mainnet, 8453 = Base).
	ChainID uint64

	// RefreshInterval is the scoring cycle interval in seconds.
	RefreshIntervalSeconds uint64

	// LookupTimeoutSeconds bounds each oracle/IRM lookup HTTP call.
	LookupTimeoutSeconds uint64
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	ChainID, err = getEnvAsUint64("CRE_CHAIN_ID")
	if err != nil {
		return err
	}

	RefreshIntervalSeconds, err = getEnvAsUint64("CRE_REFRESH_INTERVAL_SECONDS")
	if err != nil {
		return err
	}

	LookupTimeoutSeconds, err = getEnvAsUint64("CRE_LOOKUP_TIMEOUT_SECONDS")
	if err != nil {
		return err
	}

	// Load endpoint configuration
	if err := loadEndpointConfig(); err != nil {
		return err
	}

	log.Debug().
		Uint64("ChainID", ChainID).
		Uint64("RefreshIntervalSeconds", RefreshIntervalSeconds).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}
