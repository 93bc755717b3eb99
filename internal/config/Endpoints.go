package config

import (
	"github.com/rs/zerolog/log"
)

// Endpoint configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// LendingAPI is the GraphQL endpoint of the lending protocol's indexer.
	LendingAPI string
	// OracleStatusAPI is the endpoint serving oracle last-update timestamps.
	OracleStatusAPI string
	// IrmAPI is the endpoint serving interest-rate-model target utilizations.
	IrmAPI string
)

// loadEndpointConfig loads endpoint configuration from environment variables.
// This function is called by LoadConfig() in General.go.
func loadEndpointConfig() error {
	log.Info().Msg("Loading endpoint configuration from environment variables...")

	var err error

	LendingAPI, err = getEnv("CRE_LENDING_API")
	if err != nil {
		return err
	}

	OracleStatusAPI, err = getEnv("CRE_ORACLE_STATUS_API")
	if err != nil {
		return err
	}

	IrmAPI, err = getEnv("CRE_IRM_API")
	if err != nil {
		return err
	}

	log.Debug().
		Str("LendingAPI", LendingAPI).
		Str("OracleStatusAPI", OracleStatusAPI).
		Str("IrmAPI", IrmAPI).
		Msg("Endpoint configuration loaded successfully.")

	return nil
}
