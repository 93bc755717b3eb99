package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/lendscope/cre/internal/config"
	"github.com/lendscope/cre/internal/datafetcher"
	"github.com/lendscope/cre/internal/engine"
	"github.com/lendscope/cre/internal/logger"
	"github.com/lendscope/cre/internal/state"
	"github.com/lendscope/cre/internal/web"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// main is the entry point for the CRE system.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("CRE Core Logic Starting...")

	// Initialize Database Connection (for curator config versions and cycle snapshots)
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Resolve the curator config (defaults + env overrides) and reconcile it
	// with the persisted active version.
	resolved := config.Resolve(nil)
	curatorConfig, configID, err := state.LoadActiveCuratorConfig(engine.DEFAULT_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active curator config, using resolved config and saving.")
		configID, err = state.SaveCuratorConfig(resolved, engine.DEFAULT_CONFIG_NAME, config.DefaultConfigVersion, true)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial curator config.")
		}
		curatorConfig = &resolved
	}
	log.Info().Int64("configID", configID).Msg("Curator config loaded successfully.")

	// --- Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting CRE dashboard API")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 2. Build Data Sources ---
	marketFetcher, err := datafetcher.NewMarketFetcher(config.LendingAPI, config.ChainID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create market fetcher")
	}

	lookupTimeout := time.Duration(config.LookupTimeoutSeconds) * time.Second
	oracleClient, err := datafetcher.NewOracleFreshnessClient(config.OracleStatusAPI, lookupTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create oracle freshness client")
	}
	irmClient, err := datafetcher.NewIrmTargetClient(config.IrmAPI, lookupTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create IRM target client")
	}

	// --- 3. Create Engine Instance with Dependency Injection ---
	log.Info().Msg("Creating engine instance with dependency injection...")

	engineInstance, err := engine.New(engine.Config{
		Markets:       marketFetcher,
		Oracles:       oracleClient,
		Irms:          irmClient,
		CuratorConfig: *curatorConfig,
		ConfigID:      configID,
		ConfigName:    engine.DEFAULT_CONFIG_NAME,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine instance")
	}

	log.Info().Msg("Engine instance created successfully")

	// --- 4. Start Main Loop ---
	interval := time.Duration(config.RefreshIntervalSeconds) * time.Second
	log.Info().Str("interval", interval.String()).Msg("Starting scoring loop")

	ctx := context.Background()
	engineInstance.RunLoop(ctx, interval)
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
