// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// TestDBConnection pings the database with a short timeout.
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return DB.PingContext(ctx)
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS curator_configs (
			config_id SERIAL PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 1,
			config_name VARCHAR(255) NOT NULL DEFAULT 'default',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			utilization_ceiling DECIMAL(10, 6) NOT NULL,
			max_utilization_beyond DECIMAL(10, 6) NOT NULL,
			rate_alignment_eps DECIMAL(10, 6) NOT NULL,
			high_yield_buffer DECIMAL(10, 6) NOT NULL,
			high_yield_eps DECIMAL(10, 6) NOT NULL,
			fallback_benchmark_rate DECIMAL(10, 6) NOT NULL,
			price_stress_pct DECIMAL(10, 6) NOT NULL,
			liquidity_stress_pct DECIMAL(10, 6) NOT NULL,
			withdrawal_liquidity_min_pct DECIMAL(10, 6) NOT NULL,
			insolvency_tolerance_pct DECIMAL(10, 6) NOT NULL,
			min_tvl_usd DECIMAL(20, 8) NOT NULL,
			weight_utilization DECIMAL(10, 8) NOT NULL,
			weight_rate_alignment DECIMAL(10, 8) NOT NULL,
			weight_stress_exposure DECIMAL(10, 8) NOT NULL,
			weight_withdrawal_liquidity DECIMAL(10, 8) NOT NULL,
			weight_liquidation_capacity DECIMAL(10, 8) NOT NULL,
			CONSTRAINT uq_curator_configs_config_version UNIQUE (config_name, version)
		);
		CREATE INDEX IF NOT EXISTS idx_curator_configs_active ON curator_configs(config_name, is_active, activated_at DESC);

		CREATE TABLE IF NOT EXISTS cycle_snapshots (
			snapshot_id SERIAL PRIMARY KEY,
			cycle_number INTEGER NOT NULL,
			cycle_id VARCHAR(64) NOT NULL,
			snapshot_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			config_id INTEGER REFERENCES curator_configs(config_id),

			market_count INTEGER NOT NULL,
			idle_count INTEGER NOT NULL,
			rated_count INTEGER NOT NULL,

			ratings JSONB,
			grades JSONB,

			duration_ms BIGINT NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_cycle_snapshots_timestamp ON cycle_snapshots(snapshot_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_cycle_snapshots_cycle_number ON cycle_snapshots(cycle_number DESC);

		CREATE TABLE IF NOT EXISTS cycle_counter (
			id INTEGER PRIMARY KEY DEFAULT 1,
			current_cycle INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT single_row_check CHECK (id = 1)
		);
		INSERT INTO cycle_counter (id, current_cycle)
		VALUES (1, 0)
		ON CONFLICT (id) DO NOTHING;
	`

	if _, err := DB.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Info().Msg("Database schema ensured")
	return nil
}
