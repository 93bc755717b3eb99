// ./internal/state/config_store.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lendscope/cre/internal/types"
	"github.com/rs/zerolog/log"
)

// SaveCuratorConfig saves a new version of the curator configuration.
func SaveCuratorConfig(cfg types.CuratorConfig, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE curator_configs SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active config for %s: %w", configName, err)
		}
	}

	stmt := `
		INSERT INTO curator_configs (
			version, config_name, is_active, activated_at, created_at,
			utilization_ceiling, max_utilization_beyond,
			rate_alignment_eps, high_yield_buffer, high_yield_eps, fallback_benchmark_rate,
			price_stress_pct, liquidity_stress_pct,
			withdrawal_liquidity_min_pct, insolvency_tolerance_pct, min_tvl_usd,
			weight_utilization, weight_rate_alignment, weight_stress_exposure,
			weight_withdrawal_liquidity, weight_liquidation_capacity
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7,
			$8, $9, $10, $11,
			$12, $13,
			$14, $15, $16,
			$17, $18, $19,
			$20, $21
		) RETURNING config_id;`

	var configID int64
	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, currentTime, currentTime,
		cfg.UtilizationCeiling, cfg.MaxUtilizationBeyond,
		cfg.RateAlignmentEps, cfg.HighYieldBuffer, cfg.HighYieldEps, cfg.FallbackBenchmarkRate,
		cfg.PriceStressPct, cfg.LiquidityStressPct,
		cfg.WithdrawalLiquidityMinPct, cfg.InsolvencyTolerancePct, cfg.MinTvlUsd,
		cfg.Weights.Utilization, cfg.Weights.RateAlignment, cfg.Weights.StressExposure,
		cfg.Weights.WithdrawalLiquidity, cfg.Weights.LiquidationCapacity,
	).Scan(&configID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert curator config: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit curator config: %w", err)
	}

	log.Info().
		Int64("configID", configID).
		Str("configName", configName).
		Int("version", version).
		Bool("active", makeActive).
		Msg("Curator config saved")

	return configID, nil
}

// LoadActiveCuratorConfig loads the active curator configuration for the
// given config name, along with its row ID.
func LoadActiveCuratorConfig(configName string) (*types.CuratorConfig, int64, error) {
	if DB == nil {
		return nil, 0, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT config_id, version,
			utilization_ceiling, max_utilization_beyond,
			rate_alignment_eps, high_yield_buffer, high_yield_eps, fallback_benchmark_rate,
			price_stress_pct, liquidity_stress_pct,
			withdrawal_liquidity_min_pct, insolvency_tolerance_pct, min_tvl_usd,
			weight_utilization, weight_rate_alignment, weight_stress_exposure,
			weight_withdrawal_liquidity, weight_liquidation_capacity
		FROM curator_configs
		WHERE config_name = $1 AND is_active = TRUE
		ORDER BY activated_at DESC
		LIMIT 1;`

	var cfg types.CuratorConfig
	var configID int64
	err := DB.QueryRow(query, configName).Scan(
		&configID, &cfg.Version,
		&cfg.UtilizationCeiling, &cfg.MaxUtilizationBeyond,
		&cfg.RateAlignmentEps, &cfg.HighYieldBuffer, &cfg.HighYieldEps, &cfg.FallbackBenchmarkRate,
		&cfg.PriceStressPct, &cfg.LiquidityStressPct,
		&cfg.WithdrawalLiquidityMinPct, &cfg.InsolvencyTolerancePct, &cfg.MinTvlUsd,
		&cfg.Weights.Utilization, &cfg.Weights.RateAlignment, &cfg.Weights.StressExposure,
		&cfg.Weights.WithdrawalLiquidity, &cfg.Weights.LiquidationCapacity,
	)
	if err == sql.ErrNoRows {
		return nil, 0, fmt.Errorf("no active curator config found for %s", configName)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load active curator config: %w", err)
	}

	return &cfg, configID, nil
}
