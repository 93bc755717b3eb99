/*

This file contains the curator configuration resolver.

Resolution layers three sources in priority order:

	compiled-in defaults  <  environment overrides  <  explicit caller overrides

Every override field is independently optional; an absent field never clobbers
a lower-priority value. Weight vectors are layered the same way and then
normalized to sum to exactly 1, falling back to the default vector when the
layered sum is non-positive. Resolution never fails: malformed environment
values are treated as absent, not as errors.

*/

package config

import (
	"math"
	"os"
	"strconv"

	"github.com/lendscope/cre/internal/logger"
	"github.com/lendscope/cre/internal/types"
)

var resolverLogger = logger.GetForComponent("config_resolver")

// Environment variable names for curator config overrides. All optional.
const (
	EnvUtilizationCeiling        = "CRE_UTILIZATION_CEILING"
	EnvMaxUtilizationBeyond      = "CRE_MAX_UTILIZATION_BEYOND"
	EnvRateAlignmentEps          = "CRE_RATE_ALIGNMENT_EPS"
	EnvHighYieldBuffer           = "CRE_HIGH_YIELD_BUFFER"
	EnvHighYieldEps              = "CRE_HIGH_YIELD_EPS"
	EnvFallbackBenchmarkRate     = "CRE_FALLBACK_BENCHMARK_RATE"
	EnvPriceStressPct            = "CRE_PRICE_STRESS_PCT"
	EnvLiquidityStressPct        = "CRE_LIQUIDITY_STRESS_PCT"
	EnvWithdrawalLiquidityMinPct = "CRE_WITHDRAWAL_LIQUIDITY_MIN_PCT"
	EnvInsolvencyTolerancePct    = "CRE_INSOLVENCY_TOLERANCE_PCT"
	EnvMinTvlUsd                 = "CRE_MIN_TVL_USD"

	EnvWeightUtilization         = "CRE_WEIGHT_UTILIZATION"
	EnvWeightRateAlignment       = "CRE_WEIGHT_RATE_ALIGNMENT"
	EnvWeightStressExposure      = "CRE_WEIGHT_STRESS_EXPOSURE"
	EnvWeightWithdrawalLiquidity = "CRE_WEIGHT_WITHDRAWAL_LIQUIDITY"
	EnvWeightLiquidationCapacity = "CRE_WEIGHT_LIQUIDATION_CAPACITY"
)

// Resolve builds an immutable CuratorConfig from the compiled-in defaults,
// environment overrides, and the given caller overrides (which may be nil).
// The returned config always carries a weight vector that sums to exactly 1.
func Resolve(overrides *types.CuratorConfigOverrides) types.CuratorConfig {
	cfg := DefaultCuratorConfig

	env := EnvCuratorOverrides()
	applyOverrides(&cfg, &env)
	if overrides != nil {
		applyOverrides(&cfg, overrides)
	}

	cfg.Weights = normalizeWeights(cfg.Weights)
	return cfg
}

// EnvCuratorOverrides reads the sparse curator config override set from
// environment variables. Unset, unparsable, or non-finite values are absent.
func EnvCuratorOverrides() types.CuratorConfigOverrides {
	return types.CuratorConfigOverrides{
		UtilizationCeiling:        envFloat(EnvUtilizationCeiling),
		MaxUtilizationBeyond:      envFloat(EnvMaxUtilizationBeyond),
		RateAlignmentEps:          envFloat(EnvRateAlignmentEps),
		HighYieldBuffer:           envFloat(EnvHighYieldBuffer),
		HighYieldEps:              envFloat(EnvHighYieldEps),
		FallbackBenchmarkRate:     envFloat(EnvFallbackBenchmarkRate),
		PriceStressPct:            envFloat(EnvPriceStressPct),
		LiquidityStressPct:        envFloat(EnvLiquidityStressPct),
		WithdrawalLiquidityMinPct: envFloat(EnvWithdrawalLiquidityMinPct),
		InsolvencyTolerancePct:    envFloat(EnvInsolvencyTolerancePct),
		MinTvlUsd:                 envFloat(EnvMinTvlUsd),
		Weights: types.CuratorWeightOverrides{
			Utilization:         envFloat(EnvWeightUtilization),
			RateAlignment:       envFloat(EnvWeightRateAlignment),
			StressExposure:      envFloat(EnvWeightStressExposure),
			WithdrawalLiquidity: envFloat(EnvWeightWithdrawalLiquidity),
			LiquidationCapacity: envFloat(EnvWeightLiquidationCapacity),
		},
	}
}

// applyOverrides copies every present override field onto cfg.
func applyOverrides(cfg *types.CuratorConfig, ov *types.CuratorConfigOverrides) {
	setFloat(&cfg.UtilizationCeiling, ov.UtilizationCeiling)
	setFloat(&cfg.MaxUtilizationBeyond, ov.MaxUtilizationBeyond)
	setFloat(&cfg.RateAlignmentEps, ov.RateAlignmentEps)
	setFloat(&cfg.HighYieldBuffer, ov.HighYieldBuffer)
	setFloat(&cfg.HighYieldEps, ov.HighYieldEps)
	setFloat(&cfg.FallbackBenchmarkRate, ov.FallbackBenchmarkRate)
	setFloat(&cfg.PriceStressPct, ov.PriceStressPct)
	setFloat(&cfg.LiquidityStressPct, ov.LiquidityStressPct)
	setFloat(&cfg.WithdrawalLiquidityMinPct, ov.WithdrawalLiquidityMinPct)
	setFloat(&cfg.InsolvencyTolerancePct, ov.InsolvencyTolerancePct)
	setFloat(&cfg.MinTvlUsd, ov.MinTvlUsd)

	setFloat(&cfg.Weights.Utilization, ov.Weights.Utilization)
	setFloat(&cfg.Weights.RateAlignment, ov.Weights.RateAlignment)
	setFloat(&cfg.Weights.StressExposure, ov.Weights.StressExposure)
	setFloat(&cfg.Weights.WithdrawalLiquidity, ov.Weights.WithdrawalLiquidity)
	setFloat(&cfg.Weights.LiquidationCapacity, ov.Weights.LiquidationCapacity)
}

// normalizeWeights rescales the layered weight vector to sum to exactly 1.
// Negative components are floored at 0 before summing. A non-positive sum is
// not an error: the full default vector is substituted instead, so a caller
// zeroing every weight can never divide the aggregate by zero.
func normalizeWeights(w types.CuratorWeights) types.CuratorWeights {
	w.Utilization = floorZero(w.Utilization)
	w.RateAlignment = floorZero(w.RateAlignment)
	w.StressExposure = floorZero(w.StressExposure)
	w.WithdrawalLiquidity = floorZero(w.WithdrawalLiquidity)
	w.LiquidationCapacity = floorZero(w.LiquidationCapacity)

	sum := w.Sum()
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		resolverLogger.Warn().
			Float64("weightSum", sum).
			Msg("Layered curator weights sum to a non-positive value, substituting default weight vector")
		return DefaultCuratorWeights
	}

	w.Utilization /= sum
	w.RateAlignment /= sum
	w.StressExposure /= sum
	w.WithdrawalLiquidity /= sum
	w.LiquidationCapacity /= sum
	return w
}

func floorZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func setFloat(dst *float64, src *float64) {
	if src == nil {
		return
	}
	if math.IsNaN(*src) || math.IsInf(*src, 0) {
		return
	}
	*dst = *src
}

// envFloat reads an optional float override from the environment. A value
// that fails to parse as a finite number is logged and treated as absent so
// resolution falls through to the next priority layer.
func envFloat(key string) *float64 {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		resolverLogger.Warn().
			Str("key", key).
			Str("value", raw).
			Msg("Ignoring curator config override that is not a finite number")
		return nil
	}
	return &value
}
