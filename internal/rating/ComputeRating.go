/*

This file contains the main function for computing the curator health rating
for a lending market.

The rating is a pure function of the market snapshot, the resolved curator
config, and an optional benchmark supply rate. It never fails: every malformed
or missing input has a documented fallback, and the worst outcome is a more
conservative score or a withheld (nil) rating on insufficient TVL.

*/

package rating

import (
	"math"

	"github.com/lendscope/cre/internal/logger"
	"github.com/lendscope/cre/internal/types"
	"github.com/lendscope/cre/internal/utils"
)

var ratingLogger = logger.GetForComponent("curator_rating")

// utilSafeFraction is the fraction of the configured utilization ceiling under
// which the utilization score is still perfect.
const utilSafeFraction = 0.98

// utilAnomalyMargin is how far beyond MaxUtilizationBeyond a reading must sit
// before it is flagged as a data anomaly. The flag is a warning log only; the
// score is already 0 at that point.
const utilAnomalyMargin = 0.05

// ComputeRating computes the 0-100 curator health rating for one market.
// benchmarkRate may be nil, in which case the configured fallback benchmark is
// used. Sub-scores are always populated; the final rating is nil if and only
// if the market's TVL is below cfg.MinTvlUsd.
func ComputeRating(market types.Market, cfg types.CuratorConfig, benchmarkRate *float64) types.CuratorRatingResult {
	result := types.CuratorRatingResult{
		MarketID:    market.ID,
		UniqueKey:   market.UniqueKey,
		WeightsUsed: cfg.Weights,
	}

	supplied := utils.NonNegative(market.State.SupplyAssetsUsd)
	borrowed := utils.NonNegative(market.State.BorrowAssetsUsd)
	liquidity := utils.NonNegative(market.State.LiquidityAssetsUsd)

	tvl := ResolveTvl(market.State)
	result.TvlUsd = tvl
	result.InsufficientTvl = tvl < cfg.MinTvlUsd

	benchmark := cfg.FallbackBenchmarkRate
	if benchmarkRate != nil && !math.IsNaN(*benchmarkRate) && !math.IsInf(*benchmarkRate, 0) {
		benchmark = *benchmarkRate
	}

	// Stress simulation shared by two sub-scores: shock the collateral side
	// and measure the hole that borrowing would leave behind.
	collateralAfterShock := supplied * (1 - utils.Clamp01(cfg.PriceStressPct))
	potentialInsolvencyUsd := math.Max(0, borrowed-collateralAfterShock)

	result.Components.UtilizationScore = CalculateUtilizationScore(market, cfg)
	result.Components.RateAlignmentScore = CalculateRateAlignmentScore(market, cfg, benchmark)
	result.Components.StressExposureScore = CalculateStressExposureScore(potentialInsolvencyUsd, tvl, cfg)
	result.Components.WithdrawalLiquidityScore = CalculateWithdrawalLiquidityScore(liquidity, tvl, cfg)
	result.Components.LiquidationCapacityScore = CalculateLiquidationCapacityScore(liquidity, potentialInsolvencyUsd, tvl, cfg)

	aggregate := cfg.Weights.Utilization*result.Components.UtilizationScore +
		cfg.Weights.RateAlignment*result.Components.RateAlignmentScore +
		cfg.Weights.StressExposure*result.Components.StressExposureScore +
		cfg.Weights.WithdrawalLiquidity*result.Components.WithdrawalLiquidityScore +
		cfg.Weights.LiquidationCapacity*result.Components.LiquidationCapacityScore

	if !result.InsufficientTvl {
		value := int(math.Round(utils.Clamp01(aggregate) * 100))
		result.Rating = &value
	}

	ratingLogger.Debug().
		Str("marketID", market.ID).
		Str("uniqueKey", market.UniqueKey).
		Float64("tvlUsd", tvl).
		Bool("insufficientTvl", result.InsufficientTvl).
		Float64("utilizationScore", result.Components.UtilizationScore).
		Float64("rateAlignmentScore", result.Components.RateAlignmentScore).
		Float64("stressExposureScore", result.Components.StressExposureScore).
		Float64("withdrawalLiquidityScore", result.Components.WithdrawalLiquidityScore).
		Float64("liquidationCapacityScore", result.Components.LiquidationCapacityScore).
		Float64("aggregate", aggregate).
		Msg("Curator rating computed")

	return result
}

// ResolveTvl returns the market's TVL in USD: the indexer-reported size when
// positive, otherwise supplied plus borrowed.
func ResolveTvl(state types.MarketState) float64 {
	if state.SizeUsd != nil {
		if size := utils.FiniteOrZero(*state.SizeUsd); size > 0 {
			return size
		}
	}
	return utils.NonNegative(state.SupplyAssetsUsd) + utils.NonNegative(state.BorrowAssetsUsd)
}

// CalculateUtilizationScore scores how far the market's utilization sits from
// the configured ceiling. The score is perfect up to 98% of the ceiling, then
// decays linearly to 0 at MaxUtilizationBeyond. Readings far beyond the bound
// are reported as anomalies but do not change the math.
func CalculateUtilizationScore(market types.Market, cfg types.CuratorConfig) float64 {
	utilization := resolveUtilization(market.State)

	utilSafe := utils.Clamp01(cfg.UtilizationCeiling) * utilSafeFraction
	if utilization <= utilSafe {
		return 1
	}

	if utilization > cfg.MaxUtilizationBeyond+utilAnomalyMargin {
		ratingLogger.Warn().
			Str("marketID", market.ID).
			Str("uniqueKey", market.UniqueKey).
			Float64("utilization", utilization).
			Float64("maxUtilizationBeyond", cfg.MaxUtilizationBeyond).
			Msg("Utilization far beyond configured bound, treating as data anomaly")
	}

	span := cfg.MaxUtilizationBeyond - utilSafe
	if span <= 0 {
		return 0
	}
	return utils.Clamp01(1 - (utilization-utilSafe)/span)
}

// resolveUtilization returns the reported utilization clamped defensively,
// deriving borrowed/supplied when the indexer omits the field. Utilization is
// clamped to non-negative but deliberately NOT capped at 1: readings above 1
// carry signal for the decay curve and the anomaly check.
func resolveUtilization(state types.MarketState) float64 {
	if state.Utilization != nil {
		return utils.NonNegative(*state.Utilization)
	}
	return utils.SafeRatio(utils.NonNegative(state.BorrowAssetsUsd), utils.NonNegative(state.SupplyAssetsUsd), 0)
}

// CalculateRateAlignmentScore scores how closely the market's supply rate
// tracks the benchmark, with an extra multiplicative penalty for yield far
// above it. Outsized yield is a risk signal, not a reward.
func CalculateRateAlignmentScore(market types.Market, cfg types.CuratorConfig, benchmark float64) float64 {
	supplyRate := utils.FiniteOrZero(market.State.SupplyApy)
	benchmark = utils.FiniteOrZero(benchmark)

	diff := math.Abs(supplyRate - benchmark)
	score := 1.0
	if cfg.RateAlignmentEps > 0 {
		score = math.Exp(-diff / cfg.RateAlignmentEps)
	} else if diff > 0 {
		score = 0
	}

	excess := supplyRate - (benchmark + cfg.HighYieldBuffer)
	if excess > 0 {
		if cfg.HighYieldEps > 0 {
			score *= math.Exp(-excess / cfg.HighYieldEps)
		} else {
			score = 0
		}
	}

	return utils.Clamp01(score)
}

// CalculateStressExposureScore scores the hole a collateral price shock would
// leave, as a fraction of TVL, against a tolerance that widens with market
// depth (see Tiers.go). A market with no TVL and a nonzero hole is maximum
// risk; a market with no stressed debt is perfect.
func CalculateStressExposureScore(potentialInsolvencyUsd, tvlUsd float64, cfg types.CuratorConfig) float64 {
	insolvencyPct := utils.SafeRatio(potentialInsolvencyUsd, tvlUsd, 1)
	if potentialInsolvencyUsd <= 0 {
		insolvencyPct = 0
	}
	tolerance := StressTolerance(tvlUsd, cfg.InsolvencyTolerancePct)
	return StressScore(insolvencyPct, tolerance, tvlUsd)
}

// CalculateWithdrawalLiquidityScore scores whether depositors could exit the
// configured fraction of TVL immediately.
func CalculateWithdrawalLiquidityScore(liquidityUsd, tvlUsd float64, cfg types.CuratorConfig) float64 {
	required := utils.NonNegative(cfg.WithdrawalLiquidityMinPct) * tvlUsd
	if liquidityUsd >= required {
		return 1
	}
	return utils.Clamp01(liquidityUsd / math.Max(required, 1))
}

// CalculateLiquidationCapacityScore scores whether post-stress liquidity could
// absorb the debt a price shock would leave unbacked. The liquidity shock and
// the capacity curve tiers are documented in Tiers.go.
func CalculateLiquidationCapacityScore(liquidityUsd, potentialInsolvencyUsd, tvlUsd float64, cfg types.CuratorConfig) float64 {
	if potentialInsolvencyUsd <= 0 {
		return 1
	}
	capacityPostStress := liquidityUsd * (1 - utils.Clamp01(cfg.LiquidityStressPct))
	coverage := capacityPostStress / potentialInsolvencyUsd
	return CapacityScore(coverage, tvlUsd)
}
