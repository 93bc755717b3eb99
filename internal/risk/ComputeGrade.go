/*

This file contains the main function for computing the letter-grade risk
assessment for a lending market.

Four sub-scores in [0,100] — oracle freshness, liquidation headroom,
IRM-relative utilization, and post-shock coverage — are averaged with equal
weight, then bounded by the global caps in Grades.go. Realized bad debt above
one dollar overrides everything and forces an F. Like the curator rating, the
grader never fails: missing data degrades to the documented maximum-risk
sub-score.

*/

package risk

import (
	"math"

	"github.com/lendscope/cre/internal/logger"
	"github.com/lendscope/cre/internal/types"
	"github.com/lendscope/cre/internal/utils"
)

var riskLogger = logger.GetForComponent("market_risk")

// DefaultTargetUtilization is the IRM target used when the lookup fails or
// the market has no IRM address.
const DefaultTargetUtilization = 0.90

// BadDebtOverrideUsd is the realized bad debt above which a market is forced
// to an F regardless of every other signal.
const BadDebtOverrideUsd = 1.00

// Oracle freshness decay breakpoints, in hours since the last price update.
const (
	oracleFreshHours   = 1
	oracleDayHours     = 24
	oracleWeekHours    = 168
	oracleMonthHours   = 720
	oracleUnknownScore = 60 // oracle address present, freshness unresolved
	oracleMissingScore = 20 // no oracle, zero address, or no timestamp at all
)

// Liquidation headroom piecewise breakpoints: headroom ratio → score.
const (
	headroomTier1Ratio = 0.10 // 0-10% maps to 0-60
	headroomTier2Ratio = 0.20 // 10-20% maps to 60-80
	headroomTier3Ratio = 0.30 // 20-30% maps to 80-100; beyond caps at 100
)

// ComputeGrade computes the letter-grade risk assessment for one market.
// freshness may be nil when the oracle lookup was not performed or failed;
// targetUtilization may be nil, in which case the default IRM target applies.
// Both follow the injected-port model: the caller resolves lookups (with its
// own timeout/retry policy) and passes sentinels on failure.
func ComputeGrade(market types.Market, freshness *types.OracleFreshness, targetUtilization *float64) types.MarketRiskResult {
	result := types.MarketRiskResult{
		MarketID:  market.ID,
		UniqueKey: market.UniqueKey,
	}

	shock := ShockPct(market.LoanAsset.Symbol, market.CollateralAsset.Symbol)

	result.Components.OracleScore = CalculateOracleScore(market.OracleAddress, freshness)
	result.Components.LiquidationHeadroomScore = CalculateLiquidationHeadroomScore(market, shock)
	result.Components.UtilizationScore = CalculateIrmUtilizationScore(market, targetUtilization)
	result.Components.CoverageRatioScore = CalculateCoverageRatioScore(market, shock)

	aggregate := (result.Components.OracleScore +
		result.Components.LiquidationHeadroomScore +
		result.Components.UtilizationScore +
		result.Components.CoverageRatioScore) / 4

	capped := applyCaps(aggregate,
		result.Components.OracleScore,
		result.Components.UtilizationScore,
		result.Components.CoverageRatioScore)

	if market.State.RealizedBadDebtUsd != nil {
		result.RealizedBadDebtUsd = utils.NonNegative(*market.State.RealizedBadDebtUsd)
	}

	if result.RealizedBadDebtUsd > BadDebtOverrideUsd {
		riskLogger.Warn().
			Str("marketID", market.ID).
			Str("uniqueKey", market.UniqueKey).
			Float64("realizedBadDebtUsd", result.RealizedBadDebtUsd).
			Msg("Realized bad debt exceeds override threshold, forcing grade F")
		result.Score = 0
		result.Grade = types.GradeF
	} else {
		result.Score = capped
		result.Grade = GradeForScore(capped)
	}

	riskLogger.Debug().
		Str("marketID", market.ID).
		Str("uniqueKey", market.UniqueKey).
		Float64("oracleScore", result.Components.OracleScore).
		Float64("headroomScore", result.Components.LiquidationHeadroomScore).
		Float64("utilizationScore", result.Components.UtilizationScore).
		Float64("coverageScore", result.Components.CoverageRatioScore).
		Float64("aggregate", aggregate).
		Float64("cappedScore", result.Score).
		Str("grade", string(result.Grade)).
		Msg("Market risk grade computed")

	return result
}

// CalculateOracleScore scores the freshness of the market's price oracle.
// A missing or zero oracle address is maximum risk; a present oracle with
// unresolved freshness is the distinct unknown-freshness case; otherwise the
// score decays piecewise-linearly with the age of the last update, flooring
// at the missing-oracle score beyond thirty days.
func CalculateOracleScore(oracleAddress string, freshness *types.OracleFreshness) float64 {
	if oracleAddress == "" || oracleAddress == types.ZeroAddress {
		return oracleMissingScore
	}
	if freshness == nil || !freshness.Known {
		return oracleUnknownScore
	}

	ageHours := utils.NonNegative(freshness.AgeSeconds) / 3600
	switch {
	case ageHours < oracleFreshHours:
		return 100
	case ageHours < oracleDayHours:
		return utils.Lerp(100, 80, utils.InvLerp(oracleFreshHours, oracleDayHours, ageHours))
	case ageHours < oracleWeekHours:
		return utils.Lerp(80, 60, utils.InvLerp(oracleDayHours, oracleWeekHours, ageHours))
	case ageHours < oracleMonthHours:
		return utils.Lerp(60, 20, utils.InvLerp(oracleWeekHours, oracleMonthHours, ageHours))
	default:
		return oracleMissingScore
	}
}

// CalculateLiquidationHeadroomScore scores how much collateral value cushion
// remains, after the correlation-aware price shock, before the position
// becomes liquidatable. No borrowing is the safest possible market; borrowing
// against no (or unpriced) collateral is the riskiest.
func CalculateLiquidationHeadroomScore(market types.Market, shock float64) float64 {
	borrowUsd := utils.NonNegative(market.State.BorrowAssetsUsd)
	if borrowUsd == 0 {
		return 100
	}

	collateralUsd := collateralValueUsd(market.State)
	lltvRatio := utils.WadRatioOrZero(market.Lltv)
	if collateralUsd == 0 || lltvRatio == 0 {
		return 0
	}

	headroom := collateralUsd*(1-shock)*lltvRatio - borrowUsd
	if headroom <= 0 {
		// Already liquidatable under the shock.
		return 0
	}

	headroomRatio := headroom / borrowUsd
	switch {
	case headroomRatio < headroomTier1Ratio:
		return utils.Lerp(0, 60, utils.InvLerp(0, headroomTier1Ratio, headroomRatio))
	case headroomRatio < headroomTier2Ratio:
		return utils.Lerp(60, 80, utils.InvLerp(headroomTier1Ratio, headroomTier2Ratio, headroomRatio))
	case headroomRatio < headroomTier3Ratio:
		return utils.Lerp(80, 100, utils.InvLerp(headroomTier2Ratio, headroomTier3Ratio, headroomRatio))
	default:
		return 100
	}
}

// CalculateIrmUtilizationScore scores utilization relative to the interest
// rate model's target (kink). Below target the score eases from 100 down to
// 80 at the target itself; above target it falls to 0 over the next twenty
// percentage points.
func CalculateIrmUtilizationScore(market types.Market, targetUtilization *float64) float64 {
	target := DefaultTargetUtilization
	if targetUtilization != nil {
		if t := utils.FiniteOrZero(*targetUtilization); t > 0 && t <= 1 {
			target = t
		}
	}

	utilization := resolveUtilization(market.State)
	if utilization <= target {
		return utils.Lerp(100, 80, utils.InvLerp(0, target, utilization))
	}

	excess := utilization - target
	const excessSpan = 0.20
	if excess >= excessSpan {
		return 0
	}
	return utils.Lerp(80, 0, excess/excessSpan)
}

// CalculateCoverageRatioScore scores whether available liquidity could absorb
// the borrow that the correlation-aware shock would leave under-collateralized.
func CalculateCoverageRatioScore(market types.Market, shock float64) float64 {
	borrowUsd := utils.NonNegative(market.State.BorrowAssetsUsd)
	collateralUsd := collateralValueUsd(market.State)
	lltvRatio := utils.WadRatioOrZero(market.Lltv)

	liquidatableBorrow := math.Max(0, borrowUsd-collateralUsd*(1-shock)*lltvRatio)
	if liquidatableBorrow == 0 {
		return 100
	}

	coverage := utils.NonNegative(market.State.LiquidityAssetsUsd) / liquidatableBorrow
	switch {
	case coverage >= 1.0:
		return 100
	case coverage >= 0.8:
		return utils.Lerp(80, 100, utils.InvLerp(0.8, 1.0, coverage))
	case coverage >= 0.5:
		return utils.Lerp(60, 80, utils.InvLerp(0.5, 0.8, coverage))
	case coverage >= 0.25:
		return utils.Lerp(40, 60, utils.InvLerp(0.25, 0.5, coverage))
	default:
		return utils.Lerp(0, 40, utils.InvLerp(0, 0.25, coverage))
	}
}

// collateralValueUsd returns the reported collateral value, treating an
// absent field as zero. Missing collateral data is scored as maximum risk
// rather than guessed at from the supply side.
func collateralValueUsd(state types.MarketState) float64 {
	if state.CollateralAssetsUsd == nil {
		return 0
	}
	return utils.NonNegative(*state.CollateralAssetsUsd)
}

// resolveUtilization mirrors the curator computer's defensive utilization
// handling: reported value clamped non-negative, derived from borrow/supply
// when absent.
func resolveUtilization(state types.MarketState) float64 {
	if state.Utilization != nil {
		return utils.NonNegative(*state.Utilization)
	}
	return utils.SafeRatio(utils.NonNegative(state.BorrowAssetsUsd), utils.NonNegative(state.SupplyAssetsUsd), 0)
}
