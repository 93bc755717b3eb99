/*

This file contains the TVL tier tables used by the curator rating computer.

Both the stress-insolvency tolerance and the liquidation-capacity curve change
shape with market depth: a 1% hole in a $20M market and a 1% hole in a $1B
market are very different events. The breakpoints live here as named constants
so they can be tested and tuned without touching the scoring functions.

*/

package rating

import (
	"math"

	"github.com/lendscope/cre/internal/utils"
)

// TVL tier breakpoints in USD.
const (
	// TierSmallMaxTvl is the upper bound of the "small market" tier. Below it
	// the base tolerance applies unchanged and all curves are plain linear.
	TierSmallMaxTvl = 50_000_000
	// TierMidMaxTvl is the upper bound of the square-root interpolation tier.
	TierMidMaxTvl = 500_000_000
	// TierLargeMaxTvl is the TVL at which the tolerance reaches its maximum.
	TierLargeMaxTvl = 2_000_000_000
)

// Tolerance ceilings for the mid and large tiers.
const (
	// MidTierToleranceMax is the stress-insolvency tolerance reached at TierMidMaxTvl.
	MidTierToleranceMax = 0.20
	// LargeTierToleranceMax is the tolerance reached at and beyond TierLargeMaxTvl.
	LargeTierToleranceMax = 0.35
)

// Large-market stress curve shape.
const (
	// stressSoftKnee is the fraction of tolerance under which large markets
	// take only a minimal penalty.
	stressSoftKnee = 0.80
	// stressSoftPenalty is the maximum penalty inside the soft region.
	stressSoftPenalty = 0.10
	// stressHardExponent makes the penalty super-linear past the knee.
	stressHardExponent = 1.5
)

// Large-market liquidation capacity curve breakpoints: coverage thresholds and
// the scores they map onto.
const (
	capacityUpperCoverage = 0.50 // coverage at/above this maps into [0.6, 1.0]
	capacityLowerCoverage = 0.30 // coverage in [0.3, 0.5) maps into [0.3, 0.6)
	capacityUpperFloor    = 0.60
	capacityLowerFloor    = 0.30
)

// StressTolerance returns the tolerated stress-insolvency fraction of TVL for
// a market of the given depth. Small markets get the configured base
// tolerance; mid-size markets relax along a square-root curve up to
// MidTierToleranceMax; the deepest markets relax linearly up to
// LargeTierToleranceMax at TierLargeMaxTvl and beyond.
func StressTolerance(tvlUsd, baseTolerance float64) float64 {
	tvlUsd = utils.NonNegative(tvlUsd)
	baseTolerance = utils.NonNegative(baseTolerance)

	switch {
	case tvlUsd < TierSmallMaxTvl:
		return baseTolerance
	case tvlUsd < TierMidMaxTvl:
		progress := utils.InvLerp(TierSmallMaxTvl, TierMidMaxTvl, tvlUsd)
		return baseTolerance + (MidTierToleranceMax-baseTolerance)*math.Sqrt(progress)
	default:
		progress := utils.InvLerp(TierMidMaxTvl, TierLargeMaxTvl, tvlUsd)
		return utils.Lerp(MidTierToleranceMax, LargeTierToleranceMax, progress)
	}
}

// StressScore maps a stress-insolvency fraction of TVL onto [0,1] given the
// market's tolerance. Small markets take a straight linear penalty across the
// whole tolerance band. Large markets keep a near-perfect score while the
// exposure stays under the soft knee, then fall away super-linearly.
func StressScore(insolvencyPctOfTvl, tolerance, tvlUsd float64) float64 {
	insolvencyPctOfTvl = utils.NonNegative(insolvencyPctOfTvl)
	if insolvencyPctOfTvl == 0 {
		return 1
	}
	if tolerance <= 0 {
		return 0
	}

	used := insolvencyPctOfTvl / tolerance
	if tvlUsd < TierSmallMaxTvl {
		return utils.Clamp01(1 - used)
	}

	if used <= stressSoftKnee {
		return utils.Clamp01(1 - stressSoftPenalty*(used/stressSoftKnee))
	}
	overrun := utils.InvLerp(stressSoftKnee, 1, used)
	return utils.Clamp01((1 - stressSoftPenalty) * (1 - math.Pow(overrun, stressHardExponent)))
}

// CapacityScore maps post-stress liquidation coverage (capacity / stressed
// debt) onto [0,1]. Full coverage is always a perfect score. Small markets
// degrade linearly with coverage; large markets get a softened three-tier
// curve that values partial coverage more generously.
func CapacityScore(coverage, tvlUsd float64) float64 {
	coverage = utils.NonNegative(coverage)
	if coverage >= 1 {
		return 1
	}
	if tvlUsd < TierSmallMaxTvl {
		return utils.Clamp01(coverage)
	}

	switch {
	case coverage >= capacityUpperCoverage:
		t := utils.InvLerp(capacityUpperCoverage, 1, coverage)
		return utils.Lerp(capacityUpperFloor, 1, t)
	case coverage >= capacityLowerCoverage:
		t := utils.InvLerp(capacityLowerCoverage, capacityUpperCoverage, coverage)
		return utils.Lerp(capacityLowerFloor, capacityUpperFloor, t)
	default:
		return utils.Clamp01(coverage)
	}
}
