/*

This file contains the default curator configuration for the CRE.

These parameters are calibrated for curators allocating significant capital across
lending markets. Each value balances depositor protection against yield capture.

*/

package config

import (
	"github.com/lendscope/cre/internal/types"
)

// DefaultConfigVersion is the version stamped on the compiled-in defaults.
const DefaultConfigVersion = 1

// DefaultCuratorConfig provides the baseline configuration for the curator
// rating computer. It is treated as an immutable constant: Resolve always
// returns a new value layered on top of it and never mutates it.
var DefaultCuratorConfig = types.CuratorConfig{
	Version: DefaultConfigVersion,

	UtilizationCeiling: 0.90, // Score is perfect up to 98% of this ceiling.
	// Rationale: 90% utilization still leaves a liquidity cushion for withdrawals.
	// Markets living above the ceiling routinely trap depositors during demand spikes.

	MaxUtilizationBeyond: 1.10, // Utilization at which the score bottoms out at 0.
	// Rationale: utilization past 100% indicates accounting drift or realized
	// losses in the market; any reading this far out is treated as maximum risk.

	RateAlignmentEps: 0.02, // e-folding tolerance for supply-rate deviation from benchmark.
	// Rationale: a 2pp deviation from the benchmark costs roughly a 1/e multiplier.
	// Markets paying far from benchmark are either mispriced or carry hidden risk.

	HighYieldBuffer: 0.03, // Excess above benchmark before the extra penalty applies.
	// Rationale: up to 3pp above benchmark is normal competitive spread.
	// Beyond that, outsized yield is treated as a risk signal, not a reward.

	HighYieldEps: 0.05, // e-folding tolerance for the extra high-yield penalty.

	FallbackBenchmarkRate: 0.04, // Benchmark supply rate when no live benchmark is given.
	// Rationale: near the long-run stablecoin lending base rate.

	PriceStressPct: 0.30, // Simulated instantaneous collateral price shock.
	// Rationale: a 30% drawdown covers the vast majority of single-day crypto
	// crashes while not being so extreme that every market scores zero.

	LiquidityStressPct: 0.40, // Fraction of available liquidity assumed gone under stress.
	// Rationale: liquidity evaporates exactly when liquidations need it.
	// Assuming 40% is unavailable keeps the capacity score honest.

	WithdrawalLiquidityMinPct: 0.15, // Required liquid fraction of TVL for clean exits.
	// Rationale: a curator must be able to unwind a meaningful slice of the
	// position without waiting on borrower repayment.

	InsolvencyTolerancePct: 0.01, // Base tolerated stress insolvency as a fraction of TVL.
	// Rationale: small markets get almost no slack; the tier table in the rating
	// package relaxes this for deep markets where the same percentage is a far
	// larger absolute cushion.

	MinTvlUsd: 10_000, // Markets below $10k TVL receive no rating at all.
	// Rationale: scores on dust markets are noise and would pollute rankings.

	Weights: DefaultCuratorWeights,
}

// DefaultCuratorWeights is the default weight vector for the five curator
// sub-scores. It sums to exactly 1 and is also the substitution vector when
// an override layer produces a non-positive weight sum.
var DefaultCuratorWeights = types.CuratorWeights{
	Utilization:         0.20,
	RateAlignment:       0.15,
	StressExposure:      0.30,
	WithdrawalLiquidity: 0.15,
	LiquidationCapacity: 0.20,
	// Rationale: stress exposure carries the largest weight because realized
	// insolvency is the one failure a curator cannot trade out of. Utilization
	// and liquidation capacity share second place as the operational levers.
}
