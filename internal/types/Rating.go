/*

This file contains the types for the curator rating pipeline: the resolved
configuration, its sparse override form, and the per-market rating result.

*/

package types

// CuratorWeights is the weight vector for the five curator sub-scores.
// A resolved config always carries weights normalized to sum to exactly 1.
type CuratorWeights struct {
	Utilization         float64 `json:"utilization"`
	RateAlignment       float64 `json:"rate_alignment"`
	StressExposure      float64 `json:"stress_exposure"`
	WithdrawalLiquidity float64 `json:"withdrawal_liquidity"`
	LiquidationCapacity float64 `json:"liquidation_capacity"`
}

// Sum returns the total of all five weights.
func (w CuratorWeights) Sum() float64 {
	return w.Utilization + w.RateAlignment + w.StressExposure + w.WithdrawalLiquidity + w.LiquidationCapacity
}

// CuratorConfig holds all tunable thresholds, tolerances, and weights used by
// the curator rating computer. Resolved configs are immutable: overrides
// always produce a new value, never mutate the defaults.
type CuratorConfig struct {
	Version int `json:"version"`

	// Utilization
	UtilizationCeiling   float64 `json:"utilization_ceiling"`    // soft ceiling; score is perfect below 98% of it
	MaxUtilizationBeyond float64 `json:"max_utilization_beyond"` // utilization at which the score reaches 0

	// Rate alignment
	RateAlignmentEps      float64 `json:"rate_alignment_eps"`      // e-folding tolerance for |supply - benchmark|
	HighYieldBuffer       float64 `json:"high_yield_buffer"`       // excess above benchmark before the extra penalty kicks in
	HighYieldEps          float64 `json:"high_yield_eps"`          // e-folding tolerance for the extra high-yield penalty
	FallbackBenchmarkRate float64 `json:"fallback_benchmark_rate"` // benchmark used when the caller supplies none

	// Stress simulations
	PriceStressPct     float64 `json:"price_stress_pct"`     // instantaneous collateral price shock, e.g. 0.30
	LiquidityStressPct float64 `json:"liquidity_stress_pct"` // fraction of available liquidity assumed gone under stress

	// Liquidity and solvency floors
	WithdrawalLiquidityMinPct float64 `json:"withdrawal_liquidity_min_pct"` // required liquid fraction of TVL
	InsolvencyTolerancePct    float64 `json:"insolvency_tolerance_pct"`     // base tolerated stress insolvency as fraction of TVL

	// Gating
	MinTvlUsd float64 `json:"min_tvl_usd"` // below this the rating is withheld (null)

	Weights CuratorWeights `json:"weights"`
}

// CuratorWeightOverrides is a sparse subset of CuratorWeights. Nil fields
// fall through to the next priority layer during resolution.
type CuratorWeightOverrides struct {
	Utilization         *float64 `json:"utilization,omitempty"`
	RateAlignment       *float64 `json:"rate_alignment,omitempty"`
	StressExposure      *float64 `json:"stress_exposure,omitempty"`
	WithdrawalLiquidity *float64 `json:"withdrawal_liquidity,omitempty"`
	LiquidationCapacity *float64 `json:"liquidation_capacity,omitempty"`
}

// CuratorConfigOverrides is the sparse override form of CuratorConfig.
// Every field is independently optional.
type CuratorConfigOverrides struct {
	UtilizationCeiling        *float64 `json:"utilization_ceiling,omitempty"`
	MaxUtilizationBeyond      *float64 `json:"max_utilization_beyond,omitempty"`
	RateAlignmentEps          *float64 `json:"rate_alignment_eps,omitempty"`
	HighYieldBuffer           *float64 `json:"high_yield_buffer,omitempty"`
	HighYieldEps              *float64 `json:"high_yield_eps,omitempty"`
	FallbackBenchmarkRate     *float64 `json:"fallback_benchmark_rate,omitempty"`
	PriceStressPct            *float64 `json:"price_stress_pct,omitempty"`
	LiquidityStressPct        *float64 `json:"liquidity_stress_pct,omitempty"`
	WithdrawalLiquidityMinPct *float64 `json:"withdrawal_liquidity_min_pct,omitempty"`
	InsolvencyTolerancePct    *float64 `json:"insolvency_tolerance_pct,omitempty"`
	MinTvlUsd                 *float64 `json:"min_tvl_usd,omitempty"`

	Weights CuratorWeightOverrides `json:"weights,omitempty"`
}

// CuratorRatingResult is the output of one rating computation for one market.
// Sub-scores are always populated, even for insufficient-TVL markets where
// the final rating is withheld.
type CuratorRatingResult struct {
	MarketID  string `json:"market_id"`
	UniqueKey string `json:"unique_key"`

	Components struct {
		UtilizationScore         float64 `json:"utilization_score"`
		RateAlignmentScore       float64 `json:"rate_alignment_score"`
		StressExposureScore      float64 `json:"stress_exposure_score"`
		WithdrawalLiquidityScore float64 `json:"withdrawal_liquidity_score"`
		LiquidationCapacityScore float64 `json:"liquidation_capacity_score"`
	} `json:"components"`

	TvlUsd          float64        `json:"tvl_usd"`
	InsufficientTvl bool           `json:"insufficient_tvl"`
	Rating          *int           `json:"rating"` // 0-100, nil iff InsufficientTvl
	WeightsUsed     CuratorWeights `json:"weights_used"`
}
