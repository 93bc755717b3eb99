/*

This is a custom type for lending markets which contains all the on-chain state
needed for scoring and grading a market.

*/

package types

import (
	"strings"

	sdkmath "cosmossdk.io/math"
)

// ZeroAddress is the EVM zero address, treated everywhere as "no address".
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Asset describes one side of a lending market (loan or collateral).
type Asset struct {
	Symbol   string `json:"symbol"`   // e.g., "WETH"
	Address  string `json:"address"`  // e.g., "0xC02a...6Cc2"
	Decimals int    `json:"decimals"` // e.g., 18
}

// MarketState is the financial snapshot of a market at fetch time.
// All USD amounts come from the indexer and are untrusted: negative or
// non-finite values are clamped defensively by the scoring code.
type MarketState struct {
	SupplyAssetsUsd     float64  `json:"supply_assets_usd"`
	BorrowAssetsUsd     float64  `json:"borrow_assets_usd"`
	LiquidityAssetsUsd  float64  `json:"liquidity_assets_usd"`
	CollateralAssetsUsd *float64 `json:"collateral_assets_usd,omitempty"`
	Utilization         *float64 `json:"utilization,omitempty"` // borrowed / supplied, nominally in [0,1]
	SupplyApy           float64  `json:"supply_apy"`
	BorrowApy           float64  `json:"borrow_apy"`
	SizeUsd             *float64 `json:"size_usd,omitempty"`            // indexer-reported market size, preferred over supplied+borrowed
	RealizedBadDebtUsd  *float64 `json:"realized_bad_debt_usd,omitempty"` // realized loss after failed liquidations
}

// Market is one lending market snapshot as consumed by the scoring engines.
type Market struct {
	ID              string      `json:"id"`
	UniqueKey       string      `json:"unique_key"`
	LoanAsset       Asset       `json:"loan_asset"`
	CollateralAsset Asset       `json:"collateral_asset"`
	Lltv            sdkmath.Int `json:"lltv"` // liquidation loan-to-value, WAD (1e18) fixed point
	OracleAddress   string      `json:"oracle_address"`
	IrmAddress      string      `json:"irm_address"`
	State           MarketState `json:"state"`
}

// HasLltv reports whether the market carries a usable liquidation threshold.
func (m Market) HasLltv() bool {
	return !m.Lltv.IsNil() && m.Lltv.IsPositive()
}

// IsIdle reports whether a market should be excluded from grading entirely:
// no liquidation threshold or an unknown collateral asset. The predicate is
// exposed for callers; it never alters scoring itself.
func (m Market) IsIdle() bool {
	if !m.HasLltv() {
		return true
	}
	sym := strings.TrimSpace(m.CollateralAsset.Symbol)
	return sym == "" || strings.EqualFold(sym, "unknown")
}

// OracleFreshness is the result of the oracle freshness lookup collaborator.
// Known=false with a non-empty oracle address means the oracle exists but its
// last update timestamp could not be resolved.
type OracleFreshness struct {
	AgeSeconds float64 `json:"age_seconds"`
	Known      bool    `json:"known"`
}
