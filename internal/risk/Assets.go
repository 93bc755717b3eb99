/*

This file contains the static asset-correlation classification used by the
market risk grader.

Markets whose loan and collateral assets track the same underlying (liquid
staking derivatives, wrapped variants, bridged stables) de-peg together, so
they get a much smaller stress shock than genuinely uncorrelated pairs. The
table is keyed by upper-cased symbol; new derivative families are added here
without touching scoring logic.

*/

package risk

import "strings"

// Stress shock magnitudes applied to collateral value.
const (
	// CorrelatedShockPct is the price shock for same-asset or same-family pairs.
	CorrelatedShockPct = 0.025
	// UncorrelatedShockPct is the price shock for unrelated pairs.
	UncorrelatedShockPct = 0.05
)

// assetFamily identifies a group of symbols that are derivatives of one
// underlying asset.
type assetFamily string

const (
	familyEth  assetFamily = "eth"
	familyBtc  assetFamily = "btc"
	familyUsdc assetFamily = "usdc"
	familyUsdt assetFamily = "usdt"
)

// symbolFamilies maps known derivative symbols to their underlying family.
var symbolFamilies = map[string]assetFamily{
	"ETH":    familyEth,
	"WETH":   familyEth,
	"STETH":  familyEth,
	"WSTETH": familyEth,
	"RETH":   familyEth,
	"CBETH":  familyEth,

	"BTC":   familyBtc,
	"WBTC":  familyBtc,
	"CBBTC": familyBtc,
	"LBTC":  familyBtc,

	"USDC":   familyUsdc,
	"USDC.E": familyUsdc,

	"USDT":   familyUsdt,
	"USDT.E": familyUsdt,
}

// AreCorrelated reports whether two asset symbols are the same asset or known
// derivatives of the same underlying. Unknown symbols only correlate with an
// exact symbol match.
func AreCorrelated(loanSymbol, collateralSymbol string) bool {
	loan := strings.ToUpper(strings.TrimSpace(loanSymbol))
	collateral := strings.ToUpper(strings.TrimSpace(collateralSymbol))
	if loan == "" || collateral == "" {
		return false
	}
	if loan == collateral {
		return true
	}

	loanFamily, loanKnown := symbolFamilies[loan]
	collateralFamily, collateralKnown := symbolFamilies[collateral]
	return loanKnown && collateralKnown && loanFamily == collateralFamily
}

// ShockPct returns the collateral price shock magnitude for a loan/collateral
// pair under the correlation heuristic.
func ShockPct(loanSymbol, collateralSymbol string) float64 {
	if AreCorrelated(loanSymbol, collateralSymbol) {
		return CorrelatedShockPct
	}
	return UncorrelatedShockPct
}
