/*

This file contains the letter-grade scale and the global score caps applied
after aggregation.

*/

package risk

import "github.com/lendscope/cre/internal/types"

// gradeStep is one rung of the letter-grade scale: the inclusive minimum
// score that earns the grade.
type gradeStep struct {
	MinScore float64
	Grade    types.Grade
}

// gradeScale is ordered best-first; the first rung whose minimum the score
// meets wins. Anything below the last rung is an F.
var gradeScale = []gradeStep{
	{93, types.GradeAPlus},
	{90, types.GradeA},
	{87, types.GradeAMinus},
	{84, types.GradeBPlus},
	{80, types.GradeB},
	{77, types.GradeBMinus},
	{74, types.GradeCPlus},
	{70, types.GradeC},
	{65, types.GradeCMinus},
	{60, types.GradeD},
}

// GradeForScore maps a 0-100 score to its letter grade.
func GradeForScore(score float64) types.Grade {
	for _, step := range gradeScale {
		if score >= step.MinScore {
			return step.Grade
		}
	}
	return types.GradeF
}

// Global cap thresholds and ceilings: a sufficiently bad sub-score bounds the
// aggregate no matter how good the rest of the market looks. Caps only ever
// tighten the score, never loosen it.
const (
	// oracleCapTrigger / oracleCapCeiling: a stale-or-missing oracle caps the
	// market at roughly C+.
	oracleCapTrigger = 20
	oracleCapCeiling = 54

	// utilizationCapTrigger / utilizationCapCeiling: utilization deep past the
	// IRM target caps the market at roughly B-.
	utilizationCapTrigger = 20
	utilizationCapCeiling = 60

	// coverageCapCeiling: any shortfall in post-shock liquidation coverage
	// caps the market at roughly B.
	coverageCapTrigger = 100
	coverageCapCeiling = 68
)

// applyCaps tightens the aggregate score according to the global cap rules.
func applyCaps(aggregate, oracleScore, utilizationScore, coverageScore float64) float64 {
	capped := aggregate
	if oracleScore <= oracleCapTrigger && capped > oracleCapCeiling {
		capped = oracleCapCeiling
	}
	if utilizationScore <= utilizationCapTrigger && capped > utilizationCapCeiling {
		capped = utilizationCapCeiling
	}
	if coverageScore < coverageCapTrigger && capped > coverageCapCeiling {
		capped = coverageCapCeiling
	}
	return capped
}
