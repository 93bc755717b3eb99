/*

This file contains the types for the market risk grading pipeline.

*/

package types

// Grade is a letter risk grade from A+ (safest) to F.
type Grade string

const (
	GradeAPlus  Grade = "A+"
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeCMinus Grade = "C-"
	GradeD      Grade = "D"
	GradeF      Grade = "F"
)

// MarketRiskResult is the output of one grading computation for one market.
type MarketRiskResult struct {
	MarketID  string `json:"market_id"`
	UniqueKey string `json:"unique_key"`

	Components struct {
		OracleScore              float64 `json:"oracle_score"`
		LiquidationHeadroomScore float64 `json:"liquidation_headroom_score"`
		UtilizationScore         float64 `json:"utilization_score"`
		CoverageRatioScore       float64 `json:"coverage_ratio_score"`
	} `json:"components"`

	Score              float64 `json:"score"` // 0-100 aggregate after caps and override
	Grade              Grade   `json:"grade"`
	RealizedBadDebtUsd float64 `json:"realized_bad_debt_usd"` // value that drove any bad-debt override
}
