/*

This file contains the persisted cycle snapshot type: one scoring pass over
every fetched market, as stored by the state package and served by the web
dashboard.

*/

package types

import "time"

// CycleSnapshot captures the full output of one scoring cycle.
type CycleSnapshot struct {
	SnapshotID  int64     `json:"snapshot_id"`
	CycleNumber int       `json:"cycle_number"`
	CycleID     string    `json:"cycle_id"` // UUID for tracing logs across the cycle
	Timestamp   time.Time `json:"timestamp"`
	ConfigID    int64     `json:"config_id"` // curator config version used for this cycle

	MarketCount int `json:"market_count"`
	IdleCount   int `json:"idle_count"`
	RatedCount  int `json:"rated_count"` // markets that received a non-nil rating

	Ratings []CuratorRatingResult `json:"ratings"`
	Grades  []MarketRiskResult    `json:"grades"`

	DurationMs int64 `json:"duration_ms"`
}
