/*

This file contains the functions for ordering and grouping computed ratings
across many markets for presentation.

*/

package rating

import (
	"sort"

	"github.com/lendscope/cre/internal/types"
)

// RatingBand is a coarse presentation bucket for rated markets.
type RatingBand string

const (
	BandHealthy  RatingBand = "healthy"  // rating >= 75
	BandWatch    RatingBand = "watch"    // 50 <= rating < 75
	BandDegraded RatingBand = "degraded" // rating < 50
	BandUnrated  RatingBand = "unrated"  // rating withheld (insufficient TVL)
)

// Band thresholds (inclusive lower bounds).
const (
	healthyFloor = 75
	watchFloor   = 50
)

// SortByRating orders results best-first: rated markets descending by rating,
// ties broken by TVL descending, with unrated markets trailing in TVL order.
// The input slice is not modified.
func SortByRating(results []types.CuratorRatingResult) []types.CuratorRatingResult {
	sorted := make([]types.CuratorRatingResult, len(results))
	copy(sorted, results)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.Rating != nil && b.Rating == nil:
			return true
		case a.Rating == nil && b.Rating != nil:
			return false
		case a.Rating != nil && b.Rating != nil && *a.Rating != *b.Rating:
			return *a.Rating > *b.Rating
		default:
			return a.TvlUsd > b.TvlUsd
		}
	})

	return sorted
}

// BandOf returns the presentation band for one result.
func BandOf(result types.CuratorRatingResult) RatingBand {
	if result.Rating == nil {
		return BandUnrated
	}
	switch {
	case *result.Rating >= healthyFloor:
		return BandHealthy
	case *result.Rating >= watchFloor:
		return BandWatch
	default:
		return BandDegraded
	}
}

// GroupByBand buckets results into presentation bands, each bucket sorted
// best-first.
func GroupByBand(results []types.CuratorRatingResult) map[RatingBand][]types.CuratorRatingResult {
	grouped := make(map[RatingBand][]types.CuratorRatingResult)
	for _, result := range SortByRating(results) {
		band := BandOf(result)
		grouped[band] = append(grouped[band], result)
	}
	return grouped
}
