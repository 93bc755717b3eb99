package rating

import (
	"math"
	"testing"
)

func TestStressTolerance(t *testing.T) {
	base := 0.01

	t.Run("small markets keep the base tolerance", func(t *testing.T) {
		if got := StressTolerance(5_000_000, base); got != base {
			t.Errorf("tolerance = %v, want %v", got, base)
		}
		if got := StressTolerance(TierSmallMaxTvl-1, base); got != base {
			t.Errorf("tolerance just under the small tier = %v, want %v", got, base)
		}
	})

	t.Run("mid tier relaxes along a sqrt curve", func(t *testing.T) {
		atBoundary := StressTolerance(TierSmallMaxTvl, base)
		if math.Abs(atBoundary-base) > 1e-12 {
			t.Errorf("tolerance at the small/mid boundary = %v, want %v", atBoundary, base)
		}
		mid := StressTolerance(275_000_000, base)
		if mid <= base || mid >= MidTierToleranceMax {
			t.Errorf("mid-tier tolerance %v should sit strictly between %v and %v", mid, base, MidTierToleranceMax)
		}
		// Sqrt interpolation front-loads the relaxation relative to linear.
		linear := base + (MidTierToleranceMax-base)*0.5
		if mid <= linear {
			t.Errorf("sqrt curve should exceed linear at the midpoint: %v vs %v", mid, linear)
		}
	})

	t.Run("large tier caps at the maximum", func(t *testing.T) {
		if got := StressTolerance(TierMidMaxTvl, base); math.Abs(got-MidTierToleranceMax) > 1e-12 {
			t.Errorf("tolerance at the mid/large boundary = %v, want %v", got, MidTierToleranceMax)
		}
		if got := StressTolerance(TierLargeMaxTvl, base); math.Abs(got-LargeTierToleranceMax) > 1e-12 {
			t.Errorf("tolerance at the large cap = %v, want %v", got, LargeTierToleranceMax)
		}
		if got := StressTolerance(10_000_000_000, base); math.Abs(got-LargeTierToleranceMax) > 1e-12 {
			t.Errorf("tolerance beyond the cap = %v, want %v", got, LargeTierToleranceMax)
		}
	})

	t.Run("monotonic in TVL", func(t *testing.T) {
		prev := -1.0
		for _, tvl := range []float64{0, 1e6, 5e7, 1e8, 3e8, 5e8, 1e9, 2e9, 5e9} {
			got := StressTolerance(tvl, base)
			if got < prev {
				t.Errorf("tolerance decreased at tvl %v: %v < %v", tvl, got, prev)
			}
			prev = got
		}
	})
}

func TestStressScore(t *testing.T) {
	t.Run("zero exposure is perfect regardless of tier", func(t *testing.T) {
		if got := StressScore(0, 0.01, 1_000_000); got != 1 {
			t.Errorf("score = %v, want 1", got)
		}
		if got := StressScore(0, 0.35, 5e9); got != 1 {
			t.Errorf("score = %v, want 1", got)
		}
	})

	t.Run("zero tolerance with exposure is zero", func(t *testing.T) {
		if got := StressScore(0.001, 0, 1_000_000); got != 0 {
			t.Errorf("score = %v, want 0", got)
		}
	})

	t.Run("small markets decay linearly", func(t *testing.T) {
		got := StressScore(0.005, 0.01, 1_000_000)
		if math.Abs(got-0.5) > 1e-9 {
			t.Errorf("half the tolerance used should score 0.5, got %v", got)
		}
		if got := StressScore(0.01, 0.01, 1_000_000); got != 0 {
			t.Errorf("full tolerance used should score 0, got %v", got)
		}
	})

	t.Run("large markets keep a soft penalty under the knee", func(t *testing.T) {
		tolerance := 0.30
		soft := StressScore(tolerance*0.5, tolerance, 1e9)
		if soft < 1-stressSoftPenalty {
			t.Errorf("score under the knee should stay above %v, got %v", 1-stressSoftPenalty, soft)
		}
		atKnee := StressScore(tolerance*stressSoftKnee, tolerance, 1e9)
		if math.Abs(atKnee-(1-stressSoftPenalty)) > 1e-9 {
			t.Errorf("score at the knee = %v, want %v", atKnee, 1-stressSoftPenalty)
		}
		if got := StressScore(tolerance, tolerance, 1e9); got != 0 {
			t.Errorf("full tolerance used should score 0, got %v", got)
		}
	})

	t.Run("monotonic in exposure", func(t *testing.T) {
		for _, tvl := range []float64{1_000_000, 1e8, 1e9} {
			tolerance := StressTolerance(tvl, 0.01)
			prev := 2.0
			for pct := 0.0; pct <= tolerance*1.2; pct += tolerance / 20 {
				got := StressScore(pct, tolerance, tvl)
				if got > prev {
					t.Errorf("tvl %v: score rose with exposure at pct %v: %v > %v", tvl, pct, got, prev)
				}
				prev = got
			}
		}
	})
}

func TestCapacityScore(t *testing.T) {
	t.Run("full coverage is perfect", func(t *testing.T) {
		if got := CapacityScore(1, 1_000_000); got != 1 {
			t.Errorf("score = %v, want 1", got)
		}
		if got := CapacityScore(2.5, 1e9); got != 1 {
			t.Errorf("over-coverage should score 1, got %v", got)
		}
	})

	t.Run("small markets degrade linearly", func(t *testing.T) {
		if got := CapacityScore(0.4, 1_000_000); math.Abs(got-0.4) > 1e-9 {
			t.Errorf("score = %v, want 0.4", got)
		}
	})

	t.Run("large markets value partial coverage more", func(t *testing.T) {
		if got := CapacityScore(capacityUpperCoverage, 1e9); math.Abs(got-capacityUpperFloor) > 1e-9 {
			t.Errorf("score at upper breakpoint = %v, want %v", got, capacityUpperFloor)
		}
		if got := CapacityScore(capacityLowerCoverage, 1e9); math.Abs(got-capacityLowerFloor) > 1e-9 {
			t.Errorf("score at lower breakpoint = %v, want %v", got, capacityLowerFloor)
		}
		large := CapacityScore(0.45, 1e9)
		small := CapacityScore(0.45, 1_000_000)
		if large <= small {
			t.Errorf("large-market curve should exceed linear at partial coverage: %v vs %v", large, small)
		}
	})

	t.Run("monotonic in coverage", func(t *testing.T) {
		for _, tvl := range []float64{1_000_000, 1e9} {
			prev := -1.0
			for c := 0.0; c <= 1.2; c += 0.05 {
				got := CapacityScore(c, tvl)
				if got < prev {
					t.Errorf("tvl %v: score fell with coverage at %v: %v < %v", tvl, c, got, prev)
				}
				prev = got
			}
		}
	})
}
