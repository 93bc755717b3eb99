/*
This file contains the shared numeric guards used by both scoring pipelines.
Upstream market data is untrusted, so every raw value passes through these
before arithmetic: non-finite inputs become 0 and ratios are clamped into
their documented ranges rather than propagating garbage.
*/

package utils

import "math"

// FiniteOrZero returns v, or 0 when v is NaN or infinite.
func FiniteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NonNegative returns v coerced to a finite value no smaller than 0.
func NonNegative(v float64) float64 {
	v = FiniteOrZero(v)
	if v < 0 {
		return 0
	}
	return v
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	v = FiniteOrZero(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v into [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// SafeRatio returns num/den, or fallback when den is not strictly positive.
func SafeRatio(num, den, fallback float64) float64 {
	num = FiniteOrZero(num)
	den = FiniteOrZero(den)
	if den <= 0 {
		return fallback
	}
	return num / den
}

// Lerp linearly interpolates between a and b by t in [0,1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*Clamp01(t)
}

// InvLerp returns where v sits between a and b as a fraction in [0,1].
// Degenerate segments (b <= a) collapse to 0.
func InvLerp(a, b, v float64) float64 {
	if b <= a {
		return 0
	}
	return Clamp01((v - a) / (b - a))
}
