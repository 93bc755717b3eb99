/*
This file contains common utility functions for converting between on-chain
fixed-point values and float64, particularly WAD (1e18) scaled quantities such
as LLTV.
*/

package utils

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidPrecision = errors.New("precision is invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrAmountNegative   = errors.New("amount is negative")
	ErrNotFinite        = errors.New("value is not finite")
	ErrConversionFailed = errors.New("conversion failed")
)

// WadPrecision is the decimal precision of WAD fixed-point values.
const WadPrecision = 18

// ScaledIntToFloat64 converts an SDK Int with the given decimal precision to float64.
func ScaledIntToFloat64(amount sdkmath.Int, precision int) (float64, error) {
	if precision < 0 || precision > 18 {
		return 0, fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidPrecision, precision)
	}
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	if amount.IsNegative() {
		return 0, ErrAmountNegative
	}

	decAmount := sdkmath.LegacyNewDecFromInt(amount)
	factor := sdkmath.LegacyNewDec(1)
	for i := 0; i < precision; i++ {
		factor = factor.Mul(sdkmath.LegacyNewDec(10))
	}

	result := decAmount.Quo(factor)
	resultFloat, err := result.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}

	if math.IsNaN(resultFloat) || math.IsInf(resultFloat, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, resultFloat)
	}

	return resultFloat, nil
}

// WadToFloat64 converts a WAD (1e18) scaled SDK Int to float64.
// An 86% LLTV arrives as 860000000000000000 and converts to 0.86.
func WadToFloat64(amount sdkmath.Int) (float64, error) {
	return ScaledIntToFloat64(amount, WadPrecision)
}

// WadRatioOrZero converts a WAD scaled SDK Int to float64, returning 0 for
// nil, negative, or unconvertible values. Scoring code uses this form: a
// missing or garbage LLTV must degrade to the maximum-risk ratio, never error.
func WadRatioOrZero(amount sdkmath.Int) float64 {
	ratio, err := WadToFloat64(amount)
	if err != nil {
		return 0
	}
	return ratio
}

// Float64ToWad converts a non-negative float64 to a WAD scaled SDK Int.
func Float64ToWad(amount float64) (sdkmath.Int, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: amount is %f", ErrNotFinite, amount)
	}
	if amount < 0 {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}
	if amount == 0 {
		return sdkmath.ZeroInt(), nil
	}

	// String round-trip avoids binary floating point artifacts in the low digits.
	amountStr := fmt.Sprintf("%.18f", amount)
	decAmount, err := sdkmath.LegacyNewDecFromStr(amountStr)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: failed to create decimal from string: %w", ErrConversionFailed, err)
	}

	factor := sdkmath.LegacyNewDec(1)
	for i := 0; i < WadPrecision; i++ {
		factor = factor.Mul(sdkmath.LegacyNewDec(10))
	}

	result := decAmount.Mul(factor).TruncateInt()
	if result.IsNegative() {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}

	return result, nil
}
