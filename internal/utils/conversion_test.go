package utils

import (
	"errors"
	"math"
	"testing"

	sdkmath "cosmossdk.io/math"
)

func TestWadToFloat64(t *testing.T) {
	lltv, ok := sdkmath.NewIntFromString("860000000000000000")
	if !ok {
		t.Fatalf("failed to build test int")
	}
	got, err := WadToFloat64(lltv)
	if err != nil {
		t.Fatalf("WadToFloat64 returned error: %v", err)
	}
	if math.Abs(got-0.86) > 1e-12 {
		t.Errorf("WadToFloat64 = %v, want 0.86", got)
	}
}

func TestWadToFloat64Errors(t *testing.T) {
	t.Run("nil amount", func(t *testing.T) {
		var nilInt sdkmath.Int
		if _, err := WadToFloat64(nilInt); !errors.Is(err, ErrAmountNil) {
			t.Errorf("expected ErrAmountNil, got %v", err)
		}
	})
	t.Run("negative amount", func(t *testing.T) {
		if _, err := WadToFloat64(sdkmath.NewInt(-1)); !errors.Is(err, ErrAmountNegative) {
			t.Errorf("expected ErrAmountNegative, got %v", err)
		}
	})
	t.Run("invalid precision", func(t *testing.T) {
		if _, err := ScaledIntToFloat64(sdkmath.NewInt(1), 19); !errors.Is(err, ErrInvalidPrecision) {
			t.Errorf("expected ErrInvalidPrecision, got %v", err)
		}
	})
}

func TestWadRatioOrZero(t *testing.T) {
	var nilInt sdkmath.Int
	if got := WadRatioOrZero(nilInt); got != 0 {
		t.Errorf("WadRatioOrZero(nil) = %v, want 0", got)
	}
	if got := WadRatioOrZero(sdkmath.NewInt(-5)); got != 0 {
		t.Errorf("WadRatioOrZero(negative) = %v, want 0", got)
	}
	half, _ := sdkmath.NewIntFromString("500000000000000000")
	if got := WadRatioOrZero(half); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("WadRatioOrZero(0.5 WAD) = %v, want 0.5", got)
	}
}

func TestFloat64ToWadRoundTrip(t *testing.T) {
	wad, err := Float64ToWad(0.915)
	if err != nil {
		t.Fatalf("Float64ToWad returned error: %v", err)
	}
	back, err := WadToFloat64(wad)
	if err != nil {
		t.Fatalf("WadToFloat64 returned error: %v", err)
	}
	if math.Abs(back-0.915) > 1e-9 {
		t.Errorf("round trip = %v, want 0.915", back)
	}
}

func TestFloat64ToWadRejectsBadInput(t *testing.T) {
	if _, err := Float64ToWad(math.NaN()); !errors.Is(err, ErrNotFinite) {
		t.Errorf("expected ErrNotFinite for NaN, got %v", err)
	}
	if _, err := Float64ToWad(-0.5); !errors.Is(err, ErrAmountNegative) {
		t.Errorf("expected ErrAmountNegative, got %v", err)
	}
	zero, err := Float64ToWad(0)
	if err != nil {
		t.Fatalf("Float64ToWad(0) returned error: %v", err)
	}
	if !zero.IsZero() {
		t.Errorf("Float64ToWad(0) = %v, want 0", zero)
	}
}
