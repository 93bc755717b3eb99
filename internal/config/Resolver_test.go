package config

import (
	"math"
	"testing"

	"github.com/lendscope/cre/internal/types"
)

func floatPtr(v float64) *float64 { return &v }

func TestResolveDefaults(t *testing.T) {
	cfg := Resolve(nil)

	if cfg.UtilizationCeiling != DefaultCuratorConfig.UtilizationCeiling {
		t.Errorf("UtilizationCeiling = %v, want %v", cfg.UtilizationCeiling, DefaultCuratorConfig.UtilizationCeiling)
	}
	if cfg.MinTvlUsd != DefaultCuratorConfig.MinTvlUsd {
		t.Errorf("MinTvlUsd = %v, want %v", cfg.MinTvlUsd, DefaultCuratorConfig.MinTvlUsd)
	}
	if sum := cfg.Weights.Sum(); math.Abs(sum-1) > 1e-9 {
		t.Errorf("default weights sum = %v, want 1", sum)
	}
}

func TestResolveCallerOverrides(t *testing.T) {
	cfg := Resolve(&types.CuratorConfigOverrides{
		UtilizationCeiling: floatPtr(0.85),
		MinTvlUsd:          floatPtr(50_000),
	})

	if cfg.UtilizationCeiling != 0.85 {
		t.Errorf("UtilizationCeiling = %v, want 0.85", cfg.UtilizationCeiling)
	}
	if cfg.MinTvlUsd != 50_000 {
		t.Errorf("MinTvlUsd = %v, want 50000", cfg.MinTvlUsd)
	}
	// Untouched fields keep their defaults.
	if cfg.PriceStressPct != DefaultCuratorConfig.PriceStressPct {
		t.Errorf("PriceStressPct = %v, want default %v", cfg.PriceStressPct, DefaultCuratorConfig.PriceStressPct)
	}
}

func TestResolveEnvLayering(t *testing.T) {
	t.Setenv(EnvUtilizationCeiling, "0.80")
	t.Setenv(EnvMinTvlUsd, "25000")

	t.Run("env overrides defaults", func(t *testing.T) {
		cfg := Resolve(nil)
		if cfg.UtilizationCeiling != 0.80 {
			t.Errorf("UtilizationCeiling = %v, want 0.80", cfg.UtilizationCeiling)
		}
		if cfg.MinTvlUsd != 25_000 {
			t.Errorf("MinTvlUsd = %v, want 25000", cfg.MinTvlUsd)
		}
	})

	t.Run("caller overrides beat env", func(t *testing.T) {
		cfg := Resolve(&types.CuratorConfigOverrides{
			UtilizationCeiling: floatPtr(0.70),
		})
		if cfg.UtilizationCeiling != 0.70 {
			t.Errorf("UtilizationCeiling = %v, want caller override 0.70", cfg.UtilizationCeiling)
		}
		// Env still wins for fields the caller left absent.
		if cfg.MinTvlUsd != 25_000 {
			t.Errorf("MinTvlUsd = %v, want env override 25000", cfg.MinTvlUsd)
		}
	})
}

func TestResolveLenientEnvParsing(t *testing.T) {
	t.Setenv(EnvPriceStressPct, "not-a-number")
	t.Setenv(EnvLiquidityStressPct, "NaN")

	cfg := Resolve(nil)
	if cfg.PriceStressPct != DefaultCuratorConfig.PriceStressPct {
		t.Errorf("unparsable env value should fall through to default, got %v", cfg.PriceStressPct)
	}
	if cfg.LiquidityStressPct != DefaultCuratorConfig.LiquidityStressPct {
		t.Errorf("NaN env value should fall through to default, got %v", cfg.LiquidityStressPct)
	}
}

func TestResolveWeightNormalization(t *testing.T) {
	t.Run("arbitrary weights renormalize to 1", func(t *testing.T) {
		cfg := Resolve(&types.CuratorConfigOverrides{
			Weights: types.CuratorWeightOverrides{
				Utilization:         floatPtr(2),
				RateAlignment:       floatPtr(2),
				StressExposure:      floatPtr(4),
				WithdrawalLiquidity: floatPtr(1),
				LiquidationCapacity: floatPtr(1),
			},
		})
		if sum := cfg.Weights.Sum(); math.Abs(sum-1) > 1e-9 {
			t.Errorf("normalized weight sum = %v, want 1", sum)
		}
		if math.Abs(cfg.Weights.StressExposure-0.4) > 1e-9 {
			t.Errorf("StressExposure weight = %v, want 0.4", cfg.Weights.StressExposure)
		}
	})

	t.Run("negative components floored before normalizing", func(t *testing.T) {
		cfg := Resolve(&types.CuratorConfigOverrides{
			Weights: types.CuratorWeightOverrides{
				Utilization:   floatPtr(-3),
				RateAlignment: floatPtr(1),
			},
		})
		if cfg.Weights.Utilization != 0 {
			t.Errorf("negative weight should floor to 0, got %v", cfg.Weights.Utilization)
		}
		if sum := cfg.Weights.Sum(); math.Abs(sum-1) > 1e-9 {
			t.Errorf("weight sum = %v, want 1", sum)
		}
	})

	t.Run("all-zero weights substitute default vector", func(t *testing.T) {
		zero := floatPtr(0)
		cfg := Resolve(&types.CuratorConfigOverrides{
			Weights: types.CuratorWeightOverrides{
				Utilization:         zero,
				RateAlignment:       zero,
				StressExposure:      zero,
				WithdrawalLiquidity: zero,
				LiquidationCapacity: zero,
			},
		})
		if cfg.Weights != DefaultCuratorWeights {
			t.Errorf("zero-sum weights should substitute defaults, got %+v", cfg.Weights)
		}
	})
}

func TestEnvCuratorOverridesAbsentByDefault(t *testing.T) {
	t.Setenv(EnvUtilizationCeiling, "")

	ov := EnvCuratorOverrides()
	if ov.UtilizationCeiling != nil {
		t.Errorf("empty env value should be absent, got %v", *ov.UtilizationCeiling)
	}
	if ov.Weights.StressExposure != nil && *ov.Weights.StressExposure != 0 {
		t.Errorf("unset weight override should be absent")
	}
}
