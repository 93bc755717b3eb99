package engine

import (
	"context"
	"math"
	"sync"
	"testing"

	sdkmath "cosmossdk.io/math"

	"github.com/lendscope/cre/internal/config"
	"github.com/lendscope/cre/internal/types"
)

type fakeMarketSource struct {
	markets []types.Market
	err     error
}

func (f *fakeMarketSource) FetchMarkets(ctx context.Context) ([]types.Market, error) {
	return f.markets, f.err
}

type fakeOracleLookup struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeOracleLookup) GetFreshness(ctx context.Context, oracleAddress string) (types.OracleFreshness, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, oracleAddress)
	return types.OracleFreshness{AgeSeconds: 600, Known: true}, nil
}

type fakeIrmLookup struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeIrmLookup) GetTargetUtilization(ctx context.Context, irmAddress string) (*float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, irmAddress)
	target := 0.90
	return &target, nil
}

func activeMarket(id string, supplyUsd, borrowUsd float64) types.Market {
	lltv, _ := sdkmath.NewIntFromString("860000000000000000")
	return types.Market{
		ID:              id,
		UniqueKey:       "0x" + id,
		LoanAsset:       types.Asset{Symbol: "USDC"},
		CollateralAsset: types.Asset{Symbol: "WETH"},
		Lltv:            lltv,
		OracleAddress:   "0x1111111111111111111111111111111111111111",
		IrmAddress:      "0x2222222222222222222222222222222222222222",
		State: types.MarketState{
			SupplyAssetsUsd:    supplyUsd,
			BorrowAssetsUsd:    borrowUsd,
			LiquidityAssetsUsd: supplyUsd - borrowUsd,
		},
	}
}

func idleMarket(id string, supplyUsd float64) types.Market {
	return types.Market{
		ID:        id,
		UniqueKey: "0x" + id,
		LoanAsset: types.Asset{Symbol: "USDC"},
		State: types.MarketState{
			SupplyAssetsUsd:    supplyUsd,
			LiquidityAssetsUsd: supplyUsd,
		},
	}
}

func testEngine(t *testing.T, markets *fakeMarketSource, oracles *fakeOracleLookup, irms *fakeIrmLookup) *Engine {
	t.Helper()
	e, err := New(Config{
		Markets:       markets,
		Oracles:       oracles,
		Irms:          irms,
		CuratorConfig: config.Resolve(nil),
		ConfigName:    DEFAULT_CONFIG_NAME,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return e
}

func TestNewValidation(t *testing.T) {
	markets := &fakeMarketSource{}
	oracles := &fakeOracleLookup{}
	irms := &fakeIrmLookup{}

	cases := []struct {
		name string
		cfg  Config
	}{
		{"nil market source", Config{Oracles: oracles, Irms: irms, ConfigName: "x"}},
		{"nil oracle lookup", Config{Markets: markets, Irms: irms, ConfigName: "x"}},
		{"nil irm lookup", Config{Markets: markets, Oracles: oracles, ConfigName: "x"}},
		{"empty config name", Config{Markets: markets, Oracles: oracles, Irms: irms}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.cfg); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestRunCycleGradesOnlyActiveMarkets(t *testing.T) {
	markets := &fakeMarketSource{markets: []types.Market{
		activeMarket("m1", 1_000_000, 500_000),
		idleMarket("m2", 200_000),
		activeMarket("m3", 5_000_000, 4_000_000),
	}}
	oracles := &fakeOracleLookup{}
	irms := &fakeIrmLookup{}

	e := testEngine(t, markets, oracles, irms)
	e.RunCycle(context.Background())

	// Idle markets get a curator rating but are never graded, so the lookup
	// ports see only the two active markets.
	if len(oracles.calls) != 2 {
		t.Errorf("oracle lookups = %d, want 2", len(oracles.calls))
	}
	if len(irms.calls) != 2 {
		t.Errorf("IRM lookups = %d, want 2", len(irms.calls))
	}
}

func TestBenchmarkSupplyRate(t *testing.T) {
	t.Run("supply weighted mean", func(t *testing.T) {
		m1 := activeMarket("m1", 1_000_000, 0)
		m1.State.SupplyApy = 0.02
		m2 := activeMarket("m2", 3_000_000, 0)
		m2.State.SupplyApy = 0.06

		got := benchmarkSupplyRate([]types.Market{m1, m2})
		if got == nil {
			t.Fatalf("expected a benchmark")
		}
		if math.Abs(*got-0.05) > 1e-9 {
			t.Errorf("benchmark = %v, want 0.05", *got)
		}
	})

	t.Run("no supply yields nil", func(t *testing.T) {
		m := activeMarket("m1", 0, 0)
		if got := benchmarkSupplyRate([]types.Market{m}); got != nil {
			t.Errorf("expected nil benchmark, got %v", *got)
		}
	})

	t.Run("non-finite APY contributes zero", func(t *testing.T) {
		m1 := activeMarket("m1", 1_000_000, 0)
		m1.State.SupplyApy = math.NaN()
		m2 := activeMarket("m2", 1_000_000, 0)
		m2.State.SupplyApy = 0.04

		got := benchmarkSupplyRate([]types.Market{m1, m2})
		if got == nil {
			t.Fatalf("expected a benchmark")
		}
		if math.Abs(*got-0.02) > 1e-9 {
			t.Errorf("benchmark = %v, want 0.02", *got)
		}
	})
}
