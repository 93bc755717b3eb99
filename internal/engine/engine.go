/*

This file contains the scoring engine orchestrator.

Each cycle fetches every market snapshot, computes the curator rating and the
risk grade per market, and persists the results as one cycle snapshot. The
scoring pipelines themselves are pure; all I/O — the market source and the two
lookup collaborators — enters through the injected ports below, so the engine
can be driven entirely by canned data in tests.

*/

package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lendscope/cre/internal/logger"
	"github.com/lendscope/cre/internal/rating"
	"github.com/lendscope/cre/internal/risk"
	"github.com/lendscope/cre/internal/state"
	"github.com/lendscope/cre/internal/types"
	"github.com/lendscope/cre/internal/utils"
)

const (
	// Export constants for use in main.go
	DEFAULT_CONFIG_NAME = "default_curator_strategy"

	// maxConcurrentMarkets bounds the scoring fan-out per cycle. Scoring is
	// cheap; the bound exists for the per-market lookup HTTP calls.
	maxConcurrentMarkets = 8
)

// MarketSource provides market snapshots for one chain.
type MarketSource interface {
	FetchMarkets(ctx context.Context) ([]types.Market, error)
}

// OracleFreshnessLookup resolves the age of an oracle's last price update.
type OracleFreshnessLookup interface {
	GetFreshness(ctx context.Context, oracleAddress string) (types.OracleFreshness, error)
}

// IrmTargetLookup resolves an interest rate model's target utilization.
// A nil target means "use the grader's default".
type IrmTargetLookup interface {
	GetTargetUtilization(ctx context.Context, irmAddress string) (*float64, error)
}

// Engine runs scoring cycles over the injected ports.
type Engine struct {
	logger  zerolog.Logger
	markets MarketSource
	oracles OracleFreshnessLookup
	irms    IrmTargetLookup

	curatorConfig types.CuratorConfig
	configID      int64
	configName    string
}

// Config holds the dependencies for creating a new Engine instance.
type Config struct {
	Markets       MarketSource
	Oracles       OracleFreshnessLookup
	Irms          IrmTargetLookup
	CuratorConfig types.CuratorConfig
	ConfigID      int64
	ConfigName    string
}

// New creates a new Engine with dependency injection.
func New(cfg Config) (*Engine, error) {
	if cfg.Markets == nil {
		return nil, fmt.Errorf("market source cannot be nil")
	}
	if cfg.Oracles == nil {
		return nil, fmt.Errorf("oracle freshness lookup cannot be nil")
	}
	if cfg.Irms == nil {
		return nil, fmt.Errorf("IRM target lookup cannot be nil")
	}
	if cfg.ConfigName == "" {
		return nil, fmt.Errorf("config name cannot be empty")
	}

	engine := &Engine{
		logger:        logger.GetForComponent("engine_core"),
		markets:       cfg.Markets,
		oracles:       cfg.Oracles,
		irms:          cfg.Irms,
		curatorConfig: cfg.CuratorConfig,
		configID:      cfg.ConfigID,
		configName:    cfg.ConfigName,
	}

	engine.logger.Info().
		Str("configName", engine.configName).
		Int64("configID", engine.configID).
		Msg("Engine instance created")

	return engine, nil
}

// RunLoop starts the main scoring loop with the specified interval. The first
// cycle runs immediately.
func (e *Engine) RunLoop(ctx context.Context, interval time.Duration) {
	e.logger.Info().
		Dur("interval", interval).
		Msg("Starting scoring loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("Scoring loop stopped due to context cancellation")
			return
		case <-ticker.C:
			e.RunCycle(ctx)
		}
	}
}

// RunCycle executes one complete scoring cycle: fetch, score, persist.
// Failures are logged, never fatal; the next tick simply tries again.
func (e *Engine) RunCycle(ctx context.Context) {
	cycleStart := time.Now()

	cycleID := uuid.New().String()
	cycleLogger := e.logger.With().Str("cycle_id", cycleID).Logger()
	cycleLogger.Info().Msg("--- Starting scoring cycle ---")

	cycleNumber, err := state.IncrementCycleNumber()
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Failed to advance cycle counter, continuing unnumbered")
	}

	markets, err := e.markets.FetchMarkets(ctx)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Failed to fetch markets, skipping cycle")
		return
	}
	if len(markets) == 0 {
		cycleLogger.Warn().Msg("No markets returned, skipping cycle")
		return
	}

	benchmark := benchmarkSupplyRate(markets)

	snapshot := types.CycleSnapshot{
		CycleNumber: cycleNumber,
		CycleID:     cycleID,
		Timestamp:   cycleStart,
		ConfigID:    e.configID,
		MarketCount: len(markets),
		Ratings:     make([]types.CuratorRatingResult, len(markets)),
		Grades:      make([]types.MarketRiskResult, 0, len(markets)),
	}

	type gradeSlot struct {
		result types.MarketRiskResult
		graded bool
	}
	gradeSlots := make([]gradeSlot, len(markets))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentMarkets)

	for i := range markets {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			market := markets[idx]
			snapshot.Ratings[idx] = rating.ComputeRating(market, e.curatorConfig, benchmark)

			if market.IsIdle() {
				return
			}
			gradeSlots[idx] = gradeSlot{
				result: risk.ComputeGrade(market, e.resolveFreshness(ctx, cycleLogger, market), e.resolveIrmTarget(ctx, cycleLogger, market)),
				graded: true,
			}
		}(i)
	}
	wg.Wait()

	for _, slot := range gradeSlots {
		if slot.graded {
			snapshot.Grades = append(snapshot.Grades, slot.result)
		}
	}
	snapshot.IdleCount = len(markets) - len(snapshot.Grades)
	for _, result := range snapshot.Ratings {
		if result.Rating != nil {
			snapshot.RatedCount++
		}
	}

	snapshot.DurationMs = time.Since(cycleStart).Milliseconds()

	if _, err := state.SaveCycleSnapshot(snapshot); err != nil {
		cycleLogger.Error().Err(err).Msg("Failed to persist cycle snapshot")
	}

	cycleLogger.Info().
		Int("cycle", cycleNumber).
		Int("marketCount", snapshot.MarketCount).
		Int("idleCount", snapshot.IdleCount).
		Int("ratedCount", snapshot.RatedCount).
		Int64("durationMs", snapshot.DurationMs).
		Msg("--- Scoring cycle completed ---")
}

// resolveFreshness runs the oracle lookup and translates any failure into the
// grader's unresolved sentinel.
func (e *Engine) resolveFreshness(ctx context.Context, cycleLogger zerolog.Logger, market types.Market) *types.OracleFreshness {
	freshness, err := e.oracles.GetFreshness(ctx, market.OracleAddress)
	if err != nil {
		cycleLogger.Warn().
			Err(err).
			Str("marketID", market.ID).
			Str("oracle", market.OracleAddress).
			Msg("Oracle freshness lookup failed, grading with unresolved freshness")
		return nil
	}
	return &freshness
}

// resolveIrmTarget runs the IRM lookup; on failure the grader falls back to
// its documented default target.
func (e *Engine) resolveIrmTarget(ctx context.Context, cycleLogger zerolog.Logger, market types.Market) *float64 {
	target, err := e.irms.GetTargetUtilization(ctx, market.IrmAddress)
	if err != nil {
		cycleLogger.Warn().
			Err(err).
			Str("marketID", market.ID).
			Str("irm", market.IrmAddress).
			Msg("IRM target lookup failed, grading with default target")
		return nil
	}
	return target
}

// benchmarkSupplyRate derives a live benchmark from the fetched markets: the
// supply-weighted mean supply APY. Returns nil (fall back to the configured
// benchmark) when no market carries weightable supply.
func benchmarkSupplyRate(markets []types.Market) *float64 {
	var weighted, totalSupply float64
	for _, market := range markets {
		supply := utils.NonNegative(market.State.SupplyAssetsUsd)
		if supply == 0 {
			continue
		}
		weighted += utils.FiniteOrZero(market.State.SupplyApy) * supply
		totalSupply += supply
	}
	if totalSupply <= 0 {
		return nil
	}
	benchmark := weighted / totalSupply
	return &benchmark
}
