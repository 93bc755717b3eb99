/*
This file fetches lending market snapshots from the protocol indexer's
GraphQL API.

The engine itself never fetches: this fetcher implements the MarketSource
port that the engine consumes, and it owns the retry and timeout policy for
the upstream HTTP call.
*/

package datafetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/lendscope/cre/internal/logger"
	"github.com/lendscope/cre/internal/types"
)

var marketLogger = logger.GetForComponent("market_retriever")

var ErrInvalidMarketData = errors.New("invalid market data received")
var ErrAPIConfiguration = errors.New("API configuration error")

const (
	MAX_RETRIES      = 3
	TIMEOUT_SECONDS  = 30
	MARKET_PAGE_SIZE = 500
)

// marketsQuery asks the indexer for every market on one chain, first page
// ordered by size so the largest markets survive any truncation.
const marketsQuery = `
query Markets($chainId: Int!, $first: Int!) {
  markets(where: { chainId_in: [$chainId] }, first: $first, orderBy: SupplyAssetsUsd, orderDirection: Desc) {
    items {
      id
      uniqueKey
      lltv
      oracleAddress
      irmAddress
      loanAsset { symbol address decimals }
      collateralAsset { symbol address decimals }
      state {
        supplyAssetsUsd
        borrowAssetsUsd
        liquidityAssetsUsd
        collateralAssetsUsd
        utilization
        supplyApy
        borrowApy
        sizeUsd
        badDebt { usd }
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type marketsResponse struct {
	Data struct {
		Markets struct {
			Items []struct {
				ID              string  `json:"id"`
				UniqueKey       string  `json:"uniqueKey"`
				Lltv            string  `json:"lltv"`
				OracleAddress   string  `json:"oracleAddress"`
				IrmAddress      string  `json:"irmAddress"`
				LoanAsset       apiAsset `json:"loanAsset"`
				CollateralAsset apiAsset `json:"collateralAsset"`
				State           struct {
					SupplyAssetsUsd     float64  `json:"supplyAssetsUsd"`
					BorrowAssetsUsd     float64  `json:"borrowAssetsUsd"`
					LiquidityAssetsUsd  float64  `json:"liquidityAssetsUsd"`
					CollateralAssetsUsd *float64 `json:"collateralAssetsUsd"`
					Utilization         *float64 `json:"utilization"`
					SupplyApy           float64  `json:"supplyApy"`
					BorrowApy           float64  `json:"borrowApy"`
					SizeUsd             *float64 `json:"sizeUsd"`
					BadDebt             *struct {
						Usd float64 `json:"usd"`
					} `json:"badDebt"`
				} `json:"state"`
			} `json:"items"`
		} `json:"markets"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type apiAsset struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
}

// MarketFetcher retrieves market snapshots from a GraphQL indexer endpoint.
type MarketFetcher struct {
	endpoint string
	chainID  uint64
	client   *http.Client
}

// NewMarketFetcher creates a fetcher for the given indexer endpoint and chain.
func NewMarketFetcher(endpoint string, chainID uint64) (*MarketFetcher, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("%w: lending API endpoint is empty", ErrAPIConfiguration)
	}
	return &MarketFetcher{
		endpoint: endpoint,
		chainID:  chainID,
		client:   &http.Client{Timeout: TIMEOUT_SECONDS * time.Second},
	}, nil
}

// FetchMarkets retrieves all market snapshots for the configured chain.
func (f *MarketFetcher) FetchMarkets(ctx context.Context) ([]types.Market, error) {
	payload, err := json.Marshal(graphqlRequest{
		Query: marketsQuery,
		Variables: map[string]any{
			"chainId": f.chainID,
			"first":   MARKET_PAGE_SIZE,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal markets query: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		marketLogger.Debug().
			Int("attempt", attempt).
			Int("maxRetries", MAX_RETRIES).
			Uint64("chainID", f.chainID).
			Msg("Requesting market snapshots")

		markets, err := f.fetchOnce(ctx, payload)
		if err == nil {
			marketLogger.Info().
				Int("marketCount", len(markets)).
				Int("attempt", attempt).
				Msg("Market snapshots fetched")
			return markets, nil
		}

		lastErr = err
		marketLogger.Warn().
			Err(err).
			Int("attempt", attempt).
			Msg("Market fetch failed, will retry if attempts remain")

		if attempt < MAX_RETRIES {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	marketLogger.Error().
		Err(lastErr).
		Int("maxRetries", MAX_RETRIES).
		Msg("All market fetch attempts failed")
	return nil, fmt.Errorf("failed to fetch markets after %d attempts: %w", MAX_RETRIES, lastErr)
}

func (f *MarketFetcher) fetchOnce(ctx context.Context, payload []byte) ([]types.Market, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("indexer returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) == 0 {
		return nil, errors.New("empty response body")
	}

	var parsed marketsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode markets response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMarketData, parsed.Errors[0].Message)
	}

	markets := make([]types.Market, 0, len(parsed.Data.Markets.Items))
	for _, item := range parsed.Data.Markets.Items {
		market := types.Market{
			ID:            item.ID,
			UniqueKey:     item.UniqueKey,
			OracleAddress: item.OracleAddress,
			IrmAddress:    item.IrmAddress,
			LoanAsset: types.Asset{
				Symbol:   item.LoanAsset.Symbol,
				Address:  item.LoanAsset.Address,
				Decimals: item.LoanAsset.Decimals,
			},
			CollateralAsset: types.Asset{
				Symbol:   item.CollateralAsset.Symbol,
				Address:  item.CollateralAsset.Address,
				Decimals: item.CollateralAsset.Decimals,
			},
			State: types.MarketState{
				SupplyAssetsUsd:     item.State.SupplyAssetsUsd,
				BorrowAssetsUsd:     item.State.BorrowAssetsUsd,
				LiquidityAssetsUsd:  item.State.LiquidityAssetsUsd,
				CollateralAssetsUsd: item.State.CollateralAssetsUsd,
				Utilization:         item.State.Utilization,
				SupplyApy:           item.State.SupplyApy,
				BorrowApy:           item.State.BorrowApy,
				SizeUsd:             item.State.SizeUsd,
			},
		}

		if item.State.BadDebt != nil && !math.IsNaN(item.State.BadDebt.Usd) {
			badDebt := item.State.BadDebt.Usd
			market.State.RealizedBadDebtUsd = &badDebt
		}

		// The indexer serializes LLTV as a WAD-scaled decimal string. A value
		// that fails to parse leaves the market idle rather than failing the
		// whole fetch.
		if lltv, ok := sdkmath.NewIntFromString(item.Lltv); ok {
			market.Lltv = lltv
		} else {
			marketLogger.Warn().
				Str("marketID", item.ID).
				Str("lltv", item.Lltv).
				Msg("Market has unparsable LLTV, leaving it unset")
		}

		markets = append(markets, market)
	}

	return markets, nil
}
