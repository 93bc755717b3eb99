/*
This file implements the oracle freshness lookup: given an oracle address,
how many seconds ago did it last publish a price.

The grader only ever sees the resolved OracleFreshness value (or its absence);
timeouts and transport failures are translated here, never inside scoring.
*/

package datafetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lendscope/cre/internal/logger"
	"github.com/lendscope/cre/internal/types"
)

var oracleLogger = logger.GetForComponent("oracle_freshness")

type oracleStatusResponse struct {
	AgeSeconds *float64 `json:"ageSeconds"` // null when the upstream cannot resolve the feed
}

// OracleFreshnessClient resolves oracle last-update ages from an oracle
// status API.
type OracleFreshnessClient struct {
	endpoint string
	client   *http.Client
}

// NewOracleFreshnessClient creates a client for the given status endpoint.
func NewOracleFreshnessClient(endpoint string, timeout time.Duration) (*OracleFreshnessClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("%w: oracle status API endpoint is empty", ErrAPIConfiguration)
	}
	if timeout <= 0 {
		timeout = TIMEOUT_SECONDS * time.Second
	}
	return &OracleFreshnessClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// GetFreshness returns the age of the oracle's last price update. A response
// with a null age resolves to the unknown-freshness sentinel (Known=false)
// rather than an error: the oracle exists, its timestamp does not.
func (c *OracleFreshnessClient) GetFreshness(ctx context.Context, oracleAddress string) (types.OracleFreshness, error) {
	if oracleAddress == "" || oracleAddress == types.ZeroAddress {
		return types.OracleFreshness{}, nil
	}

	requestURL := fmt.Sprintf("%s/oracles/%s/freshness", c.endpoint, url.PathEscape(oracleAddress))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return types.OracleFreshness{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return types.OracleFreshness{}, fmt.Errorf("oracle freshness request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Upstream does not track this oracle at all.
		oracleLogger.Debug().
			Str("oracle", oracleAddress).
			Msg("Oracle not tracked by status API")
		return types.OracleFreshness{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return types.OracleFreshness{}, fmt.Errorf("oracle status API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.OracleFreshness{}, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed oracleStatusResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return types.OracleFreshness{}, fmt.Errorf("failed to decode oracle status response: %w", err)
	}

	if parsed.AgeSeconds == nil {
		oracleLogger.Debug().
			Str("oracle", oracleAddress).
			Msg("Oracle freshness unresolved upstream")
		return types.OracleFreshness{}, nil
	}

	return types.OracleFreshness{AgeSeconds: *parsed.AgeSeconds, Known: true}, nil
}
