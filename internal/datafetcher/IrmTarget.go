/*
This file implements the interest-rate-model target ("kink") utilization
lookup. The grader falls back to its own 90% default when the lookup fails,
so this client reports failures instead of guessing.
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

var irmLogger = logger.GetForComponent("irm_target")

type irmTargetResponse struct {
	TargetUtilization float64 `json:"targetUtilization"`
}

// IrmTargetClient resolves IRM target utilizations from the IRM API.
type IrmTargetClient struct {
	endpoint string
	client   *http.Client
}

// NewIrmTargetClient creates a client for the given IRM API endpoint.
func NewIrmTargetClient(endpoint string, timeout time.Duration) (*IrmTargetClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("%w: IRM API endpoint is empty", ErrAPIConfiguration)
	}
	if timeout <= 0 {
		timeout = TIMEOUT_SECONDS * time.Second
	}
	return &IrmTargetClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// GetTargetUtilization returns the IRM's target utilization in (0, 1].
// A missing or zero IRM address yields no target without an error; the
// caller applies the grader's documented default.
func (c *IrmTargetClient) GetTargetUtilization(ctx context.Context, irmAddress string) (*float64, error) {
	if irmAddress == "" || irmAddress == types.ZeroAddress {
		return nil, nil
	}

	requestURL := fmt.Sprintf("%s/irms/%s/target", c.endpoint, url.PathEscape(irmAddress))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("IRM target request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		irmLogger.Debug().
			Str("irm", irmAddress).
			Msg("IRM not tracked upstream, caller will use default target")
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("IRM API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed irmTargetResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode IRM target response: %w", err)
	}

	if parsed.TargetUtilization <= 0 || parsed.TargetUtilization > 1 {
		irmLogger.Warn().
			Str("irm", irmAddress).
			Float64("targetUtilization", parsed.TargetUtilization).
			Msg("IRM target utilization out of range, caller will use default")
		return nil, nil
	}

	target := parsed.TargetUtilization
	return &target, nil
}
