package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/vitalsink/internal/insights"
	"github.com/meltforce/vitalsink/internal/server"
)

// HTTPClient implements DataSource by calling the vitalsink REST API.
type HTTPClient struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// Compile-time check: *HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. An
// empty userID lets the server fall back to its single-tenant identity.
func NewHTTPClient(baseURL, userID string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userID:     userID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

// QueryMetrics calls GET /api/v1/metrics.
func (c *HTTPClient) QueryMetrics(ctx context.Context, metric string, from, to *time.Time, limit int) (*server.MetricsResponse, error) {
	params := url.Values{}
	params.Set("metric", metric)
	if from != nil {
		params.Set("from", from.Format(time.RFC3339))
	}
	if to != nil {
		params.Set("to", to.Format(time.RFC3339))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var out server.MetricsResponse
	if err := c.get(ctx, "/api/v1/metrics", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInsights calls GET /api/v1/insights.
func (c *HTTPClient) GetInsights(ctx context.Context, rangeHours int) (*insights.Report, error) {
	params := url.Values{}
	params.Set("range_hours", strconv.Itoa(rangeHours))

	var out insights.Report
	if err := c.get(ctx, "/api/v1/insights", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
