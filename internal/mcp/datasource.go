package mcp

import (
	"context"
	"time"

	"github.com/meltforce/vitalsink/internal/insights"
	"github.com/meltforce/vitalsink/internal/server"
)

// DataSource abstracts the data layer for MCP tools. HTTPClient satisfies
// this by calling the REST API, so the binary can run locally over stdio
// while data lives on the server.
type DataSource interface {
	QueryMetrics(ctx context.Context, metric string, from, to *time.Time, limit int) (*server.MetricsResponse, error)
	GetInsights(ctx context.Context, rangeHours int) (*insights.Report, error)
}
