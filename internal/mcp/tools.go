package mcp

import (
	"context"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// parseFlexTime accepts RFC 3339 or plain dates.
func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// optionalTimeRange parses optional start/end strings, nil when absent.
func optionalTimeRange(startStr, endStr string) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if startStr != "" {
		t, err := parseFlexTime(startStr)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if endStr != "" {
		t, err := parseFlexTime(endStr)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	return from, to, nil
}

// parseRangeHours parses the analysis window, defaulting to 24.
func parseRangeHours(s string) (int, error) {
	if s == "" {
		return 24, nil
	}
	hours, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return hours, nil
}

// --- Tool definitions ---

var toolGetMetrics = mcp.NewTool("get_metrics",
	mcp.WithDescription("Query stored health metric data points. Returns {timestamp, value} pairs plus the total matching count. Sleep values are hours, HRV is milliseconds, workout values are calories."),
	mcp.WithString("metric", mcp.Required(), mcp.Description("One of: heart_rate_variability, workout, sleep"), mcp.Enum("heart_rate_variability", "workout", "sleep")),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Omit for no lower bound.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Omit for no upper bound.")),
	mcp.WithString("limit", mcp.Description("Maximum points to return (1-5000). Defaults to 1000.")),
)

var toolGetSleep = mcp.NewTool("get_sleep",
	mcp.WithDescription("Query sleep sessions as nightly duration in hours, keyed by session start time."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Omit for no lower bound.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Omit for no upper bound.")),
	mcp.WithString("limit", mcp.Description("Maximum sessions to return (1-5000). Defaults to 1000.")),
)

var toolGetInsights = mcp.NewTool("get_insights",
	mcp.WithDescription("Get the full health insight report: HRV, sleep, and workout aggregates for the last N hours compared against the equal preceding window, plus a generated recommendation."),
	mcp.WithString("range_hours", mcp.Description("Analysis window in hours (1-168). Defaults to 24.")),
)

var toolComparePeriods = mcp.NewTool("compare_periods",
	mcp.WithDescription("Compare the last N hours against the equal preceding window. Returns the per-period aggregates and deltas without the narrative text."),
	mcp.WithString("range_hours", mcp.Description("Analysis window in hours (1-168). Defaults to 24.")),
)

// --- Handlers ---

func (h *handlers) getMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metric, err := req.RequireString("metric")
	if err != nil {
		return mcp.NewToolResultError("metric parameter is required"), nil
	}

	from, to, err := optionalTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	limit, err := strconv.Atoi(req.GetString("limit", "1000"))
	if err != nil {
		return mcp.NewToolResultError("limit must be an integer"), nil
	}

	resp, err := h.ds.QueryMetrics(ctx, metric, from, to, limit)
	if err != nil {
		h.log.Error("mcp get_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(resp)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSleep(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, to, err := optionalTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	limit, err := strconv.Atoi(req.GetString("limit", "1000"))
	if err != nil {
		return mcp.NewToolResultError("limit must be an integer"), nil
	}

	resp, err := h.ds.QueryMetrics(ctx, "sleep", from, to, limit)
	if err != nil {
		h.log.Error("mcp get_sleep", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(resp)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getInsights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hours, err := parseRangeHours(req.GetString("range_hours", ""))
	if err != nil {
		return mcp.NewToolResultError("range_hours must be an integer"), nil
	}

	report, err := h.ds.GetInsights(ctx, hours)
	if err != nil {
		h.log.Error("mcp get_insights", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(report)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) comparePeriods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hours, err := parseRangeHours(req.GetString("range_hours", ""))
	if err != nil {
		return mcp.NewToolResultError("range_hours must be an integer"), nil
	}

	report, err := h.ds.GetInsights(ctx, hours)
	if err != nil {
		h.log.Error("mcp compare_periods", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	comparison := map[string]any{
		"period_hours": report.PeriodHours,
		"current":      report.Current,
		"previous":     report.Previous,
		"changes":      report.Changes,
	}
	result, err := mcp.NewToolResultJSON(comparison)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
