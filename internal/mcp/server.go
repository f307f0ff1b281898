package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("vitalsink", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("vitalsink personal health telemetry server. Query heart rate variability, sleep, and workout data, and request period-over-period insight reports."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetMetrics, Handler: h.getMetrics},
		server.ServerTool{Tool: toolGetSleep, Handler: h.getSleep},
		server.ServerTool{Tool: toolGetInsights, Handler: h.getInsights},
		server.ServerTool{Tool: toolComparePeriods, Handler: h.comparePeriods},
	)

	return s
}

// handlers holds dependencies for MCP tool handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}
