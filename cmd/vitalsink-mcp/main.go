package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/vitalsink/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "vitalsink server URL (e.g. https://vitalsink.tail1234.ts.net)")
	userID := flag.String("user", "", "user ID to query as (defaults to the server's single-tenant identity)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("vitalsink-mcp", Version)
		return
	}

	// MCP speaks JSON-RPC on stdout; logs must go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: vitalsink-mcp -server <URL> [-user <id>]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ds := mcp.NewHTTPClient(strings.TrimRight(*serverURL, "/"), *userID)
	s := mcp.New(ds, Version, log)

	log.Info("mcp server starting", "server", *serverURL)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
