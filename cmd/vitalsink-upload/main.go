package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/meltforce/vitalsink/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "vitalsink server URL (e.g. https://vitalsink.tail1234.ts.net)")
	dir := flag.String("path", "", "directory of exported JSON payloads")
	userID := flag.String("user", "local", "user ID to ingest as")
	apiKey := flag.String("api-key", "", "webhook API key (if the server requires one)")
	dryRun := flag.Bool("dry-run", false, "list pending files without sending")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("vitalsink-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: vitalsink-upload -server <URL> -path <export dir> [-user <id>] [-api-key <key>] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}

	info, err := os.Stat(*dir)
	if err != nil || !info.IsDir() {
		log.Error("export directory not found", "path", *dir)
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".vitalsink-upload"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	client := upload.NewClient(strings.TrimRight(*serverURL, "/"), *apiKey, *userID)

	if *dryRun {
		log.Info("dry run: files will be listed but not sent")
	}

	u := upload.New(client, state, *dir, *dryRun, log)
	stats, err := u.Run()
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}

	log.Info("done",
		"total", stats.FilesTotal,
		"sent", stats.FilesSent,
		"skipped", stats.FilesSkipped,
		"errored", stats.FilesErrored,
		"metrics", stats.MetricsSent,
		"sleep", stats.SleepSent,
		"workouts", stats.WorkoutsSent,
	)
	if stats.FilesErrored > 0 {
		os.Exit(1)
	}
}
