package upload

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stats tracks replay progress.
type Stats struct {
	FilesTotal   int
	FilesSent    int
	FilesSkipped int
	FilesErrored int
	MetricsSent  int
	SleepSent    int
	WorkoutsSent int
}

// Uploader walks a directory of exported JSON payloads and replays each new
// or changed file to the webhook.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run replays all pending export files in lexical order. Per-file failures
// are counted and logged; the walk continues.
func (u *Uploader) Run() (*Stats, error) {
	var files []string
	err := filepath.WalkDir(u.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return &u.stats, fmt.Errorf("walking %s: %w", u.dir, err)
	}
	sort.Strings(files)

	u.stats.FilesTotal = len(files)

	for _, path := range files {
		if err := u.processFile(path); err != nil {
			u.stats.FilesErrored++
			u.log.Error("replay failed", "file", path, "error", err)
		}
	}

	return &u.stats, nil
}

func (u *Uploader) processFile(path string) error {
	rel, err := filepath.Rel(u.dir, path)
	if err != nil {
		rel = path
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}

	sent, err := u.state.IsSent(rel, info.Size(), hash)
	if err != nil {
		return fmt.Errorf("checking state: %w", err)
	}
	if sent {
		u.stats.FilesSkipped++
		u.log.Debug("already sent", "file", rel)
		return nil
	}

	if u.dryRun {
		u.log.Info("would send", "file", rel, "size", info.Size())
		u.stats.FilesSent++
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}

	resp, err := u.client.SendPayload(data)
	if err != nil {
		return fmt.Errorf("sending: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("server rejected payload: %s", resp.Message)
	}

	if err := u.state.MarkSent(rel, info.Size(), hash); err != nil {
		return fmt.Errorf("marking sent: %w", err)
	}

	u.stats.FilesSent++
	u.stats.MetricsSent += resp.Processed.Metrics
	u.stats.SleepSent += resp.Processed.Sleep
	u.stats.WorkoutsSent += resp.Processed.Workouts
	u.log.Info("sent", "file", rel,
		"metrics", resp.Processed.Metrics,
		"sleep", resp.Processed.Sleep,
		"workouts", resp.Processed.Workouts,
	)
	return nil
}
