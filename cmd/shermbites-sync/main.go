// ABOUTME: Headless download of every clip missing from the local cache
// ABOUTME: Runs one sync pass with progress logs and exits
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/shermbites/shermbites-go/internal/app"
	"github.com/shermbites/shermbites-go/internal/config"
	"github.com/shermbites/shermbites-go/pkg/audio/output"
)

var (
	backend   = flag.String("backend", "", "Backend base URL (overrides SHERMBITES_BACKEND_URL)")
	apiKey    = flag.String("api-key", "", "Backend API key (overrides SHERMBITES_API_KEY)")
	cachePath = flag.String("cache", "", "Clip cache database path")
	pace      = flag.Duration("download-interval", 0, "Minimum time between clip downloads")
	debug     = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	log.SetReportTimestamp(true)
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg := config.Load()
	if *backend != "" {
		cfg.BackendURL = *backend
	}
	if *apiKey != "" {
		cfg.APIKey = *apiKey
	}
	if *cachePath != "" {
		cfg.CachePath = *cachePath
	}
	if *pace > 0 {
		cfg.DownloadInterval = *pace
	}

	// Nothing is played, so no audio device is opened
	board, err := app.Open(cfg, output.NewMemory())
	if err != nil {
		log.Fatal("Failed to open soundboard", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := run(ctx, board)
	if err := board.Close(); err != nil {
		log.Error("Error closing cache", "err", err)
	}
	os.Exit(code)
}

func run(ctx context.Context, board *app.Soundboard) int {
	if err := board.Load(ctx); err != nil {
		log.Error("Could not load clips; check backend configuration", "err", err)
		return 1
	}

	logCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go logProgress(logCtx, board.Events())

	if err := board.Sync(ctx); err != nil {
		log.Warn("Sync interrupted", "err", err)
		return 1
	}

	clips := board.Clips()
	cached, missing := 0, 0
	for _, c := range clips {
		switch {
		case board.IsDownloaded(c.ID):
			cached++
		case c.Playable():
			missing++
		}
	}
	log.Info("Sync complete", "clips", len(clips), "cached", cached, "missing", missing)

	if missing > 0 {
		return 2
	}
	return 0
}

func logProgress(ctx context.Context, events <-chan app.Event) {
	for {
		select {
		case ev := <-events:
			if ev.Kind != app.EventDownloadProgress {
				continue
			}
			if ev.Progress.Err != nil {
				log.Warn("Clip download failed", "clip", ev.Progress.ClipID, "err", ev.Progress.Err)
			}
			log.Infof("Downloading clips... %d / %d", ev.Progress.Completed, ev.Progress.Total)
		case <-ctx.Done():
			return
		}
	}
}
