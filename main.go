// ABOUTME: Entry point for the Shermbites soundboard
// ABOUTME: Parses CLI flags, wires the soundboard and runs the TUI or headless mode
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/shermbites/shermbites-go/internal/app"
	"github.com/shermbites/shermbites-go/internal/config"
	"github.com/shermbites/shermbites-go/internal/ui"
	"github.com/shermbites/shermbites-go/internal/version"
)

var (
	backend    = flag.String("backend", "", "Backend base URL (overrides SHERMBITES_BACKEND_URL)")
	apiKey     = flag.String("api-key", "", "Backend API key (overrides SHERMBITES_API_KEY)")
	cachePath  = flag.String("cache", "", "Clip cache database path")
	sampleRate = flag.Int("sample-rate", 0, "Output sample rate in Hz")
	busy       = flag.Duration("busy", 0, "How long the busy warning stays visible")
	pace       = flag.Duration("download-interval", 0, "Minimum time between clip downloads")
	volume     = flag.Int("volume", 0, "Output volume 1-100 (overrides SHERMBITES_VOLUME)")
	logFile    = flag.String("log-file", "shermbites.log", "Log file path")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, sync once and stream logs")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatal("error opening log file", "err", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}
	log.SetReportTimestamp(true)
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg := applyFlags(config.Load())

	board, err := app.Open(cfg, nil)
	if err != nil {
		log.Fatal("Failed to start soundboard", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting soundboard", "version", version.Version, "backend", cfg.BackendURL, "cache", cfg.CachePath)

	if useTUI {
		if err := ui.Run(ctx, board, board.Events()); err != nil && ctx.Err() == nil {
			log.Error("TUI exited with error", "err", err)
		}
	} else {
		runHeadless(ctx, board)
	}

	if err := board.Close(); err != nil {
		log.Error("Error closing soundboard", "err", err)
	}
	log.Info("Soundboard stopped")
}

// applyFlags overrides environment configuration with explicit flags
func applyFlags(cfg config.Config) config.Config {
	if *backend != "" {
		cfg.BackendURL = *backend
	}
	if *apiKey != "" {
		cfg.APIKey = *apiKey
	}
	if *cachePath != "" {
		cfg.CachePath = *cachePath
	}
	if *sampleRate > 0 {
		cfg.SampleRate = *sampleRate
	}
	if *busy > 0 {
		cfg.BusyInterval = *busy
	}
	if *pace > 0 {
		cfg.DownloadInterval = *pace
	}
	if *volume != 0 {
		cfg.Volume = *volume
	}
	return cfg
}

// runHeadless loads and syncs once, then logs events until interrupted
func runHeadless(ctx context.Context, board *app.Soundboard) {
	go logEvents(ctx, board.Events())

	if err := board.Load(ctx); err != nil {
		log.Error("Check backend configuration", "err", err)
		return
	}
	if err := board.Sync(ctx); err != nil {
		log.Warn("Download run interrupted", "err", err)
		return
	}

	log.Info("Clips ready; press Ctrl+C to exit", "clips", len(board.Clips()))
	<-ctx.Done()
}

func logEvents(ctx context.Context, events <-chan app.Event) {
	for {
		select {
		case ev := <-events:
			switch ev.Kind {
			case app.EventDownloadProgress:
				log.Infof("Downloading clips... %d / %d", ev.Progress.Completed, ev.Progress.Total)
			case app.EventSessionEnded:
				log.Info("Session ended", "clip", ev.Session.Clip, "err", ev.Err)
			default:
				log.Debug("Soundboard event", "kind", ev.Kind)
			}
		case <-ctx.Done():
			return
		}
	}
}
