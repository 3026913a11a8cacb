// ABOUTME: Uploads an audio file to the clip directory
// ABOUTME: Validates the label, stores the object and registers the clip
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/shermbites/shermbites-go/internal/app"
	"github.com/shermbites/shermbites-go/internal/clip"
	"github.com/shermbites/shermbites-go/internal/config"
	"github.com/shermbites/shermbites-go/pkg/audio/output"
)

var (
	backend = flag.String("backend", "", "Backend base URL (overrides SHERMBITES_BACKEND_URL)")
	apiKey  = flag.String("api-key", "", "Backend API key (overrides SHERMBITES_API_KEY)")
	label   = flag.String("label", "", fmt.Sprintf("Clip label (required, at most %d characters)", clip.MaxLabelLength))
	file    = flag.String("file", "", "Audio file to upload (MP3, WAV, FLAC)")
	debug   = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: shermbites-upload -label <label> -file <audio file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.Load()
	if *backend != "" {
		cfg.BackendURL = *backend
	}
	if *apiKey != "" {
		cfg.APIKey = *apiKey
	}

	board, err := app.Open(cfg, output.NewMemory())
	if err != nil {
		log.Fatal("Failed to open soundboard", "err", err)
	}
	defer board.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	created, err := board.Upload(ctx, *label, *file)
	if err != nil {
		log.Error("Upload failed", "err", err)
		board.Close()
		os.Exit(1)
	}

	log.Info("Clip uploaded", "id", created.ID, "label", created.Label, "clips", len(board.Clips()))
}
