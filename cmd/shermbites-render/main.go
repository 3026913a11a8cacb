// ABOUTME: Renders a clip through the blast chain into a WAV file
// ABOUTME: Uses the local cache first and the backend on a miss
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/shermbites/shermbites-go/internal/app"
	"github.com/shermbites/shermbites-go/internal/config"
	"github.com/shermbites/shermbites-go/internal/playback"
	"github.com/shermbites/shermbites-go/pkg/audio/encode"
	"github.com/shermbites/shermbites-go/pkg/audio/output"
)

var (
	label = flag.String("label", "", "Label of the clip to render")
	mode  = flag.String("mode", "blast", "Playback mode: normal, blast or monster")
	out   = flag.String("out", "", "Output WAV path (default: <label>-<mode>.wav)")
)

func main() {
	flag.Parse()

	if *label == "" {
		fmt.Fprintln(os.Stderr, "usage: shermbites-render -label <label> [-mode blast|monster|normal] [-out file.wav]")
		os.Exit(2)
	}

	m, err := playback.ParseMode(*mode)
	if err != nil {
		log.Fatal("Invalid mode", "err", err)
	}

	path := *out
	if path == "" {
		path = fmt.Sprintf("%s-%s.wav", *label, m)
	}

	board, err := app.Open(config.Load(), output.NewMemory())
	if err != nil {
		log.Fatal("Failed to open soundboard", "err", err)
	}

	if err := render(context.Background(), board, *label, m, path); err != nil {
		board.Close()
		log.Fatal("Render failed", "err", err)
	}
	if err := board.Close(); err != nil {
		log.Error("Error closing cache", "err", err)
	}
}

func render(ctx context.Context, board *app.Soundboard, label string, mode playback.Mode, path string) error {
	if err := board.Load(ctx); err != nil {
		return err
	}

	c, ok := board.Find(label)
	if !ok {
		return fmt.Errorf("no clip labeled %q", label)
	}

	buf, err := board.Render(ctx, c, mode)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := encode.WAV(f, buf); err != nil {
		return err
	}

	log.Info("Rendered clip", "clip", c, "mode", mode, "duration", buf.Duration(), "path", path)
	return f.Close()
}
