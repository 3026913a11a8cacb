// ABOUTME: Production wiring for the soundboard
// ABOUTME: Builds the HTTP directory, bbolt cache and audio output from configuration
package app

import (
	"github.com/shermbites/shermbites-go/internal/cache"
	"github.com/shermbites/shermbites-go/internal/config"
	"github.com/shermbites/shermbites-go/internal/remote"
	"github.com/shermbites/shermbites-go/pkg/audio"
	"github.com/shermbites/shermbites-go/pkg/audio/output"
)

// OutputChannels is the channel count of the audio device
const OutputChannels = 2

// Open validates cfg and builds a soundboard against the real backend.
// A nil sink opens the default audio device.
func Open(cfg config.Config, sink output.Sink) (*Soundboard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := remote.NewClient(remote.Config{
		BaseURL: cfg.BackendURL,
		APIKey:  cfg.APIKey,
		Table:   cfg.Table,
		Bucket:  cfg.Bucket,
		Timeout: cfg.HTTPTimeout,
	})

	if sink == nil {
		sink = output.NewOto(audio.Format{SampleRate: cfg.SampleRate, Channels: OutputChannels})
	}

	return New(Config{
		Directory:        client,
		Downloader:       client,
		Store:            cache.NewBoltStore(cfg.CachePath),
		Sink:             sink,
		BusyInterval:     cfg.BusyInterval,
		DownloadInterval: cfg.DownloadInterval,
		RenderCacheSize:  cfg.DecodedCacheSize,
		Volume:           cfg.Volume,
	})
}
