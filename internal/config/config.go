// ABOUTME: Runtime configuration loaded from environment variables
// ABOUTME: Command-line flags in main override these values
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all runtime configuration
type Config struct {
	// Backend
	BackendURL  string
	APIKey      string
	Table       string
	Bucket      string
	HTTPTimeout time.Duration

	// Local cache
	CachePath string

	// Playback
	SampleRate       int
	BusyInterval     time.Duration
	DecodedCacheSize int
	Volume           int // 1-100; mute is a runtime toggle

	// Downloads; zero means unpaced
	DownloadInterval time.Duration
}

// Load reads configuration from environment variables with defaults
func Load() Config {
	return Config{
		BackendURL:  envStr("SHERMBITES_BACKEND_URL", ""),
		APIKey:      envStr("SHERMBITES_API_KEY", ""),
		Table:       envStr("SHERMBITES_TABLE", "clips"),
		Bucket:      envStr("SHERMBITES_BUCKET", "audio-clips"),
		HTTPTimeout: envDuration("SHERMBITES_HTTP_TIMEOUT", 30*time.Second),

		CachePath: envStr("SHERMBITES_CACHE_PATH", defaultCachePath()),

		SampleRate:       envInt("SHERMBITES_SAMPLE_RATE", 44100),
		BusyInterval:     envDuration("SHERMBITES_BUSY_INTERVAL", 2*time.Second),
		DecodedCacheSize: envInt("SHERMBITES_DECODED_CACHE", 32),
		Volume:           envInt("SHERMBITES_VOLUME", 100),

		DownloadInterval: envDuration("SHERMBITES_DOWNLOAD_INTERVAL", 0),
	}
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend URL is not set (SHERMBITES_BACKEND_URL or -backend)")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend URL %q is not an absolute URL", c.BackendURL)
	}
	if c.Table == "" || c.Bucket == "" {
		return fmt.Errorf("table and bucket must be set")
	}
	if c.CachePath == "" {
		return fmt.Errorf("cache path must be set")
	}
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("sample rate %d out of range", c.SampleRate)
	}
	if c.BusyInterval <= 0 {
		return fmt.Errorf("busy interval must be positive")
	}
	if c.DecodedCacheSize <= 0 {
		return fmt.Errorf("decoded cache size must be positive")
	}
	if c.Volume < 1 || c.Volume > 100 {
		return fmt.Errorf("volume %d out of range 1-100", c.Volume)
	}
	if c.DownloadInterval < 0 || c.HTTPTimeout < 0 {
		return fmt.Errorf("intervals must not be negative")
	}
	return nil
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "shermbites", "clips.db")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
