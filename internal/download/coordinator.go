// ABOUTME: Download coordinator for clips missing from the local cache
// ABOUTME: Fetches sequentially and reports progress after every item
package download

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/shermbites/shermbites-go/internal/clip"
	"golang.org/x/time/rate"
)

// Progress is emitted once per processed clip
type Progress struct {
	Completed int
	Total     int
	ClipID    int64
	Err       error
}

// Done reports whether this is the terminal update
func (p Progress) Done() bool {
	return p.Completed == p.Total
}

// Percent returns completion in [0, 100]
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 100
	}
	return p.Completed * 100 / p.Total
}

// Presence reports whether a clip is already cached
type Presence interface {
	Exists(id int64) (bool, error)
}

// Fetcher downloads a clip and persists it
type Fetcher interface {
	Fetch(ctx context.Context, c clip.Clip) ([]byte, error)
}

// Coordinator syncs missing clips into the cache
type Coordinator struct {
	presence Presence
	fetcher  Fetcher
	limiter  *rate.Limiter
}

// NewCoordinator creates a coordinator. limiter may be nil for unpaced downloads.
func NewCoordinator(presence Presence, fetcher Fetcher, limiter *rate.Limiter) *Coordinator {
	return &Coordinator{
		presence: presence,
		fetcher:  fetcher,
		limiter:  limiter,
	}
}

// Missing returns the playable clips the cache does not hold, in input order.
// A failed presence check counts the clip as missing.
func (c *Coordinator) Missing(clips []clip.Clip) []clip.Clip {
	var missing []clip.Clip
	for _, cl := range clips {
		if !cl.Playable() {
			continue
		}
		ok, err := c.presence.Exists(cl.ID)
		if err != nil {
			log.Warn("Cache check failed", "clip", cl, "err", err)
		}
		if !ok {
			missing = append(missing, cl)
		}
	}
	return missing
}

// SyncMissing downloads every missing clip, one after another. The channel
// receives a Progress after each item and is closed when the run is over;
// with nothing missing it is closed without any update. Failures are
// reported in Progress.Err and do not stop the run. Cancelling ctx abandons
// the remaining clips without further updates.
func (c *Coordinator) SyncMissing(ctx context.Context, clips []clip.Clip) <-chan Progress {
	missing := c.Missing(clips)
	out := make(chan Progress, len(missing))

	if len(missing) == 0 {
		close(out)
		return out
	}

	log.Info("Downloading missing clips", "count", len(missing))

	go func() {
		defer close(out)

		failed := 0
		for i, cl := range missing {
			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					log.Warn("Download run abandoned", "completed", i, "total", len(missing), "err", err)
					return
				}
			}
			if ctx.Err() != nil {
				log.Warn("Download run abandoned", "completed", i, "total", len(missing))
				return
			}

			_, err := c.fetcher.Fetch(ctx, cl)
			if err != nil {
				failed++
				if errors.Is(err, clip.ErrStorage) {
					log.Error("Failed to cache clip", "clip", cl, "err", err)
				} else {
					log.Error("Failed to download clip", "clip", cl, "err", err)
				}
			}

			out <- Progress{
				Completed: i + 1,
				Total:     len(missing),
				ClipID:    cl.ID,
				Err:       err,
			}
		}

		log.Info("Download run done", "total", len(missing), "failed", failed)
	}()

	return out
}

// Drain consumes updates until the run ends and returns the last one
func Drain(updates <-chan Progress) (last Progress, seen int) {
	for p := range updates {
		last = p
		seen++
	}
	return last, seen
}
