// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for clip playback backends
package output

import (
	"context"

	"github.com/shermbites/shermbites-go/pkg/audio"
)

// Sink represents an audio output device
type Sink interface {
	// Play outputs buf and blocks until it finishes or ctx is cancelled
	Play(ctx context.Context, buf *audio.Buffer) error

	// Close releases output resources
	Close() error
}

// MaxVolume is full output level
const MaxVolume = 100

// Mixer is implemented by sinks with software volume control.
// Levels are 0-100 and apply to clips started after the change.
type Mixer interface {
	SetVolume(volume int)
	SetMuted(muted bool)
	Volume() int
	Muted() bool
}

// ClampVolume limits volume to 0-MaxVolume
func ClampVolume(volume int) int {
	return min(max(volume, 0), MaxVolume)
}
