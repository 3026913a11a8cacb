// ABOUTME: Oto-based audio output implementation
// ABOUTME: Plays whole clips with software volume control using oto library
package output

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
	"github.com/shermbites/shermbites-go/pkg/audio"
	"github.com/shermbites/shermbites-go/pkg/audio/resample"
)

// pollInterval is how often a playing clip is checked for its natural end
const pollInterval = 10 * time.Millisecond

// Oto output implementation using oto library
type Oto struct {
	mu     sync.Mutex
	otoCtx *oto.Context
	format audio.Format
	volume int
	muted  bool
	ready  bool
}

// NewOto creates a new Oto output. The device is opened on first Play.
func NewOto(format audio.Format) *Oto {
	return &Oto{
		format: format,
		volume: MaxVolume,
	}
}

// open initializes the output device.
// oto allows one context per process, so it is created once and reused.
func (o *Oto) open() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ready {
		return nil
	}

	if o.otoCtx == nil {
		op := &oto.NewContextOptions{
			SampleRate:   o.format.SampleRate,
			ChannelCount: o.format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			return fmt.Errorf("failed to create oto context: %w", err)
		}
		<-readyChan
		o.otoCtx = ctx
	} else if err := o.otoCtx.Resume(); err != nil {
		return fmt.Errorf("failed to resume oto context: %w", err)
	}

	o.ready = true
	log.Info("Audio output initialized", "sample_rate", o.format.SampleRate, "channels", o.format.Channels)

	return nil
}

// Play converts buf to the device format and plays it to the end
func (o *Oto) Play(ctx context.Context, buf *audio.Buffer) error {
	if err := o.open(); err != nil {
		return err
	}

	converted, err := resample.Convert(buf, o.format)
	if err != nil {
		return fmt.Errorf("failed to convert clip for output: %w", err)
	}

	o.mu.Lock()
	pcm := encodeInt16(converted.Samples, volumeMultiplier(o.volume, o.muted))
	player := o.otoCtx.NewPlayer(bytes.NewReader(pcm))
	o.mu.Unlock()

	defer player.Close()
	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
			if !player.IsPlaying() {
				return player.Err()
			}
		}
	}
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx != nil && o.ready {
		o.ready = false
		return o.otoCtx.Suspend()
	}
	return nil
}

// SetVolume sets the volume (0-100)
func (o *Oto) SetVolume(volume int) {
	volume = ClampVolume(volume)

	o.mu.Lock()
	o.volume = volume
	o.mu.Unlock()
	log.Debug("Volume set", "volume", volume)
}

// SetMuted sets mute state
func (o *Oto) SetMuted(muted bool) {
	o.mu.Lock()
	o.muted = muted
	o.mu.Unlock()
}

// Volume returns current volume
func (o *Oto) Volume() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume
}

// Muted reports whether output is muted
func (o *Oto) Muted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.muted
}

// encodeInt16 converts float samples to 16-bit little-endian PCM
func encodeInt16(samples []float64, multiplier float64) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(audio.SampleToInt16(s*multiplier)))
	}
	return out
}

// volumeMultiplier calculates volume multiplier
func volumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / MaxVolume
}
