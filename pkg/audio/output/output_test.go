// ABOUTME: Audio output interface tests
// ABOUTME: Verifies Sink implementations and the in-memory sink behavior
package output

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shermbites/shermbites-go/pkg/audio"
)

func TestOtoImplementsSink(t *testing.T) {
	var _ Sink = (*Oto)(nil)
}

func TestMemoryImplementsSink(t *testing.T) {
	var _ Sink = (*Memory)(nil)
}

func TestSinksImplementMixer(t *testing.T) {
	var _ Mixer = (*Oto)(nil)
	var _ Mixer = (*Memory)(nil)
}

func TestClampVolume(t *testing.T) {
	tests := map[int]int{-5: 0, 0: 0, 42: 42, 100: 100, 150: 100}
	for in, expected := range tests {
		if got := ClampVolume(in); got != expected {
			t.Errorf("ClampVolume(%d) = %d, expected %d", in, got, expected)
		}
	}
}

func TestOtoMute(t *testing.T) {
	out := NewOto(audio.Format{SampleRate: 44100, Channels: 2})
	if out.Muted() {
		t.Error("expected unmuted by default")
	}
	out.SetMuted(true)
	if !out.Muted() {
		t.Error("expected muted after SetMuted(true)")
	}
}

func TestMemoryRecordsLevels(t *testing.T) {
	sink := NewMemory()
	buf := &audio.Buffer{Format: audio.Format{SampleRate: 8000, Channels: 1}, Samples: []float64{0.1}}

	sink.Play(context.Background(), buf)
	sink.SetVolume(40)
	sink.Play(context.Background(), buf)
	sink.SetMuted(true)
	sink.Play(context.Background(), buf)

	levels := sink.Levels()
	expected := []float64{1, 0.4, 0}
	if len(levels) != len(expected) {
		t.Fatalf("expected %d levels, got %v", len(expected), levels)
	}
	for i := range expected {
		if levels[i] != expected[i] {
			t.Errorf("play %d: expected level %g, got %g", i, expected[i], levels[i])
		}
	}
}

func TestNewOto(t *testing.T) {
	out := NewOto(audio.Format{SampleRate: 44100, Channels: 2})
	if out == nil {
		t.Fatal("NewOto returned nil")
	}
	if out.Volume() != 100 {
		t.Errorf("expected default volume 100, got %d", out.Volume())
	}
}

func TestOtoSetVolumeClamps(t *testing.T) {
	out := NewOto(audio.Format{SampleRate: 44100, Channels: 2})

	out.SetVolume(150)
	if out.Volume() != 100 {
		t.Errorf("expected volume clamped to 100, got %d", out.Volume())
	}
	out.SetVolume(-5)
	if out.Volume() != 0 {
		t.Errorf("expected volume clamped to 0, got %d", out.Volume())
	}
}

func TestEncodeInt16(t *testing.T) {
	pcm := encodeInt16([]float64{0, 1, -1, 2}, 1)
	if len(pcm) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(pcm))
	}
	// 1.0 -> 32767 -> 0xFF 0x7F
	if pcm[2] != 0xFF || pcm[3] != 0x7F {
		t.Errorf("unexpected full-scale encoding: %x", pcm[2:4])
	}
	// clipped sample encodes the same as full scale
	if pcm[6] != 0xFF || pcm[7] != 0x7F {
		t.Errorf("expected clipped sample to encode as full scale, got %x", pcm[6:8])
	}

	muted := encodeInt16([]float64{0.5}, volumeMultiplier(100, true))
	if muted[0] != 0 || muted[1] != 0 {
		t.Errorf("expected silence when muted, got %x", muted)
	}
}

func TestVolumeMultiplier(t *testing.T) {
	tests := []struct {
		volume   int
		muted    bool
		expected float64
	}{
		{100, false, 1.0},
		{50, false, 0.5},
		{0, false, 0.0},
		{100, true, 0.0},
	}

	for _, tt := range tests {
		if got := volumeMultiplier(tt.volume, tt.muted); got != tt.expected {
			t.Errorf("volumeMultiplier(%d, %v) = %f, expected %f", tt.volume, tt.muted, got, tt.expected)
		}
	}
}

func TestMemoryRecordsPlayback(t *testing.T) {
	sink := NewMemory()
	buf := &audio.Buffer{Format: audio.Format{SampleRate: 44100, Channels: 1}, Samples: []float64{0.1}}

	if err := sink.Play(context.Background(), buf); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	played := sink.Played()
	if len(played) != 1 || played[0] != buf {
		t.Fatalf("expected the buffer to be recorded, got %v", played)
	}

	select {
	case got := <-sink.Started():
		if got != buf {
			t.Error("expected Started to deliver the played buffer")
		}
	default:
		t.Error("expected a start notification")
	}
}

func TestMemoryHoldAndRelease(t *testing.T) {
	sink := NewMemory()
	sink.Hold()

	done := make(chan error, 1)
	go func() {
		done <- sink.Play(context.Background(), &audio.Buffer{})
	}()

	<-sink.Started()
	select {
	case <-done:
		t.Fatal("expected Play to block while held")
	case <-time.After(20 * time.Millisecond):
	}

	sink.Release()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected natural end, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Play did not return after Release")
	}
}

func TestMemoryHoldCancelled(t *testing.T) {
	sink := NewMemory()
	sink.Hold()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sink.Play(ctx, &audio.Buffer{})
	}()

	<-sink.Started()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Play did not return after cancel")
	}
}

func TestMemoryFailWith(t *testing.T) {
	sink := NewMemory()
	boom := errors.New("device lost")
	sink.FailWith(boom)

	if err := sink.Play(context.Background(), &audio.Buffer{}); !errors.Is(err, boom) {
		t.Errorf("expected %v, got %v", boom, err)
	}

	if err := sink.Close(); err != nil || !sink.Closed() {
		t.Error("expected Close to mark the sink closed")
	}
}
