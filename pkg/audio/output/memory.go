// ABOUTME: In-memory audio output for tests and headless runs
// ABOUTME: Records played buffers and levels, and can hold playback open until released
package output

import (
	"context"
	"sync"

	"github.com/shermbites/shermbites-go/pkg/audio"
)

// Memory is a Sink that records buffers instead of producing sound
type Memory struct {
	mu      sync.Mutex
	played  []*audio.Buffer
	fail    error
	gate    chan struct{}
	started chan *audio.Buffer
	closed  bool
	volume  int
	muted   bool
	levels  []float64
}

// NewMemory creates an in-memory sink where playback ends immediately
func NewMemory() *Memory {
	return &Memory{started: make(chan *audio.Buffer, 16), volume: MaxVolume}
}

// Play records buf and the level it would play at, then blocks while
// the sink is held
func (m *Memory) Play(ctx context.Context, buf *audio.Buffer) error {
	m.mu.Lock()
	m.played = append(m.played, buf)
	m.levels = append(m.levels, volumeMultiplier(m.volume, m.muted))
	fail := m.fail
	gate := m.gate
	m.mu.Unlock()

	select {
	case m.started <- buf:
	default:
	}

	if fail != nil {
		return fail
	}
	if gate == nil {
		return nil
	}

	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Hold makes subsequent Play calls block until Release or cancellation
func (m *Memory) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = make(chan struct{})
}

// Release ends every held Play call as a natural end of playback
func (m *Memory) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate != nil {
		close(m.gate)
		m.gate = nil
	}
}

// FailWith makes subsequent Play calls return err
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Started delivers each buffer as its playback begins
func (m *Memory) Started() <-chan *audio.Buffer {
	return m.started
}

// Played returns every buffer passed to Play
func (m *Memory) Played() []*audio.Buffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*audio.Buffer, len(m.played))
	copy(out, m.played)
	return out
}

// Close marks the sink closed
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// SetVolume sets the level recorded for later Play calls (0-100)
func (m *Memory) SetVolume(volume int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = ClampVolume(volume)
}

// SetMuted sets the mute state recorded for later Play calls
func (m *Memory) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

// Volume returns the current level
func (m *Memory) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Muted reports whether the sink is muted
func (m *Memory) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// Levels returns the gain each Play call would have applied
func (m *Memory) Levels() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.levels))
	copy(out, m.levels)
	return out
}
