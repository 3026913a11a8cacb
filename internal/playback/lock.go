// ABOUTME: Single-slot playback lock
// ABOUTME: Admits one clip at a time and raises a self-clearing busy signal on contention
package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/shermbites/shermbites-go/internal/clip"
)

// DefaultBusyInterval is how long the busy signal stays raised
const DefaultBusyInterval = 2 * time.Second

// Lock is Idle or Playing(clipID). Rejected requests are never queued.
type Lock struct {
	mu       sync.Mutex
	playing  bool
	clipID   int64
	interval time.Duration
	busy     bool
	busyGen  uint64
	timer    *time.Timer
	notify   func(busy bool)
}

// NewLock creates an idle lock. notify, when non-nil, is called each time
// the busy signal is raised or cleared.
func NewLock(interval time.Duration, notify func(busy bool)) *Lock {
	if interval <= 0 {
		interval = DefaultBusyInterval
	}
	return &Lock{
		interval: interval,
		notify:   notify,
	}
}

// Request admits id when idle. While another clip plays it returns an error
// wrapping clip.ErrLockRejected and raises the busy signal.
func (l *Lock) Request(id int64) error {
	l.mu.Lock()

	if !l.playing {
		l.playing = true
		l.clipID = id
		l.mu.Unlock()
		return nil
	}

	current := l.clipID
	raised := !l.busy
	l.busy = true
	l.busyGen++
	gen := l.busyGen
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.interval, func() { l.clearBusy(gen) })
	l.mu.Unlock()

	if raised && l.notify != nil {
		l.notify(true)
	}
	return fmt.Errorf("%w: clip %d is already playing", clip.ErrLockRejected, current)
}

// clearBusy drops the busy signal unless a later rejection re-armed it
func (l *Lock) clearBusy(gen uint64) {
	l.mu.Lock()
	if gen != l.busyGen || !l.busy {
		l.mu.Unlock()
		return
	}
	l.busy = false
	l.timer = nil
	l.mu.Unlock()

	if l.notify != nil {
		l.notify(false)
	}
}

// Release returns the lock to Idle
func (l *Lock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.playing = false
	l.clipID = 0
}

// State returns the playing clip id, if any
func (l *Lock) State() (clipID int64, playing bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clipID, l.playing
}

// Busy reports whether the busy signal is raised
func (l *Lock) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.busy
}

// Close stops a pending busy timer
func (l *Lock) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.busy = false
}
