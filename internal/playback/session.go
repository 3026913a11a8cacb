// ABOUTME: Playback modes and sessions
// ABOUTME: A session finishes exactly once, on natural end, failure or stop
package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shermbites/shermbites-go/internal/clip"
	"github.com/shermbites/shermbites-go/pkg/audio/effects"
)

// Mode selects plain or distorted playback
type Mode int

const (
	// ModeNormal plays the clip unprocessed
	ModeNormal Mode = iota
	// ModeBlast applies the quick blast chain
	ModeBlast
	// ModeMonster applies the intense blast chain
	ModeMonster
)

// String returns the mode name used in logs and the UI
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeBlast:
		return effects.QuickBlast.Name
	case ModeMonster:
		return effects.Monster.Name
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a mode name to a Mode
func ParseMode(name string) (Mode, error) {
	for _, m := range []Mode{ModeNormal, ModeBlast, ModeMonster} {
		if m.String() == name {
			return m, nil
		}
	}
	return ModeNormal, fmt.Errorf("unknown playback mode %q", name)
}

// Preset returns the blast preset for m; ok is false for ModeNormal
func (m Mode) Preset() (effects.Preset, bool) {
	switch m {
	case ModeBlast:
		return effects.QuickBlast, true
	case ModeMonster:
		return effects.Monster, true
	default:
		return effects.Preset{}, false
	}
}

// Session is one admitted play request
type Session struct {
	ID      string
	Clip    clip.Clip
	Mode    Mode
	Started time.Time

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	err    error
}

func newSession(c clip.Clip, mode Mode, cancel context.CancelFunc) *Session {
	return &Session{
		ID:      uuid.New().String(),
		Clip:    c,
		Mode:    mode,
		Started: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Done is closed when the session ends
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err is nil after a natural end, context.Canceled after Stop, and the
// playback failure otherwise. It is only meaningful once Done is closed.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Wait blocks until the session ends and returns Err
func (s *Session) Wait() error {
	<-s.done
	return s.err
}

// Stop silences the session
func (s *Session) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// finish records the outcome; later calls are ignored
func (s *Session) finish(err error) bool {
	finished := false
	s.once.Do(func() {
		s.err = err
		close(s.done)
		finished = true
	})
	return finished
}
