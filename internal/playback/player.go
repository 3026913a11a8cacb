// ABOUTME: Lock-guarded playback sessions
// ABOUTME: Runs each admitted request on its own goroutine and always releases the lock
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/shermbites/shermbites-go/internal/clip"
)

// Hooks observe session lifecycles. OnStart runs before playback begins
// and OnEnd runs once per session after the lock has been released, so
// OnStart always precedes OnEnd for the same session.
type Hooks struct {
	OnStart func(*Session)
	OnEnd   func(*Session)
}

// Player admits play requests through a Lock and runs them on an Engine
type Player struct {
	engine *Engine
	lock   *Lock
	hooks  Hooks

	mu      sync.Mutex
	current *Session
	wg      sync.WaitGroup
}

// NewPlayer creates a player
func NewPlayer(engine *Engine, lock *Lock, hooks Hooks) *Player {
	return &Player{
		engine: engine,
		lock:   lock,
		hooks:  hooks,
	}
}

// Start begins playing c. It returns an error wrapping clip.ErrLockRejected
// while another session is active. A clip without a filename yields a
// session that has already ended.
func (p *Player) Start(ctx context.Context, c clip.Clip, mode Mode) (*Session, error) {
	if !c.Playable() {
		s := newSession(c, mode, nil)
		p.end(s, nil)
		return s, nil
	}

	if err := p.lock.Request(c.ID); err != nil {
		log.Warn("Play request rejected", "clip", c, "err", err)
		return nil, err
	}

	sctx, cancel := context.WithCancel(ctx)
	s := newSession(c, mode, cancel)

	p.mu.Lock()
	p.current = s
	p.mu.Unlock()

	log.Info("Session started", "session", s.ID, "clip", c, "mode", mode)
	if p.hooks.OnStart != nil {
		p.hooks.OnStart(s)
	}

	p.wg.Add(1)
	go p.run(sctx, s)

	return s, nil
}

func (p *Player) run(ctx context.Context, s *Session) {
	defer p.wg.Done()

	err := p.play(ctx, s)
	s.cancel()

	switch {
	case err == nil:
		log.Info("Session ended", "session", s.ID, "clip", s.Clip)
	case errors.Is(err, context.Canceled):
		log.Info("Session stopped", "session", s.ID, "clip", s.Clip)
	default:
		log.Error("Session failed", "session", s.ID, "clip", s.Clip, "err", err)
	}

	p.mu.Lock()
	if p.current == s {
		p.current = nil
	}
	p.mu.Unlock()

	p.lock.Release()
	p.end(s, err)
}

// play runs the engine; a panic below it fails the session instead of
// the process
func (p *Player) play(ctx context.Context, s *Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("playback panic for clip %s: %v", s.Clip, r)
		}
	}()
	return p.engine.Play(ctx, s.Clip, s.Mode)
}

func (p *Player) end(s *Session, err error) {
	if s.finish(err) && p.hooks.OnEnd != nil {
		p.hooks.OnEnd(s)
	}
}

// Current returns the active session, or nil
func (p *Player) Current() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Stop silences the active session; it reports whether one was playing
func (p *Player) Stop() bool {
	s := p.Current()
	if s == nil {
		return false
	}
	s.Stop()
	return true
}

// Wait blocks until every started session has ended
func (p *Player) Wait() {
	p.wg.Wait()
}

// Close stops playback, waits for it to end and releases the engine
func (p *Player) Close() error {
	p.Stop()
	p.wg.Wait()
	p.lock.Close()
	return p.engine.Close()
}
