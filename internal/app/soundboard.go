// ABOUTME: Soundboard application state and orchestration
// ABOUTME: Owns the clip list, cache, playback lock, engine and download coordinator
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/shermbites/shermbites-go/internal/cache"
	"github.com/shermbites/shermbites-go/internal/clip"
	"github.com/shermbites/shermbites-go/internal/download"
	"github.com/shermbites/shermbites-go/internal/fetch"
	"github.com/shermbites/shermbites-go/internal/playback"
	"github.com/shermbites/shermbites-go/pkg/audio"
	"github.com/shermbites/shermbites-go/pkg/audio/decode"
	"github.com/shermbites/shermbites-go/pkg/audio/output"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"
)

var (
	// ErrNoPlayableClips means there is nothing for PlayRandom to choose
	ErrNoPlayableClips = errors.New("no playable clips")

	// ErrSyncRunning means a download run is already in progress
	ErrSyncRunning = errors.New("download already running")
)

// Config wires the soundboard to its collaborators
type Config struct {
	Directory  clip.Directory
	Downloader clip.Downloader
	Store      cache.ByteStore
	Sink       output.Sink

	// Files is where upload sources are read from; defaults to the OS filesystem
	Files afero.Fs

	BusyInterval     time.Duration
	DownloadInterval time.Duration
	RenderCacheSize  int

	// Volume is the initial output level (1-100) for sinks with a mixer;
	// zero keeps the sink's own level
	Volume int
}

// Status is the board's load state
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

// Snapshot is a copy of the board state for rendering
type Snapshot struct {
	Status     Status
	Err        error
	Clips      []clip.Clip
	Downloaded map[int64]bool
	Playing    *playback.Session
	Busy       bool
	Syncing    bool
	Progress   download.Progress
	Volume     int
	Muted      bool
}

// Soundboard is the single owner of process-wide board state
type Soundboard struct {
	directory  clip.Directory
	cache      *cache.Cache
	downloaded *clip.Set
	lock       *playback.Lock
	player     *playback.Player
	engine     *playback.Engine
	coord      *download.Coordinator
	files      afero.Fs
	mixer      output.Mixer

	events  chan Event
	queueMu sync.Mutex
	pending []Event
	wake    chan struct{}
	quit    chan struct{}
	pumped  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once

	mu       sync.Mutex
	status   Status
	loadErr  error
	clips    []clip.Clip
	syncing  bool
	progress download.Progress
}

// New creates a soundboard. Nothing is loaded until Load is called.
func New(config Config) (*Soundboard, error) {
	if config.Directory == nil || config.Downloader == nil || config.Store == nil || config.Sink == nil {
		return nil, fmt.Errorf("directory, downloader, store and sink are required")
	}
	if config.Files == nil {
		config.Files = afero.NewOsFs()
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Soundboard{
		directory:  config.Directory,
		cache:      cache.New(config.Store),
		downloaded: clip.NewSet(),
		files:      config.Files,
		events:     make(chan Event, eventBuffer),
		wake:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
		pumped:     make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}

	if mixer, ok := config.Sink.(output.Mixer); ok {
		s.mixer = mixer
		if config.Volume > 0 {
			mixer.SetVolume(config.Volume)
		}
	}

	fetcher := fetch.New(config.Directory, config.Downloader, s.cache, s.downloaded)

	engine, err := playback.NewEngine(s.cache, fetcher, config.Sink, config.RenderCacheSize)
	if err != nil {
		cancel()
		return nil, err
	}
	s.engine = engine
	go s.pump()

	s.lock = playback.NewLock(config.BusyInterval, func(busy bool) {
		s.emit(Event{Kind: EventBusyChanged, Busy: busy})
	})
	s.player = playback.NewPlayer(engine, s.lock, playback.Hooks{
		OnStart: func(session *playback.Session) {
			s.emit(Event{Kind: EventSessionStarted, Session: session})
		},
		OnEnd: func(session *playback.Session) {
			s.emit(Event{Kind: EventSessionEnded, Session: session, Err: session.Err()})
		},
	})

	var limiter *rate.Limiter
	if config.DownloadInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(config.DownloadInterval), 1)
	}
	s.coord = download.NewCoordinator(s.cache, fetcher, limiter)

	return s, nil
}

// Events delivers state changes in the order they happened. Lifecycle
// events are never dropped; a slow reader may miss progress and busy
// updates and should re-read Snapshot.
func (s *Soundboard) Events() <-chan Event {
	return s.events
}

// emit queues ev without blocking the caller
func (s *Soundboard) emit(ev Event) {
	s.queueMu.Lock()
	if len(s.pending) >= eventBuffer && !ev.Kind.Lifecycle() {
		s.queueMu.Unlock()
		log.Debug("Dropped soundboard event", "kind", ev.Kind)
		return
	}
	s.pending = append(s.pending, ev)
	s.queueMu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// pump moves queued events onto the events channel until Close
func (s *Soundboard) pump() {
	defer close(s.pumped)

	for {
		select {
		case <-s.wake:
		case <-s.quit:
			return
		}

		for {
			s.queueMu.Lock()
			if len(s.pending) == 0 {
				s.queueMu.Unlock()
				break
			}
			ev := s.pending[0]
			s.pending = s.pending[1:]
			s.queueMu.Unlock()

			select {
			case s.events <- ev:
			case <-s.quit:
				return
			}
		}
	}
}

// Load fetches the clip list and records which clips are already cached.
// A failure leaves the board in StatusFailed with an error wrapping
// clip.ErrDirectory.
func (s *Soundboard) Load(ctx context.Context) error {
	s.mu.Lock()
	s.status = StatusLoading
	s.mu.Unlock()

	clips, err := s.directory.ListClips(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", clip.ErrDirectory, err)
		log.Error("Failed to load clips", "err", err)

		s.mu.Lock()
		s.status = StatusFailed
		s.loadErr = err
		s.mu.Unlock()

		s.emit(Event{Kind: EventLoadFailed, Err: err})
		return err
	}

	for _, c := range clips {
		ok, err := s.cache.Exists(c.ID)
		if err != nil {
			log.Warn("Cache check failed", "clip", c, "err", err)
			continue
		}
		if ok {
			s.downloaded.Add(c.ID)
		}
	}

	s.mu.Lock()
	s.status = StatusReady
	s.loadErr = nil
	s.clips = clips
	s.mu.Unlock()

	log.Info("Loaded clips", "count", len(clips), "cached", s.downloaded.Len())
	s.emit(Event{Kind: EventClipsLoaded, Clips: clips})
	return nil
}

// Sync downloads every clip missing from the cache and blocks until the
// run ends. Individual failures are logged, not returned.
func (s *Soundboard) Sync(ctx context.Context) error {
	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		return ErrSyncRunning
	}
	s.syncing = true
	s.progress = download.Progress{}
	clips := s.clips
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
		s.emit(Event{Kind: EventSyncDone})
	}()

	for p := range s.coord.SyncMissing(ctx, clips) {
		s.mu.Lock()
		s.progress = p
		s.mu.Unlock()
		s.emit(Event{Kind: EventDownloadProgress, Progress: p})
	}
	return ctx.Err()
}

// Play starts c in mode. It fails with clip.ErrLockRejected while another
// clip is playing.
func (s *Soundboard) Play(c clip.Clip, mode playback.Mode) (*playback.Session, error) {
	return s.player.Start(s.ctx, c, mode)
}

// PlayRandom plays a random clip that has a filename
func (s *Soundboard) PlayRandom(mode playback.Mode) (*playback.Session, error) {
	var playable []clip.Clip
	for _, c := range s.Clips() {
		if c.Playable() {
			playable = append(playable, c)
		}
	}
	if len(playable) == 0 {
		return nil, ErrNoPlayableClips
	}
	return s.Play(playable[rand.IntN(len(playable))], mode)
}

// Render returns the processed audio for c in mode without playing it
func (s *Soundboard) Render(ctx context.Context, c clip.Clip, mode playback.Mode) (*audio.Buffer, error) {
	if !c.Playable() {
		return nil, fmt.Errorf("clip %s has no audio file", c)
	}
	return s.engine.Render(ctx, c, mode)
}

// Find returns the first loaded clip with label
func (s *Soundboard) Find(label string) (clip.Clip, bool) {
	for _, c := range s.Clips() {
		if c.Label == label {
			return c, true
		}
	}
	return clip.Clip{}, false
}

// Stop silences the current clip
func (s *Soundboard) Stop() bool {
	return s.player.Stop()
}

// Upload reads the audio file at path, uploads it under label and reloads
// the clip list. The stored object name is a fresh id plus the file extension.
func (s *Soundboard) Upload(ctx context.Context, label, path string) (clip.Clip, error) {
	label = strings.TrimSpace(label)
	if err := clip.ValidateLabel(label); err != nil {
		return clip.Clip{}, err
	}

	data, err := afero.ReadFile(s.files, path)
	if err != nil {
		return clip.Clip{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if decode.Sniff(data) == decode.CodecUnknown {
		return clip.Clip{}, fmt.Errorf("%s is not a supported audio file: %w", path, decode.ErrUnsupported)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(path))
	created, err := s.directory.UploadClip(ctx, label, name, data)
	if err != nil {
		return clip.Clip{}, fmt.Errorf("upload failed: %w", err)
	}

	if err := s.cache.Put(created.ID, data); err != nil {
		log.Warn("Could not cache uploaded clip", "clip", created, "err", err)
	} else {
		s.downloaded.Add(created.ID)
	}

	s.emit(Event{Kind: EventUploaded, Clips: []clip.Clip{created}})

	if err := s.Load(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// Clips returns the loaded clip list in directory order
func (s *Soundboard) Clips() []clip.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]clip.Clip, len(s.clips))
	copy(out, s.clips)
	return out
}

// IsDownloaded reports whether the clip is in the local cache
func (s *Soundboard) IsDownloaded(id int64) bool {
	return s.downloaded.Has(id)
}

// Snapshot returns a copy of the current state
func (s *Soundboard) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		Status:   s.status,
		Err:      s.loadErr,
		Clips:    make([]clip.Clip, len(s.clips)),
		Syncing:  s.syncing,
		Progress: s.progress,
	}
	copy(snap.Clips, s.clips)
	s.mu.Unlock()

	snap.Downloaded = make(map[int64]bool, len(snap.Clips))
	for _, c := range snap.Clips {
		if s.downloaded.Has(c.ID) {
			snap.Downloaded[c.ID] = true
		}
	}
	snap.Playing = s.player.Current()
	snap.Busy = s.lock.Busy()
	snap.Volume, snap.Muted = s.Volume()
	return snap
}

// Volume reports the output level and mute state. A sink without a
// mixer always plays at full level.
func (s *Soundboard) Volume() (int, bool) {
	if s.mixer == nil {
		return output.MaxVolume, false
	}
	return s.mixer.Volume(), s.mixer.Muted()
}

// AdjustVolume moves the output level by delta, clamped to 0-100, and
// returns the new level. Clips already playing keep their level.
func (s *Soundboard) AdjustVolume(delta int) int {
	if s.mixer == nil {
		return output.MaxVolume
	}
	s.mixer.SetVolume(s.mixer.Volume() + delta)
	v := s.mixer.Volume()
	log.Info("Volume changed", "volume", v)
	return v
}

// ToggleMute flips the mute state and returns it
func (s *Soundboard) ToggleMute() bool {
	if s.mixer == nil {
		return false
	}
	muted := !s.mixer.Muted()
	s.mixer.SetMuted(muted)
	log.Info("Mute changed", "muted", muted)
	return muted
}

// Close stops playback and releases the device and cache
func (s *Soundboard) Close() error {
	s.cancel()

	var errs []error
	if err := s.player.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close output: %w", err))
	}
	if err := s.cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close cache: %w", err))
	}

	s.closeOnce.Do(func() { close(s.quit) })
	<-s.pumped
	return errors.Join(errs...)
}
