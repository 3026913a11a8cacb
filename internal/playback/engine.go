// ABOUTME: Playback engine
// ABOUTME: Resolves clip bytes cache-first, decodes, applies the blast chain and plays
package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shermbites/shermbites-go/internal/clip"
	"github.com/shermbites/shermbites-go/pkg/audio"
	"github.com/shermbites/shermbites-go/pkg/audio/decode"
	"github.com/shermbites/shermbites-go/pkg/audio/effects"
	"github.com/shermbites/shermbites-go/pkg/audio/output"
)

// DefaultRenderCacheSize bounds the number of rendered buffers kept in memory
const DefaultRenderCacheSize = 32

// Source reads cached clip payloads
type Source interface {
	Get(id int64) ([]byte, bool, error)
}

// Fetcher downloads a clip, caching it on the way. A storage failure is
// reported with the payload still returned.
type Fetcher interface {
	Fetch(ctx context.Context, c clip.Clip) ([]byte, error)
}

type renderKey struct {
	id   int64
	mode Mode
}

// Engine turns clips into sound
type Engine struct {
	source   Source
	fetcher  Fetcher
	sink     output.Sink
	chains   map[Mode]*effects.Chain
	rendered *lru.Cache[renderKey, *audio.Buffer]
}

// NewEngine creates an engine that plays through sink
func NewEngine(source Source, fetcher Fetcher, sink output.Sink, renderCacheSize int) (*Engine, error) {
	if renderCacheSize <= 0 {
		renderCacheSize = DefaultRenderCacheSize
	}

	rendered, err := lru.New[renderKey, *audio.Buffer](renderCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create render cache: %w", err)
	}

	chains := make(map[Mode]*effects.Chain)
	for _, mode := range []Mode{ModeBlast, ModeMonster} {
		preset, _ := mode.Preset()
		chain, err := effects.NewChain(preset)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s chain: %w", mode, err)
		}
		chains[mode] = chain
	}

	return &Engine{
		source:   source,
		fetcher:  fetcher,
		sink:     sink,
		chains:   chains,
		rendered: rendered,
	}, nil
}

// Play plays c in mode and blocks until playback ends. A clip without a
// filename is skipped. Cancelling ctx stops output and returns ctx.Err().
func (e *Engine) Play(ctx context.Context, c clip.Clip, mode Mode) error {
	if !c.Playable() {
		log.Debug("Skipping clip without filename", "clip", c)
		return nil
	}

	buf, err := e.Render(ctx, c, mode)
	if err != nil {
		return err
	}

	log.Debug("Playing clip", "clip", c, "mode", mode, "duration", buf.Duration())

	if err := e.sink.Play(ctx, buf); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("output failed for clip %s: %w", c, err)
	}
	return nil
}

// Render resolves, decodes and processes c for mode without playing it
func (e *Engine) Render(ctx context.Context, c clip.Clip, mode Mode) (*audio.Buffer, error) {
	key := renderKey{id: c.ID, mode: mode}
	if buf, ok := e.rendered.Get(key); ok {
		return buf, nil
	}

	chain, blast := e.chains[mode]
	if mode != ModeNormal && !blast {
		return nil, fmt.Errorf("unknown playback mode %s", mode)
	}

	data, err := e.resolve(ctx, c)
	if err != nil {
		return nil, err
	}

	buf, err := decode.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: clip %s: %w", clip.ErrDecode, c, err)
	}

	if blast {
		buf, err = chain.Apply(buf)
		if err != nil {
			return nil, fmt.Errorf("%s chain failed for clip %s: %w", mode, c, err)
		}
	}

	e.rendered.Add(key, buf)
	return buf, nil
}

// resolve returns cached bytes for c, or fetches them
func (e *Engine) resolve(ctx context.Context, c clip.Clip) ([]byte, error) {
	data, ok, err := e.source.Get(c.ID)
	switch {
	case err != nil:
		log.Warn("Cache read failed, fetching clip", "clip", c, "err", err)
	case ok:
		return data, nil
	}

	data, err = e.fetcher.Fetch(ctx, c)
	if err != nil {
		if errors.Is(err, clip.ErrStorage) && data != nil {
			log.Warn("Could not cache clip", "clip", c, "err", err)
			return data, nil
		}
		return nil, err
	}
	return data, nil
}

// Close releases the output device
func (e *Engine) Close() error {
	e.rendered.Purge()
	return e.sink.Close()
}
