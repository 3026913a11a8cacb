// ABOUTME: In-memory clip directory for tests and offline runs
// ABOUTME: Serves clips and payloads from maps and counts downloads
package remote

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shermbites/shermbites-go/internal/clip"
)

const memoryScheme = "memory://"

// Memory implements clip.Directory and clip.Downloader without a network
type Memory struct {
	mu        sync.Mutex
	clips     []clip.Clip
	objects   map[string][]byte
	failing   map[string]error
	listErr   error
	nextID    int64
	downloads []string
}

// NewMemory creates an empty in-memory directory
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string][]byte),
		failing: make(map[string]error),
		nextID:  1,
	}
}

// AddClip registers c and, when data is non-nil, its payload
func (m *Memory) AddClip(c clip.Clip, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clips = append(m.clips, c)
	if c.ID >= m.nextID {
		m.nextID = c.ID + 1
	}
	if data != nil && c.Filename != "" {
		m.objects[c.Filename] = data
	}
}

// FailDownload makes downloads of filename return err
func (m *Memory) FailDownload(filename string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[filename] = err
}

// FailList makes ListClips return err
func (m *Memory) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// ListClips returns clips sorted by label, as the backend does
func (m *Memory) ListClips(ctx context.Context) ([]clip.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	out := make([]clip.Clip, len(m.clips))
	copy(out, m.clips)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// ResolvePlayableURL returns a memory:// URL for filename
func (m *Memory) ResolvePlayableURL(filename string) (string, bool) {
	if filename == "" {
		return "", false
	}
	return memoryScheme + filename, true
}

// UploadClip stores data and registers a new clip
func (m *Memory) UploadClip(ctx context.Context, label, name string, data []byte) (clip.Clip, error) {
	if err := clip.ValidateLabel(label); err != nil {
		return clip.Clip{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := clip.Clip{ID: m.nextID, Label: label, Filename: name}
	m.nextID++
	m.clips = append(m.clips, c)
	m.objects[name] = data
	return c, nil
}

// Download returns the payload behind a memory:// URL
func (m *Memory) Download(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.downloads = append(m.downloads, rawURL)

	filename, ok := strings.CutPrefix(rawURL, memoryScheme)
	if !ok {
		return nil, fmt.Errorf("unsupported url %q", rawURL)
	}
	if err := m.failing[filename]; err != nil {
		return nil, err
	}
	data, ok := m.objects[filename]
	if !ok {
		return nil, fmt.Errorf("clip download failed: HTTP 404")
	}
	return data, nil
}

// Downloads returns every URL passed to Download, in order
func (m *Memory) Downloads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.downloads))
	copy(out, m.downloads)
	return out
}
