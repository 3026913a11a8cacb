// ABOUTME: Clip metadata and remote directory interfaces
// ABOUTME: Shared types consumed by the cache, playback and download layers
package clip

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// MaxLabelLength is the longest label accepted on upload
const MaxLabelLength = 30

// Clip is a labeled audio item stored in the remote directory
type Clip struct {
	ID       int64  `json:"id"`
	Label    string `json:"label"`
	Filename string `json:"filename,omitempty"`
}

// Playable reports whether the clip has a storage filename
func (c Clip) Playable() bool {
	return c.Filename != ""
}

// String returns a short description for logs
func (c Clip) String() string {
	return fmt.Sprintf("%d:%q", c.ID, c.Label)
}

// Directory lists, resolves and uploads clips
type Directory interface {
	// ListClips returns clips sorted by label ascending
	ListClips(ctx context.Context) ([]Clip, error)

	// ResolvePlayableURL maps an opaque filename to a fetchable URL
	ResolvePlayableURL(filename string) (string, bool)

	// UploadClip stores data under name and registers it with label
	UploadClip(ctx context.Context, label, name string, data []byte) (Clip, error)
}

// Downloader fetches raw bytes from a resolved URL
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// ValidateLabel checks an upload label
func ValidateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("label is required")
	}
	if n := utf8.RuneCountInString(label); n > MaxLabelLength {
		return fmt.Errorf("label is %d characters, limit is %d", n, MaxLabelLength)
	}
	return nil
}
