// ABOUTME: Soundboard events
// ABOUTME: State changes delivered to the UI and headless runners
package app

import (
	"github.com/shermbites/shermbites-go/internal/clip"
	"github.com/shermbites/shermbites-go/internal/download"
	"github.com/shermbites/shermbites-go/internal/playback"
)

const eventBuffer = 128

// EventKind identifies an Event
type EventKind int

const (
	EventClipsLoaded EventKind = iota
	EventLoadFailed
	EventDownloadProgress
	EventSyncDone
	EventSessionStarted
	EventSessionEnded
	EventBusyChanged
	EventUploaded
)

func (k EventKind) String() string {
	switch k {
	case EventClipsLoaded:
		return "clips-loaded"
	case EventLoadFailed:
		return "load-failed"
	case EventDownloadProgress:
		return "download-progress"
	case EventSyncDone:
		return "sync-done"
	case EventSessionStarted:
		return "session-started"
	case EventSessionEnded:
		return "session-ended"
	case EventBusyChanged:
		return "busy-changed"
	case EventUploaded:
		return "uploaded"
	default:
		return "unknown"
	}
}

// Lifecycle reports whether k marks a load, sync, session or upload
// boundary. These are always delivered.
func (k EventKind) Lifecycle() bool {
	switch k {
	case EventDownloadProgress, EventBusyChanged:
		return false
	default:
		return true
	}
}

// Event is one soundboard state change
type Event struct {
	Kind     EventKind
	Clips    []clip.Clip
	Progress download.Progress
	Session  *playback.Session
	Busy     bool
	Err      error
}
