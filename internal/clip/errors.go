// ABOUTME: Error taxonomy for cache, fetch, decode and playback failures
// ABOUTME: Sentinels are wrapped with context and matched with errors.Is
package clip

import "errors"

var (
	// ErrStorage is a local persistence failure
	ErrStorage = errors.New("storage failure")

	// ErrFetch is a remote retrieval failure, including a missing URL
	ErrFetch = errors.New("fetch failure")

	// ErrDecode is a malformed or unsupported audio payload
	ErrDecode = errors.New("decode failure")

	// ErrLockRejected means another clip is already playing
	ErrLockRejected = errors.New("playback busy")

	// ErrDirectory is a failure to load the clip listing
	ErrDirectory = errors.New("directory unavailable")
)
