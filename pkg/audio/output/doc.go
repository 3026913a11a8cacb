// ABOUTME: Audio output package for playing clips
// ABOUTME: Provides the Sink interface with oto and in-memory implementations
// Package output provides audio playback sinks.
//
// A Sink plays one decoded buffer per call. Play blocks until the clip
// ends naturally, the context is cancelled (stop), or the device fails,
// so the return of Play is the single end-of-playback notification.
//
// Example:
//
//	sink := output.NewOto(audio.Format{SampleRate: 44100, Channels: 2})
//	err := sink.Play(ctx, buf)
package output
