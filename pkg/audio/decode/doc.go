// ABOUTME: Audio decoder package for soundboard clips
// ABOUTME: Provides Decoder interface and MP3, WAV and FLAC implementations
// Package decode turns complete encoded clips into float PCM buffers.
//
// Supports: MP3 (go-mp3), WAV (go-audio/wav), FLAC (mewkiz/flac).
// The codec is detected from the payload's leading bytes, so the
// storage filename never has to carry a trustworthy extension.
//
// Example:
//
//	buf, err := decode.Decode(clipBytes)
package decode
