// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides the sample buffer shared by decoding, effects and output.
//
//   - Format: sample rate and channel count of a buffer
//   - Buffer: whole decoded clip as interleaved float64 samples in [-1, 1]
//
// It also provides conversions between float samples and integer PCM.
//
// Example:
//
//	buf := &audio.Buffer{
//	    Format:  audio.Format{SampleRate: 44100, Channels: 2},
//	    Samples: samples,
//	}
//
//	left := buf.Channel(0)
//	pcm := audio.SampleToInt16(left[0])
package audio
