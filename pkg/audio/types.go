// ABOUTME: Audio type definitions
// ABOUTME: Defines decoded clip formats and float PCM buffers
package audio

import (
	"math"
	"time"
)

// Format describes decoded audio
type Format struct {
	SampleRate int
	Channels   int
}

// Buffer holds decoded PCM audio as interleaved float64 samples in [-1, 1]
type Buffer struct {
	Format  Format
	Samples []float64
}

// Frames returns the number of sample frames (samples per channel)
func (b *Buffer) Frames() int {
	if b == nil || b.Format.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// Duration returns the playback length of the buffer
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.Format.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.Format.SampleRate)
}

// Clone returns a deep copy so effects never mutate a shared decoded buffer
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{Format: b.Format, Samples: make([]float64, len(b.Samples))}
	copy(out.Samples, b.Samples)
	return out
}

// Channel extracts one channel as a contiguous slice
func (b *Buffer) Channel(ch int) []float64 {
	n := b.Frames()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = b.Samples[i*b.Format.Channels+ch]
	}
	return out
}

// SetChannel writes a contiguous channel back into the interleaved samples
func (b *Buffer) SetChannel(ch int, data []float64) {
	n := b.Frames()
	for i := 0; i < n && i < len(data); i++ {
		b.Samples[i*b.Format.Channels+ch] = data[i]
	}
}

// SampleFromInt16 converts a 16-bit sample to float
func SampleFromInt16(sample int16) float64 {
	return float64(sample) / 32768.0
}

// SampleToInt16 converts a float sample to 16-bit with clipping
func SampleToInt16(sample float64) int16 {
	s := Clamp(sample) * 32767.0
	return int16(math.Round(s))
}

// SampleFromInt converts an integer sample of the given bit depth to float
func SampleFromInt(sample int, bitDepth int) float64 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	return float64(sample) / float64(int64(1)<<(bitDepth-1))
}

// Clamp limits a sample to [-1, 1]
func Clamp(sample float64) float64 {
	if sample > 1 {
		return 1
	}
	if sample < -1 {
		return -1
	}
	return sample
}
