// ABOUTME: Sample-rate and channel conversion package
// ABOUTME: Adapts decoded clips to the output device format
// Package resample converts decoded clips to the output device's
// sample rate and channel layout.
//
// Rate conversion uses algo-dsp's polyphase FIR resampler; channel
// conversion duplicates or averages channels.
//
// Example:
//
//	out, err := resample.Convert(buf, audio.Format{SampleRate: 44100, Channels: 2})
package resample
