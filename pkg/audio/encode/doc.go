// ABOUTME: Audio encoder package for writing decoded clips back to files
// ABOUTME: Provides 16-bit WAV encoding of float sample buffers
// Package encode writes audio buffers as 16-bit PCM WAV.
//
// Example:
//
//	data, err := encode.WAVBytes(buf)
package encode
