// ABOUTME: Audio effects package for blast playback
// ABOUTME: Provides the distortion curve, oversampled waveshaper and blast chain
// Package effects implements the distortion chain used by blast playback:
//
//	source -> waveshaper (curve lookup, 4x oversampled) -> gain -> output
//
// The same chain serves every blast preset; presets only change the
// distortion amount and the output gain.
//
// Example:
//
//	chain, err := effects.NewChain(effects.QuickBlast)
//	out, err := chain.Apply(buf)
package effects
