// ABOUTME: Distortion curve generation and waveshaper lookup
// ABOUTME: Soft-clipping transfer table with oversampled processing via algo-dsp
package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/resample"
)

const (
	// CurveSize is the number of entries in a distortion table
	CurveSize = 44100

	// DefaultOversampling is the oversampling factor around the shaper
	DefaultOversampling = 4

	// curveAngle is the fixed angular constant of the curve (one degree)
	curveAngle = math.Pi / 180
)

// MakeCurve builds the soft-clipping table for distortion amount k:
// x = i*2/N - 1, y = (3+k)*x*c / (pi + k*|x|)
func MakeCurve(amount float64) []float64 {
	curve := make([]float64, CurveSize)
	for i := range curve {
		x := float64(i)*2/CurveSize - 1
		curve[i] = (3 + amount) * x * curveAngle / (math.Pi + amount*math.Abs(x))
	}
	return curve
}

// WaveShaper maps samples through a transfer table
type WaveShaper struct {
	curve      []float64
	oversample int
}

// NewWaveShaper creates a shaper for curve. oversample must be 1, 2 or 4.
func NewWaveShaper(curve []float64, oversample int) (*WaveShaper, error) {
	if len(curve) < 2 {
		return nil, fmt.Errorf("waveshaper curve needs at least 2 entries, got %d", len(curve))
	}
	switch oversample {
	case 1, 2, 4:
	default:
		return nil, fmt.Errorf("waveshaper oversampling must be 1, 2 or 4: %d", oversample)
	}

	return &WaveShaper{curve: curve, oversample: oversample}, nil
}

// Shape looks x up in the table with linear interpolation.
// Inputs outside [-1, 1] use the edge entries.
func (w *WaveShaper) Shape(x float64) float64 {
	n := len(w.curve)
	v := float64(n-1) * (x + 1) / 2

	switch {
	case math.IsNaN(v):
		return 0
	case v <= 0:
		return w.curve[0]
	case v >= float64(n-1):
		return w.curve[n-1]
	}

	k := int(v)
	f := v - float64(k)
	return (1-f)*w.curve[k] + f*w.curve[k+1]
}

// Process shapes one channel. With oversampling the signal is upsampled,
// shaped at the higher rate and filtered back down; the output has the
// same length as the input.
func (w *WaveShaper) Process(input []float64) ([]float64, error) {
	if w.oversample == 1 {
		out := make([]float64, len(input))
		for i, x := range input {
			out[i] = w.Shape(x)
		}
		return out, nil
	}

	up, err := resample.NewRational(w.oversample, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to create upsampler: %w", err)
	}
	down, err := resample.NewRational(1, w.oversample)
	if err != nil {
		return nil, fmt.Errorf("failed to create downsampler: %w", err)
	}

	// Both filters are linear phase; their combined delay, in output
	// samples, is skipped so the shaped signal lines up with the input.
	delay := int(math.Round((filterDelay(up) + filterDelay(down)) / float64(w.oversample)))

	padded := make([]float64, len(input)+up.TapsPerPhase()+down.TapsPerPhase()+delay)
	copy(padded, input)

	high := up.Process(padded)
	for i, x := range high {
		high[i] = w.Shape(x)
	}

	low := down.Process(high)
	out := make([]float64, len(input))
	if delay < len(low) {
		copy(out, low[delay:])
	}
	return out, nil
}

// filterDelay is the group delay of r's prototype filter, measured at
// r's output rate
func filterDelay(r *resample.Resampler) float64 {
	_, down := r.Ratio()
	return float64(len(r.Prototype())-1) / 2 / float64(down)
}

// Oversampling returns the oversampling factor
func (w *WaveShaper) Oversampling() int { return w.oversample }
