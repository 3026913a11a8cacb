// ABOUTME: Blast signal chain and presets
// ABOUTME: Runs decoded clips through waveshaper and gain stages
package effects

import (
	"fmt"
	"math"

	"github.com/shermbites/shermbites-go/pkg/audio"
)

// Preset parameterizes the blast chain
type Preset struct {
	Name   string
	Amount float64 // distortion amount k
	Gain   float64 // output gain after the shaper
}

var (
	// QuickBlast is the moderate blast preset
	QuickBlast = Preset{Name: "blast", Amount: 200, Gain: 0.5}

	// Monster is the intense blast preset
	Monster = Preset{Name: "monster", Amount: 400, Gain: 0.8}
)

// Chain is source -> shaper -> makeup -> gain.
// The makeup stage scales the curve's peak to full scale, so Gain is
// the output level of a fully driven signal.
type Chain struct {
	preset Preset
	shaper *WaveShaper
	makeup float64
}

// NewChain builds the blast chain for a preset
func NewChain(preset Preset) (*Chain, error) {
	if preset.Amount < 0 {
		return nil, fmt.Errorf("distortion amount must not be negative: %f", preset.Amount)
	}
	if preset.Gain < 0 {
		return nil, fmt.Errorf("gain must not be negative: %f", preset.Gain)
	}

	curve := MakeCurve(preset.Amount)
	shaper, err := NewWaveShaper(curve, DefaultOversampling)
	if err != nil {
		return nil, err
	}

	return &Chain{preset: preset, shaper: shaper, makeup: Makeup(curve)}, nil
}

// Apply returns a distorted copy of buf
func (c *Chain) Apply(buf *audio.Buffer) (*audio.Buffer, error) {
	out := buf.Clone()

	for ch := 0; ch < buf.Format.Channels; ch++ {
		shaped, err := c.shaper.Process(buf.Channel(ch))
		if err != nil {
			return nil, fmt.Errorf("shaper failed on channel %d: %w", ch, err)
		}
		level := c.makeup * c.preset.Gain
		for i := range shaped {
			shaped[i] *= level
		}
		out.SetChannel(ch, shaped)
	}

	return out, nil
}

// Makeup returns the gain that brings curve's largest output to 1.
// A flat curve gets unity.
func Makeup(curve []float64) float64 {
	var peak float64
	for _, y := range curve {
		peak = math.Max(peak, math.Abs(y))
	}
	if peak == 0 {
		return 1
	}
	return 1 / peak
}

// Preset returns the chain's preset
func (c *Chain) Preset() Preset { return c.preset }
