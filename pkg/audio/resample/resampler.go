// ABOUTME: Polyphase resampler for converting clip sample rates
// ABOUTME: Wraps algo-dsp rational resampling and maps channel layouts
package resample

import (
	"fmt"
	"math"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/shermbites/shermbites-go/pkg/audio"
)

// Convert returns buf in the target format. The input buffer is never modified.
func Convert(buf *audio.Buffer, target audio.Format) (*audio.Buffer, error) {
	if target.SampleRate <= 0 || target.Channels <= 0 {
		return nil, fmt.Errorf("invalid target format: %dHz %dch", target.SampleRate, target.Channels)
	}
	if buf.Format.SampleRate <= 0 || buf.Format.Channels <= 0 {
		return nil, fmt.Errorf("invalid source format: %dHz %dch", buf.Format.SampleRate, buf.Format.Channels)
	}

	out := Channels(buf, target.Channels)
	if out.Format.SampleRate == target.SampleRate {
		return out, nil
	}

	frames := out.Frames()
	outFrames := int(math.Round(float64(frames) * float64(target.SampleRate) / float64(out.Format.SampleRate)))

	converted := &audio.Buffer{
		Format:  audio.Format{SampleRate: target.SampleRate, Channels: target.Channels},
		Samples: make([]float64, outFrames*target.Channels),
	}

	for ch := 0; ch < target.Channels; ch++ {
		r, err := dspresample.NewForRates(float64(out.Format.SampleRate), float64(target.SampleRate))
		if err != nil {
			return nil, fmt.Errorf("failed to create resampler: %w", err)
		}
		data := Flush(r, out.Channel(ch), outFrames)
		converted.SetChannel(ch, data)
	}

	return converted, nil
}

// Flush runs input through r with enough trailing silence to drain the
// filter history, and returns exactly n output samples aligned with the
// input (the filter's group delay is skipped).
func Flush(r *dspresample.Resampler, input []float64, n int) []float64 {
	delay := Delay(r)

	padded := make([]float64, len(input)+2*r.TapsPerPhase()+1)
	copy(padded, input)

	processed := r.Process(padded)
	out := make([]float64, n)
	if delay < len(processed) {
		copy(out, processed[delay:])
	}
	return out
}

// Delay returns the group delay of r's linear-phase filter in output samples
func Delay(r *dspresample.Resampler) int {
	_, down := r.Ratio()
	return int(math.Round(float64(len(r.Prototype())-1) / 2 / float64(down)))
}

// Channels maps buf to the requested channel count.
// Mono is duplicated to every output channel; folding down to mono averages.
func Channels(buf *audio.Buffer, channels int) *audio.Buffer {
	in := buf.Format.Channels
	if in == channels {
		return buf.Clone()
	}

	frames := buf.Frames()
	out := &audio.Buffer{
		Format:  audio.Format{SampleRate: buf.Format.SampleRate, Channels: channels},
		Samples: make([]float64, frames*channels),
	}

	for i := 0; i < frames; i++ {
		frame := buf.Samples[i*in : (i+1)*in]
		for ch := 0; ch < channels; ch++ {
			switch {
			case channels == 1:
				var sum float64
				for _, s := range frame {
					sum += s
				}
				out.Samples[i] = sum / float64(in)
			case in == 1:
				out.Samples[i*channels+ch] = frame[0]
			case ch < in:
				out.Samples[i*channels+ch] = frame[ch]
			}
		}
	}

	return out
}
