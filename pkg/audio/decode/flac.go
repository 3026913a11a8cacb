// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes whole FLAC clips frame by frame via mewkiz/flac
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/shermbites/shermbites-go/pkg/audio"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

// Decode converts FLAC bytes to float samples
func (FLACDecoder) Decode(data []byte) (*audio.Buffer, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open flac stream: %w", err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	bitDepth := int(stream.Info.BitsPerSample)
	if channels == 0 {
		return nil, fmt.Errorf("flac stream has no channels")
	}
	if bitDepth == 0 {
		return nil, fmt.Errorf("flac stream has zero bits per sample")
	}

	// NSamples comes from the payload header; never trust it past what
	// the payload could plausibly hold.
	hint := min(int(stream.Info.NSamples)*channels, len(data)*8)
	samples := make([]float64, 0, max(hint, 0))
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flac decode error: %w", err)
		}

		if len(frame.Subframes) < channels {
			return nil, fmt.Errorf("flac frame has %d subframes, expected %d", len(frame.Subframes), channels)
		}
		n := len(frame.Subframes[0].Samples)
		for ch := 1; ch < channels; ch++ {
			n = min(n, len(frame.Subframes[ch].Samples))
		}
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, audio.SampleFromInt(int(frame.Subframes[ch].Samples[i]), bitDepth))
			}
		}
	}

	return &audio.Buffer{
		Format:  audio.Format{SampleRate: int(stream.Info.SampleRate), Channels: channels},
		Samples: samples,
	}, nil
}
