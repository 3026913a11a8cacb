// ABOUTME: WAV audio decoder
// ABOUTME: Decodes RIFF/WAVE PCM clips via go-audio/wav
package decode

import (
	"bytes"
	"fmt"

	"github.com/go-audio/wav"
	"github.com/shermbites/shermbites-go/pkg/audio"
)

// WAVDecoder decodes PCM WAV audio
type WAVDecoder struct{}

// Decode converts WAV bytes to float samples
func (WAVDecoder) Decode(data []byte) (*audio.Buffer, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file")
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav decode error: %w", err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels == 0 {
		return nil, fmt.Errorf("wav file has no format information")
	}

	bitDepth := int(decoder.BitDepth)
	samples := make([]float64, len(pcm.Data))
	for i, s := range pcm.Data {
		samples[i] = audio.SampleFromInt(s, bitDepth)
	}

	return &audio.Buffer{
		Format:  audio.Format{SampleRate: pcm.Format.SampleRate, Channels: pcm.Format.NumChannels},
		Samples: samples,
	}, nil
}
