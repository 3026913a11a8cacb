// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes whole MP3 clips to float samples via go-mp3
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/shermbites/shermbites-go/pkg/audio"
)

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// Decode converts MP3 bytes to float samples.
// go-mp3 always produces 16-bit little-endian stereo.
func (MP3Decoder) Decode(data []byte) (*audio.Buffer, error) {
	if err := checkID3(data); err != nil {
		return nil, err
	}

	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	numSamples := len(pcm) / 2
	samples := make([]float64, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	return &audio.Buffer{
		Format:  audio.Format{SampleRate: decoder.SampleRate(), Channels: 2},
		Samples: samples,
	}, nil
}

// id3HeaderSize is the fixed ID3v2 header length
const id3HeaderSize = 10

// checkID3 rejects an ID3v2 tag whose declared size is malformed or runs
// past the payload. go-mp3 allocates the declared size up front.
func checkID3(data []byte) error {
	if len(data) < 3 || string(data[:3]) != "ID3" {
		return nil
	}
	if len(data) < id3HeaderSize {
		return fmt.Errorf("truncated id3 header")
	}

	var size int
	for _, b := range data[6:id3HeaderSize] {
		if b&0x80 != 0 {
			return fmt.Errorf("id3 tag size is not syncsafe")
		}
		size = size<<7 | int(b)
	}
	if id3HeaderSize+size > len(data) {
		return fmt.Errorf("id3 tag of %d bytes exceeds payload of %d bytes", size, len(data))
	}
	return nil
}
