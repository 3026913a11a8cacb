// ABOUTME: WAV encoder
// ABOUTME: Encodes float sample buffers as 16-bit PCM WAV files
package encode

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/shermbites/shermbites-go/pkg/audio"
	"github.com/spf13/afero"
)

// BitDepth is the sample depth of encoded files
const BitDepth = 16

// wavPCM is the WAVE format tag for integer PCM
const wavPCM = 1

// WAV writes buf to w as 16-bit PCM
func WAV(w io.WriteSeeker, buf *audio.Buffer) error {
	if buf.Format.SampleRate <= 0 || buf.Format.Channels <= 0 {
		return fmt.Errorf("invalid format: %d Hz, %d channels", buf.Format.SampleRate, buf.Format.Channels)
	}

	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		data[i] = int(audio.SampleToInt16(s))
	}

	enc := wav.NewEncoder(w, buf.Format.SampleRate, BitDepth, buf.Format.Channels, wavPCM)
	ib := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: buf.Format.Channels,
			SampleRate:  buf.Format.SampleRate,
		},
		Data:           data,
		SourceBitDepth: BitDepth,
	}

	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("failed to write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav header: %w", err)
	}
	return nil
}

// WAVBytes encodes buf as a complete WAV file in memory
func WAVBytes(buf *audio.Buffer) ([]byte, error) {
	// The encoder seeks back to patch the header, so it needs a file
	fs := afero.NewMemMapFs()
	f, err := fs.Create("clip.wav")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := WAV(f, buf); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(f)
}
