// ABOUTME: Tests for MP3 decoder
// ABOUTME: Decodes generated silent frames and survives corrupt payloads
package decode

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/shermbites/shermbites-go/pkg/audio"
)

const (
	// MPEG-1 layer III, no CRC, 128 kbit/s, 44.1 kHz, stereo
	mp3FrameHeader = "\xff\xfb\x90\x00"
	mp3FrameSize   = 417
	mp3FrameOutput = 1152
)

// silentMP3 builds frames whose side info declares no main data, so every
// granule decodes to silence
func silentMP3(frames int) []byte {
	var b bytes.Buffer
	for i := 0; i < frames; i++ {
		frame := make([]byte, mp3FrameSize)
		copy(frame, mp3FrameHeader)
		b.Write(frame)
	}
	return b.Bytes()
}

func TestDecodeMP3(t *testing.T) {
	data := silentMP3(5)

	if Sniff(data) != CodecMP3 {
		t.Fatalf("expected mp3 payload, sniffed %q", Sniff(data))
	}

	buf, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if buf.Format.SampleRate != 44100 || buf.Format.Channels != 2 {
		t.Errorf("expected 44100Hz stereo, got %dHz %dch", buf.Format.SampleRate, buf.Format.Channels)
	}
	if buf.Frames() != 5*mp3FrameOutput {
		t.Errorf("expected %d frames, got %d", 5*mp3FrameOutput, buf.Frames())
	}
	for i, s := range buf.Samples {
		if s != 0 {
			t.Fatalf("sample %d: expected silence, got %g", i, s)
		}
	}
}

func TestDecodeMP3WithID3Tag(t *testing.T) {
	tag := []byte("ID3\x03\x00\x00\x00\x00\x00\x04TAGS")
	data := append(tag, silentMP3(2)...)

	buf, err := MP3Decoder{}.Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if buf.Frames() != 2*mp3FrameOutput {
		t.Errorf("expected %d frames, got %d", 2*mp3FrameOutput, buf.Frames())
	}
}

func TestDecodeMP3RejectsOversizedID3Tag(t *testing.T) {
	tests := map[string][]byte{
		"past end":     []byte("ID3\x03\x00\x00\x7f\x7f\x7f\x7f" + mp3FrameHeader),
		"not syncsafe": []byte("ID3\x03\x00\x00\xff\xff\xff\xff" + mp3FrameHeader),
		"short header": []byte("ID3\x03\x00"),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDecodeMP3RandomPayloads(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	for i := 0; i < 300; i++ {
		data := make([]byte, 64+rng.IntN(2048))
		for j := range data {
			data[j] = byte(rng.UintN(256))
		}
		copy(data, "ID3\x03\x00\x00\x00\x00\x00\x00")

		buf, err := Decode(data)
		if err == nil && buf.Frames() == 0 {
			t.Fatalf("payload %d: decoded without error to an empty buffer", i)
		}
	}
}

type panicDecoder struct{}

func (panicDecoder) Decode([]byte) (*audio.Buffer, error) {
	panic("index out of range [38] with length 38")
}

func TestDecodeRecoversCodecPanic(t *testing.T) {
	orig := decoders[CodecMP3]
	decoders[CodecMP3] = panicDecoder{}
	t.Cleanup(func() { decoders[CodecMP3] = orig })

	buf, err := Decode(silentMP3(1))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if buf != nil {
		t.Error("expected no buffer after a codec panic")
	}
}
