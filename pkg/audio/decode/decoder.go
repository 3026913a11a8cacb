// ABOUTME: Decoder interface definition and format sniffing
// ABOUTME: Picks a codec from the payload's magic bytes and decodes whole clips
package decode

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/shermbites/shermbites-go/pkg/audio"
)

var (
	// ErrUnsupported is returned when a payload matches no known codec
	ErrUnsupported = errors.New("unsupported audio format")

	// ErrMalformed is returned when a codec library panics on a corrupt payload
	ErrMalformed = errors.New("malformed audio payload")
)

// Codec identifies a container/codec detected from a payload
type Codec string

const (
	CodecUnknown Codec = ""
	CodecMP3     Codec = "mp3"
	CodecWAV     Codec = "wav"
	CodecFLAC    Codec = "flac"
)

// Decoder decodes a complete encoded clip into float PCM
type Decoder interface {
	Decode(data []byte) (*audio.Buffer, error)
}

// Sniff detects the codec of an encoded payload
func Sniff(data []byte) Codec {
	switch {
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return CodecWAV
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("fLaC")):
		return CodecFLAC
	case len(data) >= 3 && bytes.Equal(data[:3], []byte("ID3")):
		return CodecMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return CodecMP3
	}
	return CodecUnknown
}

var decoders = map[Codec]Decoder{
	CodecMP3:  MP3Decoder{},
	CodecWAV:  WAVDecoder{},
	CodecFLAC: FLACDecoder{},
}

// ForCodec returns the decoder for a codec
func ForCodec(codec Codec) (Decoder, error) {
	dec, ok := decoders[codec]
	if !ok {
		return nil, ErrUnsupported
	}
	return dec, nil
}

// Decode sniffs the payload and decodes it with the matching decoder.
// A panic inside a codec library is reported as ErrMalformed.
func Decode(data []byte) (buf *audio.Buffer, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty payload: %w", ErrUnsupported)
	}

	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: decoder panic: %v", ErrMalformed, r)
		}
	}()

	dec, err := ForCodec(Sniff(data))
	if err != nil {
		return nil, err
	}

	buf, err = dec.Decode(data)
	if err != nil {
		return nil, err
	}
	if buf.Frames() == 0 {
		return nil, fmt.Errorf("payload decoded to zero frames")
	}
	return buf, nil
}
