package convert

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"

	"retempo/internal/media/clip"
	"retempo/internal/services"
)

// Decode reads an entire audio file into a Clip, selecting the decoder from
// the file extension.
func Decode(path string) (*clip.Clip, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return clip.ReadWAV(path)
	case ".mp3":
		return decodeMP3(path)
	case ".flac":
		return decodeFLAC(path)
	default:
		return nil, services.Wrap(services.ErrUnsupported, "convert", "decode", fmt.Sprintf("no decoder for %q", filepath.Ext(path)), nil)
	}
}

// SupportedInput reports whether path carries an extension Decode handles.
func SupportedInput(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".mp3", ".flac":
		return true
	default:
		return false
	}
}

func decodeMP3(path string) (*clip.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decode mp3 %s: %w", path, err)
	}

	// go-mp3 always emits 16-bit little-endian stereo.
	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("read mp3 samples %s: %w", path, err)
	}
	samples := make([]int, len(raw)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(raw[i*2:])))
	}

	return &clip.Clip{Rate: decoder.SampleRate(), Channels: 2, Samples: samples}, nil
}

func decodeFLAC(path string) (*clip.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decode flac %s: %w", path, err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	shift := int(info.BitsPerSample) - 16

	var samples []int
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parse flac frame %s: %w", path, err)
		}
		blockSize := int(frame.BlockSize)
		for i := 0; i < blockSize; i++ {
			for ch := 0; ch < channels; ch++ {
				s := int(frame.Subframes[ch].Samples[i])
				if shift > 0 {
					s >>= shift
				} else if shift < 0 {
					s <<= -shift
				}
				samples = append(samples, s)
			}
		}
	}

	return &clip.Clip{Rate: int(info.SampleRate), Channels: channels, Samples: samples}, nil
}
