package clip

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

// Clip is decoded PCM audio: interleaved 16-bit-range samples at a given
// sample rate and channel count.
type Clip struct {
	Rate     int
	Channels int
	Samples  []int
}

// Frames returns the number of sample frames (samples per channel).
func (c *Clip) Frames() int {
	if c.Channels == 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Duration reports the clip length in wall time.
func (c *Clip) Duration() time.Duration {
	if c.Rate == 0 {
		return 0
	}
	return time.Duration(float64(c.Frames()) / float64(c.Rate) * float64(time.Second))
}

// Mono downmixes the clip to a single float64 channel in [-1, 1).
func (c *Clip) Mono() []float64 {
	frames := c.Frames()
	mono := make([]float64, frames)
	if frames == 0 {
		return mono
	}
	scale := 1.0 / (32768.0 * float64(c.Channels))
	for i := 0; i < frames; i++ {
		sum := 0
		base := i * c.Channels
		for ch := 0; ch < c.Channels; ch++ {
			sum += c.Samples[base+ch]
		}
		mono[i] = float64(sum) * scale
	}
	return mono
}

// ReadWAV decodes an entire WAV file into a Clip. Samples at bit depths other
// than 16 are scaled into 16-bit range.
func ReadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav %s: %w", path, err)
	}
	if buf.Format == nil || buf.Format.SampleRate == 0 || buf.Format.NumChannels == 0 {
		return nil, fmt.Errorf("decode wav %s: missing format information", path)
	}

	samples := buf.Data
	if shift := buf.SourceBitDepth - bitDepth; shift > 0 {
		scaled := make([]int, len(samples))
		for i, s := range samples {
			scaled[i] = s >> shift
		}
		samples = scaled
	} else if shift < 0 && buf.SourceBitDepth > 0 {
		scaled := make([]int, len(samples))
		for i, s := range samples {
			scaled[i] = s << -shift
		}
		samples = scaled
	}

	return &Clip{
		Rate:     buf.Format.SampleRate,
		Channels: buf.Format.NumChannels,
		Samples:  samples,
	}, nil
}

// WriteWAV encodes the clip as a 16-bit PCM WAV file at path.
func WriteWAV(path string, c *Clip) error {
	if c == nil || len(c.Samples) == 0 {
		return errors.New("write wav: empty clip")
	}
	if c.Rate <= 0 || c.Channels <= 0 {
		return fmt.Errorf("write wav: invalid format %d Hz / %d channels", c.Rate, c.Channels)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, c.Rate, bitDepth, c.Channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: c.Channels, SampleRate: c.Rate},
		Data:           c.Samples,
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("encode wav %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize wav %s: %w", path, err)
	}
	return f.Close()
}
