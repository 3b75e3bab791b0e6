package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	shine "github.com/braheezy/shine-mp3/pkg/mp3"

	"retempo/internal/fileutil"
	"retempo/internal/media/clip"
	"retempo/internal/services"
)

// ToWAV decodes inputPath (MP3, FLAC, or WAV) and writes it as a 16-bit PCM
// WAV at outputPath.
func ToWAV(inputPath, outputPath string) error {
	decoded, err := Decode(inputPath)
	if err != nil {
		return err
	}
	return clip.WriteWAV(outputPath, decoded)
}

// FromWAV re-encodes the WAV at wavPath into the format implied by
// outputPath's extension. WAV targets are a plain copy; MP3 targets go
// through the shine encoder.
func FromWAV(wavPath, outputPath string) error {
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".wav":
		return fileutil.CopyFile(wavPath, outputPath)
	case ".mp3":
		return encodeMP3(wavPath, outputPath)
	default:
		return services.Wrap(services.ErrUnsupported, "convert", "encode", fmt.Sprintf("no encoder for %q", filepath.Ext(outputPath)), nil)
	}
}

// CompressedTarget reports whether path names a format that needs re-encoding
// after the stretch, as opposed to a container the stretched WAV can be
// renamed into.
func CompressedTarget(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".mp3"
}

func encodeMP3(wavPath, outputPath string) error {
	decoded, err := clip.ReadWAV(wavPath)
	if err != nil {
		return err
	}

	data := make([]int16, len(decoded.Samples))
	for i, s := range decoded.Samples {
		data[i] = int16(s)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	encoder := shine.NewEncoder(decoded.Rate, decoded.Channels)
	if err := encoder.Write(out, data); err != nil {
		return fmt.Errorf("encode mp3 %s: %w", outputPath, err)
	}
	return out.Close()
}
