package batch

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"retempo/internal/services"
)

var derivedStem = regexp.MustCompile(`_[0-9]+(\.[0-9]+)?BPM$`)

// OutputName derives the sibling output path for source retimed to targetBPM.
// WAV stays WAV; compressed inputs come back as MP3 since that is what the
// encoder writes.
func OutputName(source string, targetBPM float64) (string, error) {
	var outExt string
	switch strings.ToLower(filepath.Ext(source)) {
	case ".wav":
		outExt = ".wav"
	case ".mp3", ".flac":
		outExt = ".mp3"
	default:
		return "", services.Wrap(services.ErrUnsupported, "batch", "naming",
			fmt.Sprintf("no output naming for %q", filepath.Ext(source)), nil)
	}

	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := fmt.Sprintf("%s_%sBPM%s", stem, FormatBPM(targetBPM), outExt)
	return filepath.Join(filepath.Dir(source), name), nil
}

// IsDerived reports whether the filename already carries a _<BPM>BPM suffix,
// meaning it is the output of an earlier run.
func IsDerived(source string) bool {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return derivedStem.MatchString(stem)
}

// FormatBPM renders a BPM value without a trailing decimal point for whole
// numbers.
func FormatBPM(bpm float64) string {
	if bpm == float64(int64(bpm)) {
		return strconv.FormatInt(int64(bpm), 10)
	}
	return strconv.FormatFloat(bpm, 'f', -1, 64)
}
