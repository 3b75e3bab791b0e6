package bpm

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"time"

	"github.com/mjibson/go-dsp/fft"

	"retempo/internal/media/clip"
)

const (
	frameSize = 1024
	hopSize   = 256

	minBPM = 60.0
	maxBPM = 200.0

	// Octave disambiguation prior, in octaves around 120 BPM.
	priorCenterBPM = 120.0
	priorWidth     = 0.8

	minDuration = 2 * time.Second
)

// ErrTooShort is returned for audio shorter than the analysis window.
var ErrTooShort = errors.New("audio too short for tempo analysis")

// DetectFile estimates the tempo of the WAV file at path.
func DetectFile(path string) (float64, error) {
	c, err := clip.ReadWAV(path)
	if err != nil {
		return 0, err
	}
	return Detect(c)
}

// Detect estimates the tempo of a decoded clip in beats per minute.
func Detect(c *clip.Clip) (float64, error) {
	if c == nil || c.Rate <= 0 {
		return 0, errors.New("tempo analysis requires a decoded clip")
	}
	if c.Duration() < minDuration {
		return 0, fmt.Errorf("%w: %v of audio, need at least %v", ErrTooShort, c.Duration().Round(time.Millisecond), minDuration)
	}

	envelope := onsetEnvelope(c.Mono())
	frameRate := float64(c.Rate) / hopSize
	return estimateTempo(envelope, frameRate)
}

// onsetEnvelope computes per-hop spectral flux: the positive change in
// magnitude across the spectrum, which spikes at note and drum onsets.
func onsetEnvelope(mono []float64) []float64 {
	window := hann(frameSize)
	frames := (len(mono) - frameSize) / hopSize
	if frames < 1 {
		return nil
	}

	envelope := make([]float64, 0, frames)
	prev := make([]float64, frameSize/2+1)
	buf := make([]float64, frameSize)

	for f := 0; f < frames; f++ {
		offset := f * hopSize
		for i := 0; i < frameSize; i++ {
			buf[i] = mono[offset+i] * window[i]
		}
		spectrum := fft.FFTReal(buf)

		flux := 0.0
		for i := 0; i <= frameSize/2; i++ {
			mag := cmplx.Abs(spectrum[i])
			if d := mag - prev[i]; d > 0 {
				flux += d
			}
			prev[i] = mag
		}
		envelope = append(envelope, flux)
	}

	// Remove the slowly varying mean so sustained energy does not mask the
	// periodic onset pattern.
	demean(envelope)
	return envelope
}

func estimateTempo(envelope []float64, frameRate float64) (float64, error) {
	minLag := int(math.Floor(frameRate * 60.0 / maxBPM))
	maxLag := int(math.Ceil(frameRate * 60.0 / minBPM))
	if minLag < 1 {
		minLag = 1
	}
	if len(envelope) <= maxLag*2 {
		return 0, ErrTooShort
	}

	scores := make([]float64, maxLag+2)
	bestLag, bestScore := 0, math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		sum := 0.0
		n := len(envelope) - lag
		for i := 0; i < n; i++ {
			sum += envelope[i] * envelope[i+lag]
		}
		score := sum / float64(n) * tempoPrior(60.0*frameRate/float64(lag))
		scores[lag] = score
		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}
	if bestLag == 0 || bestScore <= 0 {
		return 0, errors.New("no periodic onset pattern found")
	}

	lag := refineLag(scores, bestLag, minLag, maxLag)
	return 60.0 * frameRate / lag, nil
}

// refineLag applies parabolic interpolation around the winning lag so the
// returned tempo is not quantized to whole envelope frames.
func refineLag(scores []float64, lag, minLag, maxLag int) float64 {
	if lag <= minLag || lag >= maxLag {
		return float64(lag)
	}
	prev, cur, next := scores[lag-1], scores[lag], scores[lag+1]
	denom := prev - 2*cur + next
	if denom == 0 {
		return float64(lag)
	}
	delta := 0.5 * (prev - next) / denom
	if delta > 0.5 || delta < -0.5 {
		return float64(lag)
	}
	return float64(lag) + delta
}

func tempoPrior(bpm float64) float64 {
	x := math.Log2(bpm/priorCenterBPM) / priorWidth
	return math.Exp(-0.5 * x * x)
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

func demean(envelope []float64) {
	if len(envelope) == 0 {
		return
	}
	mean := 0.0
	for _, v := range envelope {
		mean += v
	}
	mean /= float64(len(envelope))
	for i := range envelope {
		envelope[i] -= mean
		if envelope[i] < 0 {
			envelope[i] = 0
		}
	}
}
