package bpm_test

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"retempo/internal/bpm"
	"retempo/internal/media/clip"
)

// clickTrack synthesizes percussive bursts at the given tempo: a sharp-attack
// tone burst on every beat over silence.
func clickTrack(rate int, tempo float64, seconds float64) *clip.Clip {
	total := int(float64(rate) * seconds)
	samples := make([]int, total)
	beatPeriod := int(float64(rate) * 60.0 / tempo)
	burst := rate / 50 // 20ms

	for start := 0; start < total; start += beatPeriod {
		for i := 0; i < burst && start+i < total; i++ {
			decay := math.Exp(-float64(i) / float64(burst/4))
			samples[start+i] = int(14000 * decay * math.Sin(2*math.Pi*1000*float64(i)/float64(rate)))
		}
	}
	return &clip.Clip{Rate: rate, Channels: 1, Samples: samples}
}

func TestDetectClickTrack(t *testing.T) {
	for _, tempo := range []float64{100, 120, 150} {
		got, err := bpm.Detect(clickTrack(22050, tempo, 10))
		if err != nil {
			t.Fatalf("Detect(%v BPM) returned error: %v", tempo, err)
		}
		if math.Abs(got-tempo) > 4 {
			t.Fatalf("Detect(%v BPM) = %.2f, want within 4 BPM", tempo, got)
		}
	}
}

func TestDetectPrefersBaseTempoOverHalf(t *testing.T) {
	// A 130 BPM click track is also periodic at 65 BPM; the prior should keep
	// the estimate near the base tempo, not the half-tempo octave.
	got, err := bpm.Detect(clickTrack(22050, 130, 10))
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if got < 100 {
		t.Fatalf("Detect collapsed to half tempo: %.2f", got)
	}
}

func TestDetectRejectsShortAudio(t *testing.T) {
	_, err := bpm.Detect(clickTrack(22050, 120, 0.5))
	if !errors.Is(err, bpm.ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
}

func TestDetectRejectsNilClip(t *testing.T) {
	if _, err := bpm.Detect(nil); err == nil {
		t.Fatal("expected error for nil clip")
	}
}

func TestDetectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "click.wav")
	if err := clip.WriteWAV(path, clickTrack(22050, 120, 8)); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	got, err := bpm.DetectFile(path)
	if err != nil {
		t.Fatalf("DetectFile returned error: %v", err)
	}
	if math.Abs(got-120) > 4 {
		t.Fatalf("DetectFile = %.2f, want ~120", got)
	}
}
