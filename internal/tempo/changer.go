package tempo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"retempo/internal/bpm"
	"retempo/internal/fileutil"
	"retempo/internal/media/convert"
	"retempo/internal/services"
)

// Converter transcodes between the pipeline's audio formats.
type Converter interface {
	ToWAV(inputPath, outputPath string) error
	FromWAV(wavPath, outputPath string) error
}

// Stretcher changes audio duration by a ratio without altering pitch.
type Stretcher interface {
	Stretch(ctx context.Context, inputWav, outputWav string, factor float64, onOutput func(string)) error
}

// DetectFunc estimates the tempo of a WAV file.
type DetectFunc func(path string) (float64, error)

// Request describes one tempo change. Exactly one of TargetBPM or Factor
// must be non-zero.
type Request struct {
	InputPath  string
	OutputPath string
	TargetBPM  float64
	Factor     float64
}

// Result reports what a completed change did.
type Result struct {
	OutputPath  string
	DetectedBPM float64
	Factor      float64
}

// Option configures the changer.
type Option func(*Changer)

// WithConverter overrides the format converter (primarily for tests).
func WithConverter(c Converter) Option {
	return func(ch *Changer) {
		if c != nil {
			ch.converter = c
		}
	}
}

// WithDetector overrides tempo detection (primarily for tests).
func WithDetector(d DetectFunc) Option {
	return func(ch *Changer) {
		if d != nil {
			ch.detector = d
		}
	}
}

// Changer runs the per-file tempo pipeline.
type Changer struct {
	tempDir   string
	logger    *slog.Logger
	converter Converter
	detector  DetectFunc
	stretcher Stretcher
}

// New constructs a changer writing scratch WAVs under tempDir.
func New(tempDir string, logger *slog.Logger, stretcher Stretcher, opts ...Option) (*Changer, error) {
	if tempDir == "" {
		return nil, errors.New("temp directory required")
	}
	if stretcher == nil {
		return nil, errors.New("stretcher required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	ch := &Changer{
		tempDir:   tempDir,
		logger:    logger,
		converter: libraryConverter{},
		detector:  bpm.DetectFile,
		stretcher: stretcher,
	}
	for _, opt := range opts {
		opt(ch)
	}
	return ch, nil
}

// Change transforms req.InputPath to req.OutputPath at the requested tempo.
// Scratch files are cleaned up on every exit path.
func (c *Changer) Change(ctx context.Context, req Request) (result *Result, err error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	scratch := filepath.Join(c.tempDir, "retempo-"+uuid.NewString())
	tempIn := scratch + "-in.wav"
	tempOut := scratch + "-out.wav"
	defer func() {
		for _, path := range []string{tempIn, tempOut} {
			if rmErr := fileutil.RemoveIfExists(path); rmErr != nil {
				c.logger.Warn("failed to remove scratch file", slog.String("path", path), slog.Any("error", rmErr))
			}
		}
	}()

	log := c.logger.With(slog.String("source", req.InputPath))

	log.Info("converting to wav")
	if err := c.converter.ToWAV(req.InputPath, tempIn); err != nil {
		return nil, fmt.Errorf("convert %s to wav: %w", req.InputPath, err)
	}

	factor := req.Factor
	detected := 0.0
	if req.TargetBPM > 0 {
		log.Info("detecting tempo")
		detected, err = c.detector(tempIn)
		if err != nil {
			return nil, fmt.Errorf("detect tempo of %s: %w", req.InputPath, err)
		}
		factor = detected / req.TargetBPM
		log.Info("tempo detected",
			slog.Float64("bpm", detected),
			slog.Float64("target_bpm", req.TargetBPM),
			slog.Float64("factor", factor))
	}

	log.Info("stretching", slog.Float64("factor", factor))
	if err := c.stretcher.Stretch(ctx, tempIn, tempOut, factor, func(line string) {
		log.Debug("rubberband", slog.String("line", line))
	}); err != nil {
		return nil, err
	}

	log.Info("exporting", slog.String("output", req.OutputPath))
	if convert.CompressedTarget(req.OutputPath) {
		if err := c.converter.FromWAV(tempOut, req.OutputPath); err != nil {
			return nil, fmt.Errorf("encode %s: %w", req.OutputPath, err)
		}
	} else {
		if err := fileutil.ReplaceFile(tempOut, req.OutputPath); err != nil {
			return nil, fmt.Errorf("move stretched audio to %s: %w", req.OutputPath, err)
		}
	}

	if _, err := os.Stat(req.OutputPath); err != nil {
		return nil, fmt.Errorf("output missing after export: %w", err)
	}

	return &Result{OutputPath: req.OutputPath, DetectedBPM: detected, Factor: factor}, nil
}

func validateRequest(req Request) error {
	if req.InputPath == "" || req.OutputPath == "" {
		return services.Wrap(services.ErrValidation, "change", "arguments", "input and output paths required", nil)
	}
	if req.TargetBPM < 0 || req.Factor < 0 {
		return services.Wrap(services.ErrValidation, "change", "arguments", "target BPM and factor must be positive", nil)
	}
	hasBPM := req.TargetBPM > 0
	hasFactor := req.Factor > 0
	if hasBPM == hasFactor {
		return services.Wrap(services.ErrValidation, "change", "arguments", "exactly one of target BPM or factor must be supplied", nil)
	}
	return nil
}

type libraryConverter struct{}

func (libraryConverter) ToWAV(inputPath, outputPath string) error {
	return convert.ToWAV(inputPath, outputPath)
}

func (libraryConverter) FromWAV(wavPath, outputPath string) error {
	return convert.FromWAV(wavPath, outputPath)
}
