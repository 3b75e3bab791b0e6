package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"retempo/internal/config"
	"retempo/internal/history"
	"retempo/internal/media/convert"
	"retempo/internal/services"
	"retempo/internal/tags"
	"retempo/internal/tempo"
)

// lockFileName is created inside the target folder for the duration of a run.
const lockFileName = ".retempo.lock"

// Changer runs the per-file tempo pipeline.
type Changer interface {
	Change(ctx context.Context, req tempo.Request) (*tempo.Result, error)
}

// TagCopier copies metadata from a source file onto its derived output.
type TagCopier func(originalPath, newPath string) error

// Recorder persists batch outcomes. The history store satisfies it.
type Recorder interface {
	BeginRun(ctx context.Context, folder string, targetBPM float64) (int64, error)
	RecordFile(ctx context.Context, rec history.FileRecord) error
	FinishRun(ctx context.Context, runID int64, total, succeeded, failed, skipped int) error
}

// Outcome is one file's result within a batch.
type Outcome struct {
	Source      string
	Output      string
	DetectedBPM float64
	Factor      float64
	Status      history.FileStatus
	Reason      string
	Err         error
}

// Summary aggregates a finished batch.
type Summary struct {
	Folder    string
	TargetBPM float64
	RunID     int64
	Outcomes  []Outcome
	Elapsed   time.Duration
}

// Counts tallies the outcomes by status.
func (s *Summary) Counts() (succeeded, failed, skipped int) {
	for _, o := range s.Outcomes {
		switch o.Status {
		case history.StatusCompleted:
			succeeded++
		case history.StatusFailed:
			failed++
		case history.StatusSkipped:
			skipped++
		}
	}
	return succeeded, failed, skipped
}

// Option configures the driver.
type Option func(*Driver)

// WithTagCopier overrides metadata copying (primarily for tests).
func WithTagCopier(copier TagCopier) Option {
	return func(d *Driver) {
		if copier != nil {
			d.copyTags = copier
		}
	}
}

// WithRecorder attaches a history recorder.
func WithRecorder(rec Recorder) Option {
	return func(d *Driver) {
		d.recorder = rec
	}
}

// Driver processes every supported file in a folder sequentially.
type Driver struct {
	cfg      *config.Config
	logger   *slog.Logger
	changer  Changer
	copyTags TagCopier
	recorder Recorder
}

// New constructs a batch driver.
func New(cfg *config.Config, logger *slog.Logger, changer Changer, opts ...Option) (*Driver, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if changer == nil {
		return nil, errors.New("changer required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Driver{
		cfg:      cfg,
		logger:   logger,
		changer:  changer,
		copyTags: tags.Copy,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Run retimes every supported file directly inside folder toward targetBPM.
// Individual file failures are collected, not propagated; the returned error
// covers run-level problems only (bad arguments, unreadable folder, lock
// contention, cancellation).
func (d *Driver) Run(ctx context.Context, folder string, targetBPM float64) (*Summary, error) {
	if targetBPM <= 0 {
		return nil, services.Wrap(services.ErrValidation, "batch", "arguments",
			fmt.Sprintf("target BPM must be positive, got %g", targetBPM), nil)
	}
	info, err := os.Stat(folder)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "batch", "folder", folder, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "batch", "folder",
			fmt.Sprintf("%s is not a directory", folder), nil)
	}

	lock := flock.New(filepath.Join(folder, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire folder lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another retempo run is already processing %s", folder)
	}
	defer func() { _ = lock.Unlock() }()

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("list folder: %w", err)
	}

	started := time.Now()
	summary := &Summary{Folder: folder, TargetBPM: targetBPM}
	if d.recorder != nil {
		if id, err := d.recorder.BeginRun(ctx, folder, targetBPM); err != nil {
			d.logger.Warn("history disabled for this run", slog.Any("error", err))
			d.recorder = nil
		} else {
			summary.RunID = id
		}
	}

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == lockFileName {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		outcome := d.processEntry(ctx, folder, entry.Name(), targetBPM)
		summary.Outcomes = append(summary.Outcomes, outcome)
		d.record(ctx, summary.RunID, outcome)
	}

	summary.Elapsed = time.Since(started)
	if d.recorder != nil {
		succeeded, failed, skipped := summary.Counts()
		if err := d.recorder.FinishRun(ctx, summary.RunID, len(summary.Outcomes), succeeded, failed, skipped); err != nil {
			d.logger.Warn("failed to finalize history run", slog.Any("error", err))
		}
	}
	return summary, nil
}

func (d *Driver) processEntry(ctx context.Context, folder, name string, targetBPM float64) Outcome {
	source := filepath.Join(folder, name)
	outcome := Outcome{Source: source}

	if !convert.SupportedInput(name) {
		outcome.Status = history.StatusSkipped
		outcome.Reason = "unsupported extension"
		d.logger.Debug("skipping file", slog.String("source", source), slog.String("reason", outcome.Reason))
		return outcome
	}
	if d.cfg.Batch.SkipDerived && IsDerived(name) {
		outcome.Status = history.StatusSkipped
		outcome.Reason = "already a derived file"
		d.logger.Debug("skipping file", slog.String("source", source), slog.String("reason", outcome.Reason))
		return outcome
	}

	output, err := OutputName(source, targetBPM)
	if err != nil {
		outcome.Status = history.StatusFailed
		outcome.Err = err
		return outcome
	}
	outcome.Output = output

	if !d.cfg.Batch.OverwriteExisting {
		if _, err := os.Stat(output); err == nil {
			outcome.Status = history.StatusSkipped
			outcome.Reason = "output already exists"
			return outcome
		}
	}

	fileCtx := services.WithSource(services.WithRequestID(ctx, uuid.NewString()), source)
	result, err := d.changer.Change(fileCtx, tempo.Request{
		InputPath:  source,
		OutputPath: output,
		TargetBPM:  targetBPM,
	})
	if err != nil {
		outcome.Status = history.StatusFailed
		outcome.Err = err
		d.logger.Error("file failed", slog.String("source", source), slog.Any("error", err))
		return outcome
	}
	outcome.DetectedBPM = result.DetectedBPM
	outcome.Factor = result.Factor

	// ID3 only applies to MP3 outputs; WAV outputs carry no tag block.
	if convert.CompressedTarget(output) {
		if err := d.copyTags(source, output); err != nil {
			outcome.Status = history.StatusFailed
			outcome.Err = fmt.Errorf("copy tags: %w", err)
			d.logger.Error("file failed", slog.String("source", source), slog.Any("error", outcome.Err))
			return outcome
		}
	}

	outcome.Status = history.StatusCompleted
	d.logger.Info("file completed",
		slog.String("source", source),
		slog.String("output", output),
		slog.Float64("factor", outcome.Factor))
	return outcome
}

func (d *Driver) record(ctx context.Context, runID int64, outcome Outcome) {
	if d.recorder == nil {
		return
	}
	rec := history.FileRecord{
		RunID:       runID,
		Source:      outcome.Source,
		Output:      outcome.Output,
		DetectedBPM: outcome.DetectedBPM,
		Factor:      outcome.Factor,
		Status:      outcome.Status,
	}
	if outcome.Err != nil {
		rec.Error = outcome.Err.Error()
	} else if outcome.Reason != "" {
		rec.Error = outcome.Reason
	}
	if err := d.recorder.RecordFile(ctx, rec); err != nil {
		d.logger.Warn("failed to record outcome", slog.String("source", outcome.Source), slog.Any("error", err))
	}
}
