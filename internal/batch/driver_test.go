package batch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"retempo/internal/batch"
	"retempo/internal/config"
	"retempo/internal/history"
	"retempo/internal/tempo"
)

type stubChanger struct {
	failFor map[string]error
	calls   []tempo.Request
}

func (s *stubChanger) Change(_ context.Context, req tempo.Request) (*tempo.Result, error) {
	s.calls = append(s.calls, req)
	if err, ok := s.failFor[filepath.Base(req.InputPath)]; ok {
		return nil, err
	}
	if err := os.WriteFile(req.OutputPath, []byte("audio"), 0o644); err != nil {
		return nil, err
	}
	return &tempo.Result{OutputPath: req.OutputPath, DetectedBPM: 120, Factor: 120 / req.TargetBPM}, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	return &cfg
}

func newDriver(t *testing.T, changer batch.Changer, opts ...batch.Option) *batch.Driver {
	t.Helper()
	opts = append([]batch.Option{batch.WithTagCopier(func(string, string) error { return nil })}, opts...)
	d, err := batch.New(testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)), changer, opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return d
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func outcomeFor(t *testing.T, summary *batch.Summary, base string) batch.Outcome {
	t.Helper()
	for _, o := range summary.Outcomes {
		if filepath.Base(o.Source) == base {
			return o
		}
	}
	t.Fatalf("no outcome for %s in %+v", base, summary.Outcomes)
	return batch.Outcome{}
}

func TestRunProcessesSupportedFilesOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp3"))
	touch(t, filepath.Join(dir, "b.wav"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "old_128BPM.mp3"))
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	changer := &stubChanger{}
	var tagged []string
	driver := newDriver(t, changer, batch.WithTagCopier(func(src, dst string) error {
		tagged = append(tagged, filepath.Base(dst))
		return nil
	}))

	summary, err := driver.Run(context.Background(), dir, 128)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	succeeded, failed, skipped := summary.Counts()
	if succeeded != 2 || failed != 0 || skipped != 2 {
		t.Fatalf("counts = %d/%d/%d, want 2 succeeded, 0 failed, 2 skipped", succeeded, failed, skipped)
	}
	if got := outcomeFor(t, summary, "a.mp3"); got.Status != history.StatusCompleted ||
		filepath.Base(got.Output) != "a_128BPM.mp3" {
		t.Fatalf("a.mp3 outcome: %+v", got)
	}
	if got := outcomeFor(t, summary, "notes.txt"); got.Status != history.StatusSkipped {
		t.Fatalf("notes.txt should be skipped: %+v", got)
	}
	if got := outcomeFor(t, summary, "old_128BPM.mp3"); got.Status != history.StatusSkipped {
		t.Fatalf("derived file should be skipped: %+v", got)
	}

	// Tags go onto MP3 outputs only; WAV has no ID3 block.
	if len(tagged) != 1 || tagged[0] != "a_128BPM.mp3" {
		t.Fatalf("tag copies = %v, want [a_128BPM.mp3]", tagged)
	}
	for _, req := range changer.calls {
		if req.TargetBPM != 128 || req.Factor != 0 {
			t.Fatalf("changer should receive target BPM only: %+v", req)
		}
	}
}

func TestRunIsolatesPerFileFailures(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "bad.mp3"))
	touch(t, filepath.Join(dir, "good.mp3"))

	cause := errors.New("external tool error")
	driver := newDriver(t, &stubChanger{failFor: map[string]error{"bad.mp3": cause}})

	summary, err := driver.Run(context.Background(), dir, 100)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	succeeded, failed, _ := summary.Counts()
	if succeeded != 1 || failed != 1 {
		t.Fatalf("counts = %d succeeded/%d failed, want 1/1", succeeded, failed)
	}
	if got := outcomeFor(t, summary, "bad.mp3"); !errors.Is(got.Err, cause) {
		t.Fatalf("bad.mp3 should carry the cause: %+v", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "good_100BPM.mp3")); err != nil {
		t.Fatalf("good.mp3 should still produce output: %v", err)
	}
}

func TestRunSkipsExistingOutputs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "song.mp3"))
	touch(t, filepath.Join(dir, "song_128BPM.mp3"))

	cfg := testConfig()
	cfg.Batch.SkipDerived = false
	driver, err := batch.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), &stubChanger{},
		batch.WithTagCopier(func(string, string) error { return nil }))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	summary, err := driver.Run(context.Background(), dir, 128)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := outcomeFor(t, summary, "song.mp3"); got.Status != history.StatusSkipped ||
		got.Reason != "output already exists" {
		t.Fatalf("song.mp3 outcome: %+v", got)
	}
}

func TestRunRejectsHeldLock(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "song.mp3"))

	other := flock.New(filepath.Join(dir, ".retempo.lock"))
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("prepare competing lock: locked=%v err=%v", locked, err)
	}
	defer func() { _ = other.Unlock() }()

	driver := newDriver(t, &stubChanger{})
	if _, err := driver.Run(context.Background(), dir, 128); err == nil {
		t.Fatal("expected error when folder lock is held")
	} else if !strings.Contains(err.Error(), "already processing") {
		t.Fatalf("unexpected lock error: %v", err)
	}
}

func TestRunValidatesArguments(t *testing.T) {
	driver := newDriver(t, &stubChanger{})
	if _, err := driver.Run(context.Background(), t.TempDir(), 0); err == nil {
		t.Fatal("expected error for zero target BPM")
	}
	if _, err := driver.Run(context.Background(), filepath.Join(t.TempDir(), "missing"), 128); err == nil {
		t.Fatal("expected error for missing folder")
	}
}

func TestRunRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp3"))
	touch(t, filepath.Join(dir, "skip.txt"))

	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	driver := newDriver(t, &stubChanger{}, batch.WithRecorder(store))
	summary, err := driver.Run(context.Background(), dir, 128)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.RunID == 0 {
		t.Fatal("summary should carry the history run id")
	}

	files, err := store.FilesForRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("FilesForRun: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected two recorded outcomes, got %d", len(files))
	}
	runs, err := store.RecentRuns(context.Background(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("RecentRuns: %v %v", runs, err)
	}
	if runs[0].Succeeded != 1 || runs[0].Skipped != 1 {
		t.Fatalf("run totals mismatch: %+v", runs[0])
	}
}
