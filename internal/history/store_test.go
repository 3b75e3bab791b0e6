package history_test

import (
	"context"
	"path/filepath"
	"testing"

	"retempo/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	runID, err := store.BeginRun(ctx, "/music/incoming", 128)
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}

	records := []history.FileRecord{
		{RunID: runID, Source: "a.mp3", Output: "a_128BPM.mp3", DetectedBPM: 120, Factor: 0.9375, Status: history.StatusCompleted},
		{RunID: runID, Source: "b.mp3", Status: history.StatusFailed, Error: "external tool error"},
		{RunID: runID, Source: "c.txt", Status: history.StatusSkipped, Error: "unsupported extension"},
	}
	for _, rec := range records {
		if err := store.RecordFile(ctx, rec); err != nil {
			t.Fatalf("RecordFile(%s) returned error: %v", rec.Source, err)
		}
	}
	if err := store.FinishRun(ctx, runID, 3, 1, 1, 1); err != nil {
		t.Fatalf("FinishRun returned error: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns returned error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	run := runs[0]
	if run.Folder != "/music/incoming" || run.TargetBPM != 128 {
		t.Fatalf("run fields mismatch: %+v", run)
	}
	if run.Total != 3 || run.Succeeded != 1 || run.Failed != 1 || run.Skipped != 1 {
		t.Fatalf("run totals mismatch: %+v", run)
	}
	if run.FinishedAt.IsZero() {
		t.Fatal("finished run should carry a finish time")
	}

	files, err := store.FilesForRun(ctx, runID)
	if err != nil {
		t.Fatalf("FilesForRun returned error: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected three file records, got %d", len(files))
	}
	if files[0].Output != "a_128BPM.mp3" || files[0].Status != history.StatusCompleted {
		t.Fatalf("first record mismatch: %+v", files[0])
	}
	if files[1].Status != history.StatusFailed || files[1].Error == "" {
		t.Fatalf("failed record mismatch: %+v", files[1])
	}
}

func TestRecentRunsOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	for i := 0; i < 3; i++ {
		if _, err := store.BeginRun(ctx, "/music", float64(100+i)); err != nil {
			t.Fatalf("BeginRun returned error: %v", err)
		}
	}
	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("limit not applied, got %d runs", len(runs))
	}
	if runs[0].TargetBPM != 102 || runs[1].TargetBPM != 101 {
		t.Fatalf("runs not newest-first: %+v", runs)
	}
}

func TestOpenIsIdempotentOnExistingDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := history.Open(ctx, path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if _, err := first.BeginRun(ctx, "/music", 128); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := history.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen existing database: %v", err)
	}
	defer second.Close()
	runs, err := second.RecentRuns(ctx, 5)
	if err != nil {
		t.Fatalf("RecentRuns after reopen: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected persisted run after reopen, got %d", len(runs))
	}
}
