package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"retempo/internal/batch"
	"retempo/internal/history"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()

	want := []string{"batch", "deps", "history", "config"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestBatchCommandRequiresFlags(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"batch"})
	root.SetOut(&strings.Builder{})
	root.SetErr(&strings.Builder{})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected an error when required flags are missing")
	}
	if !strings.Contains(err.Error(), "folder") && !strings.Contains(err.Error(), "bpm") {
		t.Errorf("error should name a missing flag, got %q", err)
	}
}

func TestRenderSummaryIncludesOutcomes(t *testing.T) {
	summary := &batch.Summary{
		Folder:    "/music",
		TargetBPM: 120,
		Elapsed:   3 * time.Second,
		Outcomes: []batch.Outcome{
			{
				Source:      "/music/track.mp3",
				Output:      "/music/track_120BPM.mp3",
				DetectedBPM: 98.5,
				Factor:      0.821,
				Status:      history.StatusCompleted,
			},
			{
				Source: "/music/broken.flac",
				Status: history.StatusFailed,
				Err:    errors.New("decode failed\nextra detail"),
			},
			{
				Source: "/music/notes.txt",
				Status: history.StatusSkipped,
				Reason: "unsupported extension",
			},
		},
	}

	rendered := renderSummary(summary)
	for _, want := range []string{
		"track.mp3", "track_120BPM.mp3", "98.5", "0.821",
		"broken.flac", "decode failed",
		"notes.txt", "unsupported extension",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("summary missing %q:\n%s", want, rendered)
		}
	}
	if strings.Contains(rendered, "extra detail") {
		t.Error("error detail should be trimmed to its first line")
	}
}

func TestShortOutcomeError(t *testing.T) {
	if got := shortOutcomeError(nil); got != "" {
		t.Errorf("nil error should render empty, got %q", got)
	}
	if got := shortOutcomeError(errors.New("line one\nline two")); got != "line one" {
		t.Errorf("multi-line error should keep first line, got %q", got)
	}
}
