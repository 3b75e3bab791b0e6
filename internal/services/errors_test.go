package services_test

import (
	"errors"
	"strings"
	"testing"

	"retempo/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("exit status 2")
	err := services.Wrap(services.ErrExternalTool, "stretch", "rubberband", "run", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
	for _, fragment := range []string{"stretch", "rubberband", "run", "exit status 2"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q missing fragment %q", err, fragment)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "change", "arguments", "target BPM and factor are mutually exclusive", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("error %q missing message", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", errors.New("boom"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("nil marker should default to ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected generic detail, got %q", err)
	}
}
